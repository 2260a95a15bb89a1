package parser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("yaml manifest", func(t *testing.T) {
		content := []byte("objects:\n  - name: Goblin.001\n    class: Enemy\n    values:\n      state: chase\n      hp: 7\n      spawn_offset: [0, 1.5, 0]\n      boss: true\n  - name: Camera\n")
		m, err := Parse(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(m.Objects) != 2 {
			t.Fatalf("expected 2 objects, got %d", len(m.Objects))
		}
		goblin := m.Objects[0]
		if goblin.Name != "Goblin.001" || goblin.Class != "Enemy" {
			t.Fatalf("unexpected object %+v", goblin)
		}
		want := []Assignment{
			{Variable: "state", Value: "chase"},
			{Variable: "hp", Value: 7},
			{Variable: "spawn_offset", Value: []any{0, 1.5, 0}},
			{Variable: "boss", Value: true},
		}
		if !reflect.DeepEqual(goblin.Values, want) {
			t.Fatalf("unexpected values: %#v", goblin.Values)
		}
		if m.Objects[1].Class != "" || m.Objects[1].Values != nil {
			t.Fatalf("expected bare object, got %+v", m.Objects[1])
		}
	})

	t.Run("json manifest", func(t *testing.T) {
		content := []byte(`{"objects": [{"name": "Door", "class": "Door", "values": {"locked": false}}]}`)
		m, err := Parse(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(m.Objects) != 1 || m.Objects[0].Values[0].Value != false {
			t.Fatalf("unexpected manifest %+v", m)
		}
	})

	t.Run("empty object list", func(t *testing.T) {
		m, err := Parse([]byte("objects: []\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(m.Objects) != 0 {
			t.Fatalf("expected no objects")
		}
	})

	t.Run("no objects key", func(t *testing.T) {
		_, err := Parse([]byte("title: something else\n"))
		if !errors.Is(err, ErrNoObjects) {
			t.Fatalf("expected ErrNoObjects, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("objects: [\n"))
		if !errors.Is(err, ErrInvalidYAML) {
			t.Fatalf("expected ErrInvalidYAML, got %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte("objects:\n  - class: Enemy\n"))
		if !errors.Is(err, ErrMissingName) {
			t.Fatalf("expected ErrMissingName, got %v", err)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := Parse([]byte("objects:\n  - name: A\n  - name: A\n"))
		if !errors.Is(err, ErrDuplicateName) {
			t.Fatalf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("values not a mapping", func(t *testing.T) {
		_, err := Parse([]byte("objects:\n  - name: A\n    values: [1, 2]\n"))
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.yaml")
	if err := os.WriteFile(path, []byte("objects:\n  - name: Door\n    class: Door\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m.SourceFile != path {
		t.Fatalf("expected source file %q, got %q", path, m.SourceFile)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
