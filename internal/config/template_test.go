package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitysync/internal/value"
)

func TestLoadTemplate(t *testing.T) {
	t.Run("valid template loads", func(t *testing.T) {
		tmpl, err := LoadTemplate(filepath.Join("testdata", "entity_template.json"))
		require.NoError(t, err)
		assert.Equal(t, []string{NoneClass, "Enemy", "Door", "Marker"}, tmpl.Keys())

		enemy, err := tmpl.Class("Enemy")
		require.NoError(t, err)
		assert.Equal(t, "uid://b4x1enemy", enemy.UID)
		assert.Equal(t, []string{"hp", "speed", "spawn_offset", "cell", "state", "boss", "display_name", "target"}, enemy.VariableNames())

		hp, ok := enemy.Variable("hp")
		require.True(t, ok)
		assert.Equal(t, "int", hp.Type)
		assert.Equal(t, int64(10), hp.Default.Get())
		assert.Equal(t, "Hit points", hp.Description)

		state, ok := enemy.Variable("state")
		require.True(t, ok)
		assert.Equal(t, value.Enum, state.Default.Tag())
		assert.Equal(t, []string{"idle", "patrol", "chase"}, state.Options)

		target, ok := enemy.Variable("target")
		require.True(t, ok)
		assert.Equal(t, "NodePath", target.Type)
		assert.Equal(t, value.String, target.Default.Tag())
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorIs(t, err, ErrTemplateLoad)
	})
}

func TestParseTemplate(t *testing.T) {
	invalid := map[string]string{
		"malformed json":           `{"Enemy": `,
		"top level array":          `[1, 2]`,
		"reserved None class":      `{"None": {"variables": {}}}`,
		"duplicate class":          `{"A": {"variables": {}}, "A": {"variables": {}}}`,
		"duplicate variable":       `{"A": {"variables": {"x": {"type": "int", "default": 1}, "x": {"type": "int", "default": 2}}}}`,
		"missing type":             `{"A": {"variables": {"x": {"default": 1}}}}`,
		"missing default":          `{"A": {"variables": {"x": {"type": "int"}}}}`,
		"enum without options":     `{"A": {"variables": {"x": {"type": "enum", "default": "a"}}}}`,
		"enum default not option":  `{"A": {"variables": {"x": {"type": "enum", "default": "z", "options": ["a"]}}}}`,
		"int default not a number": `{"A": {"variables": {"x": {"type": "int", "default": "ten"}}}}`,
		"short vector default":     `{"A": {"variables": {"x": {"type": "Vector3", "default": [1, 2]}}}}`,
		"null default":             `{"A": {"variables": {"x": {"type": "float", "default": null}}}}`,
		"int default out of range": `{"A": {"variables": {"x": {"type": "int", "default": 1e20}}}}`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTemplate([]byte(doc))
			assert.ErrorIs(t, err, ErrTemplateLoad)
		})
	}

	t.Run("None always first", func(t *testing.T) {
		tmpl, err := ParseTemplate([]byte(`{"Zeta": {"variables": {}}, "Alpha": {"variables": {}}}`))
		require.NoError(t, err)
		assert.Equal(t, []string{NoneClass, "Zeta", "Alpha"}, tmpl.Keys())

		none, err := tmpl.Class(NoneClass)
		require.NoError(t, err)
		assert.Empty(t, none.Variables)
	})

	t.Run("empty document", func(t *testing.T) {
		tmpl, err := ParseTemplate([]byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, []string{NoneClass}, tmpl.Keys())
	})

	t.Run("missing uid and variables", func(t *testing.T) {
		tmpl, err := ParseTemplate([]byte(`{"Prop": {}}`))
		require.NoError(t, err)
		class, err := tmpl.Class("Prop")
		require.NoError(t, err)
		assert.Equal(t, "", class.UID)
		assert.Empty(t, class.Variables)
	})
}

func TestTemplateLookup(t *testing.T) {
	tmpl, err := LoadTemplate(filepath.Join("testdata", "entity_template.json"))
	require.NoError(t, err)

	assert.True(t, tmpl.Contains("Door"))
	assert.False(t, tmpl.Contains("door"))

	_, err = tmpl.Class("Dragon")
	assert.ErrorIs(t, err, ErrUnknownClass)

	var nilTemplate *Template
	assert.False(t, nilTemplate.Contains(NoneClass))
}

func TestSnapshotRoundTrip(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "entity_template.json"))
	require.NoError(t, err)
	original, err := ParseTemplate(data)
	require.NoError(t, err)

	snapshot, err := original.Snapshot()
	require.NoError(t, err)

	restored, err := RestoreTemplate(snapshot)
	require.NoError(t, err)

	require.Equal(t, original.Keys(), restored.Keys())
	for _, class := range original.Classes() {
		other, err := restored.Class(class.Name)
		require.NoError(t, err)
		assert.Equal(t, class.UID, other.UID)
		require.Equal(t, class.VariableNames(), other.VariableNames(), class.Name)
		for i, def := range class.Variables {
			got := other.Variables[i]
			assert.Equal(t, def.Type, got.Type)
			assert.Equal(t, def.Description, got.Description)
			assert.Equal(t, def.Options, got.Options)
			assert.True(t, def.Default.Equal(got.Default), "%s.%s default %v != %v", class.Name, def.Name, def.Default, got.Default)
		}
	}

	again, err := restored.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snapshot, again)
}

func TestRestoreEmptySnapshot(t *testing.T) {
	tmpl, err := RestoreTemplate("")
	require.NoError(t, err)
	assert.Equal(t, []string{NoneClass}, tmpl.Keys())
}
