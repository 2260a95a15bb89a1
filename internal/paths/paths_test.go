package paths

import (
	"os"
	"path/filepath"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	engine := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(engine, EngineMarker), nil, 0o600))
	project := filepath.Join(engine, "tools", "blend")
	require.NoError(t, os.MkdirAll(project, 0o755))

	r := NewResolver(project)

	tests := []struct {
		in   string
		want string
	}{
		{"//entity_template.json", filepath.Join(project, "entity_template.json")},
		{"//out/btg_import.json", filepath.Join(project, "out", "btg_import.json")},
		{"res://entities/template.json", filepath.Join(engine, "entities", "template.json")},
		{"scene/level.yaml", filepath.Join(project, "scene", "level.yaml")},
		{"/abs/../abs/file.json", "/abs/file.json"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.Resolve(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("home directory", func(t *testing.T) {
		home, err := homedir.Dir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}
		got, err := r.Resolve("~/templates/t.json")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "templates", "t.json"), got)
	})
}

func TestEngineRootMissing(t *testing.T) {
	r := NewResolver(t.TempDir())
	_, err := r.Resolve("res://template.json")
	assert.ErrorIs(t, err, ErrEngineProjectNotFound)
}

func TestRelative(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root)
	assert.Equal(t, "//out/a.json", r.Relative(filepath.Join(root, "out", "a.json")))
	outside := filepath.Join(filepath.Dir(root), "elsewhere.json")
	assert.Equal(t, outside, r.Relative(outside))
}
