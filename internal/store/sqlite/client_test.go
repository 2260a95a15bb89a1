package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitysync/internal/store"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "absolute path", input: "sqlite:///var/lib/es.db", expected: "/var/lib/es.db"},
		{name: "dot relative", input: "sqlite://./es.db", expected: "./es.db"},
		{name: "bare relative", input: "sqlite://data/es.db", expected: "./data/es.db"},
		{name: "escaped path", input: "sqlite://my%20project.db", expected: "./my project.db"},
		{name: "query kept", input: "sqlite://es.db?_pragma=foo", expected: "./es.db?_pragma=foo"},
		{name: "wrong scheme", input: "postgres://localhost/db", wantErr: true},
		{name: "empty path", input: "sqlite://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Fatalf("parseDSN(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func openTest(t *testing.T, dsn string) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close(ctx) })
	require.NoError(t, client.EnsureSchema(ctx))
	return client
}

func TestTemplateSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := openTest(t, "sqlite://:memory:")

	_, err := client.LoadTemplateSnapshot(ctx, "demo")
	assert.ErrorIs(t, err, store.ErrNotFound)

	snap := store.NewTemplateSnapshot("//entity_template.json", `{"Enemy":{"uid":"e1","variables":{}}}`)
	require.NoError(t, client.SaveTemplateSnapshot(ctx, "demo", snap))

	got, err := client.LoadTemplateSnapshot(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, snap.Source, got.Source)
	assert.Equal(t, snap.Body, got.Body)
	assert.Equal(t, snap.Hash, got.Hash)
	assert.WithinDuration(t, snap.SavedAt, got.SavedAt, time.Millisecond)

	next := store.NewTemplateSnapshot("//entity_template.json", `{}`)
	require.NoError(t, client.SaveTemplateSnapshot(ctx, "demo", next))
	got, err = client.LoadTemplateSnapshot(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, `{}`, got.Body)

	_, err = client.LoadTemplateSnapshot(ctx, "other")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSceneRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := openTest(t, "sqlite://"+filepath.Join(t.TempDir(), "es.db"))

	objects := []store.ObjectRecord{
		{Name: "Goblin.002", Class: "Enemy", Selected: true, Properties: []byte(`[{"name":"hp"}]`)},
		{Name: "Goblin.001", Class: "Enemy", Properties: []byte(`[]`)},
		{Name: "Camera", Class: "None", Properties: []byte(`[]`)},
	}
	require.NoError(t, client.SaveScene(ctx, "demo", objects))

	got, err := client.LoadScene(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, objects, got)

	require.NoError(t, client.SaveScene(ctx, "demo", objects[:1]))
	got, err = client.LoadScene(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, objects[:1], got)

	got, err = client.LoadScene(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	client := openTest(t, "sqlite://:memory:")
	assert.NoError(t, client.EnsureSchema(context.Background()))
}
