package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitysync/internal/store"
)

func createTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")
	t.Cleanup(mr.Close)

	client, err := New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client, mr
}

func TestTemplateSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mr := createTestClient(t)
	require.NoError(t, client.EnsureSchema(ctx))

	_, err := client.LoadTemplateSnapshot(ctx, "demo")
	assert.ErrorIs(t, err, store.ErrNotFound)

	snap := store.NewTemplateSnapshot("//entity_template.json", `{"Door":{"uid":"d1","variables":{}}}`)
	require.NoError(t, client.SaveTemplateSnapshot(ctx, "demo", snap))

	assert.Equal(t, snap.Hash, mr.HGet("entitysync:demo:template", "hash"))

	got, err := client.LoadTemplateSnapshot(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, snap.Source, got.Source)
	assert.Equal(t, snap.Body, got.Body)
	assert.WithinDuration(t, snap.SavedAt, got.SavedAt, time.Millisecond)
}

func TestSceneRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mr := createTestClient(t)

	objects := []store.ObjectRecord{
		{Name: "Goblin.001", Class: "Enemy", Selected: true, Properties: []byte(`[{"name":"hp"}]`)},
		{Name: "Camera", Class: "None", Properties: []byte(`[]`)},
	}
	require.NoError(t, client.SaveScene(ctx, "demo", objects))

	list, err := mr.List("entitysync:demo:scene")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := client.LoadScene(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, objects, got)

	require.NoError(t, client.SaveScene(ctx, "demo", nil))
	got, err = client.LoadScene(ctx, "demo")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, mr.Exists("entitysync:demo:scene"))
}

func TestNewFromClient(t *testing.T) {
	_, err := NewFromClient(nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client, err := NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	assert.NoError(t, client.EnsureSchema(context.Background()))
}

func TestNewBadDSN(t *testing.T) {
	_, err := New(context.Background(), "sqlite://nope")
	assert.Error(t, err)
}
