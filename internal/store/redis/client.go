// Package redis keeps the template snapshot and scene in a Redis database.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"entitysync/internal/store"
)

const keyPrefix = "entitysync:"

var _ store.Store = (*Client)(nil)

type Client struct {
	rdb goredis.UniversalClient
}

// New connects to the redis:// or rediss:// URL dsn.
func New(ctx context.Context, dsn string) (*Client, error) {
	opts, err := goredis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing redis DSN: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing connection.
func NewFromClient(rdb goredis.UniversalClient) (*Client, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.rdb.Close()
}

// EnsureSchema has nothing to create; it only checks the connection.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

func templateKey(project string) string {
	return keyPrefix + project + ":template"
}

func sceneKey(project string) string {
	return keyPrefix + project + ":scene"
}

func (c *Client) SaveTemplateSnapshot(ctx context.Context, project string, snap store.TemplateSnapshot) error {
	err := c.rdb.HSet(ctx, templateKey(project), map[string]any{
		"source":   snap.Source,
		"body":     snap.Body,
		"hash":     snap.Hash,
		"saved_at": snap.SavedAt.UTC().Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return fmt.Errorf("saving template snapshot: %w", err)
	}
	return nil
}

func (c *Client) LoadTemplateSnapshot(ctx context.Context, project string) (*store.TemplateSnapshot, error) {
	fields, err := c.rdb.HGetAll(ctx, templateKey(project)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading template snapshot: %w", err)
	}
	if len(fields) == 0 {
		return nil, store.ErrNotFound
	}

	snap := &store.TemplateSnapshot{
		Source: fields["source"],
		Body:   fields["body"],
		Hash:   fields["hash"],
	}
	if raw := fields["saved_at"]; raw != "" {
		snap.SavedAt, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parsing snapshot time %q: %w", raw, err)
		}
	}
	return snap, nil
}

type objectRecord struct {
	Name       string          `json:"name"`
	Class      string          `json:"class"`
	Selected   bool            `json:"selected"`
	Properties json.RawMessage `json:"properties"`
}

// SaveScene replaces the stored scene list in one MULTI/EXEC.
func (c *Client) SaveScene(ctx context.Context, project string, objects []store.ObjectRecord) error {
	values := make([]any, 0, len(objects))
	for _, obj := range objects {
		props := obj.Properties
		if len(props) == 0 {
			props = []byte("[]")
		}
		data, err := json.Marshal(objectRecord{
			Name:       obj.Name,
			Class:      obj.Class,
			Selected:   obj.Selected,
			Properties: props,
		})
		if err != nil {
			return fmt.Errorf("marshaling object %s: %w", obj.Name, err)
		}
		values = append(values, data)
	}

	key := sceneKey(project)
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving scene: %w", err)
	}
	return nil
}

func (c *Client) LoadScene(ctx context.Context, project string) ([]store.ObjectRecord, error) {
	items, err := c.rdb.LRange(ctx, sceneKey(project), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}

	var objects []store.ObjectRecord
	for _, item := range items {
		var rec objectRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling scene object: %w", err)
		}
		objects = append(objects, store.ObjectRecord{
			Name:       rec.Name,
			Class:      rec.Class,
			Selected:   rec.Selected,
			Properties: []byte(rec.Properties),
		})
	}
	return objects, nil
}
