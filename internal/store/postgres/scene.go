package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"entitysync/internal/store"
)

func (c *Client) SaveTemplateSnapshot(ctx context.Context, project string, snap store.TemplateSnapshot) error {
	query := `
INSERT INTO template_snapshots (project, source, body, hash, saved_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (project) DO UPDATE SET
    source = EXCLUDED.source,
    body = EXCLUDED.body,
    hash = EXCLUDED.hash,
    saved_at = EXCLUDED.saved_at
`
	_, err := c.pool.Exec(ctx, query, project, snap.Source, snap.Body, snap.Hash, snap.SavedAt)
	if err != nil {
		return fmt.Errorf("saving template snapshot: %w", err)
	}
	return nil
}

func (c *Client) LoadTemplateSnapshot(ctx context.Context, project string) (*store.TemplateSnapshot, error) {
	var snap store.TemplateSnapshot
	err := c.pool.QueryRow(ctx,
		"SELECT source, body, hash, saved_at FROM template_snapshots WHERE project = $1",
		project,
	).Scan(&snap.Source, &snap.Body, &snap.Hash, &snap.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading template snapshot: %w", err)
	}
	return &snap, nil
}

// SaveScene replaces every stored object of project with objects.
func (c *Client) SaveScene(ctx context.Context, project string, objects []store.ObjectRecord) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM scene_objects WHERE project = $1", project); err != nil {
		return fmt.Errorf("clearing scene: %w", err)
	}

	batch := &pgx.Batch{}
	for i, obj := range objects {
		batch.Queue(`
INSERT INTO scene_objects (project, position, name, class, selected, properties)
VALUES ($1, $2, $3, $4, $5, $6::jsonb)
`, project, i, obj.Name, obj.Class, obj.Selected, string(obj.Properties))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving scene objects: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing scene: %w", err)
	}
	return nil
}

func (c *Client) LoadScene(ctx context.Context, project string) ([]store.ObjectRecord, error) {
	rows, err := c.pool.Query(ctx, `
SELECT name, class, selected, properties::text
FROM scene_objects
WHERE project = $1
ORDER BY position
`, project)
	if err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}
	defer rows.Close()

	var objects []store.ObjectRecord
	for rows.Next() {
		var obj store.ObjectRecord
		var props string
		if err := rows.Scan(&obj.Name, &obj.Class, &obj.Selected, &props); err != nil {
			return nil, fmt.Errorf("scanning scene object: %w", err)
		}
		obj.Properties = []byte(props)
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene objects: %w", err)
	}
	return objects, nil
}
