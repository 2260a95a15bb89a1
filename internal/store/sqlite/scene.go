package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entitysync/internal/store"
)

func (c *Client) SaveTemplateSnapshot(ctx context.Context, project string, snap store.TemplateSnapshot) error {
	query := `
	INSERT INTO template_snapshots (project, source, body, hash, saved_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (project) DO UPDATE SET
		source = excluded.source,
		body = excluded.body,
		hash = excluded.hash,
		saved_at = excluded.saved_at
	`
	_, err := c.db.ExecContext(ctx, query,
		project,
		snap.Source,
		snap.Body,
		snap.Hash,
		snap.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving template snapshot: %w", err)
	}
	return nil
}

func (c *Client) LoadTemplateSnapshot(ctx context.Context, project string) (*store.TemplateSnapshot, error) {
	var snap store.TemplateSnapshot
	var savedAt string
	err := c.db.QueryRowContext(ctx,
		"SELECT source, body, hash, saved_at FROM template_snapshots WHERE project = ?",
		project,
	).Scan(&snap.Source, &snap.Body, &snap.Hash, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading template snapshot: %w", err)
	}
	snap.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot time %q: %w", savedAt, err)
	}
	return &snap, nil
}

// SaveScene replaces every stored object of project with objects.
func (c *Client) SaveScene(ctx context.Context, project string, objects []store.ObjectRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scene_objects WHERE project = ?", project); err != nil {
		return fmt.Errorf("clearing scene: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO scene_objects (project, position, name, class, selected, properties)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing scene insert: %w", err)
	}
	defer stmt.Close()

	for i, obj := range objects {
		selected := 0
		if obj.Selected {
			selected = 1
		}
		if _, err := stmt.ExecContext(ctx, project, i, obj.Name, obj.Class, selected, string(obj.Properties)); err != nil {
			return fmt.Errorf("saving object %s: %w", obj.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing scene: %w", err)
	}
	return nil
}

func (c *Client) LoadScene(ctx context.Context, project string) ([]store.ObjectRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT name, class, selected, properties
	FROM scene_objects
	WHERE project = ?
	ORDER BY position
	`, project)
	if err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}
	defer rows.Close()

	var objects []store.ObjectRecord
	for rows.Next() {
		var obj store.ObjectRecord
		var selected int
		var props string
		if err := rows.Scan(&obj.Name, &obj.Class, &selected, &props); err != nil {
			return nil, fmt.Errorf("scanning scene object: %w", err)
		}
		obj.Selected = selected != 0
		obj.Properties = []byte(props)
		objects = append(objects, obj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene objects: %w", err)
	}

	return objects, nil
}
