package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction.
	ddl := `
CREATE TABLE IF NOT EXISTS template_snapshots (
    project  TEXT PRIMARY KEY,
    source   TEXT NOT NULL DEFAULT '',
    body     TEXT NOT NULL,
    hash     TEXT NOT NULL,
    saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scene_objects (
    project    TEXT NOT NULL,
    position   INTEGER NOT NULL,
    name       TEXT NOT NULL,
    class      TEXT NOT NULL,
    selected   BOOLEAN NOT NULL DEFAULT FALSE,
    properties JSONB NOT NULL DEFAULT '[]',
    CONSTRAINT uq_scene_object UNIQUE (project, name)
);

CREATE INDEX IF NOT EXISTS idx_scene_objects_position ON scene_objects (project, position);
CREATE INDEX IF NOT EXISTS idx_scene_objects_class ON scene_objects (project, class);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
