package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS template_snapshots (
		project  TEXT PRIMARY KEY,
		source   TEXT NOT NULL DEFAULT '',
		body     TEXT NOT NULL,
		hash     TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scene_objects (
		project    TEXT NOT NULL,
		position   INTEGER NOT NULL,
		name       TEXT NOT NULL,
		class      TEXT NOT NULL,
		selected   INTEGER NOT NULL DEFAULT 0,
		properties TEXT NOT NULL DEFAULT '[]',
		CONSTRAINT uq_scene_object UNIQUE (project, name)
	);

	CREATE INDEX IF NOT EXISTS idx_scene_objects_position ON scene_objects (project, position);
	CREATE INDEX IF NOT EXISTS idx_scene_objects_class ON scene_objects (project, class);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := splitStatements(ddl)
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
