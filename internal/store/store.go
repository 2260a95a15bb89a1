package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by loaders when nothing was saved for a project.
var ErrNotFound = errors.New("not found")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveTemplateSnapshot(ctx context.Context, project string, snap TemplateSnapshot) error
	LoadTemplateSnapshot(ctx context.Context, project string) (*TemplateSnapshot, error)

	SaveScene(ctx context.Context, project string, objects []ObjectRecord) error
	LoadScene(ctx context.Context, project string) ([]ObjectRecord, error)
}
