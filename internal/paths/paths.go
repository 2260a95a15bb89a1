// Package paths resolves the path prefixes used in project config and CLI
// arguments.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	ProjectPrefix = "//"
	EnginePrefix  = "res://"
	EngineMarker  = "project.godot"
)

var ErrEngineProjectNotFound = errors.New("engine project not found")

type Resolver struct {
	ProjectRoot string
}

func NewResolver(projectRoot string) *Resolver {
	return &Resolver{ProjectRoot: projectRoot}
}

// Resolve expands p into a clean filesystem path:
//
//	//rest     project root
//	res://rest nearest ancestor of the project root holding project.godot
//	~/rest     home directory
//
// Relative paths are taken relative to the project root.
func (r *Resolver) Resolve(p string) (string, error) {
	switch {
	case strings.HasPrefix(p, EnginePrefix):
		root, err := r.EngineRoot()
		if err != nil {
			return "", err
		}
		return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(p, EnginePrefix))), nil
	case strings.HasPrefix(p, ProjectPrefix):
		return filepath.Join(r.ProjectRoot, filepath.FromSlash(strings.TrimPrefix(p, ProjectPrefix))), nil
	case strings.HasPrefix(p, "~"):
		expanded, err := homedir.Expand(p)
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", p, err)
		}
		return filepath.Clean(expanded), nil
	case filepath.IsAbs(p):
		return filepath.Clean(p), nil
	default:
		return filepath.Join(r.ProjectRoot, p), nil
	}
}

// EngineRoot walks up from the project root to the first directory that
// contains the engine project file.
func (r *Resolver) EngineRoot() (string, error) {
	dir, err := filepath.Abs(r.ProjectRoot)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, EngineMarker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s above %s", ErrEngineProjectNotFound, EngineMarker, r.ProjectRoot)
		}
		dir = parent
	}
}

// Relative renders target as a "//" path when it lies inside the project
// root and returns it unchanged otherwise.
func (r *Resolver) Relative(target string) string {
	rel, err := filepath.Rel(r.ProjectRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target
	}
	return ProjectPrefix + filepath.ToSlash(rel)
}
