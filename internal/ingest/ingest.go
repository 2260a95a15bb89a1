package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"entitysync/internal/parser"
)

// Workspace is the part of the workspace service manifests are applied
// through.
type Workspace interface {
	HasObject(name string) bool
	AddObject(ctx context.Context, name string) error
	SetClass(ctx context.Context, name, class string) error
	SetProperty(ctx context.Context, name, variable string, raw any) error
}

type Result struct {
	FilesParsed    int
	FilesSkipped   int
	ObjectsAdded   int
	ObjectsUpdated int
	ValuesSet      int
	Errors         []error
}

type Options struct {
	Paths   []string
	Exclude []string
}

var manifestExtensions = []string{".yaml", ".yml", ".json"}

// Run walks the manifest files under opts.Paths and applies them in path
// order. Problems with a single file or object are collected in the result
// and do not stop the run.
func Run(ctx context.Context, ws Workspace, opts Options) (*Result, error) {
	files, err := walkManifestFiles(opts.Paths, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking manifest files: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		m, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrNoObjects) {
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		result.FilesParsed++
		Apply(ctx, ws, m, result)
	}
	return result, nil
}

// Apply creates or updates every object in m, then sets its class and
// values. Errors are appended to result.
func Apply(ctx context.Context, ws Workspace, m *parser.Manifest, result *Result) {
	for _, item := range m.Objects {
		if ws.HasObject(item.Name) {
			result.ObjectsUpdated++
		} else {
			if err := ws.AddObject(ctx, item.Name); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("%s: adding %s: %w", m.SourceFile, item.Name, err))
				continue
			}
			result.ObjectsAdded++
		}

		if item.Class != "" {
			if err := ws.SetClass(ctx, item.Name, item.Class); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("%s: class of %s: %w", m.SourceFile, item.Name, err))
				continue
			}
		}

		for _, a := range item.Values {
			if err := ws.SetProperty(ctx, item.Name, a.Variable, a.Value); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("%s: %w", m.SourceFile, err))
				continue
			}
			result.ValuesSet++
		}
	}
}

func walkManifestFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !slices.Contains(manifestExtensions, strings.ToLower(filepath.Ext(d.Name()))) {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
