// Package parser reads scene manifests: YAML or JSON files listing objects
// with their class and property values.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is one parsed scene manifest.
type Manifest struct {
	Objects    []ObjectSpec
	SourceFile string
}

// ObjectSpec describes one object. An empty Class leaves the object's class
// alone; Values are applied in the order they appear in the file.
type ObjectSpec struct {
	Name   string
	Class  string
	Values []Assignment
}

type Assignment struct {
	Variable string
	Value    any
}

var (
	ErrNoObjects     = errors.New("manifest has no objects key")
	ErrInvalidYAML   = errors.New("invalid YAML in manifest")
	ErrMissingName   = errors.New("manifest object missing required 'name' field")
	ErrDuplicateName = errors.New("manifest lists an object twice")
)

type rawManifest struct {
	Objects *[]rawObject `yaml:"objects"`
}

type rawObject struct {
	Name   string    `yaml:"name"`
	Class  string    `yaml:"class"`
	Values yaml.Node `yaml:"values"`
}

func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.SourceFile = path
	return m, nil
}

// Parse decodes manifest content. JSON is accepted because it is valid YAML.
func Parse(content []byte) (*Manifest, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")

	var raw rawManifest
	if err := yaml.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if raw.Objects == nil {
		return nil, ErrNoObjects
	}

	m := &Manifest{}
	seen := make(map[string]bool, len(*raw.Objects))
	for i, obj := range *raw.Objects {
		name := strings.TrimSpace(obj.Name)
		if name == "" {
			return nil, fmt.Errorf("object %d: %w", i, ErrMissingName)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		seen[name] = true

		values, err := parseValues(obj.Values)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", name, err)
		}
		m.Objects = append(m.Objects, ObjectSpec{
			Name:   name,
			Class:  strings.TrimSpace(obj.Class),
			Values: values,
		})
	}
	return m, nil
}

// parseValues keeps mapping order, which a plain map decode would lose.
func parseValues(node yaml.Node) ([]Assignment, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("values must be a mapping")
	}

	values := make([]Assignment, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return nil, fmt.Errorf("value %s: %w", key.Value, err)
		}
		values = append(values, Assignment{Variable: key.Value, Value: v})
	}
	return values, nil
}
