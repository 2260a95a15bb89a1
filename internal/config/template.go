package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"entitysync/internal/value"
)

// NoneClass is the sentinel class of objects without an entity type. It is
// always the first class of a template and has no variables.
const NoneClass = "None"

var (
	ErrTemplateLoad = errors.New("loading entity template")
	ErrUnknownClass = errors.New("unknown entity class")
)

type Template struct {
	classes []*ClassDefinition
	index   map[string]*ClassDefinition
}

type ClassDefinition struct {
	Name      string
	UID       string
	Variables []*PropertyDefinition

	varIndex map[string]*PropertyDefinition
}

type PropertyDefinition struct {
	Name        string
	Type        string
	Default     value.Value
	Description string
	Options     []string
}

type classSource struct {
	UID       string        `json:"uid"`
	Variables orderedObject `json:"variables"`
}

type variableSource struct {
	Type        string          `json:"type"`
	Default     json.RawMessage `json:"default"`
	Description string          `json:"description"`
	Options     []string        `json:"options"`
}

// LoadTemplate reads and parses the entity template JSON at path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
	}
	return ParseTemplate(data)
}

// ParseTemplate builds a template from entity template JSON. Class and
// variable order follow the document; NoneClass is prepended.
func ParseTemplate(data []byte) (*Template, error) {
	var doc orderedObject
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
	}

	t := newTemplate()
	for _, m := range doc {
		class, err := parseClass(m.Key, m.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
		}
		if err := t.add(class); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
		}
	}
	return t, nil
}

// RestoreTemplate rebuilds a template from a Snapshot without touching the
// original source file.
func RestoreTemplate(snapshot string) (*Template, error) {
	if strings.TrimSpace(snapshot) == "" {
		return newTemplate(), nil
	}
	return ParseTemplate([]byte(snapshot))
}

// Empty returns a template holding only NoneClass.
func Empty() *Template {
	return newTemplate()
}

func newTemplate() *Template {
	none := &ClassDefinition{Name: NoneClass, varIndex: map[string]*PropertyDefinition{}}
	return &Template{
		classes: []*ClassDefinition{none},
		index:   map[string]*ClassDefinition{NoneClass: none},
	}
}

func parseClass(name string, raw json.RawMessage) (*ClassDefinition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("class name is required")
	}
	if name == NoneClass {
		return nil, fmt.Errorf("class name %q is reserved", NoneClass)
	}

	var src classSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("class %s: %w", name, err)
	}

	class := &ClassDefinition{
		Name:     name,
		UID:      src.UID,
		varIndex: make(map[string]*PropertyDefinition, len(src.Variables)),
	}
	for _, m := range src.Variables {
		def, err := parseVariable(m.Key, m.Value)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", name, err)
		}
		if _, exists := class.varIndex[def.Name]; exists {
			return nil, fmt.Errorf("class %s has duplicate variable: %s", name, def.Name)
		}
		class.Variables = append(class.Variables, def)
		class.varIndex[def.Name] = def
	}
	return class, nil
}

func parseVariable(name string, raw json.RawMessage) (*PropertyDefinition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("variable with empty name")
	}

	var src variableSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	if strings.TrimSpace(src.Type) == "" {
		return nil, fmt.Errorf("variable %s type is required", name)
	}
	if len(src.Default) == 0 || bytes.Equal(bytes.TrimSpace(src.Default), []byte("null")) {
		return nil, fmt.Errorf("variable %s default is required", name)
	}
	if src.Type == "enum" && len(src.Options) == 0 {
		return nil, fmt.Errorf("variable %s enum has no options", name)
	}

	def := &PropertyDefinition{
		Name:        name,
		Type:        src.Type,
		Description: src.Description,
	}
	if src.Type == "enum" {
		def.Options = slices.Clone(src.Options)
	}

	rawDefault, err := decodeAny(src.Default)
	if err != nil {
		return nil, fmt.Errorf("variable %s default: %w", name, err)
	}
	def.Default, err = value.New(src.Type, rawDefault, def.Options)
	if err != nil {
		return nil, fmt.Errorf("variable %s default: %w", name, err)
	}
	return def, nil
}

func (t *Template) add(class *ClassDefinition) error {
	if _, exists := t.index[class.Name]; exists {
		return fmt.Errorf("duplicate class name: %s", class.Name)
	}
	t.classes = append(t.classes, class)
	t.index[class.Name] = class
	return nil
}

// Keys returns the class names in template order, NoneClass first.
func (t *Template) Keys() []string {
	keys := make([]string, 0, len(t.classes))
	for _, class := range t.classes {
		keys = append(keys, class.Name)
	}
	return keys
}

// Classes returns the class definitions in template order.
func (t *Template) Classes() []*ClassDefinition {
	return slices.Clone(t.classes)
}

func (t *Template) Contains(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Class looks up a class by exact name. Callers holding user input should
// check Contains first; a miss is a programming error.
func (t *Template) Class(name string) (*ClassDefinition, error) {
	if t != nil {
		if class, ok := t.index[name]; ok {
			return class, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
}

// Variable returns the definition of a class variable.
func (c *ClassDefinition) Variable(name string) (*PropertyDefinition, bool) {
	def, ok := c.varIndex[name]
	return def, ok
}

// VariableNames returns the variable names in declaration order.
func (c *ClassDefinition) VariableNames() []string {
	names := make([]string, 0, len(c.Variables))
	for _, def := range c.Variables {
		names = append(names, def.Name)
	}
	return names
}

// Snapshot serializes the template back to entity template JSON, preserving
// order. NoneClass is omitted because parsing adds it again.
func (t *Template) Snapshot() (string, error) {
	classes := t.classes[1:]
	var buf bytes.Buffer
	err := writeOrdered(&buf, len(classes),
		func(i int) string { return classes[i].Name },
		func(buf *bytes.Buffer, i int) error { return writeClass(buf, classes[i]) },
	)
	if err != nil {
		return "", fmt.Errorf("snapshotting template: %w", err)
	}
	return buf.String(), nil
}

func writeClass(buf *bytes.Buffer, class *ClassDefinition) error {
	uid, err := json.Marshal(class.UID)
	if err != nil {
		return err
	}
	buf.WriteString(`{"uid":`)
	buf.Write(uid)
	buf.WriteString(`,"variables":`)
	err = writeOrdered(buf, len(class.Variables),
		func(i int) string { return class.Variables[i].Name },
		func(buf *bytes.Buffer, i int) error {
			def := class.Variables[i]
			data, err := json.Marshal(variableSnapshot{
				Type:        def.Type,
				Default:     def.Default.Raw(),
				Description: def.Description,
				Options:     def.Options,
			})
			if err != nil {
				return err
			}
			buf.Write(data)
			return nil
		},
	)
	if err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

type variableSnapshot struct {
	Type        string   `json:"type"`
	Default     any      `json:"default"`
	Description string   `json:"description,omitempty"`
	Options     []string `json:"options,omitempty"`
}
