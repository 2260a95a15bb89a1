// Package export writes the interchange JSON consumed by the engine's
// import step.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entitysync/internal/config"
	"entitysync/internal/scene"
	"entitysync/internal/value"
)

var ErrExportWrite = errors.New("writing export")

type Variable struct {
	Name  string
	Type  string
	Value any
}

type Entry struct {
	Key       string
	Object    string
	Class     string
	UID       string
	Variables []Variable
}

// Document is the ordered export body, one entry per classed object.
type Document struct {
	Entries []Entry
}

// Key converts an object name into the engine's node naming convention.
func Key(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// Build collects every object with a class other than "None". Objects keep
// scene order. When two names map to the same key, the later object replaces
// the earlier entry at the earlier position, so every key appears once.
func Build(s scene.Lister, tmpl *config.Template) Document {
	var doc Document
	seen := make(map[string]int)
	for _, obj := range s.Objects() {
		if obj.Entity.IsNone() {
			continue
		}
		entry := Entry{Key: Key(obj.Name), Object: obj.Name, Class: obj.Entity.Class}
		if class, err := tmpl.Class(obj.Entity.Class); err == nil {
			entry.UID = class.UID
		}
		for _, prop := range obj.Entity.Properties {
			entry.Variables = append(entry.Variables, Variable{
				Name:  prop.Name,
				Type:  prop.Type,
				Value: exportValue(prop.Value),
			})
		}
		if i, ok := seen[entry.Key]; ok {
			doc.Entries[i] = entry
			continue
		}
		seen[entry.Key] = len(doc.Entries)
		doc.Entries = append(doc.Entries, entry)
	}
	return doc
}

// Scalars are emitted as JSON values. Vectors and enums are emitted as
// their text form.
func exportValue(v value.Value) any {
	switch v.Tag() {
	case value.Int, value.Float, value.Bool, value.String:
		return v.Raw()
	default:
		return v.Format()
	}
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range d.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, entry.Key); err != nil {
			return nil, err
		}
		if err := writeEntry(&buf, entry); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", entry.Object, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, entry Entry) error {
	head, err := json.Marshal(struct {
		Class string `json:"class"`
		UID   string `json:"uid"`
	}{entry.Class, entry.UID})
	if err != nil {
		return err
	}
	buf.Write(head[:len(head)-1])
	buf.WriteString(`,"variables":{`)
	for i, v := range entry.Variables {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, v.Name); err != nil {
			return err
		}
		data, err := json.Marshal(struct {
			Type  string `json:"type"`
			Value any    `json:"value"`
		}{v.Type, v.Value})
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	buf.WriteString("}}")
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(data)
	buf.WriteByte(':')
	return nil
}

// Encode renders doc with indent spaces per level. Zero gives compact output.
func Encode(doc Document, indent int) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if indent <= 0 {
		return data, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", strings.Repeat(" ", indent)); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Write encodes doc and replaces path with it. The document goes to a
// temporary file in the same directory first, so a failed write never leaves
// a partial export behind.
func Write(path string, doc Document, indent int) error {
	data, err := Encode(doc, indent)
	if err != nil {
		return fmt.Errorf("%w: encoding: %w", ErrExportWrite, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportWrite, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrExportWrite, path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrExportWrite, path, err)
	}
	return nil
}
