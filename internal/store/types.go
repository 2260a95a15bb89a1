package store

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TemplateSnapshot is the last template a project loaded, kept so a session
// can restore it without reading the source file again.
type TemplateSnapshot struct {
	Source  string
	Body    string
	Hash    string
	SavedAt time.Time
}

func NewTemplateSnapshot(source, body string) TemplateSnapshot {
	return TemplateSnapshot{
		Source:  source,
		Body:    body,
		Hash:    Hash(body),
		SavedAt: time.Now().UTC(),
	}
}

// ObjectRecord is one scene object as persisted. Properties holds the JSON
// encoding of the object's property list.
type ObjectRecord struct {
	Name       string
	Class      string
	Selected   bool
	Properties []byte
}

func Hash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
