// Package scene is the minimal object graph the synchronizer works on: named
// objects, each carrying an entity instance and a selection flag.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"entitysync/internal/entity"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
)

type Object struct {
	Name     string          `json:"name"`
	Entity   entity.Instance `json:"entity"`
	Selected bool            `json:"selected"`
}

// Lister is what reconciliation, search and export need from a scene.
type Lister interface {
	Objects() []*Object
}

// Scene keeps objects in insertion order with unique names.
type Scene struct {
	objects []*Object
}

var _ Lister = (*Scene)(nil)

func New() *Scene {
	return &Scene{}
}

func (s *Scene) Objects() []*Object {
	return slices.Clone(s.objects)
}

func (s *Scene) Len() int {
	return len(s.objects)
}

// Add creates an object with no entity class.
func (s *Scene) Add(name string) (*Object, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("object name is required")
	}
	if _, ok := s.Get(name); ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectExists, name)
	}
	obj := &Object{Name: name, Entity: entity.NewInstance()}
	s.objects = append(s.objects, obj)
	return obj, nil
}

// Put inserts obj, replacing an object of the same name in place.
func (s *Scene) Put(obj *Object) {
	for i, existing := range s.objects {
		if existing.Name == obj.Name {
			s.objects[i] = obj
			return
		}
	}
	s.objects = append(s.objects, obj)
}

func (s *Scene) Get(name string) (*Object, bool) {
	for _, obj := range s.objects {
		if obj.Name == name {
			return obj, true
		}
	}
	return nil, false
}

func (s *Scene) Remove(name string) error {
	for i, obj := range s.objects {
		if obj.Name == name {
			s.objects = slices.Delete(s.objects, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrObjectNotFound, name)
}

func (s *Scene) Rename(oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("object name is required")
	}
	obj, ok := s.Get(oldName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.Get(newName); exists {
		return fmt.Errorf("%w: %s", ErrObjectExists, newName)
	}
	obj.Name = newName
	return nil
}

func (s *Scene) Selected() []*Object {
	var out []*Object
	for _, obj := range s.objects {
		if obj.Selected {
			out = append(out, obj)
		}
	}
	return out
}
