// Package reconcile keeps object property sets consistent with the live
// entity template.
package reconcile

import (
	"entitysync/internal/config"
	"entitysync/internal/entity"
	"entitysync/internal/scene"
)

type Outcome int

const (
	Unchanged Outcome = iota
	Downgraded
	Rebuilt
)

func (o Outcome) String() string {
	switch o {
	case Downgraded:
		return "downgraded"
	case Rebuilt:
		return "rebuilt"
	default:
		return "unchanged"
	}
}

// ObjectResult describes what one reconciliation did to one object.
type ObjectResult struct {
	Object   string
	Class    string
	Outcome  Outcome
	Kept     []string
	Defaults []string
	Dropped  []string
}

type Report struct {
	Objects []ObjectResult
}

func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Objects {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Engine runs reassignment and reconciliation against one template.
type Engine struct {
	template *config.Template
}

func New(template *config.Template) *Engine {
	if template == nil {
		template = config.Empty()
	}
	return &Engine{template: template}
}

// Reassign is an explicit class change: the object is rebuilt at the
// defaults of class with no value carried over. Choosing "None" leaves the
// object empty.
func (e *Engine) Reassign(obj *scene.Object, class string) error {
	def, err := e.template.Class(class)
	if err != nil {
		return err
	}
	obj.Entity.Clear()
	obj.Entity.Class = def.Name
	if def.Name == config.NoneClass {
		return nil
	}
	obj.Entity.Reset(def)
	return nil
}

// Reconcile runs ReconcileObject over every object in the scene.
func (e *Engine) Reconcile(s scene.Lister) Report {
	var report Report
	for _, obj := range s.Objects() {
		report.Objects = append(report.Objects, e.ReconcileObject(obj))
	}
	return report
}

// ReconcileObject migrates obj to the template's current definition of its
// class. Values survive only where both the name and the declared type are
// unchanged. Objects whose class disappeared are downgraded to "None".
func (e *Engine) ReconcileObject(obj *scene.Object) ObjectResult {
	res := ObjectResult{Object: obj.Name, Class: obj.Entity.Class}
	if obj.Entity.IsNone() {
		obj.Entity.Class = config.NoneClass
		return res
	}

	def, err := e.template.Class(obj.Entity.Class)
	if err != nil {
		for _, prop := range obj.Entity.Properties {
			res.Dropped = append(res.Dropped, prop.Name)
		}
		obj.Entity.Clear()
		obj.Entity.Class = config.NoneClass
		res.Outcome = Downgraded
		return res
	}

	previous := obj.Entity.Properties
	old := make(map[string]*entity.Property, len(previous))
	for _, prop := range previous {
		old[prop.Name] = prop
	}

	obj.Entity.Reset(def)
	res.Outcome = Rebuilt
	for _, prop := range obj.Entity.Properties {
		prev, ok := old[prop.Name]
		if !ok || prev.Type != prop.Type {
			res.Defaults = append(res.Defaults, prop.Name)
			continue
		}
		// Enum options may have shrunk. Assign rejects a stale option before
		// writing, so the default stays in place.
		if err := prop.Value.Assign(prev.Value); err != nil {
			res.Defaults = append(res.Defaults, prop.Name)
			continue
		}
		res.Kept = append(res.Kept, prop.Name)
	}
	for _, prop := range previous {
		if _, ok := obj.Entity.Property(prop.Name); !ok {
			res.Dropped = append(res.Dropped, prop.Name)
		}
	}
	return res
}
