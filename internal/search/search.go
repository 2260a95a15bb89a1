// Package search selects scene objects by class and property value.
package search

import (
	"errors"
	"fmt"

	"entitysync/internal/config"
	"entitysync/internal/scene"
	"entitysync/internal/value"
)

var (
	ErrEmptySearchVariable = errors.New("search variable is empty")
	ErrUnsupportedOrdering = errors.New("ordering comparison needs numeric operands")
	ErrUnknownVariable     = errors.New("unknown class variable")
	ErrUnknownMode         = errors.New("unknown search mode")
)

type Mode string

const (
	ByClass    Mode = "class"
	ByVariable Mode = "variable"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ByClass, ByVariable:
		return Mode(s), nil
	case "":
		return ByClass, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

type Operator string

const (
	Less         Operator = "<"
	LessEqual    Operator = "<="
	Equal        Operator = "=="
	Greater      Operator = ">"
	GreaterEqual Operator = ">="
)

// Ordering reports whether op is one of the ordering operators. Anything
// that is not an ordering operator compares for equality.
func (op Operator) Ordering() bool {
	switch op {
	case Less, LessEqual, Greater, GreaterEqual:
		return true
	default:
		return false
	}
}

type Query struct {
	Class    string
	Mode     Mode
	Variable string
	Operator Operator
	Value    value.Value
}

// byValue reports whether the query filters on a property. Variable mode on
// the "None" class has no variables to look at and behaves like class mode.
func (q Query) byValue() bool {
	return q.Mode == ByVariable && q.Class != config.NoneClass
}

func (q Query) validate() error {
	if !q.byValue() {
		return nil
	}
	if q.Variable == "" {
		return ErrEmptySearchVariable
	}
	if q.Operator.Ordering() && !q.Value.IsNumeric() {
		return fmt.Errorf("%w: %s %s", ErrUnsupportedOrdering, q.Operator, q.Value.Tag())
	}
	return nil
}

// NewQuery builds a query whose comparison value takes the type of the
// variable's definition in tmpl. text is parsed into that type.
func NewQuery(tmpl *config.Template, class string, mode Mode, variable string, op Operator, text string) (Query, error) {
	q := Query{Class: class, Mode: mode, Variable: variable, Operator: op}
	def, err := tmpl.Class(class)
	if err != nil {
		return Query{}, err
	}
	if !q.byValue() {
		return q, nil
	}
	if variable == "" {
		return Query{}, ErrEmptySearchVariable
	}
	prop, ok := def.Variable(variable)
	if !ok {
		return Query{}, fmt.Errorf("%w: %s.%s", ErrUnknownVariable, class, variable)
	}
	q.Value = prop.Default
	if err := q.Value.Parse(text); err != nil {
		return Query{}, fmt.Errorf("parsing search value for %s.%s: %w", class, variable, err)
	}
	return q, q.validate()
}

// Compare applies op to a and b. Equality is exact for strings and enums and
// within value.Tolerance for everything else. Ordering operators only accept
// numeric scalars.
func Compare(a, b value.Value, op Operator) (bool, error) {
	if !op.Ordering() {
		return value.Close(a, b), nil
	}
	x, aok := a.Float()
	y, bok := b.Float()
	if !a.IsNumeric() || !b.IsNumeric() || !aok || !bok {
		return false, fmt.Errorf("%w: %s %s %s", ErrUnsupportedOrdering, a.Tag(), op, b.Tag())
	}
	switch op {
	case Less:
		return x < y, nil
	case LessEqual:
		return x <= y, nil
	case Greater:
		return x > y, nil
	default:
		return x >= y, nil
	}
}

// Match reports whether obj satisfies q.
func Match(obj *scene.Object, q Query) (bool, error) {
	if obj.Entity.Class != q.Class {
		return false, nil
	}
	if !q.byValue() {
		return true, nil
	}
	prop, ok := obj.Entity.Property(q.Variable)
	if !ok {
		return false, nil
	}
	return Compare(prop.Value, q.Value, q.Operator)
}

// Run selects the objects matching q and deselects all others. Every object
// is evaluated before any selection flag changes, so a failed query leaves
// the previous selection in place.
func Run(s scene.Lister, q Query) ([]*scene.Object, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	objects := s.Objects()
	hits := make([]bool, len(objects))
	for i, obj := range objects {
		ok, err := Match(obj, q)
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", obj.Name, err)
		}
		hits[i] = ok
	}

	var matched []*scene.Object
	for i, obj := range objects {
		obj.Selected = hits[i]
		if hits[i] {
			matched = append(matched, obj)
		}
	}
	return matched, nil
}
