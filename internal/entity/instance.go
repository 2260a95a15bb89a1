// Package entity holds the per-object typed property values derived from an
// entity template class.
package entity

import (
	"entitysync/internal/config"
	"entitysync/internal/value"
)

// Property is one object's value for one template variable. Name, Type and
// Description are copied from the definition so they stay stable when the
// template changes underneath the object.
type Property struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Value       value.Value `json:"value"`
}

func NewProperty(def *config.PropertyDefinition) *Property {
	return &Property{
		Name:        def.Name,
		Type:        def.Type,
		Description: def.Description,
		Value:       def.Default,
	}
}

// Instance is the ordered property set of one scene object, tagged with the
// class it was built from.
type Instance struct {
	Class      string      `json:"class"`
	Properties []*Property `json:"properties"`
}

func NewInstance() Instance {
	return Instance{Class: config.NoneClass}
}

// Clear drops every property. The class tag is left alone.
func (i *Instance) Clear() {
	i.Properties = nil
}

// Reset rebuilds the instance from class at schema defaults, in declaration
// order.
func (i *Instance) Reset(class *config.ClassDefinition) {
	i.Clear()
	i.Class = class.Name
	for _, def := range class.Variables {
		i.Add(def)
	}
}

func (i *Instance) Add(def *config.PropertyDefinition) *Property {
	prop := NewProperty(def)
	i.Properties = append(i.Properties, prop)
	return prop
}

func (i *Instance) Property(name string) (*Property, bool) {
	for _, prop := range i.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return nil, false
}

func (i *Instance) IsNone() bool {
	return i.Class == "" || i.Class == config.NoneClass
}

// PropertyState is the plain view of a property returned by Values.
type PropertyState struct {
	Type        string
	Value       any
	Description string
	Items       [][3]string
}

// Values returns the properties as a name keyed dictionary.
func (i *Instance) Values() map[string]PropertyState {
	out := make(map[string]PropertyState, len(i.Properties))
	for _, prop := range i.Properties {
		out[prop.Name] = PropertyState{
			Type:        prop.Type,
			Value:       prop.Value.Get(),
			Description: prop.Description,
			Items:       prop.Value.EnumItems(),
		}
	}
	return out
}

// Clone returns a deep copy.
func (i *Instance) Clone() Instance {
	out := Instance{Class: i.Class}
	for _, prop := range i.Properties {
		cp := *prop
		out.Properties = append(out.Properties, &cp)
	}
	return out
}
