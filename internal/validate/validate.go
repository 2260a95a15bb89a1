package validate

import (
	"fmt"
	"slices"

	"entitysync/internal/config"
	"entitysync/internal/scene"
	"entitysync/internal/value"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeUnknownClass    = "unknown_class"
	codeMissingProperty = "missing_property"
	codeStaleProperty   = "stale_property"
	codeTypeDrift       = "type_drift"
	codeEnumInvalid     = "enum_value_invalid"
	codeOrderDrift      = "property_order_drift"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Object   string
	Property string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Run compares every classed object with the template's definition of its
// class. A scene that has just been reconciled produces no issues.
func Run(tmpl *config.Template, s scene.Lister) *Report {
	issues := make([]Issue, 0)
	for _, obj := range s.Objects() {
		if obj.Entity.IsNone() {
			continue
		}
		class, err := tmpl.Class(obj.Entity.Class)
		if err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownClass,
				Message:  fmt.Sprintf("class %s is not in the template", obj.Entity.Class),
				Object:   obj.Name,
			})
			continue
		}
		issues = append(issues, validateProperties(obj, class)...)
	}
	return &Report{Issues: issues}
}

func validateProperties(obj *scene.Object, class *config.ClassDefinition) []Issue {
	var issues []Issue
	for _, def := range class.Variables {
		prop, ok := obj.Entity.Property(def.Name)
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingProperty,
				Message:  fmt.Sprintf("missing property: %s", def.Name),
				Object:   obj.Name,
				Property: def.Name,
			})
			continue
		}
		if prop.Type != def.Type || prop.Value.Tag() != def.Default.Tag() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeTypeDrift,
				Message:  fmt.Sprintf("property %s is %s, template declares %s", def.Name, prop.Type, def.Type),
				Object:   obj.Name,
				Property: def.Name,
			})
			continue
		}
		if def.Default.Tag() == value.Enum {
			if selected, _ := prop.Value.Get().(string); !slices.Contains(def.Options, selected) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeEnumInvalid,
					Message:  fmt.Sprintf("invalid enum value for %s: %s", def.Name, selected),
					Object:   obj.Name,
					Property: def.Name,
				})
			}
		}
	}

	for _, prop := range obj.Entity.Properties {
		if _, ok := class.Variable(prop.Name); !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeStaleProperty,
				Message:  fmt.Sprintf("property %s is not declared by %s", prop.Name, class.Name),
				Object:   obj.Name,
				Property: prop.Name,
			})
		}
	}

	if len(issues) == 0 && !slices.Equal(propertyNames(obj), class.VariableNames()) {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeOrderDrift,
			Message:  fmt.Sprintf("properties are not in %s declaration order", class.Name),
			Object:   obj.Name,
		})
	}
	return issues
}

func propertyNames(obj *scene.Object) []string {
	names := make([]string, 0, len(obj.Entity.Properties))
	for _, prop := range obj.Entity.Properties {
		names = append(names, prop.Name)
	}
	return names
}
