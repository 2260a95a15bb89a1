// Package value holds the tagged property value shared by template defaults,
// object properties and search operands.
package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

type Tag int

const (
	Int Tag = iota
	Float
	String
	Bool
	IntVector3
	FloatVector3
	Enum
)

var tagNames = [...]string{
	Int:          "int",
	Float:        "float",
	String:       "string",
	Bool:         "bool",
	IntVector3:   "int_vector",
	FloatVector3: "float_vector",
	Enum:         "enum",
}

func (t Tag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return fmt.Sprintf("tag(%d)", int(t))
	}
	return tagNames[t]
}

func parseTag(s string) (Tag, bool) {
	for i, name := range tagNames {
		if name == s {
			return Tag(i), true
		}
	}
	return 0, false
}

// TagForType maps a template type name onto a tag. Unknown type names fall
// back to String so templates written for newer engine versions still load.
func TagForType(typeName string) Tag {
	switch typeName {
	case "bool":
		return Bool
	case "int":
		return Int
	case "float":
		return Float
	case "Vector3":
		return FloatVector3
	case "Vector3i":
		return IntVector3
	case "enum":
		return Enum
	default:
		return String
	}
}

var (
	ErrTypeMismatch  = errors.New("value does not match property type")
	ErrInvalidOption = errors.New("value is not one of the enum options")
)

type Value struct {
	tag     Tag
	i       int64
	f       float64
	s       string
	b       bool
	iv      [3]int64
	fv      [3]float64
	enum    string
	options []string
}

// New builds a value for the template type typeName and assigns raw to it.
// options is only kept for enum values.
func New(typeName string, raw any, options []string) (Value, error) {
	v := Zero(TagForType(typeName), options)
	if v.tag == String {
		if _, ok := raw.(string); !ok && raw != nil {
			raw = stringify(raw)
		}
	}
	if raw == nil {
		return v, nil
	}
	if err := v.Set(raw); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Zero returns the empty value for tag. Enum values start on their first
// option.
func Zero(tag Tag, options []string) Value {
	v := Value{tag: tag}
	if tag == Enum {
		v.options = slices.Clone(options)
		if len(v.options) > 0 {
			v.enum = v.options[0]
		}
	}
	return v
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) Options() []string { return slices.Clone(v.options) }

// Get returns the payload selected by the tag.
func (v Value) Get() any {
	switch v.tag {
	case Int:
		return v.i
	case Float:
		return v.f
	case Bool:
		return v.b
	case IntVector3:
		return v.iv
	case FloatVector3:
		return v.fv
	case Enum:
		return v.enum
	default:
		return v.s
	}
}

// Set writes x into the payload selected by the tag. The tag never changes.
func (v *Value) Set(x any) error {
	switch v.tag {
	case Int:
		n, ok := toInt(x)
		if !ok {
			return mismatch(v.tag, x)
		}
		v.i = n
	case Float:
		f, ok := toFloat(x)
		if !ok {
			return mismatch(v.tag, x)
		}
		v.f = f
	case Bool:
		b, ok := x.(bool)
		if !ok {
			return mismatch(v.tag, x)
		}
		v.b = b
	case IntVector3:
		vec, ok := toIntVector(x)
		if !ok {
			return mismatch(v.tag, x)
		}
		v.iv = vec
	case FloatVector3:
		vec, ok := toFloatVector(x)
		if !ok {
			return mismatch(v.tag, x)
		}
		v.fv = vec
	case Enum:
		s, ok := x.(string)
		if !ok {
			return mismatch(v.tag, x)
		}
		if len(v.options) > 0 && !slices.Contains(v.options, s) {
			return fmt.Errorf("%w: %q not in %v", ErrInvalidOption, s, v.options)
		}
		v.enum = s
	default:
		s, ok := x.(string)
		if !ok {
			return mismatch(v.tag, x)
		}
		v.s = s
	}
	return nil
}

// Assign copies other's payload into v. Both values must share a tag.
func (v *Value) Assign(other Value) error {
	if v.tag != other.tag {
		return fmt.Errorf("%w: cannot assign %s to %s", ErrTypeMismatch, other.tag, v.tag)
	}
	return v.Set(other.Get())
}

// EnumItems lists the options as (value, label, description) triples.
func (v Value) EnumItems() [][3]string {
	items := make([][3]string, 0, len(v.options))
	for _, opt := range v.options {
		items = append(items, [3]string{opt, opt, opt})
	}
	return items
}

func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	if v.tag == Enum && !slices.Equal(v.options, other.options) {
		return false
	}
	return v.Get() == other.Get()
}

func (v Value) String() string {
	return v.Format()
}

func mismatch(tag Tag, x any) error {
	return fmt.Errorf("%w: %s cannot hold %T", ErrTypeMismatch, tag, x)
}

func toInt(x any) (int64, bool) {
	switch n := x.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	default:
		return 0, false
	}
}

// floatToInt accepts only whole numbers inside the int64 range.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toIntVector(x any) ([3]int64, bool) {
	var out [3]int64
	switch vec := x.(type) {
	case [3]int64:
		return vec, true
	case []int64:
		if len(vec) != 3 {
			return out, false
		}
		copy(out[:], vec)
		return out, true
	case []any:
		if len(vec) != 3 {
			return out, false
		}
		for i, item := range vec {
			n, ok := toInt(item)
			if !ok {
				return out, false
			}
			out[i] = n
		}
		return out, true
	default:
		return out, false
	}
}

func toFloatVector(x any) ([3]float64, bool) {
	var out [3]float64
	switch vec := x.(type) {
	case [3]float64:
		return vec, true
	case [3]int64:
		for i, n := range vec {
			out[i] = float64(n)
		}
		return out, true
	case []float64:
		if len(vec) != 3 {
			return out, false
		}
		copy(out[:], vec)
		return out, true
	case []any:
		if len(vec) != 3 {
			return out, false
		}
		for i, item := range vec {
			f, ok := toFloat(item)
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	default:
		return out, false
	}
}

func stringify(x any) string {
	switch t := x.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return FormatFloat(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
