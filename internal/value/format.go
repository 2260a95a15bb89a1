package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f the way the engine's importer expects: shortest
// round-trip digits, always with a decimal point or exponent, and exponent
// notation only for very small or very large magnitudes.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Format returns the text form used in exports and listings. Vectors render
// as tuples, e.g. "(1.0, 2.5, 0.0)".
func (v Value) Format() string {
	switch v.tag {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return FormatFloat(v.f)
	case Bool:
		if v.b {
			return "True"
		}
		return "False"
	case IntVector3:
		return fmt.Sprintf("(%d, %d, %d)", v.iv[0], v.iv[1], v.iv[2])
	case FloatVector3:
		return "(" + FormatFloat(v.fv[0]) + ", " + FormatFloat(v.fv[1]) + ", " + FormatFloat(v.fv[2]) + ")"
	case Enum:
		return v.enum
	default:
		return v.s
	}
}

// Raw returns a JSON-encodable form of the payload. Floats are json.Number so
// whole numbers keep their decimal point.
func (v Value) Raw() any {
	switch v.tag {
	case Int:
		return v.i
	case Float:
		return floatNumber(v.f)
	case Bool:
		return v.b
	case IntVector3:
		return []int64{v.iv[0], v.iv[1], v.iv[2]}
	case FloatVector3:
		return []json.Number{floatNumber(v.fv[0]), floatNumber(v.fv[1]), floatNumber(v.fv[2])}
	case Enum:
		return v.enum
	default:
		return v.s
	}
}

func floatNumber(f float64) json.Number {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return json.Number("0")
	}
	return json.Number(FormatFloat(f))
}

// Parse reads text input into the value's tag. Vectors accept "1,2,3",
// "(1, 2, 3)" or "[1, 2, 3]".
func (v *Value) Parse(s string) error {
	s = strings.TrimSpace(s)
	switch v.tag {
	case Int:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an int", ErrTypeMismatch, s)
		}
		v.i = n
	case Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a float", ErrTypeMismatch, s)
		}
		v.f = f
	case Bool:
		b, err := strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return fmt.Errorf("%w: %q is not a bool", ErrTypeMismatch, s)
		}
		v.b = b
	case IntVector3, FloatVector3:
		parts := splitVector(s)
		if len(parts) != 3 {
			return fmt.Errorf("%w: %q is not a 3-vector", ErrTypeMismatch, s)
		}
		var iv [3]int64
		var fv [3]float64
		for i, part := range parts {
			if v.tag == IntVector3 {
				n, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					return fmt.Errorf("%w: %q is not an int vector", ErrTypeMismatch, s)
				}
				iv[i] = n
				continue
			}
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a float vector", ErrTypeMismatch, s)
			}
			fv[i] = f
		}
		v.iv, v.fv = iv, fv
	default:
		return v.Set(s)
	}
	return nil
}

func splitVector(s string) []string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "("), "[")
	s = strings.TrimSuffix(strings.TrimSuffix(s, ")"), "]")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	return fields
}

type encodedValue struct {
	Tag     string          `json:"tag"`
	Value   json.RawMessage `json:"value"`
	Options []string        `json:"options,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Raw())
	if err != nil {
		return nil, err
	}
	return json.Marshal(encodedValue{Tag: v.tag.String(), Value: raw, Options: v.options})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var enc encodedValue
	if err := json.Unmarshal(data, &enc); err != nil {
		return err
	}
	tag, ok := parseTag(enc.Tag)
	if !ok {
		return fmt.Errorf("unknown value tag %q", enc.Tag)
	}

	var raw any
	if len(enc.Value) > 0 {
		dec := json.NewDecoder(strings.NewReader(string(enc.Value)))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding %s value: %w", tag, err)
		}
	}

	out := Zero(tag, enc.Options)
	if raw != nil {
		if err := out.Set(raw); err != nil {
			return err
		}
	}
	*v = out
	return nil
}
