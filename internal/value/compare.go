package value

import "math"

// Tolerance is the absolute tolerance used when comparing numbers and vectors
// for equality.
const Tolerance = 1e-8

// IsNumeric reports whether the value is an int or float scalar.
func (v Value) IsNumeric() bool {
	return v.tag == Int || v.tag == Float
}

// IsTextual reports whether the value compares by exact string equality.
func (v Value) IsTextual() bool {
	return v.tag == String || v.tag == Enum
}

// Float returns the scalar as float64. ok is false for non-numeric values.
func (v Value) Float() (float64, bool) {
	switch v.tag {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	case Bool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Close reports whether a and b are equal: exact for strings and enums,
// within Tolerance element-wise for everything else.
func Close(a, b Value) bool {
	if a.IsTextual() || b.IsTextual() {
		if !a.IsTextual() || !b.IsTextual() {
			return false
		}
		return a.Format() == b.Format()
	}

	av, aok := a.elements()
	bv, bok := b.elements()
	if !aok || !bok || len(av) != len(bv) {
		return false
	}
	for i := range av {
		if math.Abs(av[i]-bv[i]) > Tolerance {
			return false
		}
	}
	return true
}

func (v Value) elements() ([]float64, bool) {
	switch v.tag {
	case IntVector3:
		return []float64{float64(v.iv[0]), float64(v.iv[1]), float64(v.iv[2])}, true
	case FloatVector3:
		return v.fv[:], true
	default:
		f, ok := v.Float()
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	}
}
