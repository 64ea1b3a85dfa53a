package runtime

import (
	"math"
	"strconv"
	"strings"
)

// Hint selects the preferred primitive type for ToPrimitive.
type Hint int

const (
	HintDefault Hint = iota
	HintNumber
	HintString
)

// ToPrimitive converts objects to primitives by calling their valueOf and toString
// methods, in the order the hint asks for. Primitives are returned unchanged.
func ToPrimitive(v *Value, hint Hint) (*Value, error) {
	if v.Type != TypeObject {
		return v, nil
	}
	order := [2]string{"valueOf", "toString"}
	if hint == HintString {
		order = [2]string{"toString", "valueOf"}
	}
	found := false
	for _, name := range order {
		method, err := v.Object.Get(name)
		if err != nil {
			return nil, err
		}
		if !method.IsCallable() {
			continue
		}
		found = true
		res, err := method.Object.Call(v, nil)
		if err != nil {
			return nil, err
		}
		if res.Type != TypeObject {
			return res, nil
		}
	}
	if !found {
		return NewString(v.Object.String()), nil
	}
	return nil, Errorf(TypeError, "Cannot convert object to primitive value")
}

// ToNumber converts any value to a number.
func ToNumber(v *Value) (float64, error) {
	prim, err := ToPrimitive(v, HintNumber)
	if err != nil {
		return 0, err
	}
	return primitiveToNumber(prim), nil
}

// ToString converts any value to a string.
func ToString(v *Value) (string, error) {
	prim, err := ToPrimitive(v, HintString)
	if err != nil {
		return "", err
	}
	return prim.String(), nil
}

// ToPropertyKey converts a computed member key to a property name.
func ToPropertyKey(v *Value) (string, error) {
	switch v.Type {
	case TypeString:
		return v.Str, nil
	case TypeNumber:
		return NumberToString(v.Number), nil
	}
	return ToString(v)
}

func primitiveToNumber(v *Value) float64 {
	switch v.Type {
	case TypeNull:
		return 0
	case TypeBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case TypeNumber:
		return v.Number
	case TypeString:
		return StringToNumber(v.Str)
	}
	return math.NaN()
}

// StringToNumber implements numeric conversion of strings: surrounding whitespace is
// ignored, the empty string is 0, and anything that is not a numeric literal is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if !isDecimalLiteral(s) {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return n
		}
		return math.NaN()
	}
	return n
}

// isDecimalLiteral accepts [+-] digits [. digits] [e [+-] digits] with at least one
// mantissa digit, rejecting the extra spellings strconv understands.
func isDecimalLiteral(s string) bool {
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

// NumberToString formats a number the way the language prints it: integers without a
// fraction, the shortest digits that round-trip, and exponent notation outside
// [1e-6, 1e21).
func NumberToString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ToInteger truncates toward zero, mapping NaN to 0.
func ToInteger(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	return math.Trunc(n)
}

func ToInt32(n float64) int32 {
	return int32(ToUint32(n))
}

func ToUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	n = math.Mod(math.Trunc(n), 1<<32)
	if n < 0 {
		n += 1 << 32
	}
	return uint32(n)
}

// StrictEquals implements ===.
func StrictEquals(a, b *Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeNumber:
		return a.Number == b.Number
	case TypeString:
		return a.Str == b.Str
	case TypeObject:
		return a.Object == b.Object
	}
	return false
}

// SameValueZero is === except that NaN equals itself.
func SameValueZero(a, b *Value) bool {
	if a.Type == TypeNumber && b.Type == TypeNumber && math.IsNaN(a.Number) && math.IsNaN(b.Number) {
		return true
	}
	return StrictEquals(a, b)
}

// LooseEquals implements ==.
func LooseEquals(a, b *Value) (bool, error) {
	if a.Type == b.Type {
		return StrictEquals(a, b), nil
	}
	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}
	if a.IsNullish() || b.IsNullish() {
		return false, nil
	}
	if a.Type == TypeObject || b.Type == TypeObject {
		pa, err := ToPrimitive(a, HintDefault)
		if err != nil {
			return false, err
		}
		pb, err := ToPrimitive(b, HintDefault)
		if err != nil {
			return false, err
		}
		if pa.Type == TypeObject || pb.Type == TypeObject {
			return false, nil
		}
		return LooseEquals(pa, pb)
	}
	if a.Type == TypeString && b.Type == TypeString {
		return a.Str == b.Str, nil
	}
	return primitiveToNumber(a) == primitiveToNumber(b), nil
}
