package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/example/jseval/runtime"
)

func (b *installer) installNumber() {
	proto := b.realm.NumberPrototype
	ctor := b.fn("Number", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Zero, nil
		}
		n, err := runtime.ToNumber(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(n), nil
	})
	ctor.SetHidden("prototype", runtime.NewObject(proto))
	proto.SetHidden("constructor", runtime.NewObject(ctor))

	constant(ctor, "MAX_SAFE_INTEGER", runtime.NewNumber(1<<53-1))
	constant(ctor, "MIN_SAFE_INTEGER", runtime.NewNumber(-(1<<53 - 1)))
	constant(ctor, "EPSILON", runtime.NewNumber(math.Pow(2, -52)))
	constant(ctor, "NaN", runtime.NaN)
	constant(ctor, "POSITIVE_INFINITY", runtime.NewNumber(math.Inf(1)))
	constant(ctor, "NEGATIVE_INFINITY", runtime.NewNumber(math.Inf(-1)))

	numberTest := func(name string, fn func(float64) bool) {
		b.method(ctor, name, 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			v := arg(args, 0)
			return runtime.NewBool(v.Type == runtime.TypeNumber && fn(v.Number)), nil
		})
	}
	numberTest("isNaN", math.IsNaN)
	numberTest("isFinite", isFinite)
	numberTest("isInteger", func(n float64) bool { return isFinite(n) && n == math.Trunc(n) })
	numberTest("isSafeInteger", func(n float64) bool { return n == math.Trunc(n) && math.Abs(n) <= 1<<53-1 })
	b.method(ctor, "parseFloat", 1, parseFloat)
	b.method(ctor, "parseInt", 2, parseInt)

	b.method(proto, "toString", 1, numberToString)
	b.method(proto, "toFixed", 1, numberToFixed)
	b.method(proto, "valueOf", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		n, err := thisNumber(this, "valueOf")
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(n), nil
	})

	b.global("Number", runtime.NewObject(ctor))
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

func thisNumber(this *runtime.Value, method string) (float64, error) {
	if this.Type != runtime.TypeNumber {
		return 0, runtime.Errorf(runtime.TypeError, "Number.prototype.%s requires that 'this' be a Number", method)
	}
	return this.Number, nil
}

func numberToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumber(this, "toString")
	if err != nil {
		return nil, err
	}
	radix := 10.0
	if r := arg(args, 0); !r.IsUndefined() {
		if radix, err = runtime.ToNumber(r); err != nil {
			return nil, err
		}
		radix = runtime.ToInteger(radix)
	}
	if radix < 2 || radix > 36 {
		return nil, runtime.Errorf(runtime.RangeError, "toString() radix must be between 2 and 36")
	}
	if radix == 10 || !isFinite(n) || n != math.Trunc(n) || math.Abs(n) >= 1<<63 {
		return runtime.NewString(runtime.NumberToString(n)), nil
	}
	return runtime.NewString(strconv.FormatInt(int64(n), int(radix))), nil
}

func numberToFixed(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumber(this, "toFixed")
	if err != nil {
		return nil, err
	}
	d, err := runtime.ToNumber(arg(args, 0))
	if err != nil {
		return nil, err
	}
	digits := runtime.ToInteger(d)
	if digits < 0 || digits > 100 {
		return nil, runtime.Errorf(runtime.RangeError, "toFixed() digits argument must be between 0 and 100")
	}
	if !isFinite(n) || math.Abs(n) >= 1e21 {
		return runtime.NewString(runtime.NumberToString(n)), nil
	}
	return runtime.NewString(strconv.FormatFloat(n, 'f', int(digits), 64)), nil
}

// parseFloat reads the longest prefix of its argument that is a decimal literal.
func parseFloat(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := runtime.ToString(arg(args, 0))
	if err != nil {
		return nil, err
	}
	s = strings.TrimLeftFunc(s, isSpace)
	for _, inf := range []string{"Infinity", "+Infinity", "-Infinity"} {
		if strings.HasPrefix(s, inf) {
			return runtime.NewNumber(runtime.StringToNumber(inf)), nil
		}
	}
	end := 0
	for i := len(s); i > 0; i-- {
		if !math.IsNaN(runtime.StringToNumber(s[:i])) && !strings.ContainsAny(s[:i], "xXoObB") && strings.TrimSpace(s[:i]) == s[:i] {
			end = i
			break
		}
	}
	if end == 0 {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(runtime.StringToNumber(s[:end])), nil
}

// parseInt reads digits of the given radix, 10 by default or 16 after a 0x prefix,
// until the first character that is not one.
func parseInt(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := runtime.ToString(arg(args, 0))
	if err != nil {
		return nil, err
	}
	r, err := runtime.ToNumber(arg(args, 1))
	if err != nil {
		return nil, err
	}
	radix := int(runtime.ToInt32(r))

	s = strings.TrimLeftFunc(s, isSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	if (radix == 0 || radix == 16) && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s, radix = s[2:], 16
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return runtime.NaN, nil
	}

	n, digits := 0.0, 0
	for _, c := range s {
		d := digitValue(c)
		if d < 0 || d >= radix {
			break
		}
		n = n*float64(radix) + float64(d)
		digits++
	}
	if digits == 0 {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(sign * n), nil
}

func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

func isSpace(r rune) bool {
	return strings.ContainsRune(" \t\n\v\f\r\u00a0\ufeff\u2028\u2029", r)
}
