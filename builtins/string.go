package builtins

import (
	"strings"
	"unicode"

	"github.com/example/jseval/runtime"
)

func (b *installer) installString() {
	proto := b.realm.StringPrototype
	ctor := b.fn("String", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewString(""), nil
		}
		s, err := runtime.ToString(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.NewString(s), nil
	})
	ctor.SetHidden("prototype", runtime.NewObject(proto))
	proto.SetHidden("constructor", runtime.NewObject(ctor))

	methods := []struct {
		name   string
		length int
		fn     runtime.CallableFunc
	}{
		{"toString", 0, stringValueOf},
		{"valueOf", 0, stringValueOf},
		{"charAt", 1, stringCharAt},
		{"charCodeAt", 1, stringCharCodeAt},
		{"indexOf", 1, stringIndexOf},
		{"slice", 2, stringSlice},
		{"substring", 2, stringSubstring},
		{"toUpperCase", 0, stringMapper(strings.ToUpper)},
		{"toLowerCase", 0, stringMapper(strings.ToLower)},
		{"trim", 0, stringMapper(func(s string) string { return strings.TrimFunc(s, unicode.IsSpace) })},
		{"split", 2, b.stringSplit},
		{"includes", 1, stringIncludes},
		{"startsWith", 1, stringStartsWith},
		{"endsWith", 1, stringEndsWith},
		{"repeat", 1, stringRepeat},
		{"replace", 2, stringReplace},
	}
	for _, m := range methods {
		b.method(proto, m.name, m.length, m.fn)
	}

	b.global("String", runtime.NewObject(ctor))
}

// thisString converts the receiver of a String.prototype method.
func thisString(this *runtime.Value, method string) (string, error) {
	if this.IsNullish() {
		return "", runtime.Errorf(runtime.TypeError, "String.prototype.%s called on null or undefined", method)
	}
	return runtime.ToString(this)
}

func stringArg(args []*runtime.Value, i int) (string, error) {
	return runtime.ToString(arg(args, i))
}

func stringValueOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if this.Type != runtime.TypeString {
		return nil, runtime.Errorf(runtime.TypeError, "String.prototype.valueOf requires that 'this' be a String")
	}
	return this, nil
}

func stringMapper(fn func(string) string) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := thisString(this, "toString")
		if err != nil {
			return nil, err
		}
		return runtime.NewString(fn(s)), nil
	}
}

func stringCharAt(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "charAt")
	if err != nil {
		return nil, err
	}
	units := runtime.StringUnits(s)
	pos, err := runtime.ToNumber(arg(args, 0))
	if err != nil {
		return nil, err
	}
	i := runtime.ToInteger(pos)
	if i < 0 || i >= float64(len(units)) {
		return runtime.NewString(""), nil
	}
	return runtime.NewString(runtime.UnitsString(units[int(i) : int(i)+1])), nil
}

func stringCharCodeAt(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "charCodeAt")
	if err != nil {
		return nil, err
	}
	units := runtime.StringUnits(s)
	pos, err := runtime.ToNumber(arg(args, 0))
	if err != nil {
		return nil, err
	}
	i := runtime.ToInteger(pos)
	if i < 0 || i >= float64(len(units)) {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(float64(units[int(i)])), nil
}

// unitIndex finds needle in hay at or after from, counting UTF-16 code units.
func unitIndex(hay, needle []uint16, from int) int {
	for i := from; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func stringIndexOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "indexOf")
	if err != nil {
		return nil, err
	}
	needle, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	units := runtime.StringUnits(s)
	from, err := relativeIndex(arg(args, 1), len(units), 0)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(unitIndex(units, runtime.StringUnits(needle), from))), nil
}

func stringSlice(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "slice")
	if err != nil {
		return nil, err
	}
	units := runtime.StringUnits(s)
	start, err := relativeIndex(arg(args, 0), len(units), 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(arg(args, 1), len(units), len(units))
	if err != nil {
		return nil, err
	}
	if start >= end {
		return runtime.NewString(""), nil
	}
	return runtime.NewString(runtime.UnitsString(units[start:end])), nil
}

// clampIndex is substring's argument handling: negative and NaN become 0.
func clampIndex(v *runtime.Value, length, def int) (int, error) {
	if v.IsUndefined() {
		return def, nil
	}
	n, err := runtime.ToNumber(v)
	if err != nil {
		return 0, err
	}
	n = runtime.ToInteger(n)
	switch {
	case n < 0:
		return 0, nil
	case n > float64(length):
		return length, nil
	}
	return int(n), nil
}

func stringSubstring(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "substring")
	if err != nil {
		return nil, err
	}
	units := runtime.StringUnits(s)
	start, err := clampIndex(arg(args, 0), len(units), 0)
	if err != nil {
		return nil, err
	}
	end, err := clampIndex(arg(args, 1), len(units), len(units))
	if err != nil {
		return nil, err
	}
	if start > end {
		start, end = end, start
	}
	return runtime.NewString(runtime.UnitsString(units[start:end])), nil
}

func (b *installer) stringSplit(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "split")
	if err != nil {
		return nil, err
	}
	limit := -1
	if l := arg(args, 1); !l.IsUndefined() {
		n, err := runtime.ToNumber(l)
		if err != nil {
			return nil, err
		}
		limit = int(runtime.ToUint32(n))
	}

	var parts []string
	switch sep := arg(args, 0); {
	case sep.IsUndefined():
		parts = []string{s}
	default:
		str, err := runtime.ToString(sep)
		if err != nil {
			return nil, err
		}
		if str == "" {
			for _, u := range runtime.StringUnits(s) {
				parts = append(parts, runtime.UnitsString([]uint16{u}))
			}
		} else {
			parts = strings.Split(s, str)
		}
	}
	if limit >= 0 && len(parts) > limit {
		parts = parts[:limit]
	}
	out := make([]*runtime.Value, len(parts))
	for i, p := range parts {
		out[i] = runtime.NewString(p)
	}
	return b.realm.NewArrayValue(out), nil
}

func stringPredicate(method string, fn func(s, needle string, pos *runtime.Value) (bool, error)) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := thisString(this, method)
		if err != nil {
			return nil, err
		}
		needle, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		ok, err := fn(s, needle, arg(args, 1))
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(ok), nil
	}
}

var stringIncludes = stringPredicate("includes", func(s, needle string, pos *runtime.Value) (bool, error) {
	units := runtime.StringUnits(s)
	from, err := clampIndex(pos, len(units), 0)
	if err != nil {
		return false, err
	}
	return unitIndex(units, runtime.StringUnits(needle), from) >= 0, nil
})

var stringStartsWith = stringPredicate("startsWith", func(s, needle string, pos *runtime.Value) (bool, error) {
	units := runtime.StringUnits(s)
	from, err := clampIndex(pos, len(units), 0)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(runtime.UnitsString(units[from:]), needle), nil
})

var stringEndsWith = stringPredicate("endsWith", func(s, needle string, pos *runtime.Value) (bool, error) {
	units := runtime.StringUnits(s)
	end, err := clampIndex(pos, len(units), len(units))
	if err != nil {
		return false, err
	}
	return strings.HasSuffix(runtime.UnitsString(units[:end]), needle), nil
})

func stringRepeat(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "repeat")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToNumber(arg(args, 0))
	if err != nil {
		return nil, err
	}
	n = runtime.ToInteger(n)
	if n < 0 || n > 1<<28 {
		return nil, runtime.Errorf(runtime.RangeError, "Invalid count value: %s", runtime.NumberToString(n))
	}
	return runtime.NewString(strings.Repeat(s, int(n))), nil
}

// stringReplace replaces the first occurrence of a string pattern. A function
// replacement is called with the match, its offset and the whole string.
func stringReplace(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "replace")
	if err != nil {
		return nil, err
	}
	pattern, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	units := runtime.StringUnits(s)
	at := unitIndex(units, runtime.StringUnits(pattern), 0)
	if at < 0 {
		return runtime.NewString(s), nil
	}

	var replacement string
	if r := arg(args, 1); r.IsCallable() {
		res, err := r.Object.Call(runtime.Undefined, []*runtime.Value{runtime.NewString(pattern), runtime.NewNumber(float64(at)), runtime.NewString(s)})
		if err != nil {
			return nil, err
		}
		if replacement, err = runtime.ToString(res); err != nil {
			return nil, err
		}
	} else if replacement, err = runtime.ToString(r); err != nil {
		return nil, err
	}
	before := runtime.UnitsString(units[:at])
	after := runtime.UnitsString(units[at+len(runtime.StringUnits(pattern)):])
	return runtime.NewString(before + replacement + after), nil
}
