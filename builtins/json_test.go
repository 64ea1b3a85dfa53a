package builtins

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/jseval/runtime"
)

func TestJSONParse(t *testing.T) {
	f := setup(t)
	v := f.mustInvoke(t, runtime.Undefined, argv(str(`{"a": [1, "two", true, null], "b": {"c": -1.5e2}, "esc": "line\nnext A"}`)), "JSON", "parse")
	require.True(t, v.IsObject())

	a := v.Object.Value("a")
	require.True(t, a.Object.IsArray())
	assert.Equal(t, 1.0, a.Object.ArrayData[0].Number)
	assert.Equal(t, "two", a.Object.ArrayData[1].Str)
	assert.True(t, a.Object.ArrayData[2].Bool)
	assert.Equal(t, runtime.TypeNull, a.Object.ArrayData[3].Type)
	assert.Equal(t, -150.0, v.Object.Value("b").Object.Value("c").Number)
	assert.Equal(t, "line\nnext A", v.Object.Value("esc").Str)
	assert.Equal(t, "a,b,esc", f.mustInvoke(t, runtime.Undefined, argv(v), "Object", "keys").String())
}

func TestJSONParseScalars(t *testing.T) {
	f := setup(t)
	assert.Equal(t, 3.0, f.mustInvoke(t, runtime.Undefined, argv(str(" 3 ")), "JSON", "parse").Number)
	assert.Equal(t, "s", f.mustInvoke(t, runtime.Undefined, argv(str(`"s"`)), "JSON", "parse").Str)
	empty := f.mustInvoke(t, runtime.Undefined, argv(str(`[]`)), "JSON", "parse")
	assert.Empty(t, empty.Object.ArrayData)
}

func TestJSONParseErrors(t *testing.T) {
	f := setup(t)
	for _, text := range []string{"", "{", `{"a":}`, "[1,", "1 2", `{"a" 1}`} {
		_, err := f.invoke(t, runtime.Undefined, argv(str(text)), "JSON", "parse")
		requireKind(t, err, runtime.SyntaxError)
	}
}

func TestJSONParseReviver(t *testing.T) {
	f := setup(t)
	reviver := f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if args[0].Str == "drop" {
			return runtime.Undefined, nil
		}
		if args[1].Type == runtime.TypeNumber {
			return num(args[1].Number * 10), nil
		}
		return args[1], nil
	})
	v := f.mustInvoke(t, runtime.Undefined, argv(str(`{"a": 1, "drop": 2, "n": [3]}`), reviver), "JSON", "parse")
	assert.Equal(t, 10.0, v.Object.Value("a").Number)
	assert.False(t, v.Object.HasOwnProperty("drop"))
	assert.Equal(t, "30", v.Object.Value("n").String())
}

func TestJSONStringify(t *testing.T) {
	f := setup(t)
	obj := f.object(
		"s", str("q\"\n"),
		"n", num(1.5),
		"nan", runtime.NaN,
		"u", runtime.Undefined,
		"fn", f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) { return runtime.Undefined, nil }),
		"arr", f.array(num(1), runtime.Undefined, runtime.Null),
		"nested", f.object("ok", runtime.True),
	)
	got := f.mustInvoke(t, runtime.Undefined, argv(obj), "JSON", "stringify")
	assert.Equal(t, `{"s":"q\"\n","n":1.5,"nan":null,"arr":[1,null,null],"nested":{"ok":true}}`, got.Str)

	assert.True(t, f.mustInvoke(t, runtime.Undefined, argv(runtime.Undefined), "JSON", "stringify").IsUndefined())
	assert.Equal(t, `"x"`, f.mustInvoke(t, runtime.Undefined, argv(str("x")), "JSON", "stringify").Str)
	assert.Equal(t, "null", f.mustInvoke(t, runtime.Undefined, argv(num(math.Inf(1))), "JSON", "stringify").Str)
}

func TestJSONStringifyIndent(t *testing.T) {
	f := setup(t)
	obj := f.object("a", f.array(nums(1, 2)...), "b", f.object())
	got := f.mustInvoke(t, runtime.Undefined, argv(obj, runtime.Undefined, num(2)), "JSON", "stringify")
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}", got.Str)
}

func TestJSONStringifyReplacerAndToJSON(t *testing.T) {
	f := setup(t)
	special := f.object("toJSON", f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return str("special:" + args[0].Str), nil
	}))
	obj := f.object("keep", num(1), "skip", num(2), "s", special)

	allow := f.array(str("keep"), str("s"))
	got := f.mustInvoke(t, runtime.Undefined, argv(obj, allow), "JSON", "stringify")
	assert.Equal(t, `{"keep":1,"s":"special:s"}`, got.Str)

	double := f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if args[1].Type == runtime.TypeNumber {
			return num(args[1].Number * 2), nil
		}
		return args[1], nil
	})
	got = f.mustInvoke(t, runtime.Undefined, argv(f.object("x", num(4)), double), "JSON", "stringify")
	assert.Equal(t, `{"x":8}`, got.Str)
}

func TestJSONStringifyCycle(t *testing.T) {
	f := setup(t)
	obj := f.object()
	require.NoError(t, obj.Object.Set("self", obj))
	_, err := f.invoke(t, runtime.Undefined, argv(obj), "JSON", "stringify")
	requireKind(t, err, runtime.TypeError)

	shared := f.object("v", num(1))
	got := f.mustInvoke(t, runtime.Undefined, argv(f.array(shared, shared)), "JSON", "stringify")
	assert.Equal(t, `[{"v":1},{"v":1}]`, got.Str)
}

func TestQuoteJSONControlCharacters(t *testing.T) {
	assert.Equal(t, `"a\u0001\tb\\"`, QuoteJSON("a\x01\tb\\"))
}
