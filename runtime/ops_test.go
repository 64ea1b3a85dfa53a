package runtime

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func binary(t *testing.T, op string, l, r *Value) *Value {
	t.Helper()
	v, err := BinaryOp(op, l, r)
	require.NoError(t, err)
	return v
}

func TestAdditionCoercion(t *testing.T) {
	assert.Equal(t, NewString("12"), binary(t, "+", NewNumber(1), NewString("2")))
	assert.Equal(t, NewString("12"), binary(t, "+", NewString("1"), NewNumber(2)))
	assert.Equal(t, NewNumber(3), binary(t, "+", NewNumber(1), NewNumber(2)))
	assert.Equal(t, NewNumber(1), binary(t, "+", True, Null))
	assert.True(t, math.IsNaN(binary(t, "+", NewNumber(1), Undefined).Number))
	assert.Equal(t, NewString("nullx"), binary(t, "+", Null, NewString("x")))
}

func TestSubtractionCoercion(t *testing.T) {
	assert.Equal(t, NewNumber(1), binary(t, "-", NewString("2"), NewNumber(1)))
	assert.Equal(t, NewNumber(6), binary(t, "*", NewString("2"), NewString("3")))
	assert.True(t, math.IsNaN(binary(t, "-", NewString("abc"), NewNumber(1)).Number))
}

func TestPlusConcatenatesWhenEitherSideIsString(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-1e6, 1e6).Draw(t, "n")
		s := rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "s")
		got, err := BinaryOp("+", NewNumber(float64(n)), NewString(s))
		if err != nil {
			t.Fatal(err)
		}
		if want := strconv.Itoa(n) + s; got.Str != want {
			t.Fatalf("got %q, want %q", got.Str, want)
		}
	})
}

func TestMinusConvertsNumericStrings(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(-1e6, 1e6).Draw(t, "a")
		b := rapid.IntRange(-1e6, 1e6).Draw(t, "b")
		got, err := BinaryOp("-", NewString(strconv.Itoa(a)), NewNumber(float64(b)))
		if err != nil {
			t.Fatal(err)
		}
		if got.Number != float64(a-b) {
			t.Fatalf("got %v, want %d", got.Number, a-b)
		}
	})
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, NewNumber(1), binary(t, "%", NewNumber(7), NewNumber(3)))
	assert.Equal(t, NewNumber(-1), binary(t, "%", NewNumber(-7), NewNumber(3)))
	assert.Equal(t, NewNumber(1024), binary(t, "**", NewNumber(2), NewNumber(10)))
	assert.True(t, math.IsNaN(binary(t, "**", NewNumber(1), NaN).Number))
	assert.True(t, math.IsInf(binary(t, "/", NewNumber(1), Zero).Number, 1))
}

func TestBitwise(t *testing.T) {
	assert.Equal(t, NewNumber(1), binary(t, "&", NewNumber(5), NewNumber(3)))
	assert.Equal(t, NewNumber(7), binary(t, "|", NewNumber(5), NewNumber(3)))
	assert.Equal(t, NewNumber(6), binary(t, "^", NewNumber(5), NewNumber(3)))
	assert.Equal(t, NewNumber(-8), binary(t, "<<", NewNumber(-1), NewNumber(3)))
	assert.Equal(t, NewNumber(-1), binary(t, ">>", NewNumber(-1), NewNumber(3)))
	assert.Equal(t, NewNumber(4294967295), binary(t, ">>>", NewNumber(-1), NewNumber(0)))
	assert.Equal(t, NewNumber(0), binary(t, "|", NewNumber(4294967296), Zero))
}

func TestEquality(t *testing.T) {
	tests := []struct {
		l, r         *Value
		loose, strict bool
	}{
		{Null, Undefined, true, false},
		{NewNumber(1), NewString("1"), true, false},
		{True, NewNumber(1), true, false},
		{NewString(""), NewNumber(0), true, false},
		{Null, Zero, false, false},
		{NaN, NaN, false, false},
		{NewString("a"), NewString("a"), true, true},
	}
	for _, tt := range tests {
		assert.Equal(t, NewBool(tt.loose), binary(t, "==", tt.l, tt.r), "%s == %s", tt.l, tt.r)
		assert.Equal(t, NewBool(!tt.loose), binary(t, "!=", tt.l, tt.r), "%s != %s", tt.l, tt.r)
		assert.Equal(t, NewBool(tt.strict), binary(t, "===", tt.l, tt.r), "%s === %s", tt.l, tt.r)
		assert.Equal(t, NewBool(!tt.strict), binary(t, "!==", tt.l, tt.r), "%s !== %s", tt.l, tt.r)
	}

	r := NewRealm()
	obj := NewObject(r.NewObject())
	assert.Equal(t, True, binary(t, "===", obj, obj))
	assert.Equal(t, False, binary(t, "===", obj, NewObject(r.NewObject())))
}

func TestRelational(t *testing.T) {
	assert.Equal(t, True, binary(t, "<", NewString("a"), NewString("b")))
	assert.Equal(t, False, binary(t, "<", NewString("10"), NewString("9")))
	assert.Equal(t, True, binary(t, "<", NewString("9"), NewNumber(10)))
	assert.Equal(t, False, binary(t, "<", NaN, NewNumber(1)))
	assert.Equal(t, False, binary(t, ">=", NaN, NaN))
	assert.Equal(t, True, binary(t, "<=", Null, Zero))

	// U+1F600 is a surrogate pair starting 0xD83D, below U+FFFF.
	assert.Equal(t, True, binary(t, "<", NewString("\U0001F600"), NewString("\uffff")))
	assert.Equal(t, False, binary(t, ">=", NewString("\U0001F600"), NewString("\uffff")))
	assert.Equal(t, True, binary(t, "<", NewString("ab"), NewString("abc")))
	assert.Equal(t, True, binary(t, "<=", NewString("é"), NewString("é")))
}

func TestCompareStrings(t *testing.T) {
	assert.Equal(t, 0, CompareStrings("", ""))
	assert.Equal(t, -1, CompareStrings("a", "b"))
	assert.Equal(t, 1, CompareStrings("b", "a"))
	assert.Equal(t, -1, CompareStrings("\U0001F600", "\uffff"))
	assert.Equal(t, 1, CompareStrings("\uffffa", "\U0001F600"))
	assert.Equal(t, -1, CompareStrings("x\U0001F600", "x\U0001F600!"))
}

func TestInstanceofAndIn(t *testing.T) {
	r := NewRealm()
	proto := r.NewObject()
	noop := func(this *Value, args []*Value) (*Value, error) { return Undefined, nil }
	ctor := r.NewConstructor("Point", 0, noop, nil, proto)
	instance := NewObject(NewPlainObject(proto))

	assert.Equal(t, True, binary(t, "instanceof", instance, NewObject(ctor)))
	assert.Equal(t, False, binary(t, "instanceof", NewObject(r.NewObject()), NewObject(ctor)))
	assert.Equal(t, False, binary(t, "instanceof", NewNumber(1), NewObject(ctor)))

	_, err := BinaryOp("instanceof", instance, NewObject(r.NewObject()))
	assertKind(t, TypeError, err)
	_, err = BinaryOp("instanceof", instance, NewNumber(1))
	assertKind(t, TypeError, err)

	require.NoError(t, proto.Set("x", NewNumber(1)))
	assert.Equal(t, True, binary(t, "in", NewString("x"), instance))
	assert.Equal(t, False, binary(t, "in", NewString("y"), instance))
	_, err = BinaryOp("in", NewString("x"), NewString("xyz"))
	assertKind(t, TypeError, err)
}

func TestUnaryOp(t *testing.T) {
	unary := func(op string, v *Value) *Value {
		res, err := UnaryOp(op, v)
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, NewNumber(-3), unary("-", NewString("3")))
	assert.Equal(t, NewNumber(1), unary("+", True))
	assert.Equal(t, True, unary("!", NewString("")))
	assert.Equal(t, NewNumber(-6), unary("~", NewNumber(5)))
	assert.Equal(t, Undefined, unary("void", NewNumber(5)))

	r := NewRealm()
	fn := r.NewFunction("f", 0, func(this *Value, args []*Value) (*Value, error) { return Undefined, nil })
	for v, want := range map[*Value]string{
		Undefined:               "undefined",
		Null:                    "object",
		True:                    "boolean",
		NewNumber(1):            "number",
		NewString("s"):          "string",
		NewObject(r.NewObject()): "object",
		NewObject(fn):           "function",
	} {
		assert.Equal(t, NewString(want), unary("typeof", v))
	}
}

func TestUnknownOperatorIsNotALanguageError(t *testing.T) {
	_, err := BinaryOp("<=>", Zero, Zero)
	require.Error(t, err)
	var rtErr *Error
	assert.NotErrorAs(t, err, &rtErr)
}

func assertKind(t *testing.T, kind ErrorKind, err error) {
	t.Helper()
	var rtErr *Error
	require.ErrorAs(t, err, &rtErr)
	assert.Equal(t, kind, rtErr.Kind)
}
