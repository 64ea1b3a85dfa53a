package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesKeepInsertionOrder(t *testing.T) {
	r := NewRealm()
	obj := r.NewObject()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, obj.Set(k, NewString(k)))
	}
	require.NoError(t, obj.Set("alpha", NewString("again")))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.OwnKeys())

	assert.True(t, obj.Delete("alpha"))
	assert.Equal(t, []string{"zeta", "mid"}, obj.OwnKeys())
}

func TestPrototypeChain(t *testing.T) {
	r := NewRealm()
	base := r.NewObject()
	require.NoError(t, base.Set("shared", NewNumber(1)))
	derived := NewPlainObject(base)
	require.NoError(t, derived.Set("own", NewNumber(2)))

	v, err := derived.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, NewNumber(1), v)
	assert.True(t, derived.HasProperty("shared"))
	assert.False(t, derived.HasOwnProperty("shared"))
	assert.Equal(t, []string{"own", "shared"}, derived.EnumerableKeys())

	base.SetHidden("hidden", True)
	assert.NotContains(t, derived.EnumerableKeys(), "hidden")
}

func TestAccessors(t *testing.T) {
	r := NewRealm()
	obj := r.NewObject()
	var stored *Value
	obj.DefineOwnProperty("prop", &Property{
		IsAccessor: true,
		Getter: r.NewFunction("get", 0, func(this *Value, args []*Value) (*Value, error) {
			require.Same(t, obj, this.Object)
			return NewString("got"), nil
		}),
		Setter: r.NewFunction("set", 1, func(this *Value, args []*Value) (*Value, error) {
			stored = args[0]
			return Undefined, nil
		}),
		Enumerable: true,
	})
	v, err := obj.Get("prop")
	require.NoError(t, err)
	assert.Equal(t, "got", v.Str)

	child := NewPlainObject(obj)
	require.NoError(t, child.Set("prop", NewNumber(7)))
	assert.Equal(t, NewNumber(7), stored)
	assert.False(t, child.HasOwnProperty("prop"), "inherited setter must run instead of shadowing")
}

func TestReadOnlyPropertiesIgnoreWrites(t *testing.T) {
	r := NewRealm()
	obj := r.NewObject()
	obj.DefineOwnProperty("fixed", &Property{Value: NewNumber(1)})
	require.NoError(t, obj.Set("fixed", NewNumber(2)))
	assert.Equal(t, NewNumber(1), obj.Value("fixed"))
	assert.False(t, obj.Delete("fixed"))
}

func TestArrays(t *testing.T) {
	r := NewRealm()
	arr := r.NewArray([]*Value{NewNumber(1), NewNumber(2)})
	assert.Equal(t, NewNumber(2), arr.Value("length"))

	require.NoError(t, arr.Set("4", NewString("x")))
	assert.Equal(t, NewNumber(5), arr.Value("length"))
	assert.Equal(t, Undefined, arr.Value("3"))
	assert.Equal(t, []string{"0", "1", "4"}, arr.OwnKeys())

	require.NoError(t, arr.Set("length", NewNumber(1)))
	assert.Len(t, arr.ArrayData, 1)

	err := arr.Set("length", NewNumber(-1))
	assertKind(t, RangeError, err)

	require.NoError(t, arr.Set("01", True))
	assert.Len(t, arr.ArrayData, 1, "non-canonical index is a named property")
	assert.Equal(t, True, arr.Value("01"))

	assert.True(t, arr.Delete("0"))
	assert.Len(t, arr.ArrayData, 1)
	assert.False(t, arr.HasOwnProperty("0"))
}

func TestArrayGrowthIsBounded(t *testing.T) {
	arr := NewRealm().NewArray([]*Value{NewNumber(1)})

	assertKind(t, RangeError, arr.Set("4294967294", True))
	assertKind(t, RangeError, arr.Set("length", NewNumber(4e9)))
	assertKind(t, RangeError, arr.Set(NumberToString(MaxArrayLength), True))
	assertKind(t, RangeError, arr.DefineOwnProperty("100000000", &Property{Value: True, Writable: true}))
	assert.Len(t, arr.ArrayData, 1)

	require.NoError(t, arr.DefineOwnProperty("2", &Property{Value: True, Writable: true}))
	assert.Equal(t, NewNumber(3), arr.Value("length"))
	require.NoError(t, CheckArrayLength(MaxArrayLength))
	assertKind(t, RangeError, CheckArrayLength(MaxArrayLength+1))
	assertKind(t, RangeError, CheckArrayLength(1.5))
}

func TestBoundFunction(t *testing.T) {
	r := NewRealm()
	var gotThis *Value
	var gotArgs []*Value
	target := r.NewFunction("target", 3, func(this *Value, args []*Value) (*Value, error) {
		gotThis, gotArgs = this, args
		return NewNumber(float64(len(args))), nil
	})
	receiver := NewString("me")
	bound := r.NewBoundFunction(target, receiver, []*Value{NewNumber(1)})

	res, err := bound.Call(NewString("ignored"), []*Value{NewNumber(2)})
	require.NoError(t, err)
	assert.Equal(t, NewNumber(2), res)
	assert.Same(t, receiver, gotThis)
	assert.Equal(t, []*Value{NewNumber(1), NewNumber(2)}, gotArgs)
	assert.Equal(t, "bound target", bound.Value("name").Str)
	assert.Equal(t, NewNumber(2), bound.Value("length"))
	assert.False(t, bound.Constructor())
}

func TestGetMemberOnPrimitives(t *testing.T) {
	r := NewRealm()
	r.StringPrototype.SetHidden("shout", NewObject(r.NewFunction("shout", 0, func(this *Value, args []*Value) (*Value, error) {
		return NewString(this.Str + "!"), nil
	})))

	length, err := r.GetMember(NewString("héllo"), "length")
	require.NoError(t, err)
	assert.Equal(t, NewNumber(5), length)

	ch, err := r.GetMember(NewString("abc"), "1")
	require.NoError(t, err)
	assert.Equal(t, "b", ch.Str)

	shout, err := r.GetMember(NewString("hi"), "shout")
	require.NoError(t, err)
	res, err := shout.Object.Call(NewString("hi"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hi!", res.Str)

	_, err = r.GetMember(Undefined, "x")
	assertKind(t, TypeError, err)
	assert.Contains(t, err.Error(), "Cannot read properties of undefined (reading 'x')")
}

func TestErrorObjects(t *testing.T) {
	r := NewRealm()
	obj := r.NewError(RangeError, "too big")
	assert.Equal(t, "RangeError", obj.Value("name").Str)
	assert.Equal(t, "too big", obj.Value("message").Str)
	assert.Equal(t, "RangeError: too big", obj.Value("stack").Str)
	assert.Same(t, r.ErrorPrototypes[PlainError], obj.Prototype.Prototype)

	v, ok := r.ErrorValue(Errorf(TypeError, "nope"))
	require.True(t, ok)
	assert.Equal(t, "TypeError: nope", v.String())

	thrown := NewNumber(3)
	v, ok = r.ErrorValue(Throw(thrown))
	require.True(t, ok)
	assert.Same(t, thrown, v)
}
