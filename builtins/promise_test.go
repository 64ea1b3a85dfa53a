package builtins

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/jseval/runtime"
)

func (f *fixture) newPromise(t *testing.T, executor runtime.CallableFunc) (*runtime.Value, error) {
	t.Helper()
	ctor := f.global(t, "Promise").Object
	return ctor.Construct(argv(f.fn(executor)), ctor)
}

func requireSettled(t *testing.T, v *runtime.Value, state runtime.PromiseState) *runtime.Value {
	t.Helper()
	p := runtime.PromiseOf(v)
	require.NotNil(t, p, "%v is not a promise", v)
	require.Equal(t, state, p.State)
	return p.Result
}

func TestPromiseExecutor(t *testing.T) {
	f := setup(t)
	v, err := f.newPromise(t, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return args[0].Object.Call(runtime.Undefined, nums(42))
	})
	require.NoError(t, err)
	assert.Equal(t, 42.0, requireSettled(t, v, runtime.Fulfilled).Number)

	v, err = f.newPromise(t, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, runtime.Errorf(runtime.TypeError, "nope")
	})
	require.NoError(t, err)
	reason := requireSettled(t, v, runtime.Rejected)
	assert.Equal(t, "TypeError: nope", reason.String())
}

func TestPromiseExecutorFaultIsNotARejection(t *testing.T) {
	f := setup(t)
	fault := errors.New("internal")
	_, err := f.newPromise(t, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, fault
	})
	assert.Same(t, fault, err)
}

func TestPromiseRequiresNew(t *testing.T) {
	f := setup(t)
	_, err := f.invoke(t, runtime.Undefined, nil, "Promise")
	requireKind(t, err, runtime.TypeError)

	ctor := f.global(t, "Promise").Object
	_, err = ctor.Construct(nums(1), ctor)
	requireKind(t, err, runtime.TypeError)
}

func TestPromiseThenChains(t *testing.T) {
	f := setup(t)
	p := f.mustInvoke(t, runtime.Undefined, nums(1), "Promise", "resolve")
	inc := f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return num(args[0].Number + 1), nil
	})
	next := f.mustInvoke(t, p, argv(inc), "Promise", "prototype", "then")
	next = f.mustInvoke(t, next, argv(inc), "Promise", "prototype", "then")
	assert.Equal(t, 3.0, requireSettled(t, next, runtime.Fulfilled).Number)
}

func TestPromiseCatchAndFinally(t *testing.T) {
	f := setup(t)
	rejected := f.mustInvoke(t, runtime.Undefined, argv(str("bad")), "Promise", "reject")

	passed := f.mustInvoke(t, rejected, argv(runtime.Undefined), "Promise", "prototype", "then")
	assert.Equal(t, "bad", requireSettled(t, passed, runtime.Rejected).Str)

	recoverFn := f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return str("recovered from " + args[0].Str), nil
	})
	caught := f.mustInvoke(t, rejected, argv(recoverFn), "Promise", "prototype", "catch")
	assert.Equal(t, "recovered from bad", requireSettled(t, caught, runtime.Fulfilled).Str)

	ran := 0
	cleanup := f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		ran++
		return str("ignored"), nil
	})
	finished := f.mustInvoke(t, rejected, argv(cleanup), "Promise", "prototype", "finally")
	assert.Equal(t, 1, ran)
	assert.Equal(t, "bad", requireSettled(t, finished, runtime.Rejected).Str)
}

func TestPromiseHandlerThrowRejects(t *testing.T) {
	f := setup(t)
	p := f.mustInvoke(t, runtime.Undefined, nums(1), "Promise", "resolve")
	throw := f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, runtime.Throw(str("thrown"))
	})
	next := f.mustInvoke(t, p, argv(throw), "Promise", "prototype", "then")
	assert.Equal(t, "thrown", requireSettled(t, next, runtime.Rejected).Str)
}

func TestPromiseThenOnPending(t *testing.T) {
	f := setup(t)
	var resolve *runtime.Object
	p, err := f.newPromise(t, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		resolve = args[0].Object
		return runtime.Undefined, nil
	})
	require.NoError(t, err)
	var got *runtime.Value
	record := f.fn(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		got = args[0]
		return runtime.Undefined, nil
	})
	f.mustInvoke(t, p, argv(record), "Promise", "prototype", "then")
	assert.Nil(t, got)

	_, err = resolve.Call(runtime.Undefined, argv(str("later")))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "later", got.Str)
}

func TestPromiseAllAndRace(t *testing.T) {
	f := setup(t)
	ok := f.mustInvoke(t, runtime.Undefined, nums(2), "Promise", "resolve")
	all := f.mustInvoke(t, runtime.Undefined, argv(f.array(num(1), ok)), "Promise", "all")
	assert.Equal(t, "1,2", requireSettled(t, all, runtime.Fulfilled).String())

	empty := f.mustInvoke(t, runtime.Undefined, argv(f.array()), "Promise", "all")
	assert.Equal(t, "", requireSettled(t, empty, runtime.Fulfilled).String())

	bad := f.mustInvoke(t, runtime.Undefined, argv(str("no")), "Promise", "reject")
	failed := f.mustInvoke(t, runtime.Undefined, argv(f.array(ok, bad)), "Promise", "all")
	assert.Equal(t, "no", requireSettled(t, failed, runtime.Rejected).Str)

	race := f.mustInvoke(t, runtime.Undefined, argv(f.array(bad, ok)), "Promise", "race")
	assert.Equal(t, "no", requireSettled(t, race, runtime.Rejected).Str)
}

func TestPromiseMethodsCheckReceiver(t *testing.T) {
	f := setup(t)
	_, err := f.invoke(t, f.object(), nil, "Promise", "prototype", "then")
	requireKind(t, err, runtime.TypeError)
}
