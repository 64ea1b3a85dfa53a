package builtins

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/jseval/runtime"
)

type fixture struct {
	realm  *runtime.Realm
	env    *runtime.Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		realm:  runtime.NewRealm(),
		env:    runtime.NewEnvironment(runtime.TDZError),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	Install(f.realm, f.env, Options{Stdout: f.stdout, Stderr: f.stderr})
	return f
}

func (f *fixture) global(t *testing.T, name string) *runtime.Value {
	t.Helper()
	v, err := f.env.Lookup(name)
	require.NoError(t, err)
	return v
}

// member reads a possibly dotted path such as "Array.prototype.map" from the globals.
func (f *fixture) member(t *testing.T, path ...string) *runtime.Value {
	t.Helper()
	v := f.global(t, path[0])
	for _, key := range path[1:] {
		require.True(t, v.IsObject(), "%s is not an object", key)
		var err error
		v, err = v.Object.Get(key)
		require.NoError(t, err)
	}
	return v
}

// invoke calls the method at path with the given receiver.
func (f *fixture) invoke(t *testing.T, this *runtime.Value, args []*runtime.Value, path ...string) (*runtime.Value, error) {
	t.Helper()
	fn := f.member(t, path...)
	require.True(t, fn.IsCallable(), "%v is not callable", path)
	return fn.Object.Call(this, args)
}

func (f *fixture) mustInvoke(t *testing.T, this *runtime.Value, args []*runtime.Value, path ...string) *runtime.Value {
	t.Helper()
	v, err := f.invoke(t, this, args, path...)
	require.NoError(t, err)
	return v
}

func (f *fixture) array(vals ...*runtime.Value) *runtime.Value {
	return f.realm.NewArrayValue(vals)
}

func (f *fixture) object(kv ...interface{}) *runtime.Value {
	obj := f.realm.NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		_ = obj.Set(kv[i].(string), kv[i+1].(*runtime.Value))
	}
	return runtime.NewObject(obj)
}

func (f *fixture) fn(fn runtime.CallableFunc) *runtime.Value {
	return runtime.NewObject(f.realm.NewFunction("", 0, fn))
}

func num(n float64) *runtime.Value { return runtime.NewNumber(n) }
func str(s string) *runtime.Value  { return runtime.NewString(s) }

func nums(vals ...float64) []*runtime.Value {
	out := make([]*runtime.Value, len(vals))
	for i, v := range vals {
		out[i] = num(v)
	}
	return out
}

func argv(vals ...*runtime.Value) []*runtime.Value { return vals }

// requireKind asserts err is a runtime error of the given kind.
func requireKind(t *testing.T, err error, kind runtime.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	rtErr, ok := err.(*runtime.Error)
	require.True(t, ok, "expected *runtime.Error, got %T: %v", err, err)
	require.Equal(t, kind, rtErr.Kind)
}
