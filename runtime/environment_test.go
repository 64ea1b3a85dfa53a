package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDeclareAndLookup(t *testing.T) {
	env := NewEnvironment(TDZError)
	require.NoError(t, env.Declare("x", VarBinding, NewNumber(1)))
	child := env.NewChild(BlockFrame)
	v, err := child.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, NewNumber(1), v)

	_, err = child.Lookup("missing")
	assertKind(t, ReferenceError, err)
	assert.EqualError(t, err, "ReferenceError: missing is not defined")
}

func TestRedeclaration(t *testing.T) {
	env := NewEnvironment(TDZError)
	require.NoError(t, env.Declare("v", VarBinding, NewNumber(1)))
	require.NoError(t, env.Declare("v", VarBinding, NewNumber(2)))
	v, _ := env.Lookup("v")
	assert.Equal(t, NewNumber(2), v)

	require.NoError(t, env.Declare("l", LetBinding, Undefined))
	assertKind(t, SyntaxError, env.Declare("l", LetBinding, Undefined))
	assertKind(t, SyntaxError, env.Declare("l", VarBinding, Undefined))
	assertKind(t, SyntaxError, env.Declare("v", ConstBinding, Undefined))

	// shadowing in a child frame is fine
	require.NoError(t, env.NewChild(BlockFrame).Declare("l", LetBinding, Undefined))
}

func TestConstCannotBeReassigned(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Float64Range(-1e9, 1e9).Draw(t, "initial")
		next := rapid.Float64Range(-1e9, 1e9).Draw(t, "next")
		depth := rapid.IntRange(0, 5).Draw(t, "depth")

		env := NewEnvironment(TDZError)
		if err := env.Declare("c", ConstBinding, NewNumber(initial)); err != nil {
			t.Fatal(err)
		}
		inner := env
		for i := 0; i < depth; i++ {
			inner = inner.NewChild(BlockFrame)
		}
		err := inner.Assign("c", NewNumber(next))
		var rtErr *Error
		if err == nil || !asRuntimeError(err, &rtErr) || rtErr.Kind != TypeError {
			t.Fatalf("expected TypeError, got %v", err)
		}
		v, _ := env.Lookup("c")
		if v.Number != initial {
			t.Fatalf("const changed from %v to %v", initial, v.Number)
		}
	})
}

func asRuntimeError(err error, target **Error) bool {
	e, ok := err.(*Error)
	*target = e
	return ok
}

func TestAssignWalksToNearestBinding(t *testing.T) {
	env := NewEnvironment(TDZError)
	require.NoError(t, env.Declare("x", LetBinding, NewNumber(1)))
	fn := env.NewChild(FunctionFrame)
	block := fn.NewChild(BlockFrame)
	require.NoError(t, block.Assign("x", NewNumber(2)))
	v, _ := env.Lookup("x")
	assert.Equal(t, NewNumber(2), v)
}

func TestAssignUndeclaredCreatesGlobal(t *testing.T) {
	env := NewEnvironment(TDZError)
	inner := env.NewChild(FunctionFrame).NewChild(BlockFrame)
	require.NoError(t, inner.Assign("leaked", NewString("yes")))
	assert.True(t, env.HasOwn("leaked"))
	v, err := env.Lookup("leaked")
	require.NoError(t, err)
	assert.Equal(t, "yes", v.Str)
}

func TestAssignShadowsGlobals(t *testing.T) {
	global := NewGlobalEnvironment(TDZError)
	require.NoError(t, global.Declare("console", VarBinding, NewString("builtin")))
	require.NoError(t, global.Declare("NaN", ConstBinding, NewNumber(0)))
	program := global.NewChild(ProgramFrame)
	inner := program.NewChild(FunctionFrame).NewChild(BlockFrame)

	require.NoError(t, inner.Assign("leaked", NewNumber(1)))
	require.NoError(t, inner.Assign("console", NewNumber(2)))
	assert.True(t, program.HasOwn("leaked"))
	assert.True(t, program.HasOwn("console"))
	assert.False(t, global.HasOwn("leaked"))
	v, _ := global.Lookup("console")
	assert.Equal(t, "builtin", v.Str)
	assertKind(t, TypeError, inner.Assign("NaN", NewNumber(3)))

	next := global.NewChild(ProgramFrame)
	assert.False(t, next.Has("leaked"))
	assert.Same(t, program, inner.ProgramScope())
	assert.Same(t, global, global.ProgramScope())
	assert.Equal(t, "global", global.Kind().String())
}

func TestSetVar(t *testing.T) {
	fn := NewEnvironment(TDZError).NewChild(FunctionFrame)
	fn.Hoist("f")
	require.NoError(t, fn.DeclareLexical("l", LetBinding))

	assert.True(t, fn.SetVar("f", NewNumber(1)))
	assert.False(t, fn.SetVar("l", NewNumber(2)))
	assert.False(t, fn.SetVar("missing", NewNumber(3)))
	v, _ := fn.Lookup("f")
	assert.Equal(t, NewNumber(1), v)
	_, err := fn.Lookup("l")
	assertKind(t, ReferenceError, err)
	assert.False(t, fn.HasOwn("missing"))
}

func TestHoistTargetsFunctionScope(t *testing.T) {
	env := NewEnvironment(TDZError)
	fn := env.NewChild(FunctionFrame)
	block := fn.NewChild(BlockFrame).NewChild(BlockFrame)
	block.Hoist("v")
	assert.True(t, fn.HasOwn("v"))
	assert.False(t, env.HasOwn("v"))
	assert.Same(t, fn, block.FunctionScope())
	assert.Same(t, env, block.Root())

	require.NoError(t, fn.Declare("v", VarBinding, NewNumber(5)))
	block.Hoist("v")
	v, _ := fn.Lookup("v")
	assert.Equal(t, NewNumber(5), v, "hoisting must not reset an existing binding")
}

func TestTemporalDeadZone(t *testing.T) {
	env := NewEnvironment(TDZError)
	require.NoError(t, env.DeclareLexical("x", LetBinding))
	_, err := env.Lookup("x")
	assertKind(t, ReferenceError, err)
	assert.Contains(t, err.Error(), "Cannot access 'x' before initialization")
	assertKind(t, ReferenceError, env.Assign("x", NewNumber(1)))

	env.Initialize("x", NewNumber(2))
	v, err := env.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, NewNumber(2), v)
}

func TestTemporalDeadZoneUndefinedMode(t *testing.T) {
	env := NewEnvironment(TDZUndefined)
	block := env.NewChild(BlockFrame)
	require.NoError(t, block.DeclareLexical("x", ConstBinding))
	v, err := block.NewChild(BlockFrame).Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, Undefined, v)
}

func TestDropReturnsParent(t *testing.T) {
	root := NewEnvironment(TDZError)
	child := root.NewChild(BlockFrame)
	assert.Same(t, root, child.Drop())
	assert.Same(t, root, root.Drop())
	assert.Equal(t, BlockFrame, child.Kind())
	assert.Equal(t, ProgramFrame, root.Kind())
}

func TestForkCopiesBindings(t *testing.T) {
	root := NewEnvironment(TDZError)
	loop := root.NewChild(BlockFrame)
	require.NoError(t, loop.Declare("i", LetBinding, NewNumber(0)))

	iter := loop.Fork()
	require.NoError(t, iter.Assign("i", NewNumber(1)))
	orig, _ := loop.Lookup("i")
	forked, _ := iter.Lookup("i")
	assert.Equal(t, NewNumber(0), orig)
	assert.Equal(t, NewNumber(1), forked)
	assert.Same(t, root, iter.Parent())
}

func TestReceiverIsInheritedByFramesWithoutOne(t *testing.T) {
	root := NewEnvironment(TDZError)
	assert.Equal(t, Undefined, root.Receiver().This)

	this := NewString("outer")
	fn := root.NewChild(FunctionFrame)
	fn.BindReceiver(this, Undefined)
	arrow := fn.NewChild(FunctionFrame)
	assert.Same(t, this, arrow.NewChild(BlockFrame).Receiver().This)

	other := NewString("inner")
	arrow.BindReceiver(other, Undefined)
	assert.Same(t, other, arrow.Receiver().This)
}
