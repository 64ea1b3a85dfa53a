package runtime

import "math"

// Realm holds the intrinsic objects shared by everything one interpreter creates.
// Realms are independent, so separate interpreters never share mutable state.
type Realm struct {
	ObjectPrototype         *Object
	FunctionPrototype       *Object
	ArrayPrototype          *Object
	StringPrototype         *Object
	NumberPrototype         *Object
	BooleanPrototype        *Object
	PromisePrototype        *Object
	GeneratorPrototype      *Object
	AsyncGeneratorPrototype *Object

	ErrorPrototypes map[ErrorKind]*Object
}

// NewRealm creates the bare intrinsic prototypes. Their methods are installed by the
// builtins package.
func NewRealm() *Realm {
	objProto := NewPlainObject(nil)
	fnProto := newObject(ClassFunction, objProto)
	fnProto.Call = func(this *Value, args []*Value) (*Value, error) { return Undefined, nil }

	r := &Realm{
		ObjectPrototype:         objProto,
		FunctionPrototype:       fnProto,
		ArrayPrototype:          newObject(ClassArray, objProto),
		StringPrototype:         NewPlainObject(objProto),
		NumberPrototype:         NewPlainObject(objProto),
		BooleanPrototype:        NewPlainObject(objProto),
		PromisePrototype:        NewPlainObject(objProto),
		GeneratorPrototype:      NewPlainObject(objProto),
		AsyncGeneratorPrototype: NewPlainObject(objProto),
		ErrorPrototypes:         map[ErrorKind]*Object{},
	}
	base := NewPlainObject(objProto)
	r.ErrorPrototypes[PlainError] = base
	for _, kind := range ErrorKinds {
		proto := base
		if kind != PlainError {
			proto = NewPlainObject(base)
		}
		proto.SetHidden("name", NewString(string(kind)))
		proto.SetHidden("message", NewString(""))
		r.ErrorPrototypes[kind] = proto
	}
	return r
}

func (r *Realm) NewObject() *Object {
	return NewPlainObject(r.ObjectPrototype)
}

func (r *Realm) NewArray(values []*Value) *Object {
	arr := newObject(ClassArray, r.ArrayPrototype)
	arr.ArrayData = values
	return arr
}

func (r *Realm) NewArrayValue(values []*Value) *Value {
	return NewObject(r.NewArray(values))
}

// NewArguments creates the array-like arguments object of a call.
func (r *Realm) NewArguments(args []*Value) *Object {
	obj := newObject(ClassArguments, r.ObjectPrototype)
	obj.ArrayData = append([]*Value(nil), args...)
	return obj
}

// NewFunction creates a function object around fn with the standard name and length
// properties. The result is not a constructor.
func (r *Realm) NewFunction(name string, length int, fn CallableFunc) *Object {
	obj := newObject(ClassFunction, r.FunctionPrototype)
	obj.Call = fn
	obj.props.Set("length", &Property{Value: NewNumber(float64(length)), Configurable: true})
	obj.props.Set("name", &Property{Value: NewString(name), Configurable: true})
	return obj
}

// NewConstructor creates a function usable with new. Its prototype property is the
// given object, whose constructor property is pointed back at the function.
func (r *Realm) NewConstructor(name string, length int, fn CallableFunc, construct ConstructFunc, proto *Object) *Object {
	obj := r.NewFunction(name, length, fn)
	obj.Construct = construct
	obj.props.Set("prototype", &Property{Value: NewObject(proto), Writable: true})
	proto.SetHidden("constructor", NewObject(obj))
	return obj
}

// NewError creates an error object of the given kind.
func (r *Realm) NewError(kind ErrorKind, message string) *Object {
	proto, ok := r.ErrorPrototypes[kind]
	if !ok {
		proto = r.ErrorPrototypes[PlainError]
	}
	obj := newObject(ClassError, proto)
	obj.SetHidden("message", NewString(message))
	obj.SetHidden("stack", NewString(errorString(obj)))
	return obj
}

// ErrorValue converts err into the value a catch clause receives.
func (r *Realm) ErrorValue(err error) (*Value, bool) {
	switch e := err.(type) {
	case *Thrown:
		return e.Value, true
	case *Error:
		return NewObject(r.NewError(e.Kind, e.Message)), true
	}
	return nil, false
}

// NewIterResult creates a {value, done} record.
func (r *Realm) NewIterResult(value *Value, done bool) *Value {
	obj := r.NewObject()
	obj.props.Set("value", &Property{Value: value, Writable: true, Enumerable: true, Configurable: true})
	obj.props.Set("done", &Property{Value: NewBool(done), Writable: true, Enumerable: true, Configurable: true})
	return NewObject(obj)
}

// BoundFunction is the state of a function returned by bind: the receiver and leading
// arguments it was bound with.
type BoundFunction struct {
	Target *Object
	This   *Value
	Args   []*Value
}

func (b *BoundFunction) args(rest []*Value) []*Value {
	all := make([]*Value, 0, len(b.Args)+len(rest))
	return append(append(all, b.Args...), rest...)
}

// NewBoundFunction implements bind. Calls always use the bound receiver; construction
// forwards to the target and ignores it.
func (r *Realm) NewBoundFunction(target *Object, this *Value, args []*Value) *Object {
	bound := &BoundFunction{Target: target, This: this, Args: append([]*Value(nil), args...)}
	length := 0
	if l := target.Value("length"); l.Type == TypeNumber {
		length = int(math.Max(0, l.Number-float64(len(args))))
	}
	name := "bound " + target.Value("name").String()
	obj := r.NewFunction(name, length, func(_ *Value, rest []*Value) (*Value, error) {
		return target.Call(bound.This, bound.args(rest))
	})
	obj.Internal = bound
	if target.Construct != nil {
		obj.Construct = func(rest []*Value, newTarget *Object) (*Value, error) {
			if newTarget == obj {
				newTarget = target
			}
			return target.Construct(bound.args(rest), newTarget)
		}
	}
	return obj
}
