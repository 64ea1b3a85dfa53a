package runtime

import (
	"math"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Class distinguishes objects with internal behavior.
type Class int

const (
	ClassObject Class = iota
	ClassArray
	ClassArguments
	ClassFunction
	ClassError
	ClassPromise
	ClassGenerator
)

// CallableFunc is the Go signature of every callable object. The receiver is passed
// explicitly on each call.
type CallableFunc func(this *Value, args []*Value) (*Value, error)

// ConstructFunc implements [[Construct]]. newTarget is the constructor new was applied to.
type ConstructFunc func(args []*Value, newTarget *Object) (*Value, error)

// Property is a property descriptor.
type Property struct {
	Value        *Value
	Getter       *Object // for accessor properties
	Setter       *Object // for accessor properties
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

// Object is a script object. Named properties keep insertion order; array elements
// live in ArrayData, where nil marks a hole.
type Object struct {
	Class     Class
	Prototype *Object
	ArrayData []*Value
	Call      CallableFunc
	Construct ConstructFunc
	Internal  interface{} // closure, promise, generator or bound-function state

	props *orderedmap.OrderedMap[string, *Property]
}

func newObject(class Class, proto *Object) *Object {
	return &Object{
		Class:     class,
		Prototype: proto,
		props:     orderedmap.New[string, *Property](),
	}
}

// NewPlainObject creates an ordinary object with the given prototype, which may be nil.
func NewPlainObject(proto *Object) *Object {
	return newObject(ClassObject, proto)
}

func (o *Object) IsArray() bool {
	return o.Class == ClassArray
}

// arrayIndex parses a canonical array index such as "0" or "12".
func arrayIndex(key string) (int, bool) {
	if key == "" || len(key) > 10 || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return int(n), true
}

func (o *Object) hasIndexedElements() bool {
	return o.Class == ClassArray || o.Class == ClassArguments
}

// GetOwnProperty returns the own property named key.
func (o *Object) GetOwnProperty(key string) (*Property, bool) {
	if o.hasIndexedElements() {
		if key == "length" {
			return &Property{Value: NewNumber(float64(len(o.ArrayData))), Writable: true}, true
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(o.ArrayData) && o.ArrayData[i] != nil {
				return &Property{Value: o.ArrayData[i], Writable: true, Enumerable: true, Configurable: true}, true
			}
			return nil, false
		}
	}
	return o.props.Get(key)
}

func (o *Object) findProperty(key string) (*Property, bool) {
	for obj := o; obj != nil; obj = obj.Prototype {
		if prop, ok := obj.GetOwnProperty(key); ok {
			return prop, true
		}
	}
	return nil, false
}

// Get reads a property through the prototype chain, running getters with o as the
// receiver.
func (o *Object) Get(key string) (*Value, error) {
	return o.GetWithReceiver(key, NewObject(o))
}

// GetWithReceiver is Get with an explicit receiver for getters, used when the lookup
// starts at a primitive's prototype.
func (o *Object) GetWithReceiver(key string, receiver *Value) (*Value, error) {
	prop, ok := o.findProperty(key)
	if !ok {
		return Undefined, nil
	}
	if prop.IsAccessor {
		if prop.Getter == nil {
			return Undefined, nil
		}
		return prop.Getter.Call(receiver, nil)
	}
	return prop.Value, nil
}

// Value reads a data property through the prototype chain without running getters.
func (o *Object) Value(key string) *Value {
	prop, ok := o.findProperty(key)
	if !ok || prop.IsAccessor || prop.Value == nil {
		return Undefined
	}
	return prop.Value
}

// Set assigns a property. Setters found on the prototype chain run with o as the
// receiver; writes to read-only properties are ignored.
func (o *Object) Set(key string, val *Value) error {
	if o.hasIndexedElements() {
		if key == "length" {
			return o.setLength(val)
		}
		if i, ok := arrayIndex(key); ok {
			return o.setIndex(i, val)
		}
	}
	if prop, ok := o.props.Get(key); ok {
		if prop.IsAccessor {
			return o.callSetter(prop, val)
		}
		if prop.Writable {
			prop.Value = val
		}
		return nil
	}
	if o.Prototype != nil {
		if prop, ok := o.Prototype.findProperty(key); ok {
			if prop.IsAccessor {
				return o.callSetter(prop, val)
			}
			if !prop.Writable {
				return nil
			}
		}
	}
	o.props.Set(key, &Property{Value: val, Writable: true, Enumerable: true, Configurable: true})
	return nil
}

func (o *Object) callSetter(prop *Property, val *Value) error {
	if prop.Setter == nil {
		return nil
	}
	_, err := prop.Setter.Call(NewObject(o), []*Value{val})
	return err
}

// MaxArrayLength bounds the elements an array stores. Elements are kept densely, so
// a write far past the end allocates every slot in between.
const MaxArrayLength = 1 << 24

// CheckArrayLength validates a requested array length.
func CheckArrayLength(n float64) error {
	if n < 0 || n != math.Trunc(n) || n >= math.MaxUint32 {
		return Errorf(RangeError, "Invalid array length")
	}
	if n > MaxArrayLength {
		return Errorf(RangeError, "Array length %v exceeds the supported maximum of %d", n, MaxArrayLength)
	}
	return nil
}

func (o *Object) setIndex(i int, val *Value) error {
	if i >= len(o.ArrayData) {
		if err := CheckArrayLength(float64(i) + 1); err != nil {
			return err
		}
		grown := make([]*Value, i+1)
		copy(grown, o.ArrayData)
		o.ArrayData = grown
	}
	o.ArrayData[i] = val
	return nil
}

func (o *Object) setLength(val *Value) error {
	n := val.Number
	if val.Type != TypeNumber {
		var err error
		if n, err = ToNumber(val); err != nil {
			return err
		}
	}
	if err := CheckArrayLength(n); err != nil {
		return err
	}
	size := int(n)
	if size <= len(o.ArrayData) {
		o.ArrayData = o.ArrayData[:size]
		return nil
	}
	grown := make([]*Value, size)
	copy(grown, o.ArrayData)
	o.ArrayData = grown
	return nil
}

// DefineOwnProperty installs a property descriptor as is. Only array elements past
// MaxArrayLength can fail.
func (o *Object) DefineOwnProperty(key string, prop *Property) error {
	if o.hasIndexedElements() && !prop.IsAccessor {
		if i, ok := arrayIndex(key); ok {
			return o.setIndex(i, prop.Value)
		}
	}
	o.props.Set(key, prop)
	return nil
}

// SetHidden defines a writable, configurable, non-enumerable data property, the shape
// used for built-in methods.
func (o *Object) SetHidden(key string, val *Value) {
	o.props.Set(key, &Property{Value: val, Writable: true, Configurable: true})
}

// Delete removes an own property, reporting false if it is not configurable.
func (o *Object) Delete(key string) bool {
	if o.hasIndexedElements() {
		if key == "length" {
			return false
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(o.ArrayData) {
				o.ArrayData[i] = nil
			}
			return true
		}
	}
	prop, ok := o.props.Get(key)
	if !ok {
		return true
	}
	if !prop.Configurable {
		return false
	}
	o.props.Delete(key)
	return true
}

func (o *Object) HasOwnProperty(key string) bool {
	_, ok := o.GetOwnProperty(key)
	return ok
}

func (o *Object) HasProperty(key string) bool {
	_, ok := o.findProperty(key)
	return ok
}

// OwnKeys lists own property keys: array indices in ascending order, then named
// properties in insertion order.
func (o *Object) OwnKeys() []string {
	var keys []string
	if o.hasIndexedElements() {
		for i, el := range o.ArrayData {
			if el != nil {
				keys = append(keys, strconv.Itoa(i))
			}
		}
	}
	for pair := o.props.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// OwnEnumerableKeys lists the keys Object.keys reports.
func (o *Object) OwnEnumerableKeys() []string {
	var keys []string
	for _, key := range o.OwnKeys() {
		if prop, ok := o.GetOwnProperty(key); ok && prop.Enumerable {
			keys = append(keys, key)
		}
	}
	return keys
}

// EnumerableKeys lists the keys a for-in loop visits: own enumerable keys first, then
// those inherited, skipping names already seen.
func (o *Object) EnumerableKeys() []string {
	seen := map[string]bool{}
	var keys []string
	for obj := o; obj != nil; obj = obj.Prototype {
		for _, key := range obj.OwnKeys() {
			if seen[key] {
				continue
			}
			seen[key] = true
			if prop, ok := obj.GetOwnProperty(key); ok && prop.Enumerable {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// Callable reports whether the object can be invoked.
func (o *Object) Callable() bool {
	return o.Call != nil
}

// Constructor reports whether the object can be used with new.
func (o *Object) Constructor() bool {
	return o.Construct != nil
}

// InstanceOf walks v's prototype chain looking for o.prototype.
func (o *Object) InstanceOf(v *Value) (bool, error) {
	if bound, ok := o.Internal.(*BoundFunction); ok {
		return bound.Target.InstanceOf(v)
	}
	if v.Type != TypeObject {
		return false, nil
	}
	protoVal, err := o.Get("prototype")
	if err != nil {
		return false, err
	}
	if protoVal.Type != TypeObject {
		return false, Errorf(TypeError, "Function has non-object prototype '%s' in instanceof check", protoVal)
	}
	for p := v.Object.Prototype; p != nil; p = p.Prototype {
		if p == protoVal.Object {
			return true, nil
		}
	}
	return false, nil
}
