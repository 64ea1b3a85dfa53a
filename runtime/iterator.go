package runtime

import "unicode/utf8"

// Generator is the state of a generator object. The generator body has already run to
// completion; Next replays what it produced.
type Generator struct {
	values []*Value
	result *Value
	err    error
	pos    int
	done   bool
	Async  bool
}

// NewGenerator creates generator state from the values a body yielded, its return
// value, and the error it stopped with, if any. The error surfaces only after every
// yielded value has been consumed.
func NewGenerator(values []*Value, result *Value, err error) *Generator {
	if result == nil {
		result = Undefined
	}
	return &Generator{values: values, result: result, err: err}
}

// Next produces the next iteration record.
func (g *Generator) Next() (*Value, bool, error) {
	if g.pos < len(g.values) {
		v := g.values[g.pos]
		g.pos++
		return v, false, nil
	}
	if g.done {
		return Undefined, true, nil
	}
	g.done = true
	if g.err != nil {
		err := g.err
		g.err = nil
		return nil, true, err
	}
	return g.result, true, nil
}

// Return finishes the generator early, as generator.return(v) does.
func (g *Generator) Return(v *Value) *Value {
	g.pos = len(g.values)
	g.done = true
	g.err = nil
	return v
}

// Remaining reports how many buffered values have not been consumed.
func (g *Generator) Remaining() int {
	return len(g.values) - g.pos
}

// NewGeneratorObject wraps generator state in an object with the generator prototype.
func (r *Realm) NewGeneratorObject(g *Generator) *Object {
	proto := r.GeneratorPrototype
	if g.Async {
		proto = r.AsyncGeneratorPrototype
	}
	obj := newObject(ClassGenerator, proto)
	obj.Internal = g
	return obj
}

// Iterate calls fn with every value v produces when iterated: array elements, the
// code points of a string, the values of a generator, or the results of an object's
// next method. Return values of generators are not visited.
func Iterate(v *Value, fn func(*Value) error) error {
	switch v.Type {
	case TypeString:
		for s := v.Str; s != ""; {
			r, size := utf8.DecodeRuneInString(s)
			if err := fn(NewString(string(r))); err != nil {
				return err
			}
			s = s[size:]
		}
		return nil
	case TypeObject:
	default:
		return Errorf(TypeError, "%s is not iterable", v)
	}

	obj := v.Object
	switch {
	case obj.hasIndexedElements():
		for i := 0; i < len(obj.ArrayData); i++ {
			el := obj.ArrayData[i]
			if el == nil {
				el = Undefined
			}
			if err := fn(el); err != nil {
				return err
			}
		}
		return nil
	case obj.Class == ClassGenerator:
		g := obj.Internal.(*Generator)
		for {
			val, done, err := g.Next()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if err := fn(val); err != nil {
				return err
			}
		}
	}

	next, err := obj.Get("next")
	if err != nil {
		return err
	}
	if !next.IsCallable() {
		return Errorf(TypeError, "object is not iterable")
	}
	for {
		res, err := next.Object.Call(v, nil)
		if err != nil {
			return err
		}
		if res.Type != TypeObject {
			return Errorf(TypeError, "Iterator result %s is not an object", res)
		}
		done, err := res.Object.Get("done")
		if err != nil {
			return err
		}
		if done.ToBoolean() {
			return nil
		}
		val, err := res.Object.Get("value")
		if err != nil {
			return err
		}
		if err := fn(val); err != nil {
			return err
		}
	}
}

// Collect gathers the values Iterate visits.
func Collect(v *Value) ([]*Value, error) {
	var out []*Value
	err := Iterate(v, func(el *Value) error {
		out = append(out, el)
		return nil
	})
	return out, err
}

// GetMember reads a property of any value, looking primitives up on their prototypes.
func (r *Realm) GetMember(v *Value, key string) (*Value, error) {
	switch v.Type {
	case TypeObject:
		return v.Object.Get(key)
	case TypeString:
		if key == "length" {
			return NewNumber(float64(len(StringUnits(v.Str)))), nil
		}
		if i, ok := arrayIndex(key); ok {
			units := StringUnits(v.Str)
			if i < len(units) {
				return NewString(UnitsString(units[i : i+1])), nil
			}
			return Undefined, nil
		}
		return r.StringPrototype.GetWithReceiver(key, v)
	case TypeNumber:
		return r.NumberPrototype.GetWithReceiver(key, v)
	case TypeBoolean:
		return r.BooleanPrototype.GetWithReceiver(key, v)
	}
	return nil, Errorf(TypeError, "Cannot read properties of %s (reading '%s')", v, key)
}

// SetMember assigns a property of any value. Writes to primitives are ignored.
func (r *Realm) SetMember(v *Value, key string, val *Value) error {
	switch v.Type {
	case TypeObject:
		return v.Object.Set(key, val)
	case TypeUndefined, TypeNull:
		return Errorf(TypeError, "Cannot set properties of %s (setting '%s')", v, key)
	}
	return nil
}
