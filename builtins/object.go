package builtins

import (
	"github.com/example/jseval/runtime"
)

func (b *installer) installObject() {
	proto := b.realm.ObjectPrototype
	toObject := func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		v := arg(args, 0)
		if v.IsNullish() {
			return runtime.NewObject(b.realm.NewObject()), nil
		}
		return v, nil
	}
	ctor := b.realm.NewConstructor("Object", 1, toObject, func(args []*runtime.Value, _ *runtime.Object) (*runtime.Value, error) {
		return toObject(runtime.Undefined, args)
	}, proto)

	b.method(ctor, "keys", 1, b.objectKeys)
	b.method(ctor, "values", 1, b.objectValues)
	b.method(ctor, "entries", 1, b.objectEntries)
	b.method(ctor, "assign", 2, objectAssign)
	b.method(ctor, "create", 2, b.objectCreate)
	b.method(ctor, "getPrototypeOf", 1, objectGetPrototypeOf)
	b.method(ctor, "defineProperty", 3, objectDefineProperty)

	b.method(proto, "hasOwnProperty", 1, objectHasOwnProperty)
	b.method(proto, "toString", 0, objectToString)
	b.method(proto, "valueOf", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return this, nil
	})

	b.global("Object", runtime.NewObject(ctor))
}

// ownEnumerable lists the own enumerable keys of v; primitives other than strings have
// none.
func ownEnumerable(v *runtime.Value) (*runtime.Object, []string, error) {
	if v.IsNullish() {
		return nil, nil, runtime.Errorf(runtime.TypeError, "Cannot convert undefined or null to object")
	}
	if !v.IsObject() {
		return nil, nil, nil
	}
	return v.Object, v.Object.OwnEnumerableKeys(), nil
}

func (b *installer) objectKeys(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	_, keys, err := ownEnumerable(arg(args, 0))
	if err != nil {
		return nil, err
	}
	out := make([]*runtime.Value, len(keys))
	for i, k := range keys {
		out[i] = runtime.NewString(k)
	}
	return b.realm.NewArrayValue(out), nil
}

func (b *installer) objectValues(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, keys, err := ownEnumerable(arg(args, 0))
	if err != nil {
		return nil, err
	}
	out := make([]*runtime.Value, 0, len(keys))
	for _, k := range keys {
		v, err := obj.Get(k)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return b.realm.NewArrayValue(out), nil
}

func (b *installer) objectEntries(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, keys, err := ownEnumerable(arg(args, 0))
	if err != nil {
		return nil, err
	}
	out := make([]*runtime.Value, 0, len(keys))
	for _, k := range keys {
		v, err := obj.Get(k)
		if err != nil {
			return nil, err
		}
		out = append(out, b.realm.NewArrayValue([]*runtime.Value{runtime.NewString(k), v}))
	}
	return b.realm.NewArrayValue(out), nil
}

func objectAssign(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target := arg(args, 0)
	if !target.IsObject() {
		return nil, runtime.Errorf(runtime.TypeError, "Object.assign target must be an object")
	}
	for _, src := range args[1:] {
		if src.IsNullish() {
			continue
		}
		obj, keys, err := ownEnumerable(src)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			v, err := obj.Get(k)
			if err != nil {
				return nil, err
			}
			if err := target.Object.Set(k, v); err != nil {
				return nil, err
			}
		}
	}
	return target, nil
}

func (b *installer) objectCreate(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	protoArg := arg(args, 0)
	var proto *runtime.Object
	switch {
	case protoArg.IsObject():
		proto = protoArg.Object
	case protoArg.Type == runtime.TypeNull:
	default:
		return nil, runtime.Errorf(runtime.TypeError, "Object prototype may only be an Object or null: %s", protoArg)
	}
	obj := runtime.NewPlainObject(proto)
	if props := arg(args, 1); props.IsObject() {
		for _, k := range props.Object.OwnEnumerableKeys() {
			desc, err := props.Object.Get(k)
			if err != nil {
				return nil, err
			}
			if err := defineFromDescriptor(obj, k, desc); err != nil {
				return nil, err
			}
		}
	}
	return runtime.NewObject(obj), nil
}

func objectGetPrototypeOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	v := arg(args, 0)
	if !v.IsObject() {
		return nil, runtime.Errorf(runtime.TypeError, "Object.getPrototypeOf called on non-object")
	}
	if v.Object.Prototype == nil {
		return runtime.Null, nil
	}
	return runtime.NewObject(v.Object.Prototype), nil
}

func objectDefineProperty(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target := arg(args, 0)
	if !target.IsObject() {
		return nil, runtime.Errorf(runtime.TypeError, "Object.defineProperty called on non-object")
	}
	key, err := runtime.ToPropertyKey(arg(args, 1))
	if err != nil {
		return nil, err
	}
	if err := defineFromDescriptor(target.Object, key, arg(args, 2)); err != nil {
		return nil, err
	}
	return target, nil
}

// defineFromDescriptor installs a property from a descriptor object. Attributes left
// out default to false.
func defineFromDescriptor(obj *runtime.Object, key string, desc *runtime.Value) error {
	if !desc.IsObject() {
		return runtime.Errorf(runtime.TypeError, "Property description must be an object: %s", desc)
	}
	d := desc.Object
	flag := func(name string) (bool, error) {
		v, err := d.Get(name)
		if err != nil {
			return false, err
		}
		return v.ToBoolean(), nil
	}
	prop := &runtime.Property{}
	var err error
	if prop.Enumerable, err = flag("enumerable"); err != nil {
		return err
	}
	if prop.Configurable, err = flag("configurable"); err != nil {
		return err
	}

	getter, err := d.Get("get")
	if err != nil {
		return err
	}
	setter, err := d.Get("set")
	if err != nil {
		return err
	}
	if !getter.IsUndefined() || !setter.IsUndefined() {
		prop.IsAccessor = true
		if getter.IsCallable() {
			prop.Getter = getter.Object
		} else if !getter.IsUndefined() {
			return runtime.Errorf(runtime.TypeError, "Getter must be a function: %s", getter)
		}
		if setter.IsCallable() {
			prop.Setter = setter.Object
		} else if !setter.IsUndefined() {
			return runtime.Errorf(runtime.TypeError, "Setter must be a function: %s", setter)
		}
		return obj.DefineOwnProperty(key, prop)
	}

	if prop.Writable, err = flag("writable"); err != nil {
		return err
	}
	if prop.Value, err = d.Get("value"); err != nil {
		return err
	}
	return obj.DefineOwnProperty(key, prop)
}

func objectHasOwnProperty(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	key, err := runtime.ToPropertyKey(arg(args, 0))
	if err != nil {
		return nil, err
	}
	switch {
	case this.IsObject():
		return runtime.NewBool(this.Object.HasOwnProperty(key)), nil
	case this.Type == runtime.TypeString:
		if key == "length" {
			return runtime.True, nil
		}
	case this.IsNullish():
		return nil, runtime.Errorf(runtime.TypeError, "Cannot convert undefined or null to object")
	}
	return runtime.False, nil
}

func objectToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	switch this.Type {
	case runtime.TypeUndefined:
		return runtime.NewString("[object Undefined]"), nil
	case runtime.TypeNull:
		return runtime.NewString("[object Null]"), nil
	case runtime.TypeObject:
		tag := "Object"
		switch this.Object.Class {
		case runtime.ClassArray:
			tag = "Array"
		case runtime.ClassArguments:
			tag = "Arguments"
		case runtime.ClassFunction:
			tag = "Function"
		case runtime.ClassError:
			tag = "Error"
		case runtime.ClassPromise:
			tag = "Promise"
		case runtime.ClassGenerator:
			tag = "Generator"
		}
		return runtime.NewString("[object " + tag + "]"), nil
	}
	typ := this.Type.String()
	return runtime.NewString("[object " + string(typ[0]-'a'+'A') + typ[1:] + "]"), nil
}
