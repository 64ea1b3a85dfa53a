package builtins

import (
	"github.com/example/jseval/runtime"
)

// installErrors creates one constructor per error kind. Each can be called with or
// without new and honors the prototype of a subclass passed as newTarget.
func (b *installer) installErrors() {
	for _, kind := range runtime.ErrorKinds {
		proto := b.realm.ErrorPrototypes[kind]
		create := func(args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
			obj, err := b.newError(kind, arg(args, 0))
			if err != nil {
				return nil, err
			}
			if newTarget != nil {
				if p := newTarget.Value("prototype"); p.IsObject() {
					obj.Prototype = p.Object
				}
			}
			return runtime.NewObject(obj), nil
		}
		ctor := b.realm.NewConstructor(string(kind), 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			return create(args, nil)
		}, create, proto)
		if kind != runtime.PlainError {
			ctor.Prototype = b.errorConstructor()
		}
		b.global(string(kind), runtime.NewObject(ctor))
	}

	b.method(b.realm.ErrorPrototypes[runtime.PlainError], "toString", 0, errorToString)
}

func (b *installer) errorConstructor() *runtime.Object {
	return b.realm.ErrorPrototypes[runtime.PlainError].Value("constructor").Object
}

func (b *installer) newError(kind runtime.ErrorKind, message *runtime.Value) (*runtime.Object, error) {
	if message.IsUndefined() {
		obj := b.realm.NewError(kind, "")
		obj.Delete("message")
		return obj, nil
	}
	msg, err := runtime.ToString(message)
	if err != nil {
		return nil, err
	}
	return b.realm.NewError(kind, msg), nil
}

func errorToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisObject(this, "Error.prototype.toString")
	if err != nil {
		return nil, err
	}
	name := "Error"
	if n, err := obj.Get("name"); err != nil {
		return nil, err
	} else if !n.IsUndefined() {
		if name, err = runtime.ToString(n); err != nil {
			return nil, err
		}
	}
	msg := ""
	if m, err := obj.Get("message"); err != nil {
		return nil, err
	} else if !m.IsUndefined() {
		if msg, err = runtime.ToString(m); err != nil {
			return nil, err
		}
	}
	switch {
	case msg == "":
		return runtime.NewString(name), nil
	case name == "":
		return runtime.NewString(msg), nil
	}
	return runtime.NewString(name + ": " + msg), nil
}
