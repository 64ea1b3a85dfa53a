package runtime

type PromiseState int

const (
	Pending PromiseState = iota
	Fulfilled
	Rejected
)

func (s PromiseState) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Promise is the internal state of a promise object. Settlement is synchronous:
// reactions registered on a pending promise run as soon as it settles, and reactions
// registered on a settled promise run immediately. A reaction that fails stops the
// remaining ones and its error is returned from the call that settled the promise.
type Promise struct {
	State  PromiseState
	Result *Value

	reactions []func() error
}

// Resolve fulfills p with v, or adopts v's state when v is itself a promise.
func (p *Promise) Resolve(v *Value) error {
	if p.State != Pending {
		return nil
	}
	if other := PromiseOf(v); other != nil {
		if other == p {
			return p.Reject(NewString("Chaining cycle detected for promise"))
		}
		return other.OnSettled(func() error {
			if other.State == Fulfilled {
				return p.settle(Fulfilled, other.Result)
			}
			return p.settle(Rejected, other.Result)
		})
	}
	return p.settle(Fulfilled, v)
}

func (p *Promise) Reject(reason *Value) error {
	if p.State != Pending {
		return nil
	}
	return p.settle(Rejected, reason)
}

func (p *Promise) settle(state PromiseState, v *Value) error {
	p.State = state
	p.Result = v
	reactions := p.reactions
	p.reactions = nil
	for _, fn := range reactions {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// OnSettled runs fn once p has settled.
func (p *Promise) OnSettled(fn func() error) error {
	if p.State != Pending {
		return fn()
	}
	p.reactions = append(p.reactions, fn)
	return nil
}

// PromiseOf returns the promise state behind v, or nil if v is not a promise.
func PromiseOf(v *Value) *Promise {
	if v.Type != TypeObject {
		return nil
	}
	p, _ := v.Object.Internal.(*Promise)
	return p
}

// NewPromise creates a pending promise object.
func (r *Realm) NewPromise() (*Object, *Promise) {
	p := &Promise{}
	obj := newObject(ClassPromise, r.PromisePrototype)
	obj.Internal = p
	return obj, p
}

// PromiseResolve returns v if it is a promise and otherwise a promise fulfilled with v.
func (r *Realm) PromiseResolve(v *Value) *Value {
	if PromiseOf(v) != nil {
		return v
	}
	obj, p := r.NewPromise()
	p.State, p.Result = Fulfilled, v
	return NewObject(obj)
}

// PromiseReject returns a promise rejected with reason.
func (r *Realm) PromiseReject(reason *Value) *Value {
	obj, p := r.NewPromise()
	p.State, p.Result = Rejected, reason
	return NewObject(obj)
}
