package runtime

// FrameKind classifies an environment frame.
type FrameKind int

const (
	ProgramFrame FrameKind = iota
	FunctionFrame
	BlockFrame
	// GlobalFrame holds the built-in bindings shared by every program.
	GlobalFrame
)

func (k FrameKind) String() string {
	switch k {
	case GlobalFrame:
		return "global"
	case ProgramFrame:
		return "program"
	case FunctionFrame:
		return "function"
	default:
		return "block"
	}
}

// BindingKind is the declaration form that created a binding.
type BindingKind string

const (
	VarBinding   BindingKind = "var"
	LetBinding   BindingKind = "let"
	ConstBinding BindingKind = "const"
)

// TDZMode selects what reading a let or const binding before its declaration does.
type TDZMode int

const (
	// TDZError raises a ReferenceError.
	TDZError TDZMode = iota
	// TDZUndefined reads undefined.
	TDZUndefined
)

type Binding struct {
	Value       *Value
	Kind        BindingKind
	Initialized bool
}

// Receiver holds the this value and new.target of a non-arrow function call or of
// the program.
type Receiver struct {
	This      *Value
	NewTarget *Value
}

// Environment is one frame of the scope chain. A child frame references its parent
// and never owns it; closures keep their defining frame alive.
type Environment struct {
	vars     map[string]*Binding
	parent   *Environment
	kind     FrameKind
	tdz      TDZMode
	receiver *Receiver
}

// NewEnvironment creates a root program frame.
func NewEnvironment(tdz TDZMode) *Environment {
	return &Environment{vars: map[string]*Binding{}, kind: ProgramFrame, tdz: tdz}
}

// NewGlobalEnvironment creates the root frame for built-ins. Programs run in child
// program frames, so nothing a program assigns is written here.
func NewGlobalEnvironment(tdz TDZMode) *Environment {
	return &Environment{vars: map[string]*Binding{}, kind: GlobalFrame, tdz: tdz}
}

// NewChild creates a frame whose parent is e.
func (e *Environment) NewChild(kind FrameKind) *Environment {
	return &Environment{vars: map[string]*Binding{}, parent: e, kind: kind, tdz: e.tdz}
}

// Drop returns the parent frame, or e itself when e is the root.
func (e *Environment) Drop() *Environment {
	if e.parent == nil {
		return e
	}
	return e.parent
}

func (e *Environment) Parent() *Environment { return e.parent }
func (e *Environment) Kind() FrameKind      { return e.kind }

// Root returns the outermost frame of the chain.
func (e *Environment) Root() *Environment {
	for e.parent != nil {
		e = e.parent
	}
	return e
}

// ProgramScope returns the nearest program frame, falling back to the root.
func (e *Environment) ProgramScope() *Environment {
	for env := e; env != nil; env = env.parent {
		if env.kind == ProgramFrame {
			return env
		}
	}
	return e.Root()
}

// FunctionScope returns the nearest function or program frame, where var
// declarations live.
func (e *Environment) FunctionScope() *Environment {
	for e.kind == BlockFrame && e.parent != nil {
		e = e.parent
	}
	return e
}

func (e *Environment) resolve(name string) (*Binding, *Environment) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.vars[name]; ok {
			return b, env
		}
	}
	return nil, nil
}

// Has reports whether name is bound anywhere on the chain.
func (e *Environment) Has(name string) bool {
	b, _ := e.resolve(name)
	return b != nil
}

// HasOwn reports whether name is bound in this frame.
func (e *Environment) HasOwn(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Declare creates or updates a binding in this frame. Redeclaring a name that is or
// would become let or const is a SyntaxError; var over var is allowed and updates the
// value.
func (e *Environment) Declare(name string, kind BindingKind, value *Value) error {
	if existing, ok := e.vars[name]; ok {
		if kind != VarBinding || existing.Kind != VarBinding {
			return Errorf(SyntaxError, "Identifier '%s' has already been declared", name)
		}
		existing.Value = value
		existing.Initialized = true
		return nil
	}
	e.vars[name] = &Binding{Value: value, Kind: kind, Initialized: true}
	return nil
}

// DeclareLexical creates an uninitialized let or const binding in this frame, which
// stays in its temporal dead zone until Initialize.
func (e *Environment) DeclareLexical(name string, kind BindingKind) error {
	if _, ok := e.vars[name]; ok {
		return Errorf(SyntaxError, "Identifier '%s' has already been declared", name)
	}
	e.vars[name] = &Binding{Value: Undefined, Kind: kind}
	return nil
}

// Initialize gives a binding in this frame its first value, declaring it if needed.
func (e *Environment) Initialize(name string, value *Value) {
	if b, ok := e.vars[name]; ok {
		b.Value = value
		b.Initialized = true
		return
	}
	e.vars[name] = &Binding{Value: value, Kind: LetBinding, Initialized: true}
}

// Hoist pre-declares a var in the nearest function or program frame as undefined,
// leaving any existing binding alone.
func (e *Environment) Hoist(name string) {
	scope := e.FunctionScope()
	if _, ok := scope.vars[name]; ok {
		return
	}
	scope.vars[name] = &Binding{Value: Undefined, Kind: VarBinding, Initialized: true}
}

// SetVar stores value in an existing var binding of this frame and reports whether
// one was there. Let, const and missing names are left untouched.
func (e *Environment) SetVar(name string, value *Value) bool {
	b, ok := e.vars[name]
	if !ok || b.Kind != VarBinding {
		return false
	}
	b.Value = value
	b.Initialized = true
	return true
}

func (e *Environment) deadZone(name string) (*Value, error) {
	if e.tdz == TDZUndefined {
		return Undefined, nil
	}
	return nil, Errorf(ReferenceError, "Cannot access '%s' before initialization", name)
}

// Lookup reads a binding through the scope chain.
func (e *Environment) Lookup(name string) (*Value, error) {
	b, _ := e.resolve(name)
	if b == nil {
		return nil, Errorf(ReferenceError, "%s is not defined", name)
	}
	if !b.Initialized {
		return e.deadZone(name)
	}
	return b.Value, nil
}

// Assign writes to the nearest binding of name. Assigning an undeclared name creates
// a var in the nearest program frame. A writable global is shadowed there rather than
// overwritten. Constants are never modified.
func (e *Environment) Assign(name string, value *Value) error {
	b, owner := e.resolve(name)
	if b == nil || (owner.kind == GlobalFrame && b.Kind != ConstBinding) {
		e.ProgramScope().vars[name] = &Binding{Value: value, Kind: VarBinding, Initialized: true}
		return nil
	}
	if !b.Initialized {
		if _, err := e.deadZone(name); err != nil {
			return err
		}
	}
	if b.Kind == ConstBinding {
		return Errorf(TypeError, "Assignment to constant variable '%s'", name)
	}
	b.Value = value
	b.Initialized = true
	return nil
}

// Fork copies this frame and its bindings under the same parent. Loops use it to give
// every iteration its own let bindings.
func (e *Environment) Fork() *Environment {
	f := &Environment{vars: make(map[string]*Binding, len(e.vars)), parent: e.parent, kind: e.kind, tdz: e.tdz, receiver: e.receiver}
	for name, b := range e.vars {
		copied := *b
		f.vars[name] = &copied
	}
	return f
}

// BindReceiver attaches this and new.target to the frame.
func (e *Environment) BindReceiver(this, newTarget *Value) {
	e.receiver = &Receiver{This: this, NewTarget: newTarget}
}

// Receiver finds the nearest frame carrying a receiver. Arrow function frames carry
// none, so arrows see the receiver of their defining context.
func (e *Environment) Receiver() *Receiver {
	for env := e; env != nil; env = env.parent {
		if env.receiver != nil {
			return env.receiver
		}
	}
	return &Receiver{This: Undefined, NewTarget: Undefined}
}
