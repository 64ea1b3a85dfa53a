package runtime

import (
	"fmt"

	"github.com/example/jseval/ast"
)

// ErrorKind names a built-in error constructor.
type ErrorKind string

const (
	PlainError     ErrorKind = "Error"
	TypeError      ErrorKind = "TypeError"
	ReferenceError ErrorKind = "ReferenceError"
	SyntaxError    ErrorKind = "SyntaxError"
	RangeError     ErrorKind = "RangeError"
)

// ErrorKinds lists every kind in the order their constructors are installed.
var ErrorKinds = []ErrorKind{PlainError, TypeError, ReferenceError, SyntaxError, RangeError}

// Error is a language-level error raised by the runtime. The interpreter turns it into
// an error object the program can catch.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Thrown carries an arbitrary thrown value through Go code, for example out of a
// callback invoked by a native function.
type Thrown struct {
	Value *Value
	Span  ast.Span // where the value was thrown, when known
}

func (t *Thrown) Error() string {
	return "Uncaught " + t.Value.String()
}

// Throw wraps v as an error.
func Throw(v *Value) error {
	return &Thrown{Value: v}
}
