package interpreter

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
)

// Exception is a value thrown by the program that nothing caught.
type Exception struct {
	Kind    runtime.ErrorKind // empty when the thrown value is not an error object
	Message string
	Value   *runtime.Value
	Span    ast.Span
}

func (e *Exception) Error() string {
	msg := e.Message
	if e.Kind != "" {
		msg = string(e.Kind) + ": " + msg
	}
	if e.Span.Start.Line != 0 {
		return fmt.Sprintf("Uncaught %s (at %v)", msg, e.Span)
	}
	return "Uncaught " + msg
}

// UnsupportedNodeError reports a syntax tree node the evaluator cannot run. It is
// fatal: programs cannot catch it.
type UnsupportedNodeError struct {
	Type string
	Span ast.Span
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported node type %s at %v", e.Type, e.Span)
}

func unsupported(node ast.Node) signal {
	return faultSignal(&UnsupportedNodeError{Type: node.Type(), Span: node.Span()}, node.Span())
}

// raise turns an error coming back from the runtime or a native function into a
// completion. Language errors become catchable throws; anything else is a fault.
func (interp *Interpreter) raise(err error, span ast.Span) signal {
	var thrown *runtime.Thrown
	if errors.As(err, &thrown) {
		if thrown.Span.Start.Line != 0 {
			span = thrown.Span
		}
		return throwSignal(thrown.Value, span)
	}
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		obj := interp.realm.NewError(rtErr.Kind, rtErr.Message)
		if span.Start.Line != 0 {
			obj.SetHidden("stack", runtime.NewString(fmt.Sprintf("%s\n    at %v", rtErr.Error(), span)))
		}
		sig := throwSignal(runtime.NewObject(obj), span)
		sig.err = rtErr
		return sig
	}
	return faultSignal(err, span)
}

func (interp *Interpreter) throwf(span ast.Span, kind runtime.ErrorKind, format string, args ...interface{}) signal {
	return interp.raise(runtime.Errorf(kind, format, args...), span)
}

// exception describes an uncaught throw for the embedder.
func (interp *Interpreter) exception(sig signal) *Exception {
	ex := &Exception{Value: sig.value, Span: sig.span}
	v := sig.value
	if v.IsObject() && v.Object.Class == runtime.ClassError {
		ex.Kind = runtime.ErrorKind(v.Object.Value("name").String())
		ex.Message = v.Object.Value("message").String()
		return ex
	}
	ex.Message = v.String()
	return ex
}
