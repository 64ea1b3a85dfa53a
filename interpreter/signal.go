package interpreter

import (
	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
)

// signalKind says how a statement or expression completed.
type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigBreak
	sigContinue
	sigThrow
	// sigFault is an interpreter fault. Programs never observe it: catch and finally
	// clauses are skipped and it surfaces to the embedder as a Go error.
	sigFault
)

func (k signalKind) String() string {
	switch k {
	case sigReturn:
		return "return"
	case sigBreak:
		return "break"
	case sigContinue:
		return "continue"
	case sigThrow:
		return "throw"
	case sigFault:
		return "fault"
	}
	return "normal"
}

// signal is the completion record every handler returns next to its value. A
// non-normal signal unwinds until a statement that understands it consumes it.
type signal struct {
	kind  signalKind
	value *runtime.Value // return or throw payload
	label string         // break or continue target, empty when unlabeled
	span  ast.Span
	err   error // fault cause, or the runtime error behind a throw
}

var normal = signal{}

func (s signal) abrupt() bool {
	return s.kind != sigNone
}

// targets reports whether a break or continue is aimed at a statement carrying labels.
func (s signal) targets(labels []string) bool {
	if s.label == "" {
		return true
	}
	for _, l := range labels {
		if l == s.label {
			return true
		}
	}
	return false
}

func returnSignal(v *runtime.Value, span ast.Span) signal {
	return signal{kind: sigReturn, value: v, span: span}
}

func throwSignal(v *runtime.Value, span ast.Span) signal {
	return signal{kind: sigThrow, value: v, span: span}
}

func faultSignal(err error, span ast.Span) signal {
	return signal{kind: sigFault, err: err, span: span}
}

// loopSignal decides what a loop does with the completion of one pass over its body:
// keep iterating, or stop and hand out the returned signal.
func loopSignal(sig signal, labels []string) (exit bool, out signal) {
	switch sig.kind {
	case sigNone:
		return false, normal
	case sigContinue:
		if sig.targets(labels) {
			return false, normal
		}
	case sigBreak:
		if sig.targets(labels) {
			return true, normal
		}
	}
	return true, sig
}
