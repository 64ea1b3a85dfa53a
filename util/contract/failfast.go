package contract

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/golang/glog"
)

// AssertionError is the panic value of a failed contract. It marks a bug in the
// evaluator itself, never an error in the evaluated program.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return e.Msg
}

// failfast logs and panics in a way that is friendly to debugging. Embedders that must
// survive evaluator bugs can recover the *AssertionError.
func failfast(msg string) {
	if f := flag.Lookup("logtostderr"); f != nil {
		if g, isgettable := f.Value.(flag.Getter); isgettable {
			if enabled, _ := g.Get().(bool); enabled {
				// Print the stack to stderr anytime glog verbose logging is enabled, since glog won't.
				fmt.Fprintf(os.Stderr, "fatal: %v\n", msg)
				debug.PrintStack()
			}
		}
	}
	glog.Error(msg)
	panic(&AssertionError{Msg: msg})
}
