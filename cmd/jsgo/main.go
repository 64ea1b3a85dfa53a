// Command jsgo evaluates scripts with the jseval tree-walking interpreter.
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/example/jseval/interpreter"
	"github.com/example/jseval/parser"
)

const (
	exitFailure     = 1
	exitSyntax      = 2
	exitUnsupported = 3
)

func main() {
	err := newJSGoCmd().Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsgo: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode tells parse failures and unsupported syntax apart from scripts that threw.
func exitCode(err error) int {
	var unsupported *interpreter.UnsupportedNodeError
	if errors.As(err, &unsupported) {
		return exitUnsupported
	}
	var perr *parser.Error
	if errors.As(err, &perr) {
		return exitSyntax
	}
	return exitFailure
}
