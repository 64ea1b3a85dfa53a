package contract

import (
	"fmt"
)

const assertMsg = "An assertion has failed"

// Assert checks a condition that must hold whenever the program is correct, and fails
// fast if it does not.
func Assert(cond bool) {
	if !cond {
		failfast(assertMsg)
	}
}

// Assertf is Assert with a formatted message.
func Assertf(cond bool, msg string, args ...interface{}) {
	if !cond {
		failfast(fmt.Sprintf("%v: %v", assertMsg, fmt.Sprintf(msg, args...)))
	}
}
