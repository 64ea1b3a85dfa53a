// Package builtins installs the standard global objects into a realm.
package builtins

import (
	"io"
	"os"

	"github.com/example/jseval/runtime"
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Install creates the built-in constructors, prototype methods and global functions of
// realm and declares the globals in env.
func Install(realm *runtime.Realm, env *runtime.Environment, opts Options) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	b := &installer{realm: realm, env: env, opts: opts}

	b.installObject()
	b.installFunction()
	b.installArray()
	b.installString()
	b.installNumber()
	b.installBoolean()
	b.installErrors()
	b.installPromise()
	b.installGenerators()
	b.installMath()
	b.installJSON()
	b.installGlobals()
	b.installConsole()
}
