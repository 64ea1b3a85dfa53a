package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/jseval/builtins"
	"github.com/example/jseval/config"
	"github.com/example/jseval/interpreter"
	"github.com/example/jseval/runtime"
)

func newEvalCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <source>",
		Short: "Evaluate source text and print its completion value",
		Long: "Evaluate source text and print its completion value.\n" +
			"\n" +
			"Use - to read the source from standard input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			source := args[0]
			if source == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "reading standard input")
				}
				source = string(data)
			}

			out := cmd.OutOrStdout()
			interp := interpreter.New(cfg.Options(out, cmd.ErrOrStderr()))
			if err := declareGlobals(interp, cfg); err != nil {
				return err
			}
			v, err := interp.Eval(source)
			if err != nil {
				return err
			}
			if !v.IsUndefined() {
				fmt.Fprintln(out, builtins.Inspect(v))
			}
			return nil
		},
	}
}

// declareGlobals binds the configured globals in the interpreter's global frame, where
// Eval sees them.
func declareGlobals(interp *interpreter.Interpreter, cfg *config.Config) error {
	initial, err := cfg.InitialBindings(interp.Realm())
	if err != nil {
		return err
	}
	for name, v := range initial {
		if err := interp.Global().Declare(name, runtime.VarBinding, v); err != nil {
			return errors.Wrapf(err, "binding %s", name)
		}
	}
	return nil
}
