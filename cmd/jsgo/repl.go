package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/jseval/builtins"
	"github.com/example/jseval/interpreter"
	"github.com/example/jseval/parser"
	"github.com/example/jseval/runtime"
)

const (
	historyFile  = ".jsgo_history"
	promptMain   = "> "
	promptCont   = "... "
	replBanner   = "jsgo REPL. Ctrl+C cancels input, Ctrl+D exits. Type .exit to exit."
	replCommands = ".exit  leave the REPL\n.help  show this text"
)

func newReplCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			interp := interpreter.New(cfg.Options(out, errOut))
			if err := declareGlobals(interp, cfg); err != nil {
				return err
			}

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			histPath := ""
			if home, err := os.UserHomeDir(); err == nil {
				histPath = filepath.Join(home, historyFile)
				if f, err := os.Open(histPath); err == nil {
					_, _ = ln.ReadHistory(f)
					_ = f.Close()
				}
			}
			defer func() {
				if histPath == "" {
					return
				}
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			fmt.Fprintln(out, replBanner)
			return repl(ln, interp, out, errOut)
		},
	}
}

// prompter reads one line of input after showing a prompt.
type prompter interface {
	Prompt(prompt string) (string, error)
}

type historian interface {
	AppendHistory(item string)
}

func repl(p prompter, interp *interpreter.Interpreter, out, errOut io.Writer) error {
	for {
		code, ok := readChunk(p)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(code)
		switch trimmed {
		case "":
			continue
		case ".exit":
			return nil
		case ".help":
			fmt.Fprintln(out, replCommands)
			continue
		}
		if h, ok := p.(historian); ok {
			h.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		}

		v, err := evalChunk(interp, code)
		if err != nil {
			fmt.Fprintln(errOut, err)
			continue
		}
		if !v.IsUndefined() {
			fmt.Fprintln(out, builtins.Inspect(v))
		}
	}
}

// evalChunk evaluates one REPL entry. An evaluator bug in one entry is reported instead
// of ending the session.
func evalChunk(interp *interpreter.Interpreter, code string) (v *runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("evaluator panic: %v", r)
			err = errors.Errorf("internal error: %v", r)
		}
	}()
	return interp.Eval(code)
}

// readChunk reads lines until they form a complete program or a syntax error that more
// input cannot fix. It reports false at end of input.
func readChunk(p prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			b.Reset()
			continue
		}
		if err != nil {
			if err != io.EOF {
				glog.V(3).Infof("Reading input: %v", err)
			}
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ".") {
			return src, true
		}
		if _, err := parser.ParseProgram(src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
