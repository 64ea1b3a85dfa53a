package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/builtins"
	"github.com/example/jseval/config"
	"github.com/example/jseval/interpreter"
	"github.com/example/jseval/parser"
)

type runOptions struct {
	sets     []string
	estree   bool
	exports  bool
	parallel int
}

func newRunCmd(global *globalOptions) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Run scripts as modules",
		Long: "Run scripts as modules.\n" +
			"\n" +
			"Each script gets its own interpreter, so several scripts run concurrently. Their\n" +
			"console output is printed in argument order once all of them have finished.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if err := applySets(cfg, opts.sets); err != nil {
				return err
			}
			return runFiles(cmd.Context(), cfg, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Bind a global as name=value; values are read as YAML scalars")
	cmd.Flags().BoolVar(&opts.estree, "estree", false, "Read ESTree JSON syntax trees instead of source text")
	cmd.Flags().BoolVar(&opts.exports, "exports", false, "Print each module's exports")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 4, "Run at most this many scripts at once")
	return cmd
}

// applySets adds name=value bindings to the configured globals.
func applySets(cfg *config.Config, sets []string) error {
	if len(sets) == 0 {
		return nil
	}
	globals := make(map[string]interface{}, len(cfg.Globals)+len(sets))
	for k, v := range cfg.Globals {
		globals[k] = v
	}
	for _, set := range sets {
		eq := strings.IndexByte(set, '=')
		if eq <= 0 {
			return errors.Errorf("--set %q: expected name=value", set)
		}
		globals[set[:eq]] = config.ParseScalar(set[eq+1:])
	}
	cfg.Globals = globals
	return cfg.Validate()
}

// loadProgram reads the program at path, as source text or as ESTree JSON.
func loadProgram(path string, estree bool) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var program *ast.Program
	if estree {
		program, err = ast.DecodeESTree(data)
	} else {
		program, err = parser.ParseProgram(string(data))
	}
	return program, errors.Wrapf(err, "parsing %s", path)
}

type runResult struct {
	output bytes.Buffer
	err    error
}

func runFiles(ctx context.Context, cfg *config.Config, files []string, opts runOptions,
	stdout, stderr io.Writer) error {
	// A lone script streams its console output.
	if len(files) == 1 {
		return runFile(cfg, files[0], opts, stdout, stderr)
	}

	results := make([]runResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if opts.parallel > 0 {
		g.SetLimit(opts.parallel)
	}
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := &results[i]
			res.err = runFile(cfg, file, opts, &res.output, &res.output)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var merr *multierror.Error
	for i := range results {
		if _, err := results[i].output.WriteTo(stdout); err != nil {
			return err
		}
		if results[i].err != nil {
			merr = multierror.Append(merr, results[i].err)
		}
	}
	return merr.ErrorOrNil()
}

func runFile(cfg *config.Config, path string, opts runOptions, stdout, stderr io.Writer) error {
	program, err := loadProgram(path, opts.estree)
	if err != nil {
		return err
	}
	interp := interpreter.New(cfg.Options(stdout, stderr))
	initial, err := cfg.InitialBindings(interp.Realm())
	if err != nil {
		return err
	}

	glog.V(3).Infof("Running %s", path)
	exports, err := interp.Run(program, initial)
	if err != nil {
		return errors.Wrap(err, path)
	}
	if opts.exports {
		fmt.Fprintf(stdout, "%s: %s\n", path, builtins.Inspect(exports))
	}
	return nil
}
