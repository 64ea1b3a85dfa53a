package main

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/jseval/config"
	"github.com/example/jseval/runtime"
)

type globalOptions struct {
	configPath  string
	tdz         string
	logToStderr bool
	verbose     int
}

func newJSGoCmd() *cobra.Command {
	var opts globalOptions
	cmd := &cobra.Command{
		Use:   "jsgo",
		Short: "jsgo evaluates JavaScript programs by walking their syntax tree",
		Long: "jsgo evaluates JavaScript programs by walking their syntax tree.\n" +
			"\n" +
			"Programs run as modules: module.exports is their result. Settings come from a\n" +
			"YAML configuration file given with --config; flags override it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(opts.logToStderr, opts.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Read settings from this YAML file")
	cmd.PersistentFlags().StringVar(
		&opts.tdz, "tdz", "", `Reads of let/const before initialization: "error" throws, "undefined" yields undefined`)
	cmd.PersistentFlags().BoolVar(&opts.logToStderr, "logtostderr", false, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&opts.verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=3); anything >3 is very verbose")

	cmd.AddCommand(newRunCmd(&opts))
	cmd.AddCommand(newEvalCmd(&opts))
	cmd.AddCommand(newASTCmd())
	cmd.AddCommand(newReplCmd(&opts))
	cmd.AddCommand(newFixturesCmd())
	return cmd
}

// initLogging pushes the logging flags into glog, which only reads the standard flag set.
func initLogging(logToStderr bool, verbose int) error {
	if !flag.Parsed() {
		if err := flag.CommandLine.Parse(nil); err != nil {
			return err
		}
	}
	if logToStderr {
		if err := flag.Set("logtostderr", "true"); err != nil {
			return errors.Wrap(err, "setting logtostderr")
		}
	}
	if verbose > 0 {
		if err := flag.Set("v", strconv.Itoa(verbose)); err != nil {
			return errors.Wrap(err, "setting verbosity")
		}
	}
	return nil
}

// loadConfig reads the configuration file, if any, and applies the flags that override it.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
		glog.V(3).Infof("Loaded configuration from %s", opts.configPath)
	}
	switch opts.tdz {
	case "":
	case "error":
		cfg.TDZ = runtime.TDZError
	case "undefined":
		cfg.TDZ = runtime.TDZUndefined
	default:
		return nil, errors.Errorf(`--tdz must be "error" or "undefined", not %q`, opts.tdz)
	}
	if err := cfg.ApplyVerbosity(); err != nil {
		return nil, err
	}
	return cfg, nil
}
