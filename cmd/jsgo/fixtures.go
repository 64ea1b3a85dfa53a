package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/jseval/testrunner"
)

func newFixturesCmd() *cobra.Command {
	cfg := testrunner.Config{}
	var quiet bool
	cmd := &cobra.Command{
		Use:   "fixtures <dir>",
		Short: "Run the script fixtures below a directory",
		Long: "Run the script fixtures below a directory.\n" +
			"\n" +
			"Every .js file is a fixture. YAML front matter between /*--- and ---*/ states\n" +
			"the expected exports, console output, or error.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Dir = args[0]
			out := cmd.OutOrStdout()
			if !quiet {
				cfg.Progress = out
			}
			results, summary, err := testrunner.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d fixtures: %d passed, %d failed, %d errors, %d skipped (%s)\n",
				summary.Total, summary.Passed, summary.Failed, summary.Errors, summary.Skipped,
				summary.Elapsed.Round(time.Millisecond))
			return testrunner.Failures(results)
		},
	}

	cmd.Flags().StringVar(&cfg.Filter, "filter", "", "Only run fixtures whose path contains this text")
	cmd.Flags().IntVar(&cfg.Limit, "limit", 0, "Run at most this many fixtures")
	cmd.Flags().IntVar(&cfg.Parallel, "parallel", testrunner.DefaultParallel, "Number of fixtures run at once")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", testrunner.DefaultTimeout, "Time limit for each fixture")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the summary")
	return cmd
}
