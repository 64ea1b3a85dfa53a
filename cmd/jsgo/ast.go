package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func newASTCmd() *cobra.Command {
	var estree bool
	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the syntax tree of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(args[0], estree)
			if err != nil {
				return err
			}
			dumper := spew.ConfigState{
				Indent:                  "  ",
				DisablePointerAddresses: true,
				DisableCapacities:       true,
				SortKeys:                true,
			}
			dumper.Fdump(cmd.OutOrStdout(), program)
			return nil
		},
	}
	cmd.Flags().BoolVar(&estree, "estree", false, "Read an ESTree JSON syntax tree instead of source text")
	return cmd
}
