package main

import (
	"github.com/spf13/cobra"
	"github.com/yukr-lang/yukr"
)

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a compiled container, or a source file with --source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.options(cmd)
			program, err := a.loadProgram(args[0], a.v.GetBool("source"), opts...)
			if err != nil {
				return err
			}
			result, err := yukr.Run(program, opts...)
			if err != nil {
				return err
			}
			event := a.logger.Debug()
			if result != nil {
				event = event.Str("type", string(result.Type())).Str("result", result.Inspect())
			}
			event.Msg("program finished")
			return nil
		},
	}
	cmd.Flags().Bool("source", false, "treat the file as source code and compile it first")
	return cmd
}
