package main

import (
	"github.com/spf13/cobra"
	"github.com/yukr-lang/yukr/dis"
)

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "disassemble <file>",
		Aliases: []string{"dis"},
		Short:   "Print the contents of a container",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.loadProgram(args[0], a.v.GetBool("source"), a.options(cmd)...)
			if err != nil {
				return err
			}
			return dis.PrintFile(program.File(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Bool("source", false, "treat the file as source code and compile it first")
	return cmd
}
