package main

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func (a *app) compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <files...>",
		Short: "Compile source files into " + ContainerExt + " containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := a.v.GetString("out")
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
			}
			// Every file is attempted; failures are reported together.
			result := newErrors()
			for _, src := range args {
				dst, err := a.compileFile(cmd, src, outDir)
				if err != nil {
					result = multierror.Append(result, err)
					continue
				}
				a.logger.Info().Str("source", src).Str("container", dst).Msg("compiled")
			}
			return result.ErrorOrNil()
		},
	}
	cmd.Flags().StringP("out", "o", "", "directory to write containers to")
	return cmd
}

func (a *app) compileFile(cmd *cobra.Command, src, outDir string) (string, error) {
	program, err := a.loadProgram(src, true, a.options(cmd)...)
	if err != nil {
		return "", err
	}
	data, err := program.Marshal()
	if err != nil {
		return "", err
	}
	dst := containerPath(src, outDir)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}
