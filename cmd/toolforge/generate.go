package main

import (
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <repo-url>",
		Short: "Extract tool descriptors from one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.ensurePipeline(); err != nil {
				return err
			}
			result, err := opts.gen.Generate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(result, opts.jsonOutput)
		},
	}
}
