package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolforge/internal/infra/githubclient"
	"toolforge/internal/infra/monorepo"
)

func newMonorepoCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monorepo <repo-url>",
		Short: "Detect a workspace layout and list member packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := githubclient.ParseRepoURL(args[0])
			if err != nil {
				return err
			}
			if err := opts.ensurePipeline(); err != nil {
				return err
			}

			detector := monorepo.New(opts.client, opts.logger)
			layout, err := detector.Detect(cmd.Context(), ref)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(map[string]any{
					"repo":   ref.String(),
					"layout": layout,
				})
			}
			if layout == nil {
				fmt.Printf("%s: single package\n", ref)
				return nil
			}
			fmt.Printf("%s: %s workspace, %d packages\n", ref, layout.Kind, len(layout.Packages))
			for _, pkg := range layout.Packages {
				fmt.Printf("%s\t%s\n", pkg.Name, pkg.Path)
			}
			return nil
		},
	}
}
