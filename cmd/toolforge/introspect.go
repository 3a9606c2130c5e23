package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolforge/internal/infra/extract"
)

func newIntrospectCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "introspect <command> [args...]",
		Short: "Spawn a local MCP server and list its declared tools",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			introspector := extract.NewLiveIntrospector(opts.logger)
			tools, err := introspector.ListTools(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(map[string]any{
					"command": args,
					"tools":   tools,
				})
			}
			fmt.Printf("command=%s tools=%d\n", args[0], len(tools))
			for _, tool := range tools {
				fmt.Printf("%s\t%.2f\t%s\n", tool.Name, tool.Confidence, tool.Description)
			}
			return nil
		},
	}
}
