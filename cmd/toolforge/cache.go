package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the evidence cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show cache entry counts",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				if err := opts.ensurePipeline(); err != nil {
					return err
				}
				c := opts.gen.Cache()
				keys, err := c.Keys()
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(map[string]any{
						"entries":               len(keys),
						"inflightRevalidations": c.InflightRevalidations(),
						"keys":                  keys,
					})
				}
				fmt.Printf("entries=%d inflight=%d\n", len(keys), c.InflightRevalidations())
				for _, key := range keys {
					fmt.Println(key)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "invalidate <key>",
			Short: "Remove one cache entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if err := opts.ensurePipeline(); err != nil {
					return err
				}
				if err := opts.gen.Cache().Invalidate(args[0]); err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(map[string]any{"invalidated": args[0]})
				}
				fmt.Printf("invalidated %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cache entry",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				if err := opts.ensurePipeline(); err != nil {
					return err
				}
				if err := opts.gen.Cache().Clear(); err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(map[string]any{"cleared": true})
				}
				fmt.Println("cache cleared")
				return nil
			},
		},
	)

	return cmd
}
