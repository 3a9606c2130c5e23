package main

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newBatchCmd(opts *cliOptions) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <file|url...>",
		Short: "Extract tool descriptors from many repositories",
		Long: "Runs the pipeline for each repository. A single argument naming an\n" +
			"existing file is read as one URL per line; # starts a comment.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := batchURLs(args)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return errors.New("no repository urls given")
			}
			if err := opts.ensurePipeline(); err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = opts.cfg.Concurrency
			}

			results := opts.gen.GenerateBatch(cmd.Context(), urls, concurrency)
			return printBatch(results, opts.jsonOutput)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent pipelines (default from config)")
	return cmd
}

func batchURLs(args []string) ([]string, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return readURLFile(args[0])
		}
	}
	return args, nil
}

func readURLFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
