package main

import (
	"encoding/json"
	"fmt"

	"toolforge/internal/app/generator"
	"toolforge/internal/domain"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printResult(result *domain.GenerationResult, jsonOutput bool) error {
	if result == nil {
		return nil
	}
	if jsonOutput {
		return writeJSON(result)
	}

	fmt.Printf("repo=%s type=%s confidence=%.2f tools=%d\n",
		result.Metadata.Owner+"/"+result.Metadata.Repo,
		result.Classification.Type,
		result.Classification.Confidence,
		len(result.Tools))
	for _, entry := range result.Breakdown {
		fmt.Printf("  %s: %d\n", entry.Type, entry.Count)
	}
	for _, tool := range result.Tools {
		fmt.Printf("%s\t%s\t%.2f\t%s\n", tool.Name, tool.Source.Type, tool.Confidence, tool.Source.File)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	return nil
}

func printBatch(results []generator.BatchResult, jsonOutput bool) error {
	if jsonOutput {
		payload := make([]map[string]any, 0, len(results))
		for _, item := range results {
			entry := map[string]any{"url": item.URL}
			if item.Err != nil {
				entry["error"] = item.Err.Error()
			} else {
				entry["result"] = item.Result
			}
			payload = append(payload, entry)
		}
		return writeJSON(payload)
	}

	failed := 0
	for _, item := range results {
		if item.Err != nil {
			failed++
			fmt.Printf("%s\terror\t%s\n", item.URL, item.Err)
			continue
		}
		fmt.Printf("%s\tok\ttools=%d warnings=%d\n", item.URL, len(item.Result.Tools), len(item.Result.Warnings))
	}
	fmt.Printf("repos=%d failed=%d\n", len(results), failed)
	if failed == len(results) && failed > 0 {
		return fmt.Errorf("all %d repositories failed", failed)
	}
	return nil
}
