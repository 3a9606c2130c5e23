package generator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"toolforge/internal/domain"
)

// BatchResult pairs one input URL with its pipeline outcome. Exactly one
// of Result and Err is set.
type BatchResult struct {
	URL    string                   `json:"url"`
	Result *domain.GenerationResult `json:"result,omitempty"`
	Err    error                    `json:"-"`
}

// GenerateBatch runs one pipeline per URL, at most concurrency at a time.
// Results come back in input order; a repository's hard failure is
// recorded on its own slot and does not stop the others.
func (g *Generator) GenerateBatch(ctx context.Context, urls []string, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = domain.DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(urls))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := g.Generate(ctx, url)
			if err != nil {
				g.logger.Warn("batch repository failed",
					zap.String("url", url),
					zap.Error(err))
			}
			results[i] = BatchResult{URL: url, Result: result, Err: err}
		}(i, url)
	}
	wg.Wait()
	return results
}
