package client

import (
	"context"
	"errors"
	"sync"

	"github.com/triqai/enrich-go/pkg/models"
)

// ProgressFunc is invoked after each task completion with the number of
// completed items and the batch total. Calls are serialized, so the
// completed count is monotonically non-decreasing.
type ProgressFunc func(completed, total int)

// EnrichBatch enriches transactions concurrently over the shared transport.
//
// A worker pool of MaxConcurrent goroutines drains an index queue; requests
// dispatch and complete in arbitrary order, but the returned slice always
// has len(txns) elements with results[i] belonging to txns[i]. An empty
// input returns an empty slice without dispatching anything.
//
// A fatal failure (authentication, insufficient credits) on any item
// cancels the outstanding work and is returned instead of a partial result
// list. Every other failure is captured in that item's result.
func (c *Client) EnrichBatch(ctx context.Context, txns []models.Transaction, onProgress ProgressFunc) ([]models.EnrichmentResult, error) {
	if len(txns) == 0 {
		return []models.EnrichmentResult{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := c.config.MaxConcurrent
	if workers > len(txns) {
		workers = len(txns)
	}

	c.logger.Debug().
		Int("total", len(txns)).
		Int("workers", workers).
		Msg("Starting batch enrichment")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		fatalErr  error
	)
	results := make([]models.EnrichmentResult, len(txns))
	jobs := make(chan int)

	fail := func(err error) {
		mu.Lock()
		if fatalErr == nil {
			fatalErr = err
		}
		mu.Unlock()
		cancel()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result, err := c.Enrich(ctx, txns[idx])
				if err != nil {
					var apiErr *APIError
					if errors.As(err, &apiErr) && apiErr.Fatal() {
						c.logger.Error().Err(err).Msg("Fatal API error, aborting batch")
						fail(err)
						return
					}
					if ctx.Err() != nil {
						// Cancelled by the abort above or by the caller.
						return
					}
					fail(err)
					return
				}

				mu.Lock()
				results[idx] = *result
				completed++
				done := completed
				if onProgress != nil {
					onProgress(done, len(txns))
				}
				mu.Unlock()

				c.logger.Debug().
					Int("completed", done).
					Int("total", len(txns)).
					Str("outcome", string(result.Outcome())).
					Str("title", truncate(txns[idx].Title, 40)).
					Msg("Transaction enriched")
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range txns {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
