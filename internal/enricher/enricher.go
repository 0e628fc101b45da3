// Package enricher is the high-level interface for enriching transactions
// from files: CSV loading, batch enrichment, and result persistence.
package enricher

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/triqai/enrich-go/pkg/client"
	"github.com/triqai/enrich-go/pkg/logging"
	"github.com/triqai/enrich-go/pkg/models"
)

// Enricher wires the enrichment client to file-based input and output.
type Enricher struct {
	client    *client.Client
	outputDir string
	logger    zerolog.Logger
}

// New creates an enricher writing outputs under outputDir, which is created
// if absent.
func New(c *client.Client, outputDir string) (*Enricher, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Enricher{
		client:    c,
		outputDir: outputDir,
		logger:    logging.NewLogger("enricher"),
	}, nil
}

// Enrich runs batch enrichment over the transactions and logs an outcome
// summary.
func (e *Enricher) Enrich(ctx context.Context, txns []models.Transaction, onProgress client.ProgressFunc) ([]models.EnrichmentResult, error) {
	e.logger.Debug().Int("count", len(txns)).Msg("Starting enrichment")

	results, err := e.client.EnrichBatch(ctx, txns, onProgress)
	if err != nil {
		return nil, err
	}

	var successful, partial, failed int
	for _, r := range results {
		switch r.Outcome() {
		case models.OutcomeSuccess:
			successful++
		case models.OutcomePartial:
			partial++
		case models.OutcomeFailure:
			failed++
		}
	}
	e.logger.Debug().
		Int("successful", successful).
		Int("partial", partial).
		Int("failed", failed).
		Msg("Enrichment complete")

	return results, nil
}
