package enricher

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/triqai/enrich-go/pkg/models"
)

// Format selects the persistence layout for results.
type Format string

const (
	// FormatJSON writes one array-of-objects document.
	FormatJSON Format = "json"

	// FormatJSONL writes one object per line.
	FormatJSONL Format = "jsonl"
)

// SaveResults writes enrichment results to the output directory and returns
// the file path. An empty filename gets a timestamped name with a short run
// ID so repeated runs never clobber each other.
func (e *Enricher) SaveResults(results []models.EnrichmentResult, filename string, format Format) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("enrichments_%s_%s",
			time.Now().Format("20060102_150405"), shortRunID())
	}

	ext := ".json"
	if format == FormatJSONL {
		ext = ".jsonl"
	}
	path := filepath.Join(e.outputDir, filename+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for i := range results {
			if err := enc.Encode(results[i]); err != nil {
				return "", fmt.Errorf("encode result: %w", err)
			}
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return "", fmt.Errorf("encode results: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flush results file: %w", err)
	}

	e.logger.Debug().Int("count", len(results)).Str("path", path).Msg("Saved results")
	return path, nil
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
