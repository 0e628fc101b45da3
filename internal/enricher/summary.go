package enricher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/triqai/enrich-go/pkg/models"
)

// Summary is the aggregate statistics document for one enrichment run.
type Summary struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Statistics  Statistics    `json:"statistics"`
	Timing      Timing        `json:"timing"`
	Entities    EntityCounts  `json:"entities"`
	Categories  CategoryTable `json:"categories"`
}

// Statistics holds outcome counts for a run.
type Statistics struct {
	TotalTransactions int    `json:"total_transactions"`
	Successful        int    `json:"successful"`
	Partial           int    `json:"partial"`
	Failed            int    `json:"failed"`
	SuccessRate       string `json:"success_rate"`
}

// Timing holds processing time aggregates for a run.
type Timing struct {
	TotalProcessingMs     float64 `json:"total_processing_ms"`
	AverageProcessingMs   float64 `json:"average_processing_ms"`
	TransactionsPerSecond float64 `json:"transactions_per_second"`
}

// EntityCounts holds per-entity-type hit counts.
type EntityCounts struct {
	MerchantsFound      int `json:"merchants_found"`
	LocationsFound      int `json:"locations_found"`
	IntermediariesFound int `json:"intermediaries_found"`
	PersonsFound        int `json:"persons_found"`
}

// CategoryEntry is one row of the category frequency table.
type CategoryEntry struct {
	Name  string
	Count int
}

// CategoryTable is the category frequency table, ordered by descending
// count. It marshals as a JSON object whose keys keep that order.
type CategoryTable []CategoryEntry

// MarshalJSON writes the table as an ordered object.
func (t CategoryTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		fmt.Fprintf(&buf, ":%d", entry.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildSummary computes the aggregate statistics for a result set.
func BuildSummary(results []models.EnrichmentResult) Summary {
	s := Summary{GeneratedAt: time.Now()}
	s.Statistics.TotalTransactions = len(results)

	var totalMs float64
	var timed int
	categories := make(map[string]int)

	for _, r := range results {
		// Successful includes partial results; partial is also tallied on
		// its own column.
		if r.Success {
			s.Statistics.Successful++
		} else {
			s.Statistics.Failed++
		}
		if r.Partial {
			s.Statistics.Partial++
		}
		if r.ProcessingTimeMs > 0 {
			totalMs += r.ProcessingTimeMs
			timed++
		}
		if r.Data == nil {
			continue
		}
		categories[r.Data.Transaction.PrimaryCategoryName()]++
		if _, ok := r.Data.Entity(models.EntityMerchant); ok {
			s.Entities.MerchantsFound++
		}
		if _, ok := r.Data.Entity(models.EntityLocation); ok {
			s.Entities.LocationsFound++
		}
		if _, ok := r.Data.Entity(models.EntityIntermediary); ok {
			s.Entities.IntermediariesFound++
		}
		if _, ok := r.Data.Entity(models.EntityPerson); ok {
			s.Entities.PersonsFound++
		}
	}

	if len(results) > 0 {
		s.Statistics.SuccessRate = fmt.Sprintf("%.1f%%",
			float64(s.Statistics.Successful)/float64(len(results))*100)
	} else {
		s.Statistics.SuccessRate = "0%"
	}

	s.Timing.TotalProcessingMs = round2(totalMs)
	if timed > 0 {
		s.Timing.AverageProcessingMs = round2(totalMs / float64(timed))
	}
	if totalMs > 0 {
		s.Timing.TransactionsPerSecond = round2(float64(len(results)) / (totalMs / 1000))
	}

	for name, count := range categories {
		s.Categories = append(s.Categories, CategoryEntry{Name: name, Count: count})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Count != s.Categories[j].Count {
			return s.Categories[i].Count > s.Categories[j].Count
		}
		return s.Categories[i].Name < s.Categories[j].Name
	})

	return s
}

// SaveSummary writes the aggregate statistics document and returns its path.
func (e *Enricher) SaveSummary(results []models.EnrichmentResult, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("summary_%s_%s",
			time.Now().Format("20060102_150405"), shortRunID())
	}
	path := filepath.Join(e.outputDir, filename+".json")

	data, err := json.MarshalIndent(BuildSummary(results), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	e.logger.Debug().Str("path", path).Msg("Saved summary")
	return path, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
