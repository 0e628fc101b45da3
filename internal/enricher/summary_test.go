package enricher

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triqai/enrich-go/pkg/models"
)

func successResult(title, category, merchant string, ms float64) models.EnrichmentResult {
	return models.EnrichmentResult{
		Input:   models.Transaction{Title: title, Country: "US", Type: models.TypeExpense},
		Success: true,
		Data: &models.EnrichmentData{
			Transaction: models.TransactionData{
				Category: json.RawMessage(`{"primary": {"name": "` + category + `"}}`),
			},
			Entities: []models.EntityResult{
				{Type: models.EntityMerchant, Data: map[string]any{"name": merchant}},
			},
		},
		ProcessingTimeMs: ms,
	}
}

func failureResult(title string) models.EnrichmentResult {
	return models.EnrichmentResult{
		Input: models.Transaction{Title: title, Country: "US", Type: models.TypeExpense},
		Error: &models.ErrorDetail{Code: "timeout", Message: "request timed out"},
	}
}

func sampleResults() []models.EnrichmentResult {
	partial := successResult("SPOTIFY", "Streaming", "Spotify", 80)
	partial.Partial = true
	return []models.EnrichmentResult{
		successResult("STARBUCKS 1", "Coffee Shops", "Starbucks", 120),
		successResult("STARBUCKS 2", "Coffee Shops", "Starbucks", 100),
		successResult("WHOLE FOODS", "Groceries", "Whole Foods", 200),
		partial,
		failureResult("UNKNOWN CHARGE"),
	}
}

func TestBuildSummaryStatistics(t *testing.T) {
	s := BuildSummary(sampleResults())

	assert.Equal(t, 5, s.Statistics.TotalTransactions)
	// Partial results count as successful and are also tallied separately.
	assert.Equal(t, 4, s.Statistics.Successful)
	assert.Equal(t, 1, s.Statistics.Partial)
	assert.Equal(t, 1, s.Statistics.Failed)
	assert.Equal(t, "80.0%", s.Statistics.SuccessRate)
}

func TestBuildSummaryTiming(t *testing.T) {
	s := BuildSummary(sampleResults())

	assert.Equal(t, 500.0, s.Timing.TotalProcessingMs)
	assert.Equal(t, 125.0, s.Timing.AverageProcessingMs)
	assert.Equal(t, 10.0, s.Timing.TransactionsPerSecond)
}

func TestBuildSummaryEntitiesAndCategories(t *testing.T) {
	s := BuildSummary(sampleResults())

	assert.Equal(t, 4, s.Entities.MerchantsFound)
	assert.Equal(t, 0, s.Entities.LocationsFound)

	// Sorted by count descending, then name.
	require.Len(t, s.Categories, 3)
	assert.Equal(t, CategoryEntry{Name: "Coffee Shops", Count: 2}, s.Categories[0])
	assert.Equal(t, CategoryEntry{Name: "Groceries", Count: 1}, s.Categories[1])
	assert.Equal(t, CategoryEntry{Name: "Streaming", Count: 1}, s.Categories[2])
}

func TestBuildSummaryEmpty(t *testing.T) {
	s := BuildSummary(nil)

	assert.Equal(t, 0, s.Statistics.TotalTransactions)
	assert.Equal(t, "0%", s.Statistics.SuccessRate)
	assert.Zero(t, s.Timing.TotalProcessingMs)
	assert.Empty(t, s.Categories)
}

func TestCategoryTableMarshalsOrdered(t *testing.T) {
	table := CategoryTable{
		{Name: "Coffee Shops", Count: 5},
		{Name: "Groceries", Count: 2},
		{Name: "Other", Count: 1},
	}

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, `{"Coffee Shops":5,"Groceries":2,"Other":1}`, string(data))
}

func TestReport(t *testing.T) {
	out := Report(sampleResults())

	assert.Contains(t, out, "TRANSACTION ENRICHMENT REPORT")
	assert.Contains(t, out, "Total transactions:      5")
	assert.Contains(t, out, "Successful:              4 (80.0%)")
	assert.Contains(t, out, "Failed:                  1")
	assert.Contains(t, out, "Starbucks")
	assert.Contains(t, out, "Coffee Shops")

	// At most five samples, failures never sampled.
	assert.NotContains(t, out, "UNKNOWN CHARGE")
	assert.LessOrEqual(t, strings.Count(out, "-> Merchant:"), 5)
}
