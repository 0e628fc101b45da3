package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/triqai/enrich-go/internal/enricher"
	"github.com/triqai/enrich-go/internal/testutil"
	"github.com/triqai/enrich-go/pkg/client"
	"github.com/triqai/enrich-go/pkg/models"
)

func newClient(t *testing.T, mock *testutil.MockAPI) *client.Client {
	t.Helper()
	cfg := client.DefaultConfig("integration-test-key")
	cfg.BaseURL = mock.URL()
	cfg.RequestDelay = 0
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestFullPipeline covers the complete flow: CSV load, concurrent batch
// enrichment, result persistence, and the summary document.
func TestFullPipeline(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(testutil.EnrichPath, testutil.NewSuccessResponse("Coffee Shops", "Starbucks"))

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "transactions.csv")
	csv := `country,type,title,comment
US,expense,STARBUCKS STORE 1,morning coffee
US,expense,STARBUCKS STORE 2,
DE,income,ACME GMBH PAYROLL,salary
`
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	txns, err := enricher.LoadCSV(csvPath)
	if err != nil {
		t.Fatalf("LoadCSV() error: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("loaded %d transactions, want 3", len(txns))
	}

	enr, err := enricher.New(newClient(t, mock), filepath.Join(dir, "output"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	var progressCalls int
	results, err := enr.Enrich(context.Background(), txns, func(completed, total int) {
		progressCalls++
	})
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if progressCalls != 3 {
		t.Errorf("progress called %d times, want 3", progressCalls)
	}
	if mock.RequestCount() != 3 {
		t.Errorf("API requests = %d, want 3", mock.RequestCount())
	}

	for i, r := range results {
		if r.Input.Title != txns[i].Title {
			t.Errorf("results[%d] belongs to %q, want %q", i, r.Input.Title, txns[i].Title)
		}
		if !r.Success {
			t.Errorf("results[%d] not successful", i)
		}
	}

	resultsPath, err := enr.SaveResults(results, "", enricher.FormatJSONL)
	if err != nil {
		t.Fatalf("SaveResults() error: %v", err)
	}
	summaryPath, err := enr.SaveSummary(results, "")
	if err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}
	for _, path := range []string{resultsPath, summaryPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("output file %s: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("output file %s is empty", path)
		}
	}
}

// TestPipelineSurvivesItemFailures verifies that per-item server errors do
// not disturb the rest of the batch.
func TestPipelineSurvivesItemFailures(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.QueueResponses(testutil.EnrichPath,
		testutil.NewSuccessResponse("Coffee Shops", "Starbucks"),
		testutil.NewServerErrorResponse(),
		testutil.NewPartialResponse("General Services"),
	)

	cfg := client.DefaultConfig("integration-test-key")
	cfg.BaseURL = mock.URL()
	cfg.RequestDelay = 0
	cfg.MaxConcurrent = 1
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	txns := []models.Transaction{
		{Title: "ONE", Country: "US", Type: models.TypeExpense},
		{Title: "TWO", Country: "US", Type: models.TypeExpense},
		{Title: "THREE", Country: "US", Type: models.TypeExpense},
	}
	results, err := c.EnrichBatch(context.Background(), txns, nil)
	if err != nil {
		t.Fatalf("EnrichBatch() error: %v", err)
	}

	want := []models.Outcome{models.OutcomeSuccess, models.OutcomeFailure, models.OutcomePartial}
	for i, w := range want {
		if got := results[i].Outcome(); got != w {
			t.Errorf("results[%d].Outcome() = %v, want %v", i, got, w)
		}
	}

	s := enricher.BuildSummary(results)
	if s.Statistics.Successful != 2 || s.Statistics.Partial != 1 || s.Statistics.Failed != 1 {
		t.Errorf("summary statistics = %+v", s.Statistics)
	}
}
