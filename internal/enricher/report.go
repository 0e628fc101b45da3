package enricher

import (
	"fmt"
	"strings"

	"github.com/triqai/enrich-go/pkg/models"
)

const reportSampleSize = 5

// Report renders a human-readable summary of the enrichment results.
func Report(results []models.EnrichmentResult) string {
	s := BuildSummary(results)
	total := s.Statistics.TotalTransactions

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	sep := strings.Repeat("-", 40)

	fmt.Fprintf(&b, "%s\nTRANSACTION ENRICHMENT REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "SUMMARY\n%s\n", sep)
	fmt.Fprintf(&b, "  Total transactions:      %d\n", total)
	if total > 0 {
		fmt.Fprintf(&b, "  Successful:              %d (%s)\n", s.Statistics.Successful, s.Statistics.SuccessRate)
	} else {
		fmt.Fprintf(&b, "  Successful:              0\n")
	}
	fmt.Fprintf(&b, "  Partial results:         %d\n", s.Statistics.Partial)
	fmt.Fprintf(&b, "  Failed:                  %d\n\n", s.Statistics.Failed)

	fmt.Fprintf(&b, "TIMING\n%s\n", sep)
	fmt.Fprintf(&b, "  Total processing time:   %.2fs\n", s.Timing.TotalProcessingMs/1000)
	fmt.Fprintf(&b, "  Average per transaction: %.0fms\n\n", s.Timing.AverageProcessingMs)

	fmt.Fprintf(&b, "SAMPLE RESULTS\n%s\n", sep)
	shown := 0
	for _, r := range results {
		if shown >= reportSampleSize {
			break
		}
		if !r.Success || r.Data == nil {
			continue
		}
		merchant := r.Data.MerchantName()
		if merchant == "" {
			merchant = "N/A"
		}
		fmt.Fprintf(&b, "  %q\n", clip(r.Input.Title, 40))
		fmt.Fprintf(&b, "    -> Merchant: %s\n", merchant)
		fmt.Fprintf(&b, "    -> Category: %s\n\n", r.Data.Transaction.PrimaryCategoryName())
		shown++
	}

	b.WriteString(rule)
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
