package enricher

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/triqai/enrich-go/pkg/logging"
	"github.com/triqai/enrich-go/pkg/models"
)

// LoadCSV reads transactions from a CSV file with columns: country, type,
// title, and optional comment. Invalid rows are logged and skipped, not
// fatal; an unrecognized type falls back to expense.
func LoadCSV(path string) ([]models.Transaction, error) {
	logger := logging.NewLogger("loader")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"country", "type", "title"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var txns []models.Transaction
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error().Int("row", row).Err(err).Msg("Malformed CSV row, skipping")
			continue
		}

		txnType := strings.ToLower(field(record, columns, "type"))
		if txnType != string(models.TypeExpense) && txnType != string(models.TypeIncome) {
			logger.Warn().
				Int("row", row).
				Str("type", txnType).
				Msg("Invalid transaction type, defaulting to expense")
			txnType = string(models.TypeExpense)
		}

		txn := models.Transaction{
			Title:   field(record, columns, "title"),
			Country: strings.ToUpper(field(record, columns, "country")),
			Type:    models.TransactionType(txnType),
			Comment: field(record, columns, "comment"),
		}

		if err := txn.Validate(); err != nil {
			logger.Error().Int("row", row).Err(err).Msg("Validation error, skipping row")
			continue
		}
		txns = append(txns, txn)
	}

	logger.Debug().Int("count", len(txns)).Str("path", path).Msg("Loaded transactions")
	return txns, nil
}

func field(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
