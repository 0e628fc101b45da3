package enricher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triqai/enrich-go/pkg/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, `country,type,title,comment
US,expense,STARBUCKS STORE 12345,coffee
de,income,ACME GMBH PAYROLL,
GB,expense,TESCO SUPERSTORE 0423,groceries
`)

	txns, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "STARBUCKS STORE 12345", txns[0].Title)
	assert.Equal(t, "US", txns[0].Country)
	assert.Equal(t, models.TypeExpense, txns[0].Type)
	assert.Equal(t, "coffee", txns[0].Comment)

	// Country codes are uppercased on load.
	assert.Equal(t, "DE", txns[1].Country)
	assert.Equal(t, models.TypeIncome, txns[1].Type)
}

func TestLoadCSVHeaderCaseInsensitive(t *testing.T) {
	path := writeCSV(t, `Country, Type , TITLE
US,expense,COFFEE
`)

	txns, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "COFFEE", txns[0].Title)
}

func TestLoadCSVSkipsInvalidRows(t *testing.T) {
	path := writeCSV(t, `country,type,title
US,expense,VALID ONE
USA,expense,BAD COUNTRY
US,expense,
US,expense,VALID TWO
`)

	txns, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "VALID ONE", txns[0].Title)
	assert.Equal(t, "VALID TWO", txns[1].Title)
}

func TestLoadCSVDefaultsUnknownType(t *testing.T) {
	path := writeCSV(t, `country,type,title
US,transfer,SOMETHING ODD
`)

	txns, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TypeExpense, txns[0].Type)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeCSV(t, `country,title
US,NO TYPE COLUMN
`)

	_, err := LoadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestLoadCSVShortRows(t *testing.T) {
	path := writeCSV(t, `country,type,title,comment
US,expense,NO COMMENT CELL
US,expense,WITH COMMENT,hello
`)

	txns, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Empty(t, txns[0].Comment)
	assert.Equal(t, "hello", txns[1].Comment)
}
