package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/triqai/enrich-go/pkg/models"
)

func TestKeyDeterministic(t *testing.T) {
	txn := models.Transaction{Title: "STARBUCKS STORE 12345", Country: "US", Type: models.TypeExpense}

	if Key(txn) != Key(txn) {
		t.Error("same transaction must produce the same key")
	}
}

func TestKeyNormalizesCountry(t *testing.T) {
	lower := models.Transaction{Title: "NETFLIX.COM", Country: "us", Type: models.TypeExpense}
	upper := models.Transaction{Title: "NETFLIX.COM", Country: "US", Type: models.TypeExpense}

	if Key(lower) != Key(upper) {
		t.Error("country case must not change the key")
	}
}

func TestKeyDiscriminates(t *testing.T) {
	base := models.Transaction{Title: "ACME PAYMENT", Country: "US", Type: models.TypeExpense}

	variants := []models.Transaction{
		{Title: "ACME PAYMENT 2", Country: "US", Type: models.TypeExpense},
		{Title: "ACME PAYMENT", Country: "DE", Type: models.TypeExpense},
		{Title: "ACME PAYMENT", Country: "US", Type: models.TypeIncome},
	}
	for _, v := range variants {
		if Key(base) == Key(v) {
			t.Errorf("key collision between %+v and %+v", base, v)
		}
	}
}

func TestKeyShape(t *testing.T) {
	txn := models.Transaction{Title: "title with, separators; and bytes", Country: "gb", Type: models.TypeExpense}
	key := Key(txn)

	if !strings.HasPrefix(key, "triqai:enrich:GB:expense:") {
		t.Errorf("key = %q, want triqai:enrich:GB:expense: prefix", key)
	}
	digest := strings.TrimPrefix(key, "triqai:enrich:GB:expense:")
	if len(digest) != 24 {
		t.Errorf("digest %q has length %d, want 24 hex chars", digest, len(digest))
	}
	if strings.ContainsAny(digest, " ,;") {
		t.Errorf("digest %q carries raw title bytes", digest)
	}
}

func TestEntryAge(t *testing.T) {
	e := Entry{CachedAt: time.Now().Add(-time.Hour)}
	if age := e.Age(); age < 59*time.Minute || age > 61*time.Minute {
		t.Errorf("Age() = %v, want ~1h", age)
	}
}
