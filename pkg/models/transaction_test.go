package models

import (
	"strings"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		txn     Transaction
		wantErr bool
	}{
		{
			name: "valid expense",
			txn:  Transaction{Title: "STARBUCKS 12345", Country: "US", Type: TypeExpense},
		},
		{
			name: "valid income with lowercase country",
			txn:  Transaction{Title: "ACME PAYROLL", Country: "de", Type: TypeIncome},
		},
		{
			name:    "missing title",
			txn:     Transaction{Country: "US", Type: TypeExpense},
			wantErr: true,
		},
		{
			name:    "title too long",
			txn:     Transaction{Title: strings.Repeat("x", MaxTitleLength+1), Country: "US", Type: TypeExpense},
			wantErr: true,
		},
		{
			name: "title at limit",
			txn:  Transaction{Title: strings.Repeat("x", MaxTitleLength), Country: "US", Type: TypeExpense},
		},
		{
			name:    "three letter country",
			txn:     Transaction{Title: "X", Country: "USA", Type: TypeExpense},
			wantErr: true,
		},
		{
			name:    "numeric country",
			txn:     Transaction{Title: "X", Country: "12", Type: TypeExpense},
			wantErr: true,
		},
		{
			name:    "invalid type",
			txn:     Transaction{Title: "X", Country: "US", Type: "transfer"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionToRequest(t *testing.T) {
	txn := Transaction{
		Title:   "NETFLIX.COM",
		Country: "us",
		Type:    TypeExpense,
		Comment: "monthly subscription",
	}

	req := txn.ToRequest()
	if req.Country != "US" {
		t.Errorf("Country = %q, want uppercased US", req.Country)
	}
	if req.Title != txn.Title || req.Type != "expense" {
		t.Errorf("ToRequest() = %+v, want title and type preserved", req)
	}
}
