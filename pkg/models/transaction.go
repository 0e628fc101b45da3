// Package models defines the request and response types for the Triqai
// Transaction Enrichment API (v1.1.0 entities array pattern).
package models

import (
	"fmt"
	"strings"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	// TypeExpense is money leaving the account.
	TypeExpense TransactionType = "expense"

	// TypeIncome is money entering the account.
	TypeIncome TransactionType = "income"
)

// TransactionChannel describes how a transaction was conducted.
type TransactionChannel string

const (
	ChannelInStore      TransactionChannel = "in_store"
	ChannelOnline       TransactionChannel = "online"
	ChannelMobileApp    TransactionChannel = "mobile_app"
	ChannelATM          TransactionChannel = "atm"
	ChannelBankTransfer TransactionChannel = "bank_transfer"
	ChannelUnknown      TransactionChannel = "unknown"
)

// MaxTitleLength is the maximum accepted transaction title length.
const MaxTitleLength = 256

// Transaction is an input record to enrich. It is immutable after creation;
// the loader builds it once and the scheduler never mutates it.
type Transaction struct {
	// Title is the raw transaction title from the bank statement.
	Title string `json:"title"`

	// Country is the ISO 3166-1 alpha-2 country code.
	Country string `json:"country"`

	// Type is the transaction direction (expense/income).
	Type TransactionType `json:"type"`

	// Comment is an optional free-form note. Not sent to the API.
	Comment string `json:"comment,omitempty"`
}

// Validate checks the transaction fields against the API constraints.
func (t Transaction) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > MaxTitleLength {
		return fmt.Errorf("title exceeds %d characters (got %d)", MaxTitleLength, len(t.Title))
	}
	if len(t.Country) != 2 || !isAlpha(t.Country) {
		return fmt.Errorf("country must be a 2-letter ISO code (got %q)", t.Country)
	}
	if t.Type != TypeExpense && t.Type != TypeIncome {
		return fmt.Errorf("type must be %q or %q (got %q)", TypeExpense, TypeIncome, t.Type)
	}
	return nil
}

// EnrichRequest is the wire payload for POST /v1/transactions/enrich.
type EnrichRequest struct {
	Title   string `json:"title"`
	Country string `json:"country"`
	Type    string `json:"type"`
}

// ToRequest converts the transaction to its API request payload.
// The country code is uppercased; the comment is client-side only.
func (t Transaction) ToRequest() EnrichRequest {
	return EnrichRequest{
		Title:   t.Title,
		Country: strings.ToUpper(t.Country),
		Type:    string(t.Type),
	}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
