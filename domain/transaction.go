package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind indicates whether a transaction increases or decreases
// what the customer owes.
type TransactionKind string

const (
	// Credit increases the amount owed by the customer ("udhar" in the ledger books).
	Credit TransactionKind = "CREDIT"
	// Payment decreases the amount owed by the customer ("jama").
	Payment TransactionKind = "PAYMENT"
)

// Valid reports whether the kind is one of the two canonical values.
func (k TransactionKind) Valid() bool {
	return k == Credit || k == Payment
}

// Transaction represents a single ledger entry for one customer.
type Transaction struct {
	TransactionID   int64           `json:"transactionID"`   // Monotonic creation-order id; never reused
	CustomerKey     string          `json:"customerKey"`     // Derived from name + mobile; ledger partition
	CustomerName    string          `json:"customerName"`    // As entered (Not Null)
	Mobile          string          `json:"mobile"`          // Nullable
	Date            time.Time       `json:"date"`            // Calendar date, normalized to midnight UTC
	Kind            TransactionKind `json:"kind"`            // CREDIT or PAYMENT (Not Null)
	Amount          decimal.Decimal `json:"amount"`          // Positive value; precise decimal type
	Notes           string          `json:"notes"`           // Nullable
	PreviousBalance decimal.Decimal `json:"previousBalance"` // Running balance before this entry
	NewBalance      decimal.Decimal `json:"newBalance"`      // Running balance after this entry
	AuditFields
}

// NormalizeDate truncates a timestamp to its calendar date in UTC.
// Ledger ordering works on whole days; time-of-day never participates.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
