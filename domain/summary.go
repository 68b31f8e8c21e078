package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerTotals holds the per-customer aggregate over all their transactions.
type CustomerTotals struct {
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	TotalPayment decimal.Decimal `json:"totalPayment"`
	Balance      decimal.Decimal `json:"balance"`
}

// CustomerSummary is one row of the all-customers overview.
type CustomerSummary struct {
	CustomerKey  string `json:"customerKey"`
	CustomerName string `json:"customerName"`
	Mobile       string `json:"mobile"`
	CustomerTotals
	LastTransactionDate time.Time `json:"lastTransactionDate"`
	TransactionCount    int       `json:"transactionCount"`
}

// LedgerSummary is the fleet-wide rollup across every customer.
// TotalOutstanding sums only the positive portion of each customer's balance;
// a customer in credit does not offset another customer's debt.
type LedgerSummary struct {
	CustomerCount    int             `json:"customerCount"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
	TotalPayment     decimal.Decimal `json:"totalPayment"`
}

// LedgerLine pairs a transaction with its running balance at that point in
// the customer's history.
type LedgerLine struct {
	Transaction    Transaction     `json:"transaction"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}
