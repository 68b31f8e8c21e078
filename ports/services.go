package ports

import (
	"context"

	"github.com/udhaarbook/ledger/domain"
	"github.com/udhaarbook/ledger/dto"
)

// LedgerSvcFacade is the engine's full surface: the only way external
// collaborators (UI, exporters) read or mutate the ledger.
type LedgerSvcFacade interface {
	// CreateTransaction validates the request, derives the customer key,
	// stores the entry, and recomputes the customer's running balances.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateTransaction patches the given fields and recomputes balances for
	// every affected customer partition. Idempotent.
	UpdateTransaction(ctx context.Context, transactionID int64, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction removes the entry and recomputes the remaining
	// balances for that customer.
	DeleteTransaction(ctx context.Context, transactionID int64) error

	GetTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// ListTransactions returns a snapshot of the whole ledger in creation
	// order; this is the feed exporters consume.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	// GetCustomerLedger returns one customer's entries with running balances,
	// optionally restricted to a date range. Balances are computed over the
	// full history before the range filter is applied.
	GetCustomerLedger(ctx context.Context, customerKey string, filter dto.LedgerFilter) ([]domain.LedgerLine, error)

	// ListCustomers returns one summary row per customer, sorted by name.
	ListCustomers(ctx context.Context) ([]domain.CustomerSummary, error)

	// SearchTransactions filters the ledger by free text (name/mobile),
	// customer key, and date range.
	SearchTransactions(ctx context.Context, filter dto.TransactionFilter) ([]domain.Transaction, error)

	// GetSummary returns the fleet-wide rollup across all customers.
	GetSummary(ctx context.Context) (*domain.LedgerSummary, error)

	// Load hydrates the store from the configured blob store, skipping
	// malformed records, and recomputes every customer's balances.
	Load(ctx context.Context) error
}
