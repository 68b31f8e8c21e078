package ports

import (
	"context"

	"github.com/udhaarbook/ledger/domain"
)

// TransactionRepository defines persistence operations for the transaction
// store. Implementations own the id sequence: ids are assigned in creation
// order and never reused after deletion.
type TransactionRepository interface {
	// CreateTransaction assigns a new id and creation timestamp, stores the
	// transaction, and returns the stored copy.
	CreateTransaction(ctx context.Context, txn domain.Transaction) (domain.Transaction, error)

	// FindTransactionByID returns the transaction or apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// ListTransactions returns a snapshot of every stored transaction in
	// creation order. Mutating the result never affects the store.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	// ListTransactionsByCustomer returns a snapshot of one customer's
	// transactions ordered by (date ascending, id ascending).
	ListTransactionsByCustomer(ctx context.Context, customerKey string) ([]domain.Transaction, error)

	// UpdateTransactions applies a batch of full-row updates atomically.
	// If any id is absent the whole batch is rejected with
	// apperrors.ErrNotFound and nothing is modified.
	UpdateTransactions(ctx context.Context, txns []domain.Transaction) error

	// DeleteTransaction removes the transaction or returns apperrors.ErrNotFound.
	DeleteTransaction(ctx context.Context, transactionID int64) error

	// ReplaceAll swaps the entire store contents, advancing the id sequence
	// past the highest id seen. Used when hydrating from persisted state.
	ReplaceAll(ctx context.Context, txns []domain.Transaction) error

	// CustomerKeys lists the distinct customer keys currently present.
	CustomerKeys(ctx context.Context) ([]string, error)
}

// BlobStore is the external persistence collaborator: the full transaction
// collection is read in one piece at startup and written in one piece after
// every mutation. Failures surface as apperrors.ErrStorage and are non-fatal
// for in-memory operation.
type BlobStore interface {
	Load(ctx context.Context) ([]domain.Transaction, error)
	Save(ctx context.Context, txns []domain.Transaction) error
}
