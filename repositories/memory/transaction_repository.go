// Package memory provides the in-memory transaction store backing the ledger
// engine. There is one logical writer per ledger instance; the mutex guards
// against incidental sharing, not a concurrent workload.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/udhaarbook/ledger/apperrors"
	"github.com/udhaarbook/ledger/domain"
	"github.com/udhaarbook/ledger/ports"
)

// TransactionRepository is a map-backed implementation of
// ports.TransactionRepository with a monotonic id sequence.
type TransactionRepository struct {
	mu     sync.Mutex
	byID   map[int64]domain.Transaction
	nextID int64
}

// NewTransactionRepository creates an empty store. Ids start at 1.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byID:   make(map[int64]domain.Transaction),
		nextID: 1,
	}
}

// Ensure TransactionRepository implements the ports.TransactionRepository interface
var _ ports.TransactionRepository = (*TransactionRepository)(nil)

// CreateTransaction assigns the next id and creation timestamp, stores the
// transaction, and returns the stored copy.
func (r *TransactionRepository) CreateTransaction(_ context.Context, txn domain.Transaction) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	txn.TransactionID = r.nextID
	txn.CreatedAt = now
	txn.LastUpdatedAt = now
	r.nextID++

	r.byID[txn.TransactionID] = txn
	return txn, nil
}

// FindTransactionByID returns a copy of the transaction, or ErrNotFound.
func (r *TransactionRepository) FindTransactionByID(_ context.Context, transactionID int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.byID[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, apperrors.ErrNotFound)
	}
	return &txn, nil
}

// ListTransactions returns a snapshot of every stored transaction in creation
// (id) order.
func (r *TransactionRepository) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txns := make([]domain.Transaction, 0, len(r.byID))
	for _, txn := range r.byID {
		txns = append(txns, txn)
	}
	sort.Slice(txns, func(i, j int) bool {
		return txns[i].TransactionID < txns[j].TransactionID
	})
	return txns, nil
}

// ListTransactionsByCustomer returns a snapshot of one customer's entries
// ordered by (date ascending, id ascending). Id order is insertion order, so
// same-day entries keep their creation sequence.
func (r *TransactionRepository) ListTransactionsByCustomer(_ context.Context, customerKey string) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var txns []domain.Transaction
	for _, txn := range r.byID {
		if txn.CustomerKey == customerKey {
			txns = append(txns, txn)
		}
	}
	sort.Slice(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].TransactionID < txns[j].TransactionID
		}
		return txns[i].Date.Before(txns[j].Date)
	})
	return txns, nil
}

// UpdateTransactions applies a batch of full-row updates atomically: if any
// id is absent the whole batch is rejected and the store is untouched.
func (r *TransactionRepository) UpdateTransactions(_ context.Context, txns []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, txn := range txns {
		if _, ok := r.byID[txn.TransactionID]; !ok {
			return fmt.Errorf("transaction %d: %w", txn.TransactionID, apperrors.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	for _, txn := range txns {
		txn.CreatedAt = r.byID[txn.TransactionID].CreatedAt
		txn.LastUpdatedAt = now
		r.byID[txn.TransactionID] = txn
	}
	return nil
}

// DeleteTransaction removes the transaction. The id is never handed out again.
func (r *TransactionRepository) DeleteTransaction(_ context.Context, transactionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[transactionID]; !ok {
		return fmt.Errorf("transaction %d: %w", transactionID, apperrors.ErrNotFound)
	}
	delete(r.byID, transactionID)
	return nil
}

// ReplaceAll swaps the whole store contents, advancing the id sequence past
// the highest id seen so restored entries keep their ids and new entries
// never collide with them.
func (r *TransactionRepository) ReplaceAll(_ context.Context, txns []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID := make(map[int64]domain.Transaction, len(txns))
	maxID := int64(0)
	for _, txn := range txns {
		if _, ok := byID[txn.TransactionID]; ok {
			return fmt.Errorf("duplicate transaction id %d: %w", txn.TransactionID, apperrors.ErrValidation)
		}
		byID[txn.TransactionID] = txn
		if txn.TransactionID > maxID {
			maxID = txn.TransactionID
		}
	}

	r.byID = byID
	if maxID >= r.nextID {
		r.nextID = maxID + 1
	}
	return nil
}

// CustomerKeys lists the distinct customer keys currently present, sorted for
// deterministic iteration.
func (r *TransactionRepository) CustomerKeys(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	var keys []string
	for _, txn := range r.byID {
		if _, ok := seen[txn.CustomerKey]; !ok {
			seen[txn.CustomerKey] = struct{}{}
			keys = append(keys, txn.CustomerKey)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
