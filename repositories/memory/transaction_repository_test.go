package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udhaarbook/ledger/apperrors"
	"github.com/udhaarbook/ledger/domain"
	"github.com/udhaarbook/ledger/repositories/memory"
)

func newTxn(customerKey, day string) domain.Transaction {
	date, _ := time.Parse("2006-01-02", day)
	return domain.Transaction{
		CustomerKey:  customerKey,
		CustomerName: "Ravi Kumar",
		Date:         date,
		Kind:         domain.Credit,
		Amount:       decimal.NewFromInt(100),
	}
}

func TestCreateTransaction_AssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository()

	first, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-01"))
	require.NoError(t, err)
	second, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-02"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.TransactionID)
	assert.Equal(t, int64(2), second.TransactionID)
	assert.False(t, first.CreatedAt.IsZero())

	// Deleting never frees an id for reuse.
	require.NoError(t, repo.DeleteTransaction(ctx, second.TransactionID))
	third, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.TransactionID)
}

func TestFindTransactionByID_NotFound(t *testing.T) {
	repo := memory.NewTransactionRepository()

	_, err := repo.FindTransactionByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListTransactions_ReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	created, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-01"))
	require.NoError(t, err)

	listed, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// Mutating the snapshot must not leak into the store.
	listed[0].CustomerName = "tampered"
	stored, err := repo.FindTransactionByID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", stored.CustomerName)
}

func TestListTransactionsByCustomer_OrderedByDateThenID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository()

	// Inserted out of date order, with two entries sharing a date.
	late, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-05"))
	require.NoError(t, err)
	early, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-01"))
	require.NoError(t, err)
	sameDay, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-05"))
	require.NoError(t, err)
	_, err = repo.CreateTransaction(ctx, newTxn("cust-2", "2024-01-02"))
	require.NoError(t, err)

	txns, err := repo.ListTransactionsByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, early.TransactionID, txns[0].TransactionID)
	assert.Equal(t, late.TransactionID, txns[1].TransactionID)
	assert.Equal(t, sameDay.TransactionID, txns[2].TransactionID)
}

func TestUpdateTransactions_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	created, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-01"))
	require.NoError(t, err)

	valid := created
	valid.Amount = decimal.NewFromInt(999)
	missing := created
	missing.TransactionID = 777

	err = repo.UpdateTransactions(ctx, []domain.Transaction{valid, missing})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The valid row must not have been touched.
	stored, err := repo.FindTransactionByID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "100", stored.Amount.String())
}

func TestUpdateTransactions_PreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	created, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-01"))
	require.NoError(t, err)

	update := created
	update.Amount = decimal.NewFromInt(250)
	update.CreatedAt = time.Time{}
	require.NoError(t, repo.UpdateTransactions(ctx, []domain.Transaction{update}))

	stored, err := repo.FindTransactionByID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "250", stored.Amount.String())
	assert.Equal(t, created.CreatedAt, stored.CreatedAt)
}

func TestReplaceAll_AdvancesIDSequence(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository()

	restored := newTxn("cust-1", "2024-01-01")
	restored.TransactionID = 40
	require.NoError(t, repo.ReplaceAll(ctx, []domain.Transaction{restored}))

	created, err := repo.CreateTransaction(ctx, newTxn("cust-1", "2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, int64(41), created.TransactionID)
}

func TestReplaceAll_RejectsDuplicateIDs(t *testing.T) {
	repo := memory.NewTransactionRepository()

	a := newTxn("cust-1", "2024-01-01")
	a.TransactionID = 1
	b := newTxn("cust-2", "2024-01-02")
	b.TransactionID = 1

	err := repo.ReplaceAll(context.Background(), []domain.Transaction{a, b})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCustomerKeys(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	_, err := repo.CreateTransaction(ctx, newTxn("cust-b", "2024-01-01"))
	require.NoError(t, err)
	_, err = repo.CreateTransaction(ctx, newTxn("cust-a", "2024-01-02"))
	require.NoError(t, err)
	_, err = repo.CreateTransaction(ctx, newTxn("cust-a", "2024-01-03"))
	require.NoError(t, err)

	keys, err := repo.CustomerKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cust-a", "cust-b"}, keys)
}
