package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udhaarbook/ledger/apperrors"
	"github.com/udhaarbook/ledger/domain"
	"github.com/udhaarbook/ledger/storage/jsonfile"
)

func TestLoad_MissingFileIsEmptyLedger(t *testing.T) {
	store := jsonfile.NewBlobStore(filepath.Join(t.TempDir(), "ledger.json"))

	txns, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")
	store := jsonfile.NewBlobStore(path)

	txn := domain.Transaction{
		TransactionID:   7,
		CustomerKey:     domain.NewCustomerKey("Ravi Kumar", "9876543210"),
		CustomerName:    "Ravi Kumar",
		Mobile:          "9876543210",
		Date:            time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Kind:            domain.Payment,
		Amount:          decimal.NewFromInt(200),
		Notes:           "Partial payment",
		PreviousBalance: decimal.NewFromInt(500),
		NewBalance:      decimal.NewFromInt(300),
	}
	require.NoError(t, store.Save(ctx, []domain.Transaction{txn}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, txn.TransactionID, got.TransactionID)
	assert.Equal(t, txn.CustomerKey, got.CustomerKey)
	assert.Equal(t, txn.CustomerName, got.CustomerName)
	assert.Equal(t, txn.Date, got.Date)
	assert.Equal(t, domain.Payment, got.Kind)
	assert.True(t, txn.Amount.Equal(got.Amount))
	assert.Equal(t, txn.Notes, got.Notes)
	assert.True(t, txn.NewBalance.Equal(got.NewBalance))
}

func TestSave_OverwritesPreviousContents(t *testing.T) {
	ctx := context.Background()
	store := jsonfile.NewBlobStore(filepath.Join(t.TempDir(), "ledger.json"))

	a := domain.Transaction{TransactionID: 1, CustomerName: "A", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Kind: domain.Credit, Amount: decimal.NewFromInt(10)}
	b := domain.Transaction{TransactionID: 2, CustomerName: "B", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Kind: domain.Credit, Amount: decimal.NewFromInt(20)}

	require.NoError(t, store.Save(ctx, []domain.Transaction{a, b}))
	require.NoError(t, store.Save(ctx, []domain.Transaction{b}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(2), loaded[0].TransactionID)
}

func TestLoad_CorruptFileIsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := jsonfile.NewBlobStore(path).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestLoad_LegacyBrowserExport(t *testing.T) {
	// The browser variants stored the inverted vocabulary: "debit" was the
	// udhar entry (owed amount grows), "credit" the repayment.
	legacy := `[
	  {"id": 1717171717, "name": "Ravi Kumar", "mobile": "9876543210", "date": "2024-01-01", "type": "debit", "amount": 500, "box": "Small", "desc": "Rice pack"},
	  {"id": 1717171999, "name": "Ravi Kumar", "mobile": "9876543210", "date": "2024-01-05", "type": "credit", "amount": 200, "desc": "Partial payment"}
	]`
	path := filepath.Join(t.TempDir(), "udhar_entries_v1.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	loaded, err := jsonfile.NewBlobStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, int64(1717171717), loaded[0].TransactionID)
	assert.Equal(t, "Ravi Kumar", loaded[0].CustomerName)
	assert.Equal(t, domain.Credit, loaded[0].Kind)
	assert.Equal(t, "Rice pack", loaded[0].Notes)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), loaded[0].Date)

	assert.Equal(t, domain.Payment, loaded[1].Kind)
	assert.True(t, loaded[1].Amount.Equal(decimal.NewFromInt(200)))
}

func TestLoad_UnknownKindSurvivesAsInvalid(t *testing.T) {
	// Unknown spellings are not guessed at; the engine's per-record
	// validation rejects them on load.
	raw := `[{"id": 1, "name": "X", "date": "2024-01-01", "type": "loan", "amount": 5}]`
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	loaded, err := jsonfile.NewBlobStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.False(t, loaded[0].Kind.Valid())
}
