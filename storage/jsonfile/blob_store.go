// Package jsonfile persists the whole transaction collection as a single
// JSON file: read in full at startup, rewritten in full after every mutation.
// It is the file-system analog of the browser variants' localStorage blob.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/udhaarbook/ledger/apperrors"
	"github.com/udhaarbook/ledger/domain"
	"github.com/udhaarbook/ledger/ports"
)

// BlobStore reads and writes the ledger file.
type BlobStore struct {
	path string
}

// NewBlobStore creates a store over the given file path. The file does not
// need to exist yet.
func NewBlobStore(path string) *BlobStore {
	return &BlobStore{path: path}
}

// Ensure BlobStore implements the ports.BlobStore interface
var _ ports.BlobStore = (*BlobStore)(nil)

// record is the on-disk row. It carries both the canonical field names and
// the legacy names used by the browser variants' exports, so an old
// udhar_entries file loads cleanly.
type record struct {
	TransactionID int64           `json:"transactionID,omitempty"`
	LegacyID      int64           `json:"id,omitempty"`
	CustomerKey   string          `json:"customerKey,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	LegacyName    string          `json:"name,omitempty"`
	Mobile        string          `json:"mobile,omitempty"`
	Date          string          `json:"date"`
	Kind          string          `json:"kind,omitempty"`
	LegacyType    string          `json:"type,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes,omitempty"`
	LegacyDesc    string          `json:"desc,omitempty"`

	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	CreatedAt       time.Time       `json:"createdAt,omitzero"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt,omitzero"`
}

// Load reads the full collection. A missing file is an empty ledger, not an
// error; anything else that goes wrong is an ErrStorage.
func (s *BlobStore) Load(_ context.Context) ([]domain.Transaction, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read ledger file %s: %v", apperrors.ErrStorage, s.path, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: ledger file %s is not valid JSON: %v", apperrors.ErrStorage, s.path, err)
	}

	txns := make([]domain.Transaction, 0, len(records))
	for _, r := range records {
		txns = append(txns, r.toDomain())
	}
	return txns, nil
}

// Save overwrites the ledger file with the full collection. The write goes to
// a temp file first and is renamed into place, so a crash mid-write never
// leaves a truncated ledger behind.
func (s *BlobStore) Save(_ context.Context, txns []domain.Transaction) error {
	records := make([]record, 0, len(txns))
	for _, txn := range txns {
		records = append(records, toRecord(txn))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode ledger: %v", apperrors.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp ledger file: %v", apperrors.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write ledger file: %v", apperrors.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close ledger file: %v", apperrors.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to replace ledger file %s: %v", apperrors.ErrStorage, s.path, err)
	}
	return nil
}

func toRecord(txn domain.Transaction) record {
	return record{
		TransactionID:   txn.TransactionID,
		CustomerKey:     txn.CustomerKey,
		CustomerName:    txn.CustomerName,
		Mobile:          txn.Mobile,
		Date:            txn.Date.Format("2006-01-02"),
		Kind:            string(txn.Kind),
		Amount:          txn.Amount,
		Notes:           txn.Notes,
		PreviousBalance: txn.PreviousBalance,
		NewBalance:      txn.NewBalance,
		CreatedAt:       txn.CreatedAt,
		LastUpdatedAt:   txn.LastUpdatedAt,
	}
}

func (r record) toDomain() domain.Transaction {
	txn := domain.Transaction{
		TransactionID:   r.TransactionID,
		CustomerKey:     r.CustomerKey,
		CustomerName:    r.CustomerName,
		Mobile:          r.Mobile,
		Kind:            normalizeKind(r.Kind, r.LegacyType),
		Amount:          r.Amount,
		Notes:           r.Notes,
		PreviousBalance: r.PreviousBalance,
		NewBalance:      r.NewBalance,
	}
	txn.CreatedAt = r.CreatedAt
	txn.LastUpdatedAt = r.LastUpdatedAt

	if txn.TransactionID == 0 {
		txn.TransactionID = r.LegacyID
	}
	if txn.CustomerName == "" {
		txn.CustomerName = r.LegacyName
	}
	if txn.Notes == "" {
		txn.Notes = r.LegacyDesc
	}
	if date, err := parseDate(r.Date); err == nil {
		txn.Date = date
	}
	return txn
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// normalizeKind maps the canonical kind field, or failing that the legacy
// type field, onto the two canonical kinds. The legacy vocabulary is
// inverted: the old files call the owed-amount-increasing entry "debit"
// (udhar) and the repayment "credit". Unknown spellings come back as-is and
// get rejected by the engine's per-record validation.
func normalizeKind(kind, legacyType string) domain.TransactionKind {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case string(domain.Credit):
		return domain.Credit
	case string(domain.Payment):
		return domain.Payment
	}

	switch strings.ToLower(strings.TrimSpace(legacyType)) {
	case "debit", "udhar":
		return domain.Credit
	case "credit", "jama", "receive", "payment":
		return domain.Payment
	}
	return domain.TransactionKind(kind + legacyType)
}
