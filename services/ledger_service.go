package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/udhaarbook/ledger/accounting"
	"github.com/udhaarbook/ledger/apperrors"
	"github.com/udhaarbook/ledger/domain"
	"github.com/udhaarbook/ledger/dto"
	"github.com/udhaarbook/ledger/ports"
)

var (
	ErrAmountNotPositive = errors.New("transaction amount must be positive")
	ErrNoFieldsToUpdate  = errors.New("update request contains no fields")
)

// ledgerService is the single owner of the transaction store: every mutation
// goes through it and triggers a running-balance recompute for the affected
// customer partition(s).
type ledgerService struct {
	BaseService
	txnRepo         ports.TransactionRepository
	blobStore       ports.BlobStore
	floorAtZero     bool
	openingBalances map[string]decimal.Decimal
	validate        *validator.Validate
}

// LedgerServiceOption is a functional option for configuring the ledger service.
type LedgerServiceOption func(*ledgerService)

// WithBlobStore sets the persistence collaborator. Every successful mutation
// is written through; save failures are logged and the in-memory store stays
// authoritative.
func WithBlobStore(store ports.BlobStore) LedgerServiceOption {
	return func(s *ledgerService) {
		s.blobStore = store
	}
}

// WithFloorAtZero clamps every computed balance at zero instead of letting an
// overpaying customer go negative. Per-deployment policy, default off.
func WithFloorAtZero(floor bool) LedgerServiceOption {
	return func(s *ledgerService) {
		s.floorAtZero = floor
	}
}

// WithOpeningBalances seeds per-customer balances carried in from before the
// recorded history. Customers without an entry start at zero.
func WithOpeningBalances(openings map[string]decimal.Decimal) LedgerServiceOption {
	return func(s *ledgerService) {
		s.openingBalances = openings
	}
}

// NewLedgerService creates the ledger balance engine over the given store.
func NewLedgerService(txnRepo ports.TransactionRepository, options ...LedgerServiceOption) ports.LedgerSvcFacade {
	svc := &ledgerService{
		txnRepo:  txnRepo,
		validate: validator.New(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure ledgerService implements the ports.LedgerSvcFacade interface
var _ ports.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) openingBalance(customerKey string) decimal.Decimal {
	if opening, ok := s.openingBalances[customerKey]; ok {
		return opening
	}
	return decimal.Zero
}

// recomputePartition rebuilds the running-balance snapshots for one
// customer's transactions on a working copy and returns the updated rows.
// The input must already be the full partition; it is re-sorted here so the
// caller never has to care about order.
func (s *ledgerService) recomputePartition(customerKey string, txns []domain.Transaction) ([]domain.Transaction, error) {
	accounting.SortForLedger(txns)

	opening := s.openingBalance(customerKey)
	balances, err := accounting.RunningBalances(txns, opening, s.floorAtZero)
	if err != nil {
		return nil, err
	}

	previous := opening
	for i := range txns {
		txns[i].PreviousBalance = previous
		txns[i].NewBalance = balances[i].Balance
		previous = balances[i].Balance
	}
	return txns, nil
}

// recomputeAndStore rebuilds the given partitions from the store's current
// contents and swaps them in through one atomic batch update.
func (s *ledgerService) recomputeAndStore(ctx context.Context, customerKeys ...string) error {
	seen := make(map[string]struct{}, len(customerKeys))
	var batch []domain.Transaction
	for _, key := range customerKeys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		txns, err := s.txnRepo.ListTransactionsByCustomer(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to list transactions for customer %s: %w", key, err)
		}
		updated, err := s.recomputePartition(key, txns)
		if err != nil {
			return fmt.Errorf("failed to recompute balances for customer %s: %w", key, err)
		}
		batch = append(batch, updated...)
	}
	if len(batch) == 0 {
		return nil
	}
	return s.txnRepo.UpdateTransactions(ctx, batch)
}

// persist writes the full collection through to the blob store. A failure is
// a warning, not an error: the in-memory store remains the source of truth
// until the next successful save.
func (s *ledgerService) persist(ctx context.Context) {
	if s.blobStore == nil {
		return
	}
	txns, err := s.txnRepo.ListTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to snapshot store for persistence")
		return
	}
	if err := s.blobStore.Save(ctx, txns); err != nil {
		s.LogWarn(ctx, "Failed to save ledger, continuing in memory",
			slog.String("error", err.Error()),
			slog.Int("transaction_count", len(txns)))
	}
}

// CreateTransaction validates the request, derives the customer key, stores
// the entry and recomputes the customer's running balances.
func (s *ledgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrAmountNotPositive)
	}

	txn, err := req.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
	}

	created, err := s.txnRepo.CreateTransaction(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	if err := s.recomputeAndStore(ctx, created.CustomerKey); err != nil {
		return nil, err
	}
	s.persist(ctx)

	stored, err := s.txnRepo.FindTransactionByID(ctx, created.TransactionID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Transaction recorded",
		slog.Int64("transaction_id", stored.TransactionID),
		slog.String("customer_key", stored.CustomerKey),
		slog.String("kind", string(stored.Kind)),
		slog.String("amount", stored.Amount.String()))
	return stored, nil
}

// UpdateTransaction patches the given fields and recomputes balances for
// every affected customer partition. Changing the date can move the entry
// within its partition; changing name or mobile moves it between partitions.
// Both partitions are rebuilt on working copies and swapped in atomically, so
// running the same update twice yields identical balances.
func (s *ledgerService) UpdateTransaction(ctx context.Context, transactionID int64, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if req.CustomerName == nil && req.Mobile == nil && req.Date == nil && req.Kind == nil && req.Amount == nil && req.Notes == nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoFieldsToUpdate)
	}
	if req.Amount != nil && req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrAmountNotPositive)
	}
	if req.CustomerName != nil && strings.TrimSpace(*req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name must not be empty", apperrors.ErrValidation)
	}

	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	patched := *existing
	if req.CustomerName != nil {
		patched.CustomerName = *req.CustomerName
	}
	if req.Mobile != nil {
		patched.Mobile = *req.Mobile
	}
	if req.Date != nil {
		date, err := time.Parse(dto.DateLayout, *req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, *req.Date)
		}
		patched.Date = domain.NormalizeDate(date)
	}
	if req.Kind != nil {
		patched.Kind = *req.Kind
	}
	if req.Amount != nil {
		patched.Amount = *req.Amount
	}
	if req.Notes != nil {
		patched.Notes = *req.Notes
	}
	patched.CustomerKey = domain.NewCustomerKey(patched.CustomerName, patched.Mobile)

	oldKey := existing.CustomerKey
	batch, err := s.buildUpdateBatch(ctx, patched, oldKey)
	if err != nil {
		return nil, err
	}
	if err := s.txnRepo.UpdateTransactions(ctx, batch); err != nil {
		return nil, err
	}
	s.persist(ctx)

	stored, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Transaction updated",
		slog.Int64("transaction_id", transactionID),
		slog.String("customer_key", stored.CustomerKey))
	return stored, nil
}

// buildUpdateBatch assembles the single atomic batch for an edit: the old
// partition without the edited row (when the key changed) plus the new
// partition including the patched row, both with freshly computed balances.
func (s *ledgerService) buildUpdateBatch(ctx context.Context, patched domain.Transaction, oldKey string) ([]domain.Transaction, error) {
	newPartition, err := s.txnRepo.ListTransactionsByCustomer(ctx, patched.CustomerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for customer %s: %w", patched.CustomerKey, err)
	}

	replaced := false
	for i := range newPartition {
		if newPartition[i].TransactionID == patched.TransactionID {
			newPartition[i] = patched
			replaced = true
		}
	}
	if !replaced {
		newPartition = append(newPartition, patched)
	}

	batch, err := s.recomputePartition(patched.CustomerKey, newPartition)
	if err != nil {
		return nil, err
	}

	if oldKey != patched.CustomerKey {
		oldPartition, err := s.txnRepo.ListTransactionsByCustomer(ctx, oldKey)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions for customer %s: %w", oldKey, err)
		}
		remaining := oldPartition[:0]
		for _, txn := range oldPartition {
			if txn.TransactionID != patched.TransactionID {
				remaining = append(remaining, txn)
			}
		}
		recomputed, err := s.recomputePartition(oldKey, remaining)
		if err != nil {
			return nil, err
		}
		batch = append(batch, recomputed...)
	}
	return batch, nil
}

// DeleteTransaction removes the entry, then recomputes the remaining
// balances for that customer.
func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID int64) error {
	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if err := s.txnRepo.DeleteTransaction(ctx, transactionID); err != nil {
		return err
	}
	if err := s.recomputeAndStore(ctx, existing.CustomerKey); err != nil {
		return err
	}
	s.persist(ctx)

	s.LogInfo(ctx, "Transaction deleted",
		slog.Int64("transaction_id", transactionID),
		slog.String("customer_key", existing.CustomerKey))
	return nil
}

// GetTransactionByID returns the stored transaction with its balance snapshots.
func (s *ledgerService) GetTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	return s.txnRepo.FindTransactionByID(ctx, transactionID)
}

// ListTransactions returns a snapshot of the whole ledger in creation order.
func (s *ledgerService) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.txnRepo.ListTransactions(ctx)
}

// GetCustomerLedger returns one customer's entries with running balances,
// optionally restricted to a date range. Balances are computed over the full
// history first so a range view shows the true balance per row, not one
// restarted at zero mid-history.
func (s *ledgerService) GetCustomerLedger(ctx context.Context, customerKey string, filter dto.LedgerFilter) ([]domain.LedgerLine, error) {
	txns, err := s.txnRepo.ListTransactionsByCustomer(ctx, customerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for customer %s: %w", customerKey, err)
	}

	balances, err := accounting.RunningBalances(txns, s.openingBalance(customerKey), s.floorAtZero)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balances for customer %s: %w", customerKey, err)
	}

	lines := make([]domain.LedgerLine, 0, len(txns))
	for i, txn := range txns {
		if filter.FromDate != nil && txn.Date.Before(domain.NormalizeDate(*filter.FromDate)) {
			continue
		}
		if filter.ToDate != nil && txn.Date.After(domain.NormalizeDate(*filter.ToDate)) {
			continue
		}
		lines = append(lines, domain.LedgerLine{Transaction: txn, RunningBalance: balances[i].Balance})
	}
	return lines, nil
}

// ListCustomers returns one summary row per customer, sorted by name.
// Malformed stored records are logged and skipped; one bad row never hides
// the other customers' ledgers.
func (s *ledgerService) ListCustomers(ctx context.Context) ([]domain.CustomerSummary, error) {
	summaries, err := s.aggregate(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CustomerSummary, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, summary)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CustomerName == rows[j].CustomerName {
			return rows[i].Mobile < rows[j].Mobile
		}
		return rows[i].CustomerName < rows[j].CustomerName
	})
	return rows, nil
}

// aggregate derives the per-customer summaries over every well-formed record.
func (s *ledgerService) aggregate(ctx context.Context) (map[string]domain.CustomerSummary, error) {
	txns, err := s.txnRepo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	valid := txns[:0]
	for _, txn := range txns {
		if !txn.Kind.Valid() {
			s.LogWarn(ctx, "Skipping malformed transaction in aggregate",
				slog.Int64("transaction_id", txn.TransactionID),
				slog.String("kind", string(txn.Kind)))
			continue
		}
		valid = append(valid, txn)
	}

	return accounting.Aggregate(valid, s.floorAtZero)
}

// SearchTransactions filters the ledger by free text (customer name or
// mobile), optional customer key and date range, newest entries first.
func (s *ledgerService) SearchTransactions(ctx context.Context, filter dto.TransactionFilter) ([]domain.Transaction, error) {
	txns, err := s.txnRepo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := txns[:0]
	for _, txn := range txns {
		if filter.CustomerKey != "" && txn.CustomerKey != filter.CustomerKey {
			continue
		}
		if filter.FromDate != nil && txn.Date.Before(domain.NormalizeDate(*filter.FromDate)) {
			continue
		}
		if filter.ToDate != nil && txn.Date.After(domain.NormalizeDate(*filter.ToDate)) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(txn.CustomerName), query) &&
			!strings.Contains(txn.Mobile, query) {
			continue
		}
		matched = append(matched, txn)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date.Equal(matched[j].Date) {
			return matched[i].TransactionID > matched[j].TransactionID
		}
		return matched[i].Date.After(matched[j].Date)
	})
	return matched, nil
}

// GetSummary returns the fleet-wide rollup: customer count, total credit and
// payment volume, and the summed outstanding debt. Outstanding always clamps
// each customer at zero regardless of the floor policy, so an overpaid
// customer never offsets another customer's debt.
func (s *ledgerService) GetSummary(ctx context.Context) (*domain.LedgerSummary, error) {
	summaries, err := s.aggregate(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.LedgerSummary{
		CustomerCount:    len(summaries),
		TotalOutstanding: decimal.Zero,
		TotalCredit:      decimal.Zero,
		TotalPayment:     decimal.Zero,
	}
	for _, summary := range summaries {
		result.TotalCredit = result.TotalCredit.Add(summary.TotalCredit)
		result.TotalPayment = result.TotalPayment.Add(summary.TotalPayment)
		result.TotalOutstanding = result.TotalOutstanding.Add(accounting.Outstanding(summary.Balance))
	}
	return result, nil
}

// Load hydrates the store from the blob store. A missing or unreadable file
// is non-fatal: the engine starts empty and keeps working in memory.
// Malformed records are logged and skipped rather than aborting the load.
func (s *ledgerService) Load(ctx context.Context) error {
	if s.blobStore == nil {
		return nil
	}

	loaded, err := s.blobStore.Load(ctx)
	if err != nil {
		s.LogWarn(ctx, "Failed to load ledger, starting empty",
			slog.String("error", err.Error()))
		return nil
	}

	valid := make([]domain.Transaction, 0, len(loaded))
	keys := make(map[string]struct{})
	for _, txn := range loaded {
		if reason := validateStored(txn); reason != "" {
			s.LogWarn(ctx, "Skipping malformed persisted transaction",
				slog.Int64("transaction_id", txn.TransactionID),
				slog.String("reason", reason))
			continue
		}
		txn.Date = domain.NormalizeDate(txn.Date)
		if txn.CustomerKey == "" {
			txn.CustomerKey = domain.NewCustomerKey(txn.CustomerName, txn.Mobile)
		}
		valid = append(valid, txn)
		keys[txn.CustomerKey] = struct{}{}
	}

	if err := s.txnRepo.ReplaceAll(ctx, valid); err != nil {
		return err
	}

	for key := range keys {
		if err := s.recomputeAndStore(ctx, key); err != nil {
			// One customer's corrupt history must not block the others.
			s.LogError(ctx, err, "Failed to recompute customer ledger on load",
				slog.String("customer_key", key))
		}
	}

	s.LogInfo(ctx, "Ledger loaded",
		slog.Int("transaction_count", len(valid)),
		slog.Int("customer_count", len(keys)),
		slog.Int("skipped", len(loaded)-len(valid)))
	return nil
}

// validateStored checks the invariants a persisted record must satisfy before
// it is allowed back into the store. Returns an empty string when valid.
func validateStored(txn domain.Transaction) string {
	switch {
	case txn.TransactionID <= 0:
		return "missing id"
	case strings.TrimSpace(txn.CustomerName) == "":
		return "missing customer name"
	case txn.Date.IsZero():
		return "missing date"
	case !txn.Kind.Valid():
		return "unknown kind"
	case txn.Amount.LessThanOrEqual(decimal.Zero):
		return "non-positive amount"
	default:
		return ""
	}
}
