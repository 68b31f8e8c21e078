// Package accounting holds the pure balance calculations for the ledger.
// Nothing in here touches storage or keeps state; every function is a
// deterministic derivation over the transaction sequence it is given.
package accounting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/udhaarbook/ledger/domain"
)

// RunningBalance pairs a transaction id with the balance immediately after it.
type RunningBalance struct {
	TransactionID int64
	Balance       decimal.Decimal
}

// SignedAmount applies the correct sign to a transaction amount based on its kind.
// CREDIT increases what the customer owes (+), PAYMENT decreases it (-).
// This is used in both the fold and the totals to ensure consistent sign logic.
func SignedAmount(txn domain.Transaction) (decimal.Decimal, error) {
	switch txn.Kind {
	case domain.Credit:
		return txn.Amount, nil
	case domain.Payment:
		return txn.Amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown transaction kind '%s' encountered for transaction ID %d", txn.Kind, txn.TransactionID)
	}
}

// RunningBalances computes the balance after each transaction, in input order,
// starting from the given opening balance. When floorAtZero is set, no
// intermediate balance is allowed to drop below zero.
// The fold is a strict left fold: a single O(n) pass, deterministic given the
// input order. Empty input yields an empty result.
func RunningBalances(txns []domain.Transaction, opening decimal.Decimal, floorAtZero bool) ([]RunningBalance, error) {
	balances := make([]RunningBalance, 0, len(txns))
	balance := opening

	for _, txn := range txns {
		signed, err := SignedAmount(txn)
		if err != nil {
			return nil, err
		}
		balance = balance.Add(signed)
		if floorAtZero && balance.IsNegative() {
			balance = decimal.Zero
		}
		balances = append(balances, RunningBalance{TransactionID: txn.TransactionID, Balance: balance})
	}

	return balances, nil
}

// CustomerTotals sums credits and payments over one customer's transactions.
// The balance is totalCredit - totalPayment, clamped at zero when floorAtZero
// is set.
func CustomerTotals(txns []domain.Transaction, floorAtZero bool) (domain.CustomerTotals, error) {
	totals := domain.CustomerTotals{
		TotalCredit:  decimal.Zero,
		TotalPayment: decimal.Zero,
		Balance:      decimal.Zero,
	}

	for _, txn := range txns {
		switch txn.Kind {
		case domain.Credit:
			totals.TotalCredit = totals.TotalCredit.Add(txn.Amount)
		case domain.Payment:
			totals.TotalPayment = totals.TotalPayment.Add(txn.Amount)
		default:
			return domain.CustomerTotals{}, fmt.Errorf("unknown transaction kind '%s' encountered for transaction ID %d", txn.Kind, txn.TransactionID)
		}
	}

	totals.Balance = totals.TotalCredit.Sub(totals.TotalPayment)
	if floorAtZero && totals.Balance.IsNegative() {
		totals.Balance = decimal.Zero
	}
	return totals, nil
}

// Aggregate groups transactions by customer key and derives one summary row
// per customer: totals, last transaction date, entry count, and the most
// recent non-empty mobile number seen for that customer.
func Aggregate(txns []domain.Transaction, floorAtZero bool) (map[string]domain.CustomerSummary, error) {
	grouped := make(map[string][]domain.Transaction)
	for _, txn := range txns {
		grouped[txn.CustomerKey] = append(grouped[txn.CustomerKey], txn)
	}

	summaries := make(map[string]domain.CustomerSummary, len(grouped))
	for key, group := range grouped {
		totals, err := CustomerTotals(group, floorAtZero)
		if err != nil {
			return nil, fmt.Errorf("aggregating customer %s: %w", key, err)
		}

		summary := domain.CustomerSummary{
			CustomerKey:      key,
			CustomerTotals:   totals,
			TransactionCount: len(group),
		}
		for _, txn := range group {
			if txn.Date.After(summary.LastTransactionDate) {
				summary.LastTransactionDate = txn.Date
			}
			summary.CustomerName = txn.CustomerName
			if txn.Mobile != "" {
				summary.Mobile = txn.Mobile
			}
		}
		summaries[key] = summary
	}

	return summaries, nil
}

// SortForLedger orders transactions by date ascending, with the creation-order
// id breaking ties. Ids are assigned monotonically, so same-day entries stay
// in insertion order and the running balance sequence is stable across
// recomputes.
func SortForLedger(txns []domain.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].TransactionID < txns[j].TransactionID
		}
		return txns[i].Date.Before(txns[j].Date)
	})
}

// Outstanding returns the positive portion of a balance. Fleet-wide summary
// totals sum outstanding amounts so that an overpaid customer never offsets
// another customer's debt.
func Outstanding(balance decimal.Decimal) decimal.Decimal {
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
