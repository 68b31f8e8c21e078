// Package export formats ledger data for external consumption (CSV and JSON
// downloads, print views). It only ever sees the snapshots the engine's query
// operations return; it never touches the store.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/udhaarbook/ledger/domain"
	"github.com/udhaarbook/ledger/dto"
)

// WriteTransactionsCSV writes the full transaction list as CSV.
func WriteTransactionsCSV(w io.Writer, txns []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "customerName", "mobile", "date", "kind", "amount", "notes"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, txn := range txns {
		row := []string{
			fmt.Sprintf("%d", txn.TransactionID),
			txn.CustomerName,
			txn.Mobile,
			txn.Date.Format(dto.DateLayout),
			string(txn.Kind),
			txn.Amount.String(),
			txn.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for transaction %d: %w", txn.TransactionID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLedgerCSV writes one customer's ledger lines with the running balance
// per row, the statement a customer gets handed.
func WriteLedgerCSV(w io.Writer, lines []domain.LedgerLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "kind", "amount", "notes", "balance"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, line := range lines {
		row := []string{
			line.Transaction.Date.Format(dto.DateLayout),
			string(line.Transaction.Kind),
			line.Transaction.Amount.String(),
			line.Transaction.Notes,
			line.RunningBalance.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for transaction %d: %w", line.Transaction.TransactionID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransactionsJSON writes the transaction list as indented JSON, the
// same shape the persisted blob uses for its canonical fields.
func WriteTransactionsJSON(w io.Writer, txns []domain.Transaction) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(txns)
}
