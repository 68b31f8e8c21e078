package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/udhaarbook/ledger/domain"
)

// DateLayout is the wire format for calendar dates, matching the form input
// the ledger UI collects.
const DateLayout = "2006-01-02"

// CreateTransactionRequest carries the fields needed to record a new ledger
// entry. Dates arrive as strings because that is what the form hands over.
type CreateTransactionRequest struct {
	CustomerName string                 `json:"customerName" validate:"required"`
	Mobile       string                 `json:"mobile"`
	Date         string                 `json:"date" validate:"required,datetime=2006-01-02"`
	Kind         domain.TransactionKind `json:"kind" validate:"required,oneof=CREDIT PAYMENT"`
	Amount       decimal.Decimal        `json:"amount"`
	Notes        string                 `json:"notes"`
}

// ToDomain converts the request into a domain transaction. The id, balances
// and audit fields are filled in by the engine and store.
func (r CreateTransactionRequest) ToDomain() (domain.Transaction, error) {
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		CustomerKey:  domain.NewCustomerKey(r.CustomerName, r.Mobile),
		CustomerName: r.CustomerName,
		Mobile:       r.Mobile,
		Date:         domain.NormalizeDate(date),
		Kind:         r.Kind,
		Amount:       r.Amount,
		Notes:        r.Notes,
	}, nil
}

// UpdateTransactionRequest patches an existing entry. Nil fields are left
// untouched. Changing the name or mobile moves the entry to the partition of
// the newly derived customer key.
type UpdateTransactionRequest struct {
	CustomerName *string                 `json:"customerName,omitempty" validate:"omitempty,min=1"`
	Mobile       *string                 `json:"mobile,omitempty"`
	Date         *string                 `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Kind         *domain.TransactionKind `json:"kind,omitempty" validate:"omitempty,oneof=CREDIT PAYMENT"`
	Amount       *decimal.Decimal        `json:"amount,omitempty"`
	Notes        *string                 `json:"notes,omitempty"`
}

// LedgerFilter restricts a customer ledger view to a date range.
// Nil bounds are open.
type LedgerFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
}

// TransactionFilter narrows a ledger-wide search: free text matches the
// customer name (case-insensitive substring) or mobile number, the key pins
// one customer, and the date bounds behave like LedgerFilter's.
type TransactionFilter struct {
	Query       string
	CustomerKey string
	FromDate    *time.Time
	ToDate      *time.Time
}
