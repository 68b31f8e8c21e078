package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/udhaarbook/ledger/domain"
)

func TestNewCustomerKey(t *testing.T) {
	tests := []struct {
		name      string
		nameA     string
		mobileA   string
		nameB     string
		mobileB   string
		wantEqual bool
	}{
		{
			name:  "same name and mobile produce the same key",
			nameA: "Ravi Kumar", mobileA: "9876543210",
			nameB: "Ravi Kumar", mobileB: "9876543210",
			wantEqual: true,
		},
		{
			name:  "casing and whitespace do not split a customer",
			nameA: "  ravi kumar ", mobileA: "9876543210",
			nameB: "Ravi Kumar", mobileB: "9876543210",
			wantEqual: true,
		},
		{
			name:  "same name different mobile are distinct ledgers",
			nameA: "Ravi Kumar", mobileA: "111",
			nameB: "Ravi Kumar", mobileB: "222",
			wantEqual: false,
		},
		{
			name:  "different name same mobile are distinct ledgers",
			nameA: "Ravi Kumar", mobileA: "111",
			nameB: "Sana Ali", mobileB: "111",
			wantEqual: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyA := domain.NewCustomerKey(tt.nameA, tt.mobileA)
			keyB := domain.NewCustomerKey(tt.nameB, tt.mobileB)
			if tt.wantEqual {
				assert.Equal(t, keyA, keyB)
			} else {
				assert.NotEqual(t, keyA, keyB)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2024, 1, 5, 17, 45, 12, 999, time.FixedZone("IST", 5*3600+1800))
	got := domain.NormalizeDate(in)

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got)
	// Idempotent: normalizing a normalized date changes nothing.
	assert.Equal(t, got, domain.NormalizeDate(got))
}

func TestTransactionKindValid(t *testing.T) {
	assert.True(t, domain.Credit.Valid())
	assert.True(t, domain.Payment.Valid())
	assert.False(t, domain.TransactionKind("").Valid())
	assert.False(t, domain.TransactionKind("udhar").Valid())
}
