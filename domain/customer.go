package domain

import (
	"strings"

	"github.com/google/uuid"
)

// customerNamespace is the UUIDv5 namespace for customer keys. Fixed so the
// key is recomputable from user input alone, across restarts and across the
// persisted file.
var customerNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewCustomerKey derives the ledger partition key for a customer from their
// name and mobile number. Two customers with the same name but different
// mobile numbers get distinct keys; casing and surrounding whitespace in the
// name are ignored.
func NewCustomerKey(name, mobile string) string {
	normalized := strings.ToLower(strings.TrimSpace(name)) + "|" + strings.TrimSpace(mobile)
	return uuid.NewSHA1(customerNamespace, []byte(normalized)).String()
}
