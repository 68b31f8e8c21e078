package apperrors

import "errors"

// ErrNotFound indicates that a requested transaction could not be found.
var ErrNotFound = errors.New("transaction not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrStorage indicates that the persistence medium failed to load or save.
// Callers treat this as non-fatal: the in-memory store stays authoritative.
var ErrStorage = errors.New("storage error")
