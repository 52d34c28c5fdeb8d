package usage

import "errors"

var (
	ErrLedgerNotFound     = errors.New("usage ledger not found")
	ErrLedgerExists       = errors.New("usage ledger already exists")
	ErrFreeQuotaExhausted = errors.New("free quota exhausted")
	ErrMissingUserID      = errors.New("user ID is required")
)
