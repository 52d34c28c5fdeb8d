package entitlement

import "errors"

var (
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrSubscriptionRequired = errors.New("subscription required")
	ErrMissingUserID        = errors.New("user ID is required")
)
