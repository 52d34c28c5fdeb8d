package bundle

import "errors"

var (
	ErrBundleNotFound  = errors.New("subscription not found")
	ErrBundleExhausted = errors.New("subscription has no remaining units")
	ErrNotOwner        = errors.New("subscription does not belong to user")
	ErrMissingUserID   = errors.New("user ID is required")
	ErrMissingBundleID = errors.New("subscription ID is required")
)
