package pricing

import "errors"

var (
	ErrInvalidTier         = errors.New("invalid tier, must be one of: basic, pro, enterprise")
	ErrInvalidBillingCycle = errors.New("invalid billing cycle, must be one of: monthly, yearly")
)
