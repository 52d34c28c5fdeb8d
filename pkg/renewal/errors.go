package renewal

import "errors"

var (
	ErrSweepInProgress = errors.New("renewal sweep already in progress")
	ErrInvalidSchedule = errors.New("invalid renewal schedule")
	ErrPaymentDeclined = errors.New("renewal payment declined")
)
