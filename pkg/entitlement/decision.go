package entitlement

import (
	"encoding/json"
	"strconv"
)

// TargetKind identifies which counter a unit of usage is charged to.
type TargetKind string

const (
	TargetNone   TargetKind = "none"
	TargetFree   TargetKind = "free"
	TargetBundle TargetKind = "bundle"
)

// Target is the counter selected for one unit of usage.
type Target struct {
	Kind     TargetKind `json:"kind"`
	BundleID string     `json:"bundle_id,omitempty"`
}

// Reason explains a denial.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonQuotaExceeded        Reason = "QUOTA_EXCEEDED"
	ReasonSubscriptionRequired Reason = "SUBSCRIPTION_REQUIRED"
)

// Decision is the outcome of an entitlement check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Target  Target `json:"target"`
	Reason  Reason `json:"reason,omitempty"`
}

// Err returns nil for an allowed decision and the sentinel matching
// the denial reason otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonSubscriptionRequired {
		return ErrSubscriptionRequired
	}
	return ErrQuotaExceeded
}

func allow(t Target) Decision {
	return Decision{Allowed: true, Target: t}
}

func deny(r Reason) Decision {
	return Decision{Target: Target{Kind: TargetNone}, Reason: r}
}

// Remaining is the projected number of units a user can still consume.
// Unlimited is set for tiers without a quota; it marshals to JSON null.
type Remaining struct {
	Units     int64
	Unlimited bool
}

// MarshalJSON renders the units as a number, or null when unlimited.
func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, r.Units, 10), nil
}

// UnmarshalJSON accepts a number or null.
func (r *Remaining) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Remaining{Unlimited: true}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = Remaining{Units: n}
	return nil
}
