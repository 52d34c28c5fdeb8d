package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Attribute keys shared by every billing component.
const (
	KeyError     = "error"
	KeyErrors    = "errors"
	KeyUserID    = "user_id"
	KeyBundleID  = "bundle_id"
	KeyMessageID = "message_id"
	KeyRequestID = "request_id"
	KeyTier      = "tier"
	KeyCycle     = "billing_cycle"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyRoute     = "route"
)

// Group creates a group attribute.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups the non-nil errors by argument position.
func Errors(errs ...error) slog.Attr {
	var as []slog.Attr
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return Group(KeyErrors, as...)
}

// Error returns an empty attribute for a nil error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// nonEmpty returns an empty attribute for an empty value.
func nonEmpty(key, v string) slog.Attr {
	if v == "" {
		return slog.Attr{}
	}
	return slog.String(key, v)
}

func UserID(id string) slog.Attr    { return nonEmpty(KeyUserID, id) }
func BundleID(id string) slog.Attr  { return nonEmpty(KeyBundleID, id) }
func MessageID(id string) slog.Attr { return nonEmpty(KeyMessageID, id) }
func RequestID(id string) slog.Attr { return nonEmpty(KeyRequestID, id) }
func Tier(tier string) slog.Attr    { return nonEmpty(KeyTier, tier) }
func Cycle(cycle string) slog.Attr  { return nonEmpty(KeyCycle, cycle) }

// Duration logs d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDuration+"_ms", float64(d)/float64(time.Millisecond))
}

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

func Route(pattern string) slog.Attr { return slog.String(KeyRoute, pattern) }
