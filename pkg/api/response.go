package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/chatbilling/pkg/account"
	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/chat"
	"github.com/dmitrymomot/chatbilling/pkg/entitlement"
	"github.com/dmitrymomot/chatbilling/pkg/environment"
	"github.com/dmitrymomot/chatbilling/pkg/logger"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
	"github.com/dmitrymomot/chatbilling/pkg/renewal"
)

// Error codes.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeQuotaExceeded        = "QUOTA_EXCEEDED"
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeInternal             = "INTERNAL_ERROR"
)

// Response is the body of a successful request.
type Response struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Message: message, Data: data})
}

// classify maps a domain error to its HTTP status, code and client message.
// ok is false for unclassified errors.
func classify(err error) (status int, code, message string, ok bool) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, "Unauthorized: User not authenticated", true
	case errors.Is(err, pricing.ErrInvalidTier):
		return http.StatusBadRequest, CodeValidation, "Invalid tier. Must be: basic, pro, or enterprise", true
	case errors.Is(err, pricing.ErrInvalidBillingCycle):
		return http.StatusBadRequest, CodeValidation, "Invalid billing cycle. Must be: monthly or yearly", true
	case errors.Is(err, chat.ErrEmptyQuestion):
		return http.StatusBadRequest, CodeValidation, "Question is required and must be a non-empty string", true
	case errors.Is(err, bundle.ErrMissingBundleID):
		return http.StatusBadRequest, CodeValidation, "Subscription ID is required", true
	case errors.Is(err, bundle.ErrNotOwner):
		return http.StatusBadRequest, CodeValidation, "Subscription does not belong to user", true
	case errors.Is(err, account.ErrMissingCredentials):
		return http.StatusBadRequest, CodeValidation, "Email and password are required", true
	case errors.Is(err, account.ErrInvalidEmail):
		return http.StatusBadRequest, CodeValidation, "Invalid email format", true
	case errors.Is(err, account.ErrWeakPassword):
		return http.StatusBadRequest, CodeValidation, "Password must be at least 6 characters long", true
	case errors.Is(err, account.ErrEmailTaken):
		return http.StatusBadRequest, CodeValidation, "User with this email already exists", true
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusBadRequest, CodeValidation, "Invalid email or password", true
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, CodeValidation, "Invalid request body", true
	case errors.Is(err, entitlement.ErrSubscriptionRequired):
		return http.StatusForbidden, CodeSubscriptionRequired, "Valid subscription required", true
	case errors.Is(err, entitlement.ErrQuotaExceeded):
		return http.StatusForbidden, CodeQuotaExceeded, "Quota exceeded", true
	case errors.Is(err, bundle.ErrBundleNotFound):
		return http.StatusNotFound, CodeNotFound, "Subscription not found", true
	case errors.Is(err, account.ErrUserNotFound):
		return http.StatusNotFound, CodeNotFound, "User not found", true
	case errors.Is(err, renewal.ErrSweepInProgress):
		return http.StatusConflict, CodeConflict, "Renewal processing is already running", true
	}
	return http.StatusInternalServerError, CodeInternal, "Internal server error", false
}

func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code, message, ok := classify(err)
	detail := ErrorDetail{Message: message, Code: code}
	if !ok {
		log.ErrorContext(r.Context(), "request failed",
			logger.Route(r.URL.Path),
			logger.Error(err),
		)
		if environment.IsDevelopment(r.Context()) {
			detail.Details = err.Error()
		}
	}
	writeJSON(w, status, ErrorResponse{Error: detail})
}
