package api

import (
	"cmp"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/chatbilling/pkg/pricing"
)

const maxBodySize = 1 << 20

type handlers struct {
	svc Services
	log *slog.Logger
}

func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrInvalidRequest, err)
	}
	return nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	sess, err := h.svc.Accounts.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusCreated, "User created successfully", sess)
}

func (h *handlers) signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	sess, err := h.svc.Accounts.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Sign in successful", sess)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Accounts.Get(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "User retrieved successfully", u)
}

type sendMessageRequest struct {
	Question string `json:"question"`
}

func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	msg, err := h.svc.Chat.Send(r.Context(), UserIDFromContext(r.Context()), req.Question)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Response generated successfully", msg)
}

func (h *handlers) chatHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Chat.History(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Chat history retrieved successfully", msgs)
}

// createSubscriptionRequest also accepts the camelCase keys sent by older clients.
type createSubscriptionRequest struct {
	Tier               string `json:"tier"`
	BillingCycle       string `json:"billing_cycle"`
	LegacyBillingCycle string `json:"billingCycle"`
	AutoRenew          *bool  `json:"auto_renew"`
	LegacyAutoRenew    *bool  `json:"autoRenew"`
}

func (h *handlers) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	tier, err := pricing.ParseTier(req.Tier)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	cycle, err := pricing.ParseBillingCycle(cmp.Or(req.BillingCycle, req.LegacyBillingCycle))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	autoRenew := true
	switch {
	case req.AutoRenew != nil:
		autoRenew = *req.AutoRenew
	case req.LegacyAutoRenew != nil:
		autoRenew = *req.LegacyAutoRenew
	}

	b, err := h.svc.Subscriptions.Purchase(r.Context(), UserIDFromContext(r.Context()), tier, cycle, autoRenew)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusCreated, "Subscription created successfully", b)
}

func (h *handlers) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Subscriptions.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Subscriptions retrieved successfully", list)
}

func (h *handlers) activeSubscriptions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Subscriptions.ListActive(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Active subscriptions retrieved successfully", list)
}

func (h *handlers) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	b, err := h.svc.Subscriptions.Cancel(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Subscription cancelled successfully", b)
}

type renewalResponse struct {
	Renewed int `json:"renewed"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

func (h *handlers) processRenewals(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Renewals.Sweep(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Auto-renewals processed successfully", renewalResponse{
		Renewed: res.Renewed,
		Failed:  res.Failed,
		Total:   len(res.Processed),
	})
}

func (h *handlers) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard.Stats(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

type pricingEntry struct {
	Tier         pricing.Tier         `json:"tier"`
	BillingCycle pricing.BillingCycle `json:"billing_cycle"`
	MaxUnits     int64                `json:"max_units"`
	Unlimited    bool                 `json:"unlimited"`
	Price        decimal.Decimal      `json:"price"`
}

func (h *handlers) pricing(w http.ResponseWriter, _ *http.Request) {
	out := make([]pricingEntry, 0, len(pricing.Tiers)*len(pricing.BillingCycles))
	for _, t := range pricing.Tiers {
		for _, c := range pricing.BillingCycles {
			e := pricing.Lookup(t, c)
			out = append(out, pricingEntry{
				Tier:         t,
				BillingCycle: c,
				MaxUnits:     e.MaxUnits,
				Unlimited:    t.HasUnlimitedQuota(),
				Price:        e.Price,
			})
		}
	}
	respond(w, http.StatusOK, "Pricing retrieved successfully", out)
}
