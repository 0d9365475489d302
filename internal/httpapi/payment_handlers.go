package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"vitrina.shop/internal/audit"
	"vitrina.shop/internal/auth"
	"vitrina.shop/internal/payment"
)

const webhookSignatureHeader = "Webhook-Signature"

type createIntentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type createIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

func (a *API) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	if a.payments == nil {
		writeError(w, r, http.StatusServiceUnavailable, "payments not configured")
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	intent, err := a.payments.CreateIntent(r.Context(), principal.Subject, req.AmountCents, req.Currency)
	if err != nil {
		var apiErr *payment.APIError
		switch {
		case errors.Is(err, payment.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.As(err, &apiErr):
			// Provider rejections surface as 502: the client request was
			// well-formed, the upstream call was not accepted.
			writeError(w, r, http.StatusBadGateway, "payment provider rejected the request")
		default:
			writeError(w, r, http.StatusInternalServerError, "payment failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "payment.intent.create", map[string]any{
		"intent_id":    intent.ID,
		"amount_cents": req.AmountCents,
	})

	writeJSON(w, http.StatusOK, createIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	})
}

func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.payments == nil || len(a.webhookSecret) == 0 {
		writeError(w, r, http.StatusServiceUnavailable, "webhook not configured")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unreadable payload")
		return
	}

	ev, err := payment.ParseEvent(payload, r.Header.Get(webhookSignatureHeader), a.webhookSecret, time.Now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid webhook")
		return
	}

	if err := a.payments.HandleEvent(r.Context(), ev); err != nil {
		switch {
		case errors.Is(err, payment.ErrUnexpectedEvent), errors.Is(err, payment.ErrNotFound):
			// Acknowledge events we do not act on so the provider stops
			// redelivering them.
			writeJSON(w, http.StatusOK, map[string]any{"received": true, "ignored": true})
		default:
			writeError(w, r, http.StatusInternalServerError, "webhook processing failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "payment.webhook", map[string]any{
		"event_id":   ev.ID,
		"event_type": ev.Type,
		"intent_id":  ev.Data.Object.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}
