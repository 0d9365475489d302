package payment

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("payment: order not found")
	ErrInvalidInput    = errors.New("payment: invalid input")
	ErrBadSignature    = errors.New("payment: bad webhook signature")
	ErrUnexpectedEvent = errors.New("payment: unexpected event type")
)

// Intent mirrors the payment provider's payment-intent object, limited to the
// fields this service reads.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Webhook event types relayed by the provider.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// Order statuses.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// Order tracks a checkout attempt and the payment intent backing it.
type Order struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	IntentID    string    `json:"intent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
