package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vitrina.shop/internal/ids"
)

// Service ties intent creation at the provider to local order tracking and
// relays webhook events back onto order state.
type Service struct {
	client *Client
	orders OrderStore
}

// NewService constructs a Service.
func NewService(client *Client, orders OrderStore) (*Service, error) {
	if client == nil {
		return nil, errors.New("payment: client is required")
	}
	if orders == nil {
		return nil, errors.New("payment: order store is required")
	}
	return &Service{client: client, orders: orders}, nil
}

// CreateIntent creates a payment intent at the provider and records a pending
// order for it under the buyer's username.
func (s *Service) CreateIntent(ctx context.Context, username string, amountCents int64, currency string) (*Intent, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}

	intent, err := s.client.CreateIntent(ctx, amountCents, currency)
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:          ids.New(),
		Username:    username,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      StatusPending,
		IntentID:    intent.ID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}
	return intent, nil
}

// HandleEvent applies a verified webhook event to the order it references.
// Events for intents this service never created resolve to ErrNotFound so the
// caller can acknowledge and move on; the provider redelivers otherwise.
func (s *Service) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventIntentSucceeded:
		return s.orders.SetStatus(ctx, ev.Data.Object.ID, StatusPaid)
	case EventIntentFailed:
		return s.orders.SetStatus(ctx, ev.Data.Object.ID, StatusFailed)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedEvent, ev.Type)
	}
}

// OrderByIntent looks up the order tracking a payment intent.
func (s *Service) OrderByIntent(ctx context.Context, intentID string) (*Order, error) {
	return s.orders.FindByIntent(ctx, intentID)
}
