package payment

import (
	"errors"
	"testing"
	"time"
)

var webhookSecret = []byte("whsec_test")

func TestParseEventRoundTrip(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","amount":2500,"currency":"usd","status":"succeeded"}}}`)

	ev, err := ParseEvent(payload, Sign(payload, webhookSecret, now), webhookSecret, now)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Type != EventIntentSucceeded {
		t.Fatalf("unexpected type: %s", ev.Type)
	}
	if ev.Data.Object.ID != "pi_1" || ev.Data.Object.Amount != 2500 {
		t.Fatalf("unexpected object: %+v", ev.Data.Object)
	}
}

func TestParseEventRejectsTamperedPayload(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)
	header := Sign(payload, webhookSecret, now)

	tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_2"}}}`)
	if _, err := ParseEvent(tampered, header, webhookSecret, now); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestParseEventRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	header := Sign(payload, []byte("other-secret"), now)
	if _, err := ParseEvent(payload, header, webhookSecret, now); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestParseEventRejectsStaleTimestamp(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	header := Sign(payload, webhookSecret, now.Add(-10*time.Minute))
	if _, err := ParseEvent(payload, header, webhookSecret, now); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature for stale timestamp, got %v", err)
	}
}

func TestParseEventRejectsMalformedHeader(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	for _, header := range []string{"", "garbage", "t=abc,v1=ff", "t=123", "v1=ff"} {
		if _, err := ParseEvent(payload, header, webhookSecret, now); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("header %q: expected ErrBadSignature, got %v", header, err)
		}
	}
}
