package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook signatures follow the provider scheme: the signature header carries
// `t=<unix>,v1=<hex hmac-sha256>` where the MAC covers `<t>.<payload>`.
// Timestamps outside the tolerance window are rejected to blunt replay.
const signatureTolerance = 5 * time.Minute

// Event is the envelope the provider posts to the webhook endpoint.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Intent `json:"object"`
	} `json:"data"`
}

// ParseEvent verifies the signature header against the raw payload and decodes
// the event envelope. Any verification failure collapses to ErrBadSignature.
func ParseEvent(payload []byte, sigHeader string, secret []byte, now time.Time) (Event, error) {
	if err := verifySignature(payload, sigHeader, secret, now); err != nil {
		return Event{}, err
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("payment: decode event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("payment: decode event: missing type")
	}
	return ev, nil
}

// Sign produces a signature header for the payload as the provider would.
// Exported so webhook consumers can be exercised end to end in tests.
func Sign(payload, secret []byte, at time.Time) string {
	ts := at.Unix()
	mac := computeMAC(payload, secret, ts)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac))
}

func verifySignature(payload []byte, sigHeader string, secret []byte, now time.Time) error {
	var (
		ts  int64
		sig []byte
	)
	for _, part := range strings.Split(sigHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			ts = parsed
		case "v1":
			decoded, err := hex.DecodeString(v)
			if err != nil {
				return ErrBadSignature
			}
			sig = decoded
		}
	}
	if ts == 0 || len(sig) == 0 {
		return ErrBadSignature
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrBadSignature
	}

	expected := computeMAC(payload, secret, ts)
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return ErrBadSignature
	}
	return nil
}

func computeMAC(payload, secret []byte, ts int64) []byte {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return mac.Sum(nil)
}
