package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook event types the reconciler cares about.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
)

// ErrBadSignature indicates the webhook payload failed signature
// verification. Payloads rejected here must never be processed.
var ErrBadSignature = errors.New("webhook signature verification failed")

// VerifiedEvent is a webhook event that has passed signature
// verification. It is the only type the reconciler accepts, so no code
// path past the gate can act on an unverified payload.
type VerifiedEvent struct {
	ID       string
	Type     string
	IntentID string
	Amount   int64
	Metadata map[string]string
}

// eventEnvelope mirrors the provider's webhook JSON.
type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Amount   int64             `json:"amount"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Verifier is the trusted gate between raw webhook deliveries and the
// reconciler. Signatures follow the provider's scheme: the header carries
// `t=<unix>,v1=<hex hmac>` and the signed payload is `<t>.<body>`.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier creates a webhook verifier. A non-positive tolerance
// defaults to 5 minutes.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &Verifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

// Verify checks the signature header against the raw payload and, only on
// success, parses the event. Any failure returns ErrBadSignature; callers
// must reject the delivery without further processing.
func (v *Verifier) Verify(payload []byte, sigHeader string) (*VerifiedEvent, error) {
	timestamp, signature, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	eventTime := time.Unix(timestamp, 0)
	age := v.now().Sub(eventTime)
	if age > v.tolerance || age < -v.tolerance {
		return nil, ErrBadSignature
	}

	signed := fmt.Sprintf("%d.%s", timestamp, payload)
	expected := v.sign(signed)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrBadSignature
	}

	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("parse webhook event: %w", err)
	}

	return &VerifiedEvent{
		ID:       env.ID,
		Type:     env.Type,
		IntentID: env.Data.Object.ID,
		Amount:   env.Data.Object.Amount,
		Metadata: env.Data.Object.Metadata,
	}, nil
}

// Sign produces a signature header for the payload at the given time.
// Used by tests and the local webhook simulator.
func (v *Verifier) Sign(payload []byte, at time.Time) string {
	signed := fmt.Sprintf("%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), v.sign(signed))
}

func (v *Verifier) sign(payload string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, "", ErrBadSignature
			}
			timestamp = ts
		case "v1":
			signature = val
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", ErrBadSignature
	}
	return timestamp, signature, nil
}
