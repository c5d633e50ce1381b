package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEventJSON = `{
	"id": "evt_1",
	"type": "payment_intent.succeeded",
	"data": {
		"object": {
			"id": "pi_123",
			"amount": 28000,
			"metadata": {"userId": "user-1", "totalPrice": "28000"}
		}
	}
}`

func TestVerifier_Verify_ValidSignature(t *testing.T) {
	v := NewVerifier("whsec_test", 5*time.Minute)
	payload := []byte(testEventJSON)

	header := v.Sign(payload, time.Now())

	event, err := v.Verify(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_123", event.IntentID)
	assert.Equal(t, int64(28000), event.Amount)
	assert.Equal(t, "user-1", event.Metadata["userId"])
}

func TestVerifier_Verify_TamperedPayload(t *testing.T) {
	v := NewVerifier("whsec_test", 5*time.Minute)
	payload := []byte(testEventJSON)

	header := v.Sign(payload, time.Now())
	tampered := []byte(`{"id": "evt_1", "type": "payment_intent.succeeded", "data": {"object": {"id": "pi_999", "amount": 1}}}`)

	_, err := v.Verify(tampered, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifier_Verify_WrongSecret(t *testing.T) {
	signer := NewVerifier("whsec_other", 5*time.Minute)
	v := NewVerifier("whsec_test", 5*time.Minute)
	payload := []byte(testEventJSON)

	header := signer.Sign(payload, time.Now())

	_, err := v.Verify(payload, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifier_Verify_StaleTimestamp(t *testing.T) {
	v := NewVerifier("whsec_test", 5*time.Minute)
	payload := []byte(testEventJSON)

	header := v.Sign(payload, time.Now().Add(-10*time.Minute))

	_, err := v.Verify(payload, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifier_Verify_FutureTimestamp(t *testing.T) {
	v := NewVerifier("whsec_test", 5*time.Minute)
	payload := []byte(testEventJSON)

	header := v.Sign(payload, time.Now().Add(10*time.Minute))

	_, err := v.Verify(payload, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifier_Verify_MalformedHeader(t *testing.T) {
	v := NewVerifier("whsec_test", 5*time.Minute)
	payload := []byte(testEventJSON)

	for _, header := range []string{"", "garbage", "t=abc,v1=def", "v1=deadbeef", fmt.Sprintf("t=%d", time.Now().Unix())} {
		_, err := v.Verify(payload, header)
		assert.ErrorIs(t, err, ErrBadSignature, "header %q", header)
	}
}

func TestVerifier_Verify_WithinTolerance(t *testing.T) {
	v := NewVerifier("whsec_test", 5*time.Minute)
	payload := []byte(testEventJSON)

	header := v.Sign(payload, time.Now().Add(-4*time.Minute))

	_, err := v.Verify(payload, header)
	assert.NoError(t, err)
}
