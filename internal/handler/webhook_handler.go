package handler

import (
	"errors"
	"io"
	"net/http"

	"tienda/internal/model"
	"tienda/internal/payment"
	"tienda/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

// WebhookHandler receives payment provider webhook deliveries. It is the
// only write path for card orders: nothing downstream runs unless the
// payload signature verifies.
type WebhookHandler struct {
	verifier  *payment.Verifier
	reconcile service.ReconcileService
	logger    zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(verifier *payment.Verifier, reconcile service.ReconcileService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		reconcile: reconcile,
		logger:    logger.With().Str("handler", "webhook").Logger(),
	}
}

// HandlePayment handles POST /api/webhooks/payment requests. A non-2xx
// response makes the provider redeliver, so only order-creation failures
// return 500; bad signatures are terminal 400s.
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "failed to read request body", h.logger)
		return
	}

	event, err := h.verifier.Verify(body, r.Header.Get("Webhook-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrBadSignature) {
			writeError(w, http.StatusBadRequest, model.ErrCodeBadSignature, "webhook signature verification failed", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "malformed webhook payload", h.logger)
		return
	}

	if err := h.reconcile.HandleEvent(r.Context(), event); err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("reconciliation failed, provider will redeliver")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "event processing failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
