package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
	"github.com/yungbote/collabmarket-backend/internal/services"
)

const maxWebhookBodyBytes = 64 << 10

type WebhookHandler struct {
	log        *logger.Logger
	gateway    stripe.Gateway
	reconciler services.ReconcilerService
}

func NewWebhookHandler(log *logger.Logger, gateway stripe.Gateway, reconciler services.ReconcilerService) *WebhookHandler {
	return &WebhookHandler{
		log:        log.With("handler", "WebhookHandler"),
		gateway:    gateway,
		reconciler: reconciler,
	}
}

// POST /webhooks/gateway
// Raw body: the signature covers the exact bytes the processor sent.
func (h *WebhookHandler) HandleGatewayEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	event, err := h.gateway.VerifyWebhookSignature(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("rejected webhook", "error", err.Error())
		RespondServiceError(c, err)
		return
	}
	if err := h.reconciler.HandleEvent(c.Request.Context(), event); err != nil {
		// Non-2xx makes the processor redeliver; reconciler handlers are
		// idempotent so that is safe.
		h.log.Error("failed to reconcile gateway event",
			"event_id", event.ID, "event_type", event.Type, "error", err.Error())
		RespondError(c, http.StatusInternalServerError, "reconcile_failed", err)
		return
	}
	RespondOK(c, gin.H{"received": true})
}
