package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/services"
)

type EscrowHandler struct {
	log           *logger.Logger
	escrowService services.EscrowService
}

func NewEscrowHandler(log *logger.Logger, escrowService services.EscrowService) *EscrowHandler {
	return &EscrowHandler{
		log:           log.With("handler", "EscrowHandler"),
		escrowService: escrowService,
	}
}

// POST /api/escrow/contracts/:id
func (h *EscrowHandler) CreateEscrowPayment(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var in services.CreateEscrowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	escrow, clientSecret, err := h.escrowService.CreateEscrowPayment(c.Request.Context(), contractID, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"escrow": escrow, "client_secret": clientSecret})
}

// PATCH /api/escrow/:id/release
func (h *EscrowHandler) ReleaseEscrowPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	escrow, err := h.escrowService.ReleaseEscrowPayment(c.Request.Context(), id, in.Reason)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, escrow)
}

// PATCH /api/escrow/:id/refund
func (h *EscrowHandler) RefundEscrowPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	escrow, err := h.escrowService.RefundEscrowPayment(c.Request.Context(), id, in.Reason)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, escrow)
}

// GET /api/escrow
func (h *EscrowHandler) ListEscrowPayments(c *gin.Context) {
	filter := services.ListEscrowFilter{Status: c.Query("status")}
	if raw := c.Query("contract_id"); raw != "" {
		contractID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_id", err)
			return
		}
		filter.ContractID = &contractID
	}
	escrows, err := h.escrowService.ListEscrowPayments(c.Request.Context(), filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"escrow_payments": escrows})
}
