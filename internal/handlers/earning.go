package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/services"
)

type EarningHandler struct {
	log            *logger.Logger
	earningService services.EarningService
}

func NewEarningHandler(log *logger.Logger, earningService services.EarningService) *EarningHandler {
	return &EarningHandler{
		log:            log.With("handler", "EarningHandler"),
		earningService: earningService,
	}
}

// POST /api/earnings/process
func (h *EarningHandler) ProcessEarning(c *gin.Context) {
	var in services.ProcessEarningInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	entry, err := h.earningService.ProcessCreatorEarning(c.Request.Context(), in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, entry)
}

// GET /api/earnings
func (h *EarningHandler) ListEarnings(c *gin.Context) {
	entries, err := h.earningService.ListEarnings(c.Request.Context(), c.Query("type"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	total, err := h.earningService.TotalEarnings(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"earnings": entries, "total": total})
}
