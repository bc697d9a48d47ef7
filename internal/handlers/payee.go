package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/services"
)

type PayeeHandler struct {
	log          *logger.Logger
	payeeService services.PayeeService
}

func NewPayeeHandler(log *logger.Logger, payeeService services.PayeeService) *PayeeHandler {
	return &PayeeHandler{
		log:          log.With("handler", "PayeeHandler"),
		payeeService: payeeService,
	}
}

// POST /api/payee/setup
func (h *PayeeHandler) SetupPayeeAccount(c *gin.Context) {
	profile, err := h.payeeService.SetupPayeeAccount(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, profile)
}

// GET /api/payee/status
func (h *PayeeHandler) GetPayeeStatus(c *gin.Context) {
	status, err := h.payeeService.GetPayeeStatus(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, status)
}
