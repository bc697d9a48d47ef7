package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/services"
)

type ContractHandler struct {
	log             *logger.Logger
	contractService services.ContractService
}

func NewContractHandler(log *logger.Logger, contractService services.ContractService) *ContractHandler {
	return &ContractHandler{
		log:             log.With("handler", "ContractHandler"),
		contractService: contractService,
	}
}

// POST /api/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var in services.CreateContractInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	contract, err := h.contractService.CreateContract(c.Request.Context(), in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, contract)
}

// GET /api/contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	contracts, err := h.contractService.ListContracts(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"contracts": contracts})
}

// GET /api/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	contract, milestones, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"contract": contract, "milestones": milestones})
}

// PATCH /api/contracts/:id/sign
func (h *ContractHandler) SignContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var in struct {
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	contract, err := h.contractService.SignContract(c.Request.Context(), id, in.Signature)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, contract)
}

// POST /api/contracts/:id/milestones
func (h *ContractHandler) CreateMilestone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var in services.CreateMilestoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	milestone, err := h.contractService.CreateMilestone(c.Request.Context(), id, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, milestone)
}

// PATCH /api/milestones/:id
func (h *ContractHandler) UpdateMilestone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var in services.UpdateMilestoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	milestone, err := h.contractService.UpdateMilestone(c.Request.Context(), id, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, milestone)
}
