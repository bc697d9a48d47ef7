package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/collabmarket-backend/internal/handlers"
	"github.com/yungbote/collabmarket-backend/internal/middleware"
)

type RouterConfig struct {
	AllowOrigins    []string
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	ContractHandler *handlers.ContractHandler
	EscrowHandler   *handlers.EscrowHandler
	EarningHandler  *handlers.EarningHandler
	PayeeHandler    *handlers.PayeeHandler
	WebhookHandler  *handlers.WebhookHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)
	router.POST("/webhooks/gateway", cfg.WebhookHandler.HandleGatewayEvent)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Contracts
	api.POST("/contracts", cfg.ContractHandler.CreateContract)
	api.GET("/contracts", cfg.ContractHandler.ListContracts)
	api.GET("/contracts/:id", cfg.ContractHandler.GetContract)
	api.PATCH("/contracts/:id/sign", cfg.ContractHandler.SignContract)
	api.POST("/contracts/:id/milestones", cfg.ContractHandler.CreateMilestone)
	api.PATCH("/milestones/:id", cfg.ContractHandler.UpdateMilestone)
	// Escrow
	api.POST("/escrow/contracts/:id", cfg.EscrowHandler.CreateEscrowPayment)
	api.PATCH("/escrow/:id/release", cfg.EscrowHandler.ReleaseEscrowPayment)
	api.PATCH("/escrow/:id/refund", cfg.EscrowHandler.RefundEscrowPayment)
	api.GET("/escrow", cfg.EscrowHandler.ListEscrowPayments)
	// Earnings
	api.POST("/earnings/process", cfg.EarningHandler.ProcessEarning)
	api.GET("/earnings", cfg.EarningHandler.ListEarnings)
	// Payee onboarding
	api.POST("/payee/setup", cfg.PayeeHandler.SetupPayeeAccount)
	api.GET("/payee/status", cfg.PayeeHandler.GetPayeeStatus)

	return router
}
