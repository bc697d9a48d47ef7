package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/collabmarket-backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowOrigins:    cfg.AllowOrigins,
		AuthHandler:     h.Auth,
		AuthMiddleware:  m.Auth,
		ContractHandler: h.Contract,
		EscrowHandler:   h.Escrow,
		EarningHandler:  h.Earning,
		PayeeHandler:    h.Payee,
		WebhookHandler:  h.Webhook,
	})
}
