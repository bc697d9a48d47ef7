package app

import (
	"github.com/yungbote/collabmarket-backend/internal/handlers"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Contract *handlers.ContractHandler
	Escrow   *handlers.EscrowHandler
	Earning  *handlers.EarningHandler
	Payee    *handlers.PayeeHandler
	Webhook  *handlers.WebhookHandler
}

func wireHandlers(log *logger.Logger, svc Services, c Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:     handlers.NewAuthHandler(log, svc.Auth),
		Contract: handlers.NewContractHandler(log, svc.Contract),
		Escrow:   handlers.NewEscrowHandler(log, svc.Escrow),
		Earning:  handlers.NewEarningHandler(log, svc.Earning),
		Payee:    handlers.NewPayeeHandler(log, svc.Payee),
		Webhook:  handlers.NewWebhookHandler(log, c.Gateway, svc.Reconciler),
	}
}
