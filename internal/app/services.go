package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Contract   services.ContractService
	Escrow     services.EscrowService
	Earning    services.EarningService
	Payee      services.PayeeService
	Reconciler services.ReconcilerService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")
	return Services{
		Auth: services.NewAuthService(db, log, r.User, r.Brand, r.Creator,
			cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Contract: services.NewContractService(db, log, r.Contract, r.Milestone,
			r.Brief, r.Application, cfg.ContractActivateOnFirstSignature),
		Escrow: services.NewEscrowService(db, log, r.Escrow, r.Earning, r.Contract,
			r.Milestone, r.Creator, c.Gateway, c.PayeeCache, cfg.GatewayTimeout),
		Earning: services.NewEarningService(db, log, r.Earning, c.Analytics),
		Payee: services.NewPayeeService(db, log, r.User, r.Creator, c.Gateway,
			c.PayeeCache, cfg.GatewayTimeout),
		Reconciler: services.NewReconcilerService(db, log, r.Escrow, r.Earning,
			r.Contract, r.Milestone, r.Creator, c.PayeeCache, c.Locker),
	}
}
