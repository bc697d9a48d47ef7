package app

import (
	"github.com/yungbote/collabmarket-backend/internal/middleware"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, svc.Auth),
	}
}
