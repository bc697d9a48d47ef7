package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/platform/analytics"
	"github.com/yungbote/collabmarket-backend/internal/platform/payeecache"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
)

type Clients struct {
	Gateway    stripe.Gateway
	Analytics  analytics.Client
	Redis      *goredis.Client
	Locker     *redislock.Client
	PayeeCache *payeecache.Cache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var gateway stripe.Gateway
	switch cfg.PaymentsProvider {
	case "mock":
		log.Warn("Using mock payment gateway")
		gateway = stripe.NewMock()
	default:
		g, err := stripe.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init stripe client: %w", err)
		}
		gateway = g
	}

	var analyticsClient analytics.Client
	if strings.TrimSpace(os.Getenv("ANALYTICS_BASE_URL")) != "" {
		a, err := analytics.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init analytics client: %w", err)
		}
		analyticsClient = a
	} else {
		log.Warn("Analytics client disabled, performance metrics must be supplied inline")
		analyticsClient = analytics.Disabled()
	}

	var rdb *goredis.Client
	var locker *redislock.Client
	if cfg.RedisAddr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		locker = redislock.New(rdb)
	} else {
		log.Warn("Redis not configured, payee cache and reconciler locks disabled")
	}

	return Clients{
		Gateway:    gateway,
		Analytics:  analyticsClient,
		Redis:      rdb,
		Locker:     locker,
		PayeeCache: payeecache.New(log, rdb, cfg.PayeeCacheTTL),
	}, nil
}
