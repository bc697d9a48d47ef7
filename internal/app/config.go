package app

import (
	"strings"
	"time"

	"github.com/yungbote/collabmarket-backend/internal/pkg/envutil"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type Config struct {
	Port           string
	AllowOrigins   []string
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	PaymentsProvider string
	GatewayTimeout   time.Duration
	PayeeCacheTTL    time.Duration

	// ContractActivateOnFirstSignature makes one signature enough to
	// activate a contract instead of requiring both parties.
	ContractActivateOnFirstSignature bool

	RedisAddr     string
	RedisPassword string
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	origins := strings.Split(envutil.GetEnv("CORS_ALLOW_ORIGINS", "", log), ",")
	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	return Config{
		Port:           port,
		AllowOrigins:   cleaned,
		JWTSecretKey:   envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: time.Duration(envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)) * time.Second,

		PaymentsProvider: envutil.GetEnv("PAYMENTS_PROVIDER", "stripe", log),
		GatewayTimeout:   time.Duration(envutil.GetEnvAsInt("GATEWAY_TIMEOUT_SECONDS", 15, log)) * time.Second,
		PayeeCacheTTL:    time.Duration(envutil.GetEnvAsInt("PAYEE_CACHE_TTL_SECONDS", 900, log)) * time.Second,

		ContractActivateOnFirstSignature: envutil.GetEnvAsBool("CONTRACT_ACTIVATE_ON_FIRST_SIGNATURE", false, log),

		RedisAddr:     envutil.GetEnv("REDIS_ADDR", "", log),
		RedisPassword: envutil.GetEnv("REDIS_PASSWORD", "", log),
	}
}
