package payeecache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
)

const keyPrefix = "payee:acct:"

// Cache holds the latest gateway capability flags per payee account so the
// release path does not round-trip to the processor on every call. Entries
// are written by the webhook reconciler and expire on their own; a miss just
// means the caller asks the gateway directly.
type Cache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func New(log *logger.Logger, rdb *goredis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{
		log: log.With("client", "PayeeCache"),
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *Cache) Get(ctx context.Context, accountID string) (*stripe.AccountStatus, bool) {
	if c == nil || c.rdb == nil || accountID == "" {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+accountID).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Payee cache read failed", "error", err, "stripe_account", accountID)
		}
		return nil, false
	}
	var st stripe.AccountStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		c.log.Warn("Payee cache entry corrupt, dropping", "error", err, "stripe_account", accountID)
		_ = c.rdb.Del(ctx, keyPrefix+accountID).Err()
		return nil, false
	}
	return &st, true
}

func (c *Cache) Set(ctx context.Context, st stripe.AccountStatus) {
	if c == nil || c.rdb == nil || st.AccountID == "" {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+st.AccountID, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Payee cache write failed", "error", err, "stripe_account", st.AccountID)
	}
}
