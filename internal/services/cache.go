package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const balanceCacheTTL = 30 * time.Second

// balanceCache keeps recently read balances in Redis. Every successful
// commit drops the account's entry, so a cached value is never newer than
// the ledger. A nil client disables caching entirely.
type balanceCache struct {
	rdb *redis.Client
}

func newBalanceCache(rdb *redis.Client) *balanceCache {
	return &balanceCache{rdb: rdb}
}

func (c *balanceCache) key(accountID string) string {
	return "balance:" + accountID
}

func (c *balanceCache) Get(ctx context.Context, accountID string) (decimal.Decimal, bool) {
	if c.rdb == nil {
		return decimal.Zero, false
	}
	val, err := c.rdb.Get(ctx, c.key(accountID)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	balance, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return balance, true
}

func (c *balanceCache) Set(ctx context.Context, accountID string, balance decimal.Decimal) {
	if c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, c.key(accountID), balance.String(), balanceCacheTTL)
}

func (c *balanceCache) Invalidate(ctx context.Context, accountID string) {
	if c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, c.key(accountID))
}
