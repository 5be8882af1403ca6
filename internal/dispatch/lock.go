package dispatch

import (
	"context"
	"time"

	"becca-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const passLeaseKey = "dispatch:pass"

// RedisPassLock implements PassLock over a redis lease. The TTL should cover
// a full pass so a crashed holder frees the lease on its own.
type RedisPassLock struct {
	RDB *redis.Client
	TTL time.Duration
}

func (l RedisPassLock) Acquire(ctx context.Context) (func(), bool, error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	holder := uuid.NewString()
	ok, err := utils.AcquireLease(ctx, l.RDB, passLeaseKey, holder, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	release := func() {
		// Release is best effort; the TTL is the backstop.
		_ = utils.ReleaseLease(context.WithoutCancel(ctx), l.RDB, passLeaseKey, holder)
	}
	return release, true, nil
}
