package channels

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// Cache is the small cache surface the service needs. Implemented over redis;
// nil-able for callers that run without one.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache adapts a go-redis client to Cache.
type RedisCache struct {
	RDB *redis.Client
}

func (c RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.RDB.Set(ctx, key, value, ttl).Err()
}

func (c RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.RDB.Del(ctx, keys...).Err()
}

const cacheTTL = 30 * time.Second

// Service provides channel toggle operations.
//
// Invariants:
// - IsEnabled is true iff both the channel flag and the master flag are true.
// - A missing toggle row reads as disabled, never as an error.
// - SetToggle is an idempotent upsert; repeating a write is observationally a no-op.
type Service struct {
	db    *sql.DB
	cache Cache
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB, cache Cache) *Service {
	return &Service{db: db, cache: cache, clock: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Toggle, error) {
	return listToggles(ctx, s.db)
}

// SetChannel flips a per-channel flag.
func (s *Service) SetChannel(ctx context.Context, ch Channel, enabled bool) (Toggle, error) {
	if !ValidChannel(ch) {
		return Toggle{}, ErrInvalidArgument
	}
	return s.set(ctx, string(ch), enabled)
}

// SetMaster flips the master switch gating every channel at once.
func (s *Service) SetMaster(ctx context.Context, enabled bool) (Toggle, error) {
	return s.set(ctx, MasterKey, enabled)
}

func (s *Service) set(ctx context.Context, key string, enabled bool) (Toggle, error) {
	t, err := upsertToggle(ctx, s.db, key, enabled, s.clock().UTC())
	if err != nil {
		return Toggle{}, err
	}
	if s.cache != nil {
		// Invalidation failure is not a write failure; the TTL bounds staleness.
		_ = s.cache.Del(ctx, toggleCacheKey(key), toggleCacheKey(MasterKey))
	}
	return t, nil
}

// IsEnabled reports whether a channel is live: its own flag AND the master
// switch. Missing rows read as false.
func (s *Service) IsEnabled(ctx context.Context, ch Channel) (bool, error) {
	if !ValidChannel(ch) {
		return false, ErrInvalidArgument
	}
	flag, err := s.enabled(ctx, string(ch))
	if err != nil {
		return false, err
	}
	if !flag {
		return false, nil
	}
	master, err := s.enabled(ctx, MasterKey)
	if err != nil {
		return false, err
	}
	return master, nil
}

func (s *Service) enabled(ctx context.Context, key string) (bool, error) {
	ck := toggleCacheKey(key)
	if s.cache != nil {
		if v, ok, err := s.cache.Get(ctx, ck); err == nil && ok {
			b, perr := strconv.ParseBool(v)
			if perr == nil {
				return b, nil
			}
		}
		// Cache errors fall through to the store read.
	}

	t, found, err := getToggle(ctx, s.db, key)
	if err != nil {
		return false, err
	}
	v := found && t.Enabled
	if s.cache != nil {
		_ = s.cache.Set(ctx, ck, strconv.FormatBool(v), cacheTTL)
	}
	return v, nil
}

func (s *Service) GetConnection(ctx context.Context, ch Channel) (Connection, error) {
	if !ValidChannel(ch) {
		return Connection{}, ErrInvalidArgument
	}
	c, found, err := getConnection(ctx, s.db, ch)
	if err != nil {
		return Connection{}, err
	}
	if !found {
		return Connection{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) SetConnection(ctx context.Context, c Connection) (Connection, error) {
	if !ValidChannel(c.Channel) {
		return Connection{}, ErrInvalidArgument
	}
	return upsertConnection(ctx, s.db, c, s.clock().UTC())
}

func toggleCacheKey(key string) string {
	return "toggle:" + key
}
