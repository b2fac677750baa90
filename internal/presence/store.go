package presence

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Store mirrors connection liveness into Redis so other services (and
// dashboards) can ask "who is online". It is a best-effort cache: the
// in-process Registry stays the source of truth for delivery and never
// consults this.
type Store struct {
	rdb *goredis.Client

	lastSeenKey string
	ttl         time.Duration

	opTimeout time.Duration
	inflight  chan struct{}

	saveScript *goredis.Script
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Sample is one liveness observation for a principal.
type Sample struct {
	UserID int64
	Status Status
	TS     int64
}

const savePresenceLua = `
-- KEYS[1] = userKey
-- KEYS[2] = lastSeenKey
-- ARGV[1] = userID
-- ARGV[2] = delta (+1 connect, -1 disconnect)
-- ARGV[3] = ts
-- ARGV[4] = ttlMs

local conns = redis.call('HINCRBY', KEYS[1], 'connections', ARGV[2])
if conns < 0 then
  conns = 0
  redis.call('HSET', KEYS[1], 'connections', 0)
end

local status = 'offline'
if conns > 0 then
  status = 'online'
end

redis.call('HSET', KEYS[1],
  'status', status,
  'last_seen', ARGV[3]
)

local ttl = tonumber(ARGV[4])
if ttl and ttl > 0 then
  redis.call('PEXPIRE', KEYS[1], ttl)
else
  redis.call('PERSIST', KEYS[1])
end

redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])

return conns
`

func NewStore(addr, password string, db int, ttl time.Duration) *Store {
	poolSize := runtime.GOMAXPROCS(0) * 16
	if poolSize < 32 {
		poolSize = 32
	}
	if poolSize > 128 {
		poolSize = 128
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     poolSize,
		MinIdleConns: poolSize / 4,

		PoolTimeout: 1 * time.Second,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      1,
		MinRetryBackoff: 25 * time.Millisecond,
		MaxRetryBackoff: 250 * time.Millisecond,
	})

	return &Store{
		rdb:         rdb,
		lastSeenKey: "presence:last_seen",
		ttl:         ttl,

		opTimeout: 5 * time.Second,

		inflight: make(chan struct{}, poolSize),

		saveScript: goredis.NewScript(savePresenceLua),
	}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) SavePresence(sample Sample) error {
	return s.SavePresenceCtx(context.Background(), sample)
}

func (s *Store) SavePresenceCtx(ctx context.Context, sample Sample) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}

	select {
	case s.inflight <- struct{}{}:
		defer func() { <-s.inflight }()
	case <-ctx.Done():
		return ctx.Err()
	}

	delta := 1
	if sample.Status == StatusOffline {
		delta = -1
	}

	userKey := fmt.Sprintf("presence:user:%d", sample.UserID)
	ttlMs := s.ttl.Milliseconds()

	keys := []string{userKey, s.lastSeenKey}
	err := s.saveScript.Run(
		ctx,
		s.rdb,
		keys,
		sample.UserID,
		delta,
		sample.TS,
		ttlMs,
	).Err()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("redis SavePresence timeout/cancel: %w", err)
		}
		return fmt.Errorf("redis SavePresence failed: %w", err)
	}

	return nil
}
