package infra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"toolkit-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// consumeScript executa a regra de domain.Apply dentro do Redis.
// Um script Lua roda de forma atômica, então não há janela entre ler e gravar.
//
// Retorno: {allowed (0|1), count}.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local period = ARGV[1]
local limit = tonumber(ARGV[2])
local now = ARGV[3]

local cur = redis.call('HMGET', key, 'count', 'period')
local count = tonumber(cur[1])

if count == nil or cur[2] ~= period then
	redis.call('HSET', key, 'count', 1, 'period', period, 'last_updated', now)
	return {1, 1}
end

if count >= limit then
	return {0, count}
end

count = redis.call('HINCRBY', key, 'count', 1)
redis.call('HSET', key, 'last_updated', now)
return {1, count}
`)

// RedisUsageStore guarda um hash por identidade: count, period, last_updated.
type RedisUsageStore struct {
	rdb    redis.UniversalClient
	prefix string
}

type RedisUsageOption func(*RedisUsageStore)

func WithUsagePrefix(prefix string) RedisUsageOption {
	return func(s *RedisUsageStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisUsageStore(rdb redis.UniversalClient, opts ...RedisUsageOption) *RedisUsageStore {
	s := &RedisUsageStore{
		rdb:    rdb,
		prefix: "toolkit:usage",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisUsageStore) key(identity domain.Key) string {
	return s.prefix + ":" + string(identity)
}

func (s *RedisUsageStore) Consume(ctx context.Context, identity domain.Key, period string, limit int, now time.Time) (domain.UsageRecord, error) {
	res, err := consumeScript.Run(ctx, s.rdb, []string{s.key(identity)},
		period, limit, now.UTC().Format(time.RFC3339Nano)).Int64Slice()
	if err != nil {
		return domain.UsageRecord{}, fmt.Errorf("redis usage consume: %w", err)
	}
	if len(res) != 2 {
		return domain.UsageRecord{}, fmt.Errorf("redis usage consume: unexpected reply %v", res)
	}

	rec := domain.UsageRecord{Identity: identity, Count: int(res[1]), PeriodKey: period, LastUpdated: now}
	if res[0] == 0 {
		return rec, domain.ErrQuotaExceeded
	}
	return rec, nil
}

func (s *RedisUsageStore) Get(ctx context.Context, identity domain.Key) (domain.UsageRecord, bool, error) {
	vals, err := s.rdb.HGetAll(ctx, s.key(identity)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(vals) == 0) {
		return domain.UsageRecord{}, false, nil
	}
	if err != nil {
		return domain.UsageRecord{}, false, fmt.Errorf("redis usage get: %w", err)
	}

	count, err := strconv.Atoi(vals["count"])
	if err != nil {
		return domain.UsageRecord{}, false, fmt.Errorf("redis usage get: bad count %q: %w", vals["count"], err)
	}
	rec := domain.UsageRecord{Identity: identity, Count: count, PeriodKey: vals["period"]}
	if ts := vals["last_updated"]; ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.LastUpdated = t
		}
	}
	return rec, true, nil
}
