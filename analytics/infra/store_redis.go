package infra

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore adapta um *redis.Client para a capability domain.Store.
//
// Cada método é um único comando Redis, então a atomicidade de cada
// primitiva é a do próprio comando. Nenhum pipeline ou transação: quem
// compõe sequências é a camada application, e a não-atomicidade entre
// chamadas faz parte do contrato dela.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) AddWithScore(ctx context.Context, key, member string, score int64) error {
	return s.rdb.ZAdd(ctx, key, redis.Z{Member: member, Score: float64(score)}).Err()
}

func (s *RedisStore) RemoveByScoreBelow(ctx context.Context, key string, min int64) error {
	// "(" torna o limite exclusivo: remove score < min, preserva score == min.
	return s.rdb.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(min, 10)).Err()
}

func (s *RedisStore) CountByScoreFrom(ctx context.Context, key string, min int64) (int64, error) {
	return s.rdb.ZCount(ctx, key, strconv.FormatInt(min, 10), "+inf").Result()
}

func (s *RedisStore) IncrementField(ctx context.Context, key, field string, delta int64) error {
	return s.rdb.HIncrBy(ctx, key, field, delta).Err()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) Fields(ctx context.Context, key string) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, key).Result()
}
