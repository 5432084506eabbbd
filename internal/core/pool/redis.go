package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"
)

const redisBackend = "redis"

// RedisStore 以 Redis 儲存食譜池（JSON + TTL），多個實例可共用
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits   int64
	misses int64
	errors int64
}

// NewRedisStore 建立 Redis 儲存並測試連線
func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("食譜池已初始化",
		zap.String("backend", redisBackend),
		zap.String("addr", cfg.Addr),
		zap.Duration("存活時間", ttl),
	)
	return NewRedisStoreWithClient(client, cfg.KeyPrefix, ttl), nil
}

// NewRedisStoreWithClient 以既有的 client 建立儲存
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "bento:pool:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Save 儲存食譜池
func (s *RedisStore) Save(ctx context.Context, p *Pool) (string, error) {
	if p.ID == "" {
		p.ID = common.GenerateID("pool")
	}
	now := time.Now()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(s.ttl)

	// 序列化食譜池
	data, err := common.ToJSON(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pool: %w", err)
	}

	if err := s.client.Set(ctx, s.key(p.ID), data, s.ttl).Err(); err != nil {
		atomic.AddInt64(&s.errors, 1)
		return "", common.ErrPoolStoreError.Wrap(fmt.Errorf("failed to set pool: %w", err))
	}
	return p.ID, nil
}

// Get 取得食譜池
func (s *RedisStore) Get(ctx context.Context, id string) (*Pool, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogPoolMiss(redisBackend, id)
			return nil, common.ErrPoolNotFound
		}
		atomic.AddInt64(&s.errors, 1)
		return nil, common.ErrPoolStoreError.Wrap(fmt.Errorf("failed to get pool: %w", err))
	}

	var p Pool
	if err := common.ParseJSONBytes(data, &p); err != nil {
		atomic.AddInt64(&s.errors, 1)
		return nil, fmt.Errorf("failed to unmarshal pool: %w", err)
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogPoolHit(redisBackend, id)
	return &p, nil
}

// Delete 刪除食譜池
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		atomic.AddInt64(&s.errors, 1)
		return common.ErrPoolStoreError.Wrap(fmt.Errorf("failed to delete pool: %w", err))
	}
	if n == 0 {
		return common.ErrPoolNotFound
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Stats 取得統計資訊；Size 不向 Redis 查詢
func (s *RedisStore) Stats() Stats {
	hits, misses := atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
	return Stats{
		Backend:  redisBackend,
		Hits:     hits,
		Misses:   misses,
		Errors:   atomic.LoadInt64(&s.errors),
		HitRatio: hitRatio(hits, misses),
	}
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key 生成 Redis 鍵
func (s *RedisStore) key(id string) string {
	return s.prefix + id
}
