// Package pool 食譜池儲存：客戶端上傳一次食譜，之後以 id 反覆生成便當
package pool

import (
	"context"
	"fmt"
	"time"

	"bento-planner/internal/core/bento"
	"bento-planner/internal/infrastructure/config"
)

// Pool 一組上傳的食譜
type Pool struct {
	ID        string               `json:"id"`
	Recipes   []bento.RecipeRecord `json:"recipes"`
	CreatedAt time.Time            `json:"created_at"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// Stats 儲存統計
type Stats struct {
	Backend   string  `json:"backend"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size,omitempty"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Errors    int64   `json:"errors"`
	HitRatio  float64 `json:"hit_ratio"`
}

// Store 食譜池儲存介面
type Store interface {
	// Save 儲存食譜池並回傳 id；pool.ID 為空時自動產生
	Save(ctx context.Context, p *Pool) (string, error)
	// Get 取得食譜池，不存在或已過期時回傳 common.ErrPoolNotFound
	Get(ctx context.Context, id string) (*Pool, error)
	// Delete 刪除食譜池，不存在時回傳 common.ErrPoolNotFound
	Delete(ctx context.Context, id string) error
	// Ping 檢查儲存是否可用
	Ping(ctx context.Context) error
	Stats() Stats
	Close() error
}

// New 依設定建立對應的儲存
func New(cfg *config.Config) (Store, error) {
	switch cfg.Pool.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.Pool), nil
	case "redis":
		store, err := NewRedisStore(cfg.Redis, cfg.Pool.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mongo":
		store, err := NewMongoStore(cfg.Mongo, cfg.Pool.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown pool backend %q", cfg.Pool.Backend)
	}
}

func hitRatio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
