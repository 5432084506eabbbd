package pool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"
)

const memoryBackend = "memory"

// MemoryStore 記憶體食譜池，支援 TTL 與 LRU 淘汰
type MemoryStore struct {
	cfg   config.PoolConfig
	mu    sync.Mutex
	store map[string]*poolEntry
	stats poolStats
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// poolEntry 儲存條目
type poolEntry struct {
	pool        *Pool
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// poolStats 儲存統計
type poolStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewMemoryStore 建立記憶體儲存並啟動過期清理協程
func NewMemoryStore(cfg config.PoolConfig) *MemoryStore {
	m := newMemoryStore(cfg, time.Now)
	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("食譜池已初始化",
		zap.String("backend", memoryBackend),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)
	return m
}

func newMemoryStore(cfg config.PoolConfig, now func() time.Time) *MemoryStore {
	return &MemoryStore{
		cfg:   cfg,
		store: make(map[string]*poolEntry),
		now:   now,
		done:  make(chan struct{}),
	}
}

// Save 儲存食譜池
func (m *MemoryStore) Save(ctx context.Context, p *Pool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = common.GenerateID("pool")
	}

	if _, exists := m.store[p.ID]; !exists && m.cfg.MaxSize > 0 && len(m.store) >= m.cfg.MaxSize {
		// 先清理過期項目
		evicted := m.cleanup()
		common.LogDebug("食譜池清理執行", zap.Int("清理數量", evicted))

		// 仍然滿載時淘汰最少使用的項目
		if len(m.store) >= m.cfg.MaxSize {
			m.evictLRU()
		}

		if len(m.store) >= m.cfg.MaxSize {
			m.stats.errors++
			common.LogWarn("食譜池已滿", zap.Int("目前容量", len(m.store)))
			return "", common.ErrPoolStoreFull
		}
	}

	now := m.now()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(m.cfg.TTL)
	m.store[p.ID] = &poolEntry{
		pool:       p,
		expiresAt:  p.ExpiresAt,
		lastAccess: now,
	}

	common.LogDebug("食譜池已儲存",
		zap.String("pool_id", p.ID),
		zap.Int("recipe_count", len(p.Recipes)),
	)
	return p.ID, nil
}

// Get 取得食譜池
func (m *MemoryStore) Get(ctx context.Context, id string) (*Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[id]
	if !exists {
		m.stats.misses++
		common.LogPoolMiss(memoryBackend, id)
		return nil, common.ErrPoolNotFound
	}

	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, id)
		m.stats.evictions++
		m.stats.misses++
		common.LogDebug("食譜池已過期", zap.String("pool_id", id))
		return nil, common.ErrPoolNotFound
	}

	entry.lastAccess = now
	entry.accessCount++
	m.stats.hits++
	common.LogPoolHit(memoryBackend, id)
	return entry.pool, nil
}

// Delete 刪除食譜池
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[id]; !exists {
		return common.ErrPoolNotFound
	}
	delete(m.store, id)
	return nil
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Stats 取得統計資訊
func (m *MemoryStore) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Backend:   memoryBackend,
		Size:      len(m.store),
		MaxSize:   m.cfg.MaxSize,
		Hits:      m.stats.hits,
		Misses:    m.stats.misses,
		Evictions: m.stats.evictions,
		Errors:    m.stats.errors,
		HitRatio:  hitRatio(m.stats.hits, m.stats.misses),
	}
}

// Close 停止清理協程並清空儲存
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]*poolEntry)
	common.LogInfo("食譜池已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}

// startCleanup 定期清理過期項目
func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期項目，呼叫者需持有鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0

	for id, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, id)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("Cleaned up expired pools",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰存取次數最少、最久未使用的項目，呼叫者需持有鎖
func (m *MemoryStore) evictLRU() {
	var oldestID string
	var oldestAccess time.Time
	var lowestAccessCount int

	for id, entry := range m.store {
		if oldestID == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestID = id
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestID != "" {
		delete(m.store, oldestID)
		m.stats.evictions++
		common.LogDebug("食譜池已淘汰(LRU)", zap.String("pool_id", oldestID))
	}
}
