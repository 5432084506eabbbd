package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"bento-planner/internal/core/bento"
	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"
)

const mongoBackend = "mongo"

// poolDocument 食譜池在 MongoDB 中的文件格式
type poolDocument struct {
	ID        string               `bson:"_id"`
	Recipes   []bento.RecipeRecord `bson:"recipes"`
	CreatedAt time.Time            `bson:"created_at"`
	ExpiresAt time.Time            `bson:"expires_at"`
}

// MongoStore 以 MongoDB 儲存食譜池，過期由 TTL 索引清除
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ttl        time.Duration
	timeout    time.Duration

	hits   int64
	misses int64
	errors int64
}

// NewMongoStore 連線 MongoDB 並建立 TTL 索引
func NewMongoStore(cfg config.MongoConfig, ttl time.Duration) (*MongoStore, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	collectionName := cfg.Collection
	if collectionName == "" {
		collectionName = "recipe_pools"
	}
	s := &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(collectionName),
		ttl:        ttl,
		timeout:    timeout,
	}
	if err := s.createIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	common.LogInfo("食譜池已初始化",
		zap.String("backend", mongoBackend),
		zap.String("database", cfg.Database),
		zap.String("collection", collectionName),
		zap.Duration("存活時間", ttl),
	)
	return s, nil
}

// createIndexes expires_at 到期後由 MongoDB 自動刪除
func (s *MongoStore) createIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := s.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create recipe pool ttl index: %w", err)
	}
	return nil
}

// Save 儲存食譜池，相同 id 時覆寫
func (s *MongoStore) Save(ctx context.Context, p *Pool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if p.ID == "" {
		p.ID = common.GenerateID("pool")
	}
	now := time.Now()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(s.ttl)

	doc := poolDocument{ID: p.ID, Recipes: p.Recipes, CreatedAt: p.CreatedAt, ExpiresAt: p.ExpiresAt}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		atomic.AddInt64(&s.errors, 1)
		return "", common.ErrPoolStoreError.Wrap(fmt.Errorf("failed to save pool: %w", err))
	}
	return p.ID, nil
}

// Get 取得食譜池；TTL 索引清除前已過期的文件視為不存在
func (s *MongoStore) Get(ctx context.Context, id string) (*Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc poolDocument
	filter := bson.M{"_id": id, "expires_at": bson.M{"$gt": time.Now()}}
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			atomic.AddInt64(&s.misses, 1)
			common.LogPoolMiss(mongoBackend, id)
			return nil, common.ErrPoolNotFound
		}
		atomic.AddInt64(&s.errors, 1)
		return nil, common.ErrPoolStoreError.Wrap(fmt.Errorf("failed to get pool: %w", err))
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogPoolHit(mongoBackend, id)
	return &Pool{ID: doc.ID, Recipes: doc.Recipes, CreatedAt: doc.CreatedAt, ExpiresAt: doc.ExpiresAt}, nil
}

// Delete 刪除食譜池
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		atomic.AddInt64(&s.errors, 1)
		return common.ErrPoolStoreError.Wrap(fmt.Errorf("failed to delete pool: %w", err))
	}
	if result.DeletedCount == 0 {
		return common.ErrPoolNotFound
	}
	return nil
}

// Ping 檢查 MongoDB 連線
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Stats 取得統計資訊；Size 不向 MongoDB 查詢
func (s *MongoStore) Stats() Stats {
	hits, misses := atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
	return Stats{
		Backend:  mongoBackend,
		Hits:     hits,
		Misses:   misses,
		Errors:   atomic.LoadInt64(&s.errors),
		HitRatio: hitRatio(hits, misses),
	}
}

// Close 中斷連線
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
