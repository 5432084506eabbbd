package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Pool        PoolConfig      `mapstructure:"pool"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Mongo       MongoConfig     `mapstructure:"mongo"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Bento       BentoConfig     `mapstructure:"bento"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// PoolConfig 食譜池儲存設定
type PoolConfig struct {
	Backend         string        `mapstructure:"backend"` // memory | redis | mongo
	MaxSize         int           `mapstructure:"max_size"`
	MaxRecipes      int           `mapstructure:"max_recipes"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// MongoConfig MongoDB 連線設定
type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// BentoConfig 便當生成設定
type BentoConfig struct {
	DefaultTargetCalories int     `mapstructure:"default_target_calories"`
	DefaultBatchCount     int     `mapstructure:"default_batch_count"`
	MaxBatchCount         int     `mapstructure:"max_batch_count"`
	BaseContainerML       float64 `mapstructure:"base_container_ml"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時略過）
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("pool.backend", "APP_POOL_BACKEND", "POOL_BACKEND")
	viper.BindEnv("redis.addr", "APP_REDIS_ADDR", "REDIS_ADDR")
	viper.BindEnv("redis.password", "APP_REDIS_PASSWORD", "REDIS_PASSWORD")
	viper.BindEnv("mongo.uri", "APP_MONGO_URI", "MONGO_URI")
	viper.BindEnv("mongo.database", "APP_MONGO_DATABASE", "MONGO_DATABASE")
	viper.BindEnv("rate_limit.enabled", "APP_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "APP_RATE_LIMIT_REQUESTS", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "APP_RATE_LIMIT_WINDOW", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "APP_DEDUP_WINDOW", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "APP_LOG_LEVEL", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration", "pool_backend:", viper.GetString("pool.backend"), "redis_addr:", viper.GetString("redis.addr"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "bento-planner")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "10s")
	viper.SetDefault("server.max_body_bytes", 2<<20) // 2MB

	// 食譜池設定
	viper.SetDefault("pool.backend", "memory")
	viper.SetDefault("pool.max_size", 1000)
	viper.SetDefault("pool.max_recipes", 500)
	viper.SetDefault("pool.ttl", "24h")
	viper.SetDefault("pool.cleanup_interval", "10m")

	// Redis 設定
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "bento:pool:")

	// MongoDB 設定
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "bento_planner")
	viper.SetDefault("mongo.collection", "recipe_pools")
	viper.SetDefault("mongo.timeout", "10s")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 便當設定
	viper.SetDefault("bento.default_target_calories", 600)
	viper.SetDefault("bento.default_batch_count", 3)
	viper.SetDefault("bento.max_batch_count", 20)
	viper.SetDefault("bento.base_container_ml", 800)

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證食譜池設定
	switch config.Pool.Backend {
	case "memory":
		if config.Pool.MaxSize <= 0 {
			return fmt.Errorf("invalid pool max size")
		}
		if config.Pool.CleanupInterval <= 0 {
			return fmt.Errorf("invalid pool cleanup interval")
		}
	case "redis":
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for redis pool backend")
		}
	case "mongo":
		if config.Mongo.URI == "" || config.Mongo.Database == "" {
			return fmt.Errorf("mongo uri and database are required for mongo pool backend")
		}
	default:
		return fmt.Errorf("unknown pool backend %q", config.Pool.Backend)
	}
	if config.Pool.TTL <= 0 {
		return fmt.Errorf("invalid pool ttl")
	}
	if config.Pool.MaxRecipes <= 0 {
		return fmt.Errorf("invalid pool max recipes")
	}

	// 驗證便當設定
	if config.Bento.DefaultTargetCalories <= 0 {
		return fmt.Errorf("invalid default target calories")
	}
	if config.Bento.MaxBatchCount <= 0 || config.Bento.DefaultBatchCount <= 0 ||
		config.Bento.DefaultBatchCount > config.Bento.MaxBatchCount {
		return fmt.Errorf("invalid batch count limits")
	}
	if config.Bento.BaseContainerML <= 0 {
		return fmt.Errorf("invalid base container volume")
	}

	// 驗證限流設定
	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
