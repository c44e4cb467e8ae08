package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 目錄來源
const (
	CatalogMemory   = "memory"
	CatalogSQLite   = "sqlite3"
	CatalogPostgres = "postgres"
)

// 緩存後端
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Canonical   CanonicalConfig `mapstructure:"canonical"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Catalog     CatalogConfig   `mapstructure:"catalog"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
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
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// CanonicalConfig 食材名稱正規化服務（OpenRouter）
type CanonicalConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// CatalogConfig 食譜目錄
type CatalogConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Seed   bool   `mapstructure:"seed"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時只用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("canonical.enabled", "CANONICAL_ENABLED")
	viper.BindEnv("canonical.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("canonical.model", "OPENROUTER_MODEL")
	viper.BindEnv("canonical.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("canonical.timeout", "CANONICAL_TIMEOUT")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("catalog.driver", "CATALOG_DRIVER")
	viper.BindEnv("catalog.dsn", "DATABASE_URL")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

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
	fmt.Println("Loading configuration", "openrouter_api_key:", maskAPIKey(viper.GetString("canonical.api_key")), "catalog_driver:", viper.GetString("catalog.driver"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Cache.Backend = strings.ToLower(strings.TrimSpace(config.Cache.Backend))
	config.Catalog.Driver = strings.ToLower(strings.TrimSpace(config.Catalog.Driver))

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "shopping-list-engine")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 正規化服務設定
	viper.SetDefault("canonical.enabled", false)
	viper.SetDefault("canonical.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("canonical.model", "openai/gpt-4o-mini")
	viper.SetDefault("canonical.max_tokens", 1000)
	viper.SetDefault("canonical.timeout", "8s")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", CacheBackendMemory)
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.redis_db", 0)
	viper.SetDefault("cache.key_prefix", "canonical:")
	viper.SetDefault("cache.max_size", 5000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// 目錄設定
	viper.SetDefault("catalog.driver", CatalogMemory)
	viper.SetDefault("catalog.dsn", "")
	viper.SetDefault("catalog.seed", true)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證正規化服務設定
	if config.Canonical.Enabled && config.Canonical.APIKey == "" {
		return fmt.Errorf("openrouter api key is required when canonical service is enabled")
	}
	if config.Canonical.Timeout <= 0 {
		return fmt.Errorf("invalid canonical timeout")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case CacheBackendMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheBackendRedis:
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required for redis cache")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	// 驗證目錄設定
	switch config.Catalog.Driver {
	case CatalogMemory:
	case CatalogSQLite, CatalogPostgres:
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog dsn is required for driver %s", config.Catalog.Driver)
		}
	default:
		return fmt.Errorf("unknown catalog driver %q", config.Catalog.Driver)
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
