package config

import (
	"log"

	"github.com/spf13/viper"
)

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	Scheme          string `mapstructure:"scheme"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	MinIdleConns     int    `mapstructure:"min_idle_conns"`
	OperationTimeout int    `mapstructure:"operation_timeout"`
}

type CacheConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxSizeMB   int  `mapstructure:"max_size_mb"`
	TTLSeconds  int  `mapstructure:"ttl_seconds"`
	CounterSize int  `mapstructure:"counter_size"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type AnalyticsConfig struct {
	Namespace     string `mapstructure:"namespace"`      // Blob store namespace for counter data
	ShardCount    int    `mapstructure:"shard_count"`    // Number of counter shards per day
	RetentionDays int    `mapstructure:"retention_days"` // Trailing window of daily buckets to keep
	QueueSize     int    `mapstructure:"queue_size"`     // Ingest dispatcher queue capacity
	Workers       int    `mapstructure:"workers"`        // Ingest dispatcher worker count
}

type BaselineConfig struct {
	DatasetURL   string `mapstructure:"dataset_url"`   // baseline-browser-mapping JSON endpoint
	FetchTimeout int    `mapstructure:"fetch_timeout"` // Seconds
}

type SecurityConfig struct {
	AdminAPIKey      string `mapstructure:"admin_api_key"`
	AdminAuthEnabled bool   `mapstructure:"admin_auth_enabled"`
	BotFilterEnabled bool   `mapstructure:"bot_filter_enabled"`
}

type Config struct {
	WebServer WebServerConfig `mapstructure:"webserver"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Baseline  BaselineConfig  `mapstructure:"baseline"`
	Security  SecurityConfig  `mapstructure:"security"`
}

func LoadConfig() (Config, error) {
	var config Config

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Enable environment variable overrides
	viper.SetEnvPrefix("BASELINE")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Error reading config file: %v", err)
			return config, err
		}
		// Missing config file is fine, defaults and env vars apply
	}

	if err := viper.Unmarshal(&config); err != nil {
		log.Printf("Unable to decode into struct: %v", err)
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return config
}

func setDefaults() {
	// WebServer defaults
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.ip", "127.0.0.1")
	viper.SetDefault("webserver.scheme", "http")
	viper.SetDefault("webserver.read_timeout", 15)
	viper.SetDefault("webserver.write_timeout", 15)
	viper.SetDefault("webserver.shutdown_timeout", 30)

	// Redis defaults
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 5)
	viper.SetDefault("redis.operation_timeout", 5)

	// Cache defaults (user-agent resolution cache)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size_mb", 32)
	viper.SetDefault("cache.ttl_seconds", 3600)
	viper.SetDefault("cache.counter_size", 100000)

	// RateLimit defaults
	viper.SetDefault("ratelimit.requests_per_second", 50.0)
	viper.SetDefault("ratelimit.burst", 100)

	// Analytics defaults
	viper.SetDefault("analytics.namespace", "netlify-baseline")
	viper.SetDefault("analytics.shard_count", 25)
	viper.SetDefault("analytics.retention_days", 7)
	viper.SetDefault("analytics.queue_size", 1024)
	viper.SetDefault("analytics.workers", 4)

	// Baseline dataset defaults
	viper.SetDefault("baseline.dataset_url",
		"https://unpkg.com/baseline-browser-mapping/dist/with_downstream/all_versions_object.json")
	viper.SetDefault("baseline.fetch_timeout", 10)

	// Security defaults
	viper.SetDefault("security.admin_api_key", "")
	viper.SetDefault("security.admin_auth_enabled", true)
	viper.SetDefault("security.bot_filter_enabled", true)
}
