package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	pkgconfig "github.com/weiawesome/wes-estate/pkg/config"
	"github.com/weiawesome/wes-estate/pkg/pubsub"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	PubSub    pubsub.Config `mapstructure:"pubsub"`
	Search    SearchConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string        `mapstructure:"file_path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime int           `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	PoolSize int `mapstructure:"pool_size"`
}

// CacheConfig selects the cache store and the TTL of every namespace.
type CacheConfig struct {
	Driver       string        `mapstructure:"driver"` // redis, memory, tiered
	Prefix       string        `mapstructure:"prefix"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	OpTimeout    time.Duration `mapstructure:"op_timeout"`
	SingleFlight bool          `mapstructure:"single_flight"`
	L1MaxKeys    int64         `mapstructure:"l1_max_keys"`
	L1TTL        time.Duration `mapstructure:"l1_ttl"`
	TTL          TTLConfig     `mapstructure:"ttl"`
}

type TTLConfig struct {
	Property   time.Duration `mapstructure:"property"`
	Properties time.Duration `mapstructure:"properties"`
	Search     time.Duration `mapstructure:"search"`
	TextSearch time.Duration `mapstructure:"text_search"`
	Favorites  time.Duration `mapstructure:"favorites"`
}

type SearchConfig struct {
	Backend        string              `mapstructure:"backend"` // database, elasticsearch
	Elasticsearch  ElasticsearchConfig `mapstructure:"elasticsearch"`
	ReindexOnStart bool                `mapstructure:"reindex_on_start"`
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string `mapstructure:"service_name"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads ./config/config.yaml, .env and environment overrides.
func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "estate")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/estate.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.slow_threshold", "200ms")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.prefix", "")
	v.SetDefault("cache.default_ttl", "30m")
	v.SetDefault("cache.op_timeout", "2s")
	v.SetDefault("cache.single_flight", false)
	v.SetDefault("cache.l1_max_keys", 10000)
	v.SetDefault("cache.l1_ttl", "30s")
	v.SetDefault("cache.ttl.property", "1800s")
	v.SetDefault("cache.ttl.properties", "1800s")
	v.SetDefault("cache.ttl.search", "3600s")
	v.SetDefault("cache.ttl.text_search", "3600s")
	v.SetDefault("cache.ttl.favorites", "1800s")
	v.SetDefault("pubsub.driver", "")
	v.SetDefault("pubsub.redis.pool_size", 5)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.group_id", "wes-estate")
	v.SetDefault("pubsub.kafka.partitions", 1)
	v.SetDefault("search.backend", "database")
	v.SetDefault("search.elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("search.elasticsearch.index", "properties")
	v.SetDefault("search.reindex_on_start", false)
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("auth.issuer", "wes-estate")
	v.SetDefault("rate_limit.rps", 100)
	v.SetDefault("rate_limit.burst", 200)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "wes-estate")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("cache.driver", "CACHE_DRIVER")
	v.BindEnv("cache.prefix", "CACHE_PREFIX")
	v.BindEnv("cache.single_flight", "CACHE_SINGLE_FLIGHT")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "PUBSUB_REDIS_ADDRESS")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("search.backend", "SEARCH_BACKEND")
	v.BindEnv("search.elasticsearch.addresses", "ELASTICSEARCH_ADDRESSES")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_ttl", "JWT_EXPIRE")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
}

func decode(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Without an explicit address, fall back to REDIS_HOST/REDIS_PORT.
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = fmt.Sprintf("%s:%s",
			pkgconfig.GetEnv("REDIS_HOST", "localhost"), pkgconfig.GetEnv("REDIS_PORT", "6379"))
	}
	if cfg.PubSub.Redis.Address == "" {
		cfg.PubSub.Redis.Address = cfg.Redis.Address
		cfg.PubSub.Redis.Password = cfg.Redis.Password
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	switch c.Cache.Driver {
	case "redis", "memory", "tiered":
	default:
		errs = append(errs, fmt.Errorf("unknown cache driver %q", c.Cache.Driver))
	}
	if strings.ContainsAny(c.Cache.Prefix, `*?[]\`) {
		errs = append(errs, fmt.Errorf("cache prefix %q must not contain glob characters", c.Cache.Prefix))
	}

	ttls := map[string]time.Duration{
		"cache.default_ttl":     c.Cache.DefaultTTL,
		"cache.ttl.property":    c.Cache.TTL.Property,
		"cache.ttl.properties":  c.Cache.TTL.Properties,
		"cache.ttl.search":      c.Cache.TTL.Search,
		"cache.ttl.text_search": c.Cache.TTL.TextSearch,
		"cache.ttl.favorites":   c.Cache.TTL.Favorites,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, ttl))
		}
	}

	switch c.PubSub.Driver {
	case "", "redis", "kafka":
	default:
		errs = append(errs, fmt.Errorf("unknown pubsub driver %q", c.PubSub.Driver))
	}

	switch c.Search.Backend {
	case "database", "elasticsearch":
	default:
		errs = append(errs, fmt.Errorf("unknown search backend %q", c.Search.Backend))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}

	return errors.Join(errs...)
}
