// Package config provides configuration loading, defaults, and validation
// for partscout.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort     = 8080
	DefaultServerMode     = "release"
	DefaultRateLimitRPS   = 20.0
	DefaultRateLimitBurst = 40

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBUser     = "partscout"
	DefaultDBName     = "partscout"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "partscout:"
	DefaultRedisTTL       = 15 * time.Minute

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "partscout-scoring"

	// DefaultFetchTimeout bounds every outbound metadata fetch.  Fetches
	// exceeding it degrade to "metadata unavailable", never to an error in
	// the scoring path.
	DefaultFetchTimeout   = 7 * time.Second
	DefaultFetchUserAgent = "partscout-bot/1.0 (+https://partscout.io/bot)"
	DefaultFetchMaxBytes  = 2 << 20 // 2 MiB
	DefaultFetchRedirects = 3
	DefaultFetchRPS       = 2.0
	DefaultFetchCacheTTL  = 30 * time.Minute

	DefaultGeoEndpoint = "https://api.zippopotam.us/us"
	DefaultGeoTimeout  = 7 * time.Second
	DefaultGeoCacheTTL = 24 * time.Hour

	DefaultWorkerConcurrency = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the platform
// default.  Fields already set by the caller are left unchanged so explicit
// configuration always wins.  Call after unmarshalling and before
// Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ──────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = DefaultRateLimitRPS
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = DefaultRateLimitBurst
	}

	// ── Database ────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "file://migrations"
	}

	// ── Redis ───────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}

	// ── Kafka ───────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// ── Fetcher ─────────────────────────────────────────────────────────────
	if cfg.Fetcher.Timeout == 0 {
		cfg.Fetcher.Timeout = DefaultFetchTimeout
	}
	if cfg.Fetcher.UserAgent == "" {
		cfg.Fetcher.UserAgent = DefaultFetchUserAgent
	}
	if cfg.Fetcher.MaxBodyBytes == 0 {
		cfg.Fetcher.MaxBodyBytes = DefaultFetchMaxBytes
	}
	if cfg.Fetcher.MaxRedirects == 0 {
		cfg.Fetcher.MaxRedirects = DefaultFetchRedirects
	}
	if cfg.Fetcher.RequestsPerSecond == 0 {
		cfg.Fetcher.RequestsPerSecond = DefaultFetchRPS
	}
	if cfg.Fetcher.CacheTTL == 0 {
		cfg.Fetcher.CacheTTL = DefaultFetchCacheTTL
	}

	// ── Geo ─────────────────────────────────────────────────────────────────
	if cfg.Geo.Endpoint == "" {
		cfg.Geo.Endpoint = DefaultGeoEndpoint
	}
	if cfg.Geo.Timeout == 0 {
		cfg.Geo.Timeout = DefaultGeoTimeout
	}
	if cfg.Geo.CacheTTL == 0 {
		cfg.Geo.CacheTTL = DefaultGeoCacheTTL
	}

	// ── Worker ──────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.CommitInterval == 0 {
		cfg.Worker.CommitInterval = time.Second
	}

	// ── Log ─────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
