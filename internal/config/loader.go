package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "PARTSCOUT"

// newViper builds a pre-configured Viper instance: YAML file type,
// PARTSCOUT_ env prefix, automatic env binding, and a key replacer that maps
// "." to "_" so that nested keys like "database.host" resolve to
// "PARTSCOUT_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindKeys(v)
	return v
}

// configKeys lists every settable key.  Viper only honours environment
// overrides for keys it knows about, so each key is bound explicitly here;
// a key added to Config must also be added to this list.
var configKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout", "server.rate_limit_rps", "server.rate_limit_burst",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time", "database.migration_path",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"kafka.brokers", "kafka.group_id", "kafka.producer_retries",
	"kafka.batch_timeout", "kafka.write_timeout",
	"fetcher.timeout", "fetcher.user_agent", "fetcher.max_body_bytes",
	"fetcher.max_redirects", "fetcher.requests_per_second", "fetcher.respect_robots",
	"fetcher.cache_ttl",
	"geo.endpoint", "geo.timeout", "geo.cache_ttl",
	"worker.concurrency", "worker.max_retries", "worker.commit_interval",
	"log.level", "log.format",
}

func bindKeys(v *viper.Viper) {
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges PARTSCOUT_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from PARTSCOUT_* environment
// variables with no config file, the preferred strategy for containerised
// deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk.  Intended for hot-reloading
// non-critical settings such as log level and rate-limit thresholds;
// callers apply only the safe subset at runtime.
//
// Watch is non-blocking; viper manages the background goroutine.  A change
// that fails to parse or validate is skipped so the application never
// enters a broken state.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Callers are expected to have called Load first; the initial read here
	// only primes viper's watcher state.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}
