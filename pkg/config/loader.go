package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("queue.url", "QUEUE_URL", "NATS_URL")
	viper.BindEnv("queue.driver", "QUEUE_DRIVER")
	viper.BindEnv("source.active_url", "SOURCE_ACTIVE_URL")
	viper.BindEnv("source.reactive_url", "SOURCE_REACTIVE_URL")
	viper.BindEnv("sync.ready_marker_path", "SYNC_READY_MARKER_PATH")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults + env vars only
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "sigem-energia")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("queue.driver", "nats")

	viper.SetDefault("source.fetch_timeout", 30*time.Second)
	viper.SetDefault("source.breaker.failure_threshold", 5)
	viper.SetDefault("source.breaker.timeout", 60*time.Second)

	viper.SetDefault("sync.interval", 15*time.Minute)
	viper.SetDefault("sync.ready_marker_path", "/tmp/data_loader_ready")

	// Typical Zurich-area residential dual tariff (Doppeltarif)
	viper.SetDefault("tariff.currency", "CHF")
	viper.SetDefault("tariff.currency_symbol", "Fr.")
	viper.SetDefault("tariff.peak_rate", 0.32)
	viper.SetDefault("tariff.off_peak_rate", 0.22)
	viper.SetDefault("tariff.average_rate", 0.27)
	viper.SetDefault("tariff.peak_start_hour", 7)
	viper.SetDefault("tariff.peak_end_hour", 20)

	viper.SetDefault("pagination.default_per_page", 100)
	viper.SetDefault("pagination.min_per_page", 1)
	viper.SetDefault("pagination.max_per_page", 10000)

	viper.SetDefault("cache.analytics_ttl", 5*time.Minute)
}
