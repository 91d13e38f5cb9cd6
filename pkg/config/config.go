package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Source     SourceConfig     `mapstructure:"source"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Tariff     TariffConfig     `mapstructure:"tariff"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// QueueConfig selects and configures the event bus carrying sync reports.
type QueueConfig struct {
	Driver        string        `mapstructure:"driver"` // "nats" or "rabbitmq"
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SourceConfig describes the upstream dataset endpoints, one URL per
// measurement kind. The endpoints always serve the full series.
type SourceConfig struct {
	ActiveURL    string        `mapstructure:"active_url"`
	ReactiveURL  string        `mapstructure:"reactive_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	Breaker BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// SyncConfig controls the periodic sync scheduler and the readiness marker
// consumed by dependent processes as a startup gate.
type SyncConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	ReadyMarkerPath string        `mapstructure:"ready_marker_path"`
}

// TariffConfig mirrors domain.TariffConfig so rates and boundary hours come
// from configuration rather than code.
type TariffConfig struct {
	Currency       string  `mapstructure:"currency"`
	CurrencySymbol string  `mapstructure:"currency_symbol"`
	PeakRate       float64 `mapstructure:"peak_rate"`
	OffPeakRate    float64 `mapstructure:"off_peak_rate"`
	AverageRate    float64 `mapstructure:"average_rate"`
	PeakStartHour  int     `mapstructure:"peak_start_hour"`
	PeakEndHour    int     `mapstructure:"peak_end_hour"`
}

type PaginationConfig struct {
	DefaultPerPage int `mapstructure:"default_per_page"`
	MinPerPage     int `mapstructure:"min_per_page"`
	MaxPerPage     int `mapstructure:"max_per_page"`
}

type CacheConfig struct {
	AnalyticsTTL time.Duration `mapstructure:"analytics_ttl"`
}
