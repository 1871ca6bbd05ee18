package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	DataAPI   DataAPIConfig   `mapstructure:"data_api"`
	Traders   TradersConfig   `mapstructure:"traders"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Output    OutputConfig    `mapstructure:"output"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type DataAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TradersConfig struct {
	CSVPath string `mapstructure:"csv_path"`
}

// TrackerConfig holds the engine knobs. Unset options fall back to the
// defaults set in Load.
type TrackerConfig struct {
	PollIntervalSeconds    int     `mapstructure:"poll_interval_seconds"`
	MaxRecentEvents        int     `mapstructure:"max_recent_events"`
	MinUSDFilter           float64 `mapstructure:"min_usd_filter"`
	ConcurrencyLimit       int     `mapstructure:"concurrency_limit"`
	RetryAttempts          int     `mapstructure:"retry_attempts"`
	RetryBaseDelayMs       int     `mapstructure:"retry_base_delay_ms"`
	ActivityLimitPerTrader int     `mapstructure:"activity_limit_per_trader"`
}

func (c TrackerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c TrackerConfig) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type SnapshotsConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Retention time.Duration `mapstructure:"retention"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("data_api.base_url", "https://data-api.polymarket.com")
	v.SetDefault("data_api.timeout", "15s")
	v.SetDefault("traders.csv_path", "config/traders.csv")
	v.SetDefault("tracker.poll_interval_seconds", 300)
	v.SetDefault("tracker.max_recent_events", 200)
	v.SetDefault("tracker.min_usd_filter", 0)
	v.SetDefault("tracker.concurrency_limit", 5)
	v.SetDefault("tracker.retry_attempts", 3)
	v.SetDefault("tracker.retry_base_delay_ms", 1000)
	v.SetDefault("tracker.activity_limit_per_trader", 500)
	v.SetDefault("output.dir", "data")
	v.SetDefault("snapshots.enabled", true)
	v.SetDefault("snapshots.retention", "168h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
