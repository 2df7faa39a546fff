package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr               string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"gt=0"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute" validate:"gte=0"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat          string        `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	Rates       RatesConfig       `mapstructure:"rates" yaml:"rates"`
	ExchangeLog ExchangeLogConfig `mapstructure:"exchange_log" yaml:"exchange_log"`
}

// RatesConfig describes the upstream exchange-rate service.
type RatesConfig struct {
	BaseURL              string        `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	BaseCurrency         string        `mapstructure:"base_currency" yaml:"base_currency" validate:"required,len=3"`
	Currencies           []string      `mapstructure:"currencies" yaml:"currencies" validate:"min=1,dive,len=3"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gt=0"`
	MaxIdleConnsPerHost  int           `mapstructure:"max_idle_conns_per_host" yaml:"max_idle_conns_per_host" validate:"gte=0"`
	MaxConcurrentLookups int           `mapstructure:"max_concurrent_lookups" yaml:"max_concurrent_lookups" validate:"gte=0"`
}

// ExchangeLogConfig selects where "exchange" lookups are journaled.
type ExchangeLogConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" validate:"oneof=file sqlite"`
	Path   string `mapstructure:"path" yaml:"path" validate:"required"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8070",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxMessageBytes:    4096,
		RateLimitPerMinute: 0,
		LogLevel:           "info",
		LogFormat:          "console",
		Rates: RatesConfig{
			BaseURL:              "https://api.privatbank.ua",
			BaseCurrency:         "UAH",
			Currencies:           []string{"USD", "EUR"},
			RequestTimeout:       10 * time.Second,
			MaxIdleConnsPerHost:  16,
			MaxConcurrentLookups: 10,
		},
		ExchangeLog: ExchangeLogConfig{
			Driver: "file",
			Path:   "exchange_log.txt",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.Rates.BaseURL != "" {
		c.Rates.BaseURL = other.Rates.BaseURL
	}
	if other.ExchangeLog.Driver != "" {
		c.ExchangeLog.Driver = other.ExchangeLog.Driver
	}
	if other.ExchangeLog.Path != "" {
		c.ExchangeLog.Path = other.ExchangeLog.Path
	}
}
