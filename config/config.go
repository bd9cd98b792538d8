// Package config loads chain defaults and ambient options from YAML, a
// .env file and CHAINZ_* environment variables.
//
// Precedence, lowest first: built-in defaults, the YAML file, the .env
// file, the process environment. Nested keys map to upper-case env names
// with dots replaced by underscores, so retry.extra_attempts is read from
// CHAINZ_RETRY_EXTRA_ATTEMPTS.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/zoobzio/chainz"
	"github.com/zoobzio/chainz/sink"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "CHAINZ"

// Config is the full set of loadable options.
type Config struct {
	Retry     RetryConfig     `mapstructure:"retry"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Poll      PollConfig      `mapstructure:"poll"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// RetryConfig holds the defaults used by Retry.
type RetryConfig struct {
	Delay         time.Duration `mapstructure:"delay" validate:"gte=0"`
	ExtraAttempts int           `mapstructure:"extra_attempts" validate:"gte=0,lte=100"`
}

// CacheConfig holds the defaults used by Cache and the store janitor.
// A zero JanitorInterval leaves expired entries in place until overwritten.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" validate:"gt=0"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval" validate:"gte=0"`
}

// PollConfig holds the backoff bounds used by Until.
type PollConfig struct {
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	MaxInterval time.Duration `mapstructure:"max_interval" validate:"gtefield=Interval"`
}

// RateLimitConfig describes a token bucket. A zero PerSecond disables it.
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second" validate:"gte=0"`
	Burst     int     `mapstructure:"burst" validate:"gte=0"`
}

// LogConfig describes the logger behind the Log and trap sinks.
type LogConfig struct {
	Level     string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format    string `mapstructure:"format" validate:"oneof=json console pretty"`
	NoColor   bool   `mapstructure:"no_color"`
	Timestamp bool   `mapstructure:"timestamp"`
}

// ErrInvalid is matched by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Option customizes Load.
type Option func(*loader)

type loader struct {
	configFile string
	envFile    string
}

// WithConfigFile reads a YAML file before the environment. Missing or
// malformed files are an error.
func WithConfigFile(path string) Option {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile loads a .env file into the process environment. Variables
// already set are not overridden.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	s := chainz.DefaultSettings()
	return Config{
		Retry: RetryConfig{
			Delay:         s.RetryDelay,
			ExtraAttempts: s.RetryExtraAttempts,
		},
		Cache: CacheConfig{
			TTL:             s.CacheTTL,
			JanitorInterval: time.Minute,
		},
		Poll: PollConfig{
			Interval:    s.PollInterval,
			MaxInterval: s.MaxPollInterval,
		},
		Log: LogConfig{
			Level:     "info",
			Format:    sink.FormatConsole,
			Timestamp: true,
		},
	}
}

// Load builds a Config from defaults, files and the environment, then
// validates it.
func Load(opts ...Option) (*Config, error) {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}

	v := viper.New()
	setDefaults(v, Default())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", l.envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("retry.delay", d.Retry.Delay)
	v.SetDefault("retry.extra_attempts", d.Retry.ExtraAttempts)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.janitor_interval", d.Cache.JanitorInterval)
	v.SetDefault("poll.interval", d.Poll.Interval)
	v.SetDefault("poll.max_interval", d.Poll.MaxInterval)
	v.SetDefault("rate_limit.per_second", d.RateLimit.PerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.no_color", d.Log.NoColor)
	v.SetDefault("log.timestamp", d.Log.Timestamp)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. Failures wrap ErrInvalid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			msgs := make([]string, 0, len(fields))
			for _, f := range fields {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", f.Namespace(), f.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Settings converts the loaded values to chain settings.
func (c *Config) Settings() chainz.Settings {
	return chainz.Settings{
		RetryDelay:         c.Retry.Delay,
		RetryExtraAttempts: c.Retry.ExtraAttempts,
		CacheTTL:           c.Cache.TTL,
		PollInterval:       c.Poll.Interval,
		MaxPollInterval:    c.Poll.MaxInterval,
	}
}

// Janitor is a store that can purge expired entries in the background,
// such as *store.Store.
type Janitor interface {
	StartJanitor(interval time.Duration)
}

// StartJanitors starts the janitor of every store at Cache.JanitorInterval.
// Nothing is started when the interval is zero.
func (c *Config) StartJanitors(stores ...Janitor) {
	if c.Cache.JanitorInterval <= 0 {
		return
	}
	for _, s := range stores {
		s.StartJanitor(c.Cache.JanitorInterval)
	}
}

// LogOptions converts the log section for sink.NewZerolog.
func (c *Config) LogOptions() sink.Options {
	return sink.Options{
		Level:     c.Log.Level,
		Format:    c.Log.Format,
		NoColor:   c.Log.NoColor,
		Timestamp: c.Log.Timestamp,
	}
}

// Limiter returns a limiter for RateLimit, or nil when rate limiting is off.
func (c *Config) Limiter() *rate.Limiter {
	if c.RateLimit.PerSecond <= 0 {
		return nil
	}
	burst := c.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit.PerSecond), burst)
}
