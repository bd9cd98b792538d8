package chainz

import (
	"time"

	"github.com/zoobzio/chainz/store"
)

// Settings holds the defaults decorators fall back to when called without
// explicit values.
type Settings struct {
	// RetryDelay is the wait between retry attempts.
	RetryDelay time.Duration
	// RetryExtraAttempts is the number of attempts after the first.
	RetryExtraAttempts int
	// CacheTTL is the time to live used by Cache.
	CacheTTL time.Duration
	// PollInterval is the first wait between Until checks.
	PollInterval time.Duration
	// MaxPollInterval caps the doubling wait between Until checks.
	MaxPollInterval time.Duration
}

// DefaultSettings returns one retry after a second, a 60s cache ttl and
// Until polling between 1ms and 100ms.
func DefaultSettings() Settings {
	return Settings{
		RetryDelay:         time.Second,
		RetryExtraAttempts: 1,
		CacheTTL:           store.DefaultTTL,
		PollInterval:       time.Millisecond,
		MaxPollInterval:    100 * time.Millisecond,
	}
}

// normalize replaces unusable values with defaults.
func (s Settings) normalize() Settings {
	d := DefaultSettings()
	if s.RetryDelay < 0 {
		s.RetryDelay = d.RetryDelay
	}
	if s.RetryExtraAttempts < 0 {
		s.RetryExtraAttempts = 0
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = d.CacheTTL
	}
	if s.PollInterval <= 0 {
		s.PollInterval = d.PollInterval
	}
	if s.MaxPollInterval < s.PollInterval {
		s.MaxPollInterval = s.PollInterval
	}
	return s
}
