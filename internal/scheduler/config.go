package scheduler

import (
	"errors"
	"time"

	"github.com/smallbiznis/wardboard/internal/config"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

// Config controls how often and how long the auto-reset check runs.
type Config struct {
	PollInterval time.Duration
	Timeout      time.Duration
	LockTTL      time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: time.Minute,
		Timeout:      30 * time.Second,
		LockTTL:      time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{PollInterval: cfg.SchedulerPollInterval}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}
