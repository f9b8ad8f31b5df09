package tasks

import (
	"time"

	"github.com/mrlokans/journal/internal/config"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 1
	Workers int

	// MaxRetries is the maximum attempts for an export before it is marked failed. Default: 3
	MaxRetries int

	// RetryDelay is the backoff duration between retries. Default: 1m
	RetryDelay time.Duration

	// TaskTimeout is the timeout for a single task execution. Default: 5m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long to keep completed tasks. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// ConfigFrom converts application settings, keeping defaults for unset values.
func ConfigFrom(settings config.Tasks) Config {
	cfg := DefaultConfig()
	if settings.Workers > 0 {
		cfg.Workers = settings.Workers
	}
	if settings.MaxRetries > 0 {
		cfg.MaxRetries = settings.MaxRetries
	}
	if settings.RetryDelay > 0 {
		cfg.RetryDelay = settings.RetryDelay
	}
	if settings.TaskTimeout > 0 {
		cfg.TaskTimeout = settings.TaskTimeout
	}
	if settings.ReleaseAfter > 0 {
		cfg.ReleaseAfter = settings.ReleaseAfter
	}
	if settings.CleanupInterval > 0 {
		cfg.CleanupInterval = settings.CleanupInterval
	}
	if settings.RetentionDuration > 0 {
		cfg.RetentionDuration = settings.RetentionDuration
	}
	return cfg
}
