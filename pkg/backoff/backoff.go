// Package backoff wraps retry-go with the retry settings shared by the
// webhook notifier and the LLM providers.
package backoff

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/pkg/errors"
)

// Config controls retry behaviour. Delays are in milliseconds.
type Config struct {
	Attempts     int    `mapstructure:"attempts" json:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay" json:"initial_delay"`
	MaxDelay     int    `mapstructure:"max_delay" json:"max_delay"`
	BackoffType  string `mapstructure:"backoff_type" json:"backoff_type"` // fixed or exponential
}

// DefaultConfig retries three times with exponential backoff starting at one second
func DefaultConfig() Config {
	return Config{
		Attempts:     3,
		InitialDelay: 1000,
		MaxDelay:     10000,
		BackoffType:  "exponential",
	}
}

// Do runs operation until it succeeds, returns an error retryable rejects,
// the attempts are exhausted or ctx is done. Attempts of zero runs operation once.
func Do(ctx context.Context, cfg Config, what string, retryable func(error) bool, operation func() error) error {
	if cfg.Attempts <= 1 {
		return operation()
	}

	var delayType retry.DelayTypeFunc
	switch cfg.BackoffType {
	case "fixed":
		delayType = retry.FixedDelay
	case "exponential":
		fallthrough
	default:
		delayType = retry.BackOffDelay
	}

	opts := []retry.Option{
		retry.Attempts(uint(cfg.Attempts)),
		retry.Delay(time.Duration(cfg.InitialDelay) * time.Millisecond),
		retry.DelayType(delayType),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).WithField("max_attempts", cfg.Attempts).Warnf("retrying %s", what)
		}),
	}
	if cfg.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(time.Duration(cfg.MaxDelay)*time.Millisecond))
	}
	if retryable != nil {
		opts = append(opts, retry.RetryIf(retryable))
	}

	attempts := 0
	err := retry.Do(func() error {
		attempts++
		return operation()
	}, opts...)
	if err != nil {
		return errors.Wrapf(err, "%s failed after %d attempt(s)", what, attempts)
	}
	return nil
}
