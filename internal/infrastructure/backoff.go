package infrastructure

import (
	"github.com/architeacher/catalog/internal/config"
	"github.com/cenkalti/backoff/v5"
)

// NewBackOff builds the exponential schedule shared by start-up retries.
func NewBackOff(cfg config.Backoff) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.BaseDelay
	b.Multiplier = cfg.Multiplier
	b.RandomizationFactor = cfg.Jitter
	b.MaxInterval = cfg.MaxDelay

	return b
}
