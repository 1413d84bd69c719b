package circuitbreaker

import "time"

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name identifies the circuit breaker in logs and metrics.
	Name string

	// Enabled determines whether the circuit breaker is active.
	// When false, New returns nil and Execute passes through directly.
	Enabled bool

	// MaxRequests is the number of trial requests allowed while half-open, 0 means 1.
	MaxRequests uint

	// Interval clears the failure counts while closed, 0 never clears them.
	Interval time.Duration

	// Timeout is the time spent open before probing again, 0 means 60s.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint
}
