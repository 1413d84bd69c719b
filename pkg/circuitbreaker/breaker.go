package circuitbreaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
)

type (
	// CircuitBreaker wraps gobreaker to guard calls into a flaky dependency.
	CircuitBreaker[T any] struct {
		cb *gobreaker.CircuitBreaker[T]
	}

	Option func(*options)

	// StateChangeHook observes transitions, e.g. to log them.
	StateChangeHook func(name, from, to string)

	options struct {
		ignored  []error
		onChange StateChangeHook
	}
)

// WithIgnoredErrors lists errors that describe the request rather than the
// dependency, such as a missing row. They never count as failures.
func WithIgnoredErrors(errs ...error) Option {
	return func(o *options) {
		o.ignored = append(o.ignored, errs...)
	}
}

func WithStateChangeHook(hook StateChangeHook) Option {
	return func(o *options) {
		o.onChange = hook
	}
}

// New creates a circuit breaker, or nil when cfg disables it.
func New[T any](cfg Config, opts ...Option) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.MaxRequests),
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(max(cfg.FailureThreshold, 1))
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}

			for _, ignored := range o.ignored {
				if errors.Is(err, ignored) {
					return true
				}
			}

			return false
		},
	}

	if o.onChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			o.onChange(name, from.String(), to.String())
		}
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State returns closed, half-open or open.
func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}

// Execute runs fn through the breaker, or directly when cb is nil.
// It fails fast with ErrCircuitOpen or ErrTooManyRequests while the
// dependency is considered unhealthy.
func Execute[T any](ctx context.Context, cb *CircuitBreaker[T], fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if cb == nil {
		return fn(ctx)
	}

	result, err := cb.cb.Execute(func() (T, error) {
		return fn(ctx)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return zero, ErrTooManyRequests
	case err != nil:
		return result, err
	}

	return result, nil
}
