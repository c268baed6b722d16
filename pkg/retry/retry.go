// Package retry runs operations with bounded exponential backoff, retrying
// only the failure kinds that may succeed on a later attempt.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 5 * time.Second
)

// ErrMaxRetriesExceeded is returned if the loop ends without a result or an error
var ErrMaxRetriesExceeded = apperrors.Failure("Retry.MaxRetriesExceeded", "maximum retry attempts exceeded", nil)

// Config controls the retry policy. The delay before attempt k+1 is
// BaseDelay * 2^(k-1).
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	return c
}

// Option customizes an Executor
type Option func(*Executor)

// WithTimer replaces the wall-clock timer used between attempts
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(e *Executor) {
		e.newTimer = newTimer
	}
}

// Executor retries operations according to Config
type Executor struct {
	cfg      Config
	logger   *zap.Logger
	newTimer func() backoff.Timer
}

// NewExecutor creates an executor; zero config values fall back to defaults
func NewExecutor(cfg Config, logger *zap.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		cfg:    cfg.withDefaults(),
		logger: logger.Named("retry"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective policy
func (e *Executor) Config() Config {
	return e.cfg
}

// Run executes op with retries
func (e *Executor) Run(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := Execute(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Execute runs op until it succeeds, fails with a non-retryable kind,
// the context is cancelled, or the attempts run out. It returns the last
// error observed.
func Execute[T any](ctx context.Context, e *Executor, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		result    T
		succeeded bool
		attempt   int
	)
	logger := e.logger.With(zap.String("operation", name))

	if err := ctx.Err(); err != nil {
		return result, err
	}

	operation := func() error {
		attempt++
		value, err := op(ctx)
		if err == nil {
			result = value
			succeeded = true
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		if !apperrors.Retryable(err) {
			logger.Debug("not retrying",
				zap.Int("attempt", attempt),
				zap.String("kind", string(apperrors.KindOf(err))),
				zap.Error(err),
			)
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		logger.Warn("attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.cfg.MaxAttempts),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	}

	var timer backoff.Timer
	if e.newTimer != nil {
		timer = e.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(operation, e.policy(ctx), notify, timer)
	switch {
	case err != nil:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("operation aborted", zap.Int("attempt", attempt), zap.Error(err))
		} else if apperrors.Retryable(err) {
			logger.Error("retries exhausted", zap.Int("attempts", attempt), zap.Error(err))
		}
		return result, err
	case !succeeded:
		return result, ErrMaxRetriesExceeded
	default:
		return result, nil
	}
}

func (e *Executor) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = e.cfg.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = e.cfg.BaseDelay << uint(e.cfg.MaxAttempts)
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(e.cfg.MaxAttempts-1)), ctx)
}
