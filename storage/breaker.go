package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Store is the preference contract the currency engine consumes.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("storage: circuit open")

// BreakerSettings tunes a Breaker. Zero values pick the defaults.
type BreakerSettings struct {
	Name string
	// FailureThreshold consecutive failures open the circuit. Default 5.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open. Default 30s.
	OpenTimeout time.Duration
	// Interval resets the failure counts while closed. Default 1m.
	Interval time.Duration
	Logger   logrus.FieldLogger
}

// Breaker guards a remote store with a circuit breaker so an unreachable
// backend fails fast instead of holding every resolution for a timeout.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

var _ Store = (*Breaker)(nil)

// NewBreaker wraps next.
func NewBreaker(next Store, settings BreakerSettings) *Breaker {
	if settings.Name == "" {
		settings.Name = "preference-store"
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	if settings.Interval <= 0 {
		settings.Interval = time.Minute
	}
	logger := settings.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	threshold := settings.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("preference store breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// The caller giving up says nothing about the backend.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{next: next, cb: cb}
}

// State reports the breaker state ("closed", "half-open", "open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}

type lookup struct {
	value string
	found bool
}

func (b *Breaker) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		value, found, err := b.next.Get(ctx, key)
		return lookup{value: value, found: found}, err
	})
	if err != nil {
		return "", false, translateBreakerErr(err)
	}
	result := res.(lookup)
	return result.value, result.found, nil
}

func (b *Breaker) Set(ctx context.Context, key, value string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return translateBreakerErr(err)
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return translateBreakerErr(err)
}

func translateBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}
