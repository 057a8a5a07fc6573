// Package ratelimit implements fixed-window request counting per key.
//
// A window opens on the first hit for a key and lasts for the configured
// duration. Up to max hits are allowed inside it; once it has passed, the
// next hit opens a fresh window.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
)

// Store keeps the (count, reset time) pair for every key.
type Store interface {
	// Hit counts one request for key and reports whether it fits in the window.
	Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (allowed bool, resetAt time.Time, err error)
	// ResetAt returns the end of the current window for key, if one is open.
	ResetAt(ctx context.Context, key string, now time.Time) (resetAt time.Time, ok bool, err error)
}

// LimitExceededError is returned by Check when a key is over its limit.
type LimitExceededError struct {
	Limiter    string
	RetryAfter time.Duration
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit reached, retry in %s", e.Limiter, e.RetryAfter.Round(time.Second))
}

// RetryAfterSeconds rounds the wait up to whole seconds.
func (e *LimitExceededError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// IsLimitExceeded reports whether err, or the error it wraps, is a LimitExceededError.
func IsLimitExceeded(err error) (*LimitExceededError, bool) {
	var le *LimitExceededError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

type Limiter struct {
	name   string
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
}

func New(name string, store Store, max int, window time.Duration) *Limiter {
	return &Limiter{
		name:   name,
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// FormSubmissions allows 2 submissions per 5 minutes.
func FormSubmissions(store Store) *Limiter {
	return New("form-submission", store, 2, 5*time.Minute)
}

// FileUploads allows 5 uploads per minute.
func FileUploads(store Store) *Limiter {
	return New("file-upload", store, 5, time.Minute)
}

func (l *Limiter) Name() string { return l.name }

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	allowed, _, err := l.store.Hit(ctx, l.key(key), l.max, l.window, l.now())
	if err != nil {
		return false, errors.Wrapf(err, "%s limiter", l.name)
	}
	return allowed, nil
}

// TimeUntilReset returns how long until the key's window closes, or zero
// when no window is open.
func (l *Limiter) TimeUntilReset(ctx context.Context, key string) (time.Duration, error) {
	now := l.now()
	resetAt, ok, err := l.store.ResetAt(ctx, l.key(key), now)
	if err != nil {
		return 0, errors.Wrapf(err, "%s limiter", l.name)
	}
	if !ok || !resetAt.After(now) {
		return 0, nil
	}
	return resetAt.Sub(now), nil
}

// Check is Allow that reports rejection as a *LimitExceededError.
func (l *Limiter) Check(ctx context.Context, key string) error {
	allowed, resetAt, err := l.store.Hit(ctx, l.key(key), l.max, l.window, l.now())
	if err != nil {
		return errors.Wrapf(err, "%s limiter", l.name)
	}
	if allowed {
		return nil
	}
	wait := resetAt.Sub(l.now())
	if wait < 0 {
		wait = 0
	}
	return &LimitExceededError{Limiter: l.name, RetryAfter: wait}
}

func (l *Limiter) key(key string) string {
	return l.name + ":" + key
}
