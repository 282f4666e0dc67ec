package retryx

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy selects how the delay grows between attempts.
type Strategy string

const (
	Linear      Strategy = "linear"
	Exponential Strategy = "exponential"
)

const (
	DefaultMaxDelay = 30 * time.Second
	jitterRatio     = 0.2
)

// ParseStrategy returns Linear for "linear" and Exponential otherwise.
func ParseStrategy(s string) Strategy {
	if Strategy(s) == Linear {
		return Linear
	}
	return Exponential
}

// IsRetryable reports whether a response status is worth retrying.
// Status 0 stands for "no response" (a network failure).
func IsRetryable(status int) bool {
	return status == 0 || status == 408 || status == 429 || status >= 500
}

// Rand yields uniform floats in [0, 1).
type Rand func() float64

// Delay computes the sleep before retry number attempt (zero based).
// The nominal delay gets ±20% uniform jitter and is clamped to maxDelay.
// A nil rnd uses math/rand; maxDelay <= 0 uses DefaultMaxDelay.
func Delay(attempt int, base time.Duration, strategy Strategy, maxDelay time.Duration, rnd Rand) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	if rnd == nil {
		rnd = rand.Float64
	}

	var nominal float64
	switch strategy {
	case Linear:
		nominal = float64(base) * float64(attempt+1)
	default:
		nominal = float64(base) * math.Pow(2, float64(attempt))
	}

	jitter := nominal * jitterRatio * (2*rnd() - 1)
	d := nominal + jitter
	if d < 0 {
		d = 0
	}
	if d >= float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(d)
}

// Policy bundles the knobs used by callers that loop over attempts.
type Policy struct {
	MaxRetries int
	Base       time.Duration
	Strategy   Strategy
	MaxDelay   time.Duration
	Rand       Rand
}

// Delay is the package Delay with the policy's settings.
func (p Policy) Delay(attempt int) time.Duration {
	return Delay(attempt, p.Base, p.Strategy, p.MaxDelay, p.Rand)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
