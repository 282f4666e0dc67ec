package retryx

import (
	"context"
	"testing"
	"time"
)

func fixed(v float64) Rand { return func() float64 { return v } }

func TestIsRetryable(t *testing.T) {
	for s := 0; s < 700; s++ {
		want := s == 0 || s == 408 || s == 429 || s >= 500
		if got := IsRetryable(s); got != want {
			t.Errorf("IsRetryable(%d) = %v, want %v", s, got, want)
		}
	}
}

func TestDelay_Exponential(t *testing.T) {
	base := time.Second
	for attempt := 0; attempt < 4; attempt++ {
		nominal := base << attempt
		lo := time.Duration(float64(nominal)*0.8) - time.Nanosecond
		hi := time.Duration(float64(nominal)*1.2) + time.Nanosecond
		for _, r := range []float64{0, 0.25, 0.5, 0.999} {
			d := Delay(attempt, base, Exponential, time.Minute, fixed(r))
			if d < lo || d > hi {
				t.Errorf("attempt %d rnd %.3f: %v not in [%v, %v]", attempt, r, d, lo, hi)
			}
		}
	}
}

func TestDelay_Linear(t *testing.T) {
	base := 500 * time.Millisecond
	for attempt := 0; attempt < 5; attempt++ {
		nominal := base * time.Duration(attempt+1)
		if got := Delay(attempt, base, Linear, time.Minute, fixed(0.5)); got != nominal {
			t.Errorf("attempt %d: got %v, want %v with zero jitter", attempt, got, nominal)
		}
		lo := time.Duration(float64(nominal)*0.8) - time.Nanosecond
		if got := Delay(attempt, base, Linear, time.Minute, fixed(0)); got < lo || got >= nominal {
			t.Errorf("attempt %d: got %v, want near lower bound %v", attempt, got, lo)
		}
	}
}

func TestDelay_ClampedToMax(t *testing.T) {
	got := Delay(10, time.Second, Exponential, 30*time.Second, fixed(0.999))
	if got != 30*time.Second {
		t.Errorf("got %v, want clamp at 30s", got)
	}
	if got := Delay(20, time.Second, Exponential, 0, fixed(0.5)); got != DefaultMaxDelay {
		t.Errorf("zero maxDelay: got %v, want %v", got, DefaultMaxDelay)
	}
}

func TestParseStrategy(t *testing.T) {
	if ParseStrategy("linear") != Linear {
		t.Error("linear not parsed")
	}
	if ParseStrategy("anything") != Exponential {
		t.Error("default should be exponential")
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); err == nil {
		t.Error("expected context error")
	}
}
