package widget

import (
	"context"
	"math/rand/v2"
	"time"
)

// Clock is the widget's only source of time. Tests swap it for a fake so
// the reply pacing delay does not run on real timers.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pacer picks how long the widget waits before showing a bot reply.
type Pacer func() time.Duration

const (
	DefaultMinDelay = 1000 * time.Millisecond
	DefaultMaxDelay = 2000 * time.Millisecond
)

// UniformPacer draws delays uniformly from [minDelay, maxDelay).
func UniformPacer(minDelay, maxDelay time.Duration) Pacer {
	span := maxDelay - minDelay
	if span <= 0 {
		return func() time.Duration { return minDelay }
	}
	return func() time.Duration {
		return minDelay + rand.N(span)
	}
}
