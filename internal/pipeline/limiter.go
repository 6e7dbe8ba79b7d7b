package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces the item loop. Wait is called before every item after the first.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewFixedDelay spaces calls at least d apart. d <= 0 disables pacing.
func NewFixedDelay(d time.Duration) Limiter {
	if d <= 0 {
		return NoDelay{}
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// NoDelay never waits but still honours cancellation.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context) error { return ctx.Err() }
