// Package fetch is the boundary to remote media retrieval. A Fetcher
// turns a source link into a local artifact file plus metadata, or
// fails; callers treat it as opaque.
package fetch

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// ErrTimeout reports that a fetch exceeded its bounded deadline.
var ErrTimeout = errors.New("fetch timed out")

// Artifact is the product of one successful fetch.
type Artifact struct {
	Path      string
	Size      int64
	Title     string
	Performer string
	// WorkDir holds the artifact and any scratch files; the caller
	// removes it after delivery.
	WorkDir string
}

type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (*Artifact, error)
}

// Limited wraps a fetcher with a rate limiter and a bounded timeout so
// a hung retrieval cannot stall the worker forever.
type Limited struct {
	inner   Fetcher
	limiter *rate.Limiter
	timeout time.Duration
}

// NewLimited builds a Limited fetcher. A non-positive ratePerSecond
// disables rate limiting; a non-positive timeout disables the deadline.
func NewLimited(inner Fetcher, ratePerSecond float64, burst int, timeout time.Duration) *Limited {
	if burst <= 0 {
		burst = 1
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return &Limited{inner: inner, limiter: limiter, timeout: timeout}
}

// Fetch applies the rate limit and deadline, then delegates.
func (l *Limited) Fetch(ctx context.Context, sourceURL string) (*Artifact, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	artifact, err := l.inner.Fetch(ctx, sourceURL)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrTimeout
	}
	return artifact, err
}
