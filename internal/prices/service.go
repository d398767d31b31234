package prices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when upstream fails and no cached data exists.
var ErrUnavailable = errors.New("price feed unavailable")

// Fetcher is the upstream price source.
type Fetcher interface {
	Fetch(ctx context.Context) (Set, error)
}

// Response is the /api/prices payload. Degraded marks a stale cache serve
// forced by an upstream failure.
type Response struct {
	Cached   bool   `json:"cached"`
	Degraded bool   `json:"degraded,omitempty"`
	At       string `json:"at"`
	Prices   Set    `json:"prices"`
}

// Service keeps a single process-wide cache slot. Within the TTL requests
// are served from cache; on upstream failure any previously cached data is
// preferred over an error, however stale it is.
type Service struct {
	fetcher Fetcher
	ttl     time.Duration
	log     *zerolog.Logger

	mu   sync.RWMutex
	data Set
	ts   time.Time
}

func NewService(fetcher Fetcher, ttl time.Duration, log *zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		ttl:     ttl,
		log:     log,
	}
}

// Current returns the cached quotes when fresh, otherwise fetches upstream.
// Two concurrent misses may both fetch; last write wins, which is fine for
// idempotent price data.
func (s *Service) Current(ctx context.Context) (Response, error) {
	s.mu.RLock()
	data, ts := s.data, s.ts
	s.mu.RUnlock()

	if data != nil && time.Since(ts) < s.ttl {
		return Response{
			Cached: true,
			At:     ts.UTC().Format(time.RFC3339),
			Prices: data,
		}, nil
	}

	fresh, err := s.fetcher.Fetch(ctx)
	if err != nil {
		if data != nil {
			s.log.Warn().Err(err).Msg("price fetch failed, serving stale cache")
			return Response{
				Cached:   true,
				Degraded: true,
				At:       ts.UTC().Format(time.RFC3339),
				Prices:   data,
			}, nil
		}
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	now := time.Now()
	s.mu.Lock()
	s.data, s.ts = fresh, now
	s.mu.Unlock()

	return Response{
		Cached: false,
		At:     now.UTC().Format(time.RFC3339),
		Prices: fresh,
	}, nil
}
