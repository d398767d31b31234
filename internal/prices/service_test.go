package prices

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	data  Set
	err   error
}

func (s *stubFetcher) Fetch(context.Context) (Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.data, s.err
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubFetcher) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

func sampleSet() Set {
	return Set{
		"bitcoin":  {EUR: 60000, USD: 65000, EUR24hChange: 1.2, USD24hChange: 1.1},
		"ethereum": {EUR: 3000, USD: 3250, EUR24hChange: -0.4, USD24hChange: -0.5},
	}
}

func TestCurrentFetchesOnColdStart(t *testing.T) {
	fetcher := &stubFetcher{data: sampleSet()}
	svc := NewService(fetcher, time.Minute, testLogger())

	resp, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.False(t, resp.Degraded)
	assert.Equal(t, sampleSet(), resp.Prices)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestCurrentServesFromCacheWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{data: sampleSet()}
	svc := NewService(fetcher, time.Minute, testLogger())

	_, err := svc.Current(context.Background())
	require.NoError(t, err)

	resp, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.Cached)
	assert.Equal(t, 1, fetcher.callCount(), "fresh cache must not trigger an upstream call")
}

func TestCurrentRefetchesAfterTTL(t *testing.T) {
	fetcher := &stubFetcher{data: sampleSet()}
	svc := NewService(fetcher, 20*time.Millisecond, testLogger())

	_, err := svc.Current(context.Background())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	resp, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestCurrentDegradedFallback(t *testing.T) {
	fetcher := &stubFetcher{data: sampleSet()}
	svc := NewService(fetcher, 20*time.Millisecond, testLogger())

	_, err := svc.Current(context.Background())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	fetcher.fail(errors.New("upstream down"))

	resp, err := svc.Current(context.Background())
	require.NoError(t, err, "stale cache is preferred over an error")

	assert.True(t, resp.Cached)
	assert.True(t, resp.Degraded)
	assert.Equal(t, sampleSet(), resp.Prices)
}

func TestCurrentColdFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	svc := NewService(fetcher, time.Minute, testLogger())

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
