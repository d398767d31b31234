package news

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelog/tradelog/internal/models"
	"github.com/tradelog/tradelog/internal/snapshot"
)

type stubProvider struct {
	name  string
	items []models.NewsItem
	err   error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(context.Context) ([]models.NewsItem, error) {
	return s.items, s.err
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

func TestWorkerWritesSortedDedupedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")

	older := models.NewsItem{URL: "https://example.com/a", Title: "older", PublishedAt: strPtr("2024-01-01T00:00:00Z")}
	newer := models.NewsItem{URL: "https://example.com/b", Title: "newer", PublishedAt: strPtr("2024-01-03T00:00:00Z")}
	dup := models.NewsItem{URL: "https://example.com/a", Title: "dup of older"}

	w := NewWorker(path, testLogger(),
		&stubProvider{name: "one", items: []models.NewsItem{older, dup}},
		&stubProvider{name: "two", items: []models.NewsItem{newer}},
	)

	require.NoError(t, w.Run(context.Background()))

	resp := snapshot.Read(path)
	require.NotNil(t, resp.At)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "newer", resp.Items[0].Title)
	assert.Equal(t, "older", resp.Items[1].Title)
}

func TestWorkerSurvivesProviderFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")

	item := models.NewsItem{URL: "https://example.com/a", Title: "ok"}
	w := NewWorker(path, testLogger(),
		&stubProvider{name: "down", err: errors.New("boom")},
		&stubProvider{name: "disabled", err: ErrDisabled},
		&stubProvider{name: "up", items: []models.NewsItem{item}},
	)

	require.NoError(t, w.Run(context.Background()))

	resp := snapshot.Read(path)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "ok", resp.Items[0].Title)
}

func TestWorkerWritesEmptySnapshotWhenAllProvidersFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")

	w := NewWorker(path, testLogger(), &stubProvider{name: "down", err: errors.New("boom")})
	require.NoError(t, w.Run(context.Background()))

	resp := snapshot.Read(path)
	assert.NotNil(t, resp.At, "a cycle with no articles still stamps generated_at")
	assert.Equal(t, 0, resp.Count)
}
