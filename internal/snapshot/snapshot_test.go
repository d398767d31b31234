package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelog/tradelog/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleSnapshot(n int) models.Snapshot {
	items := make([]models.NewsItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.NewsItem{
			ID:          "0123456789abcdef01234567",
			Title:       "Bitcoin climbs",
			URL:         "https://example.com/article",
			Source:      "newsapi",
			SourceName:  "Example Outlet",
			Coins:       []string{"BTC"},
			PublishedAt: strPtr("2024-01-02T03:04:05Z"),
			Excerpt:     "Bitcoin climbed today.",
		})
	}
	return models.NewSnapshot(items)
}

func TestWriteJSONCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "news.json")

	require.NoError(t, WriteJSON(path, sampleSnapshot(2)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 2, snap.Count)
	assert.Len(t, snap.Items, 2)
}

func TestWriteJSONLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")

	require.NoError(t, WriteJSON(path, sampleSnapshot(1)))
	require.NoError(t, WriteJSON(path, sampleSnapshot(3)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "news.json", entries[0].Name())
}

// Concurrent readers must always parse a complete document: either the
// previous snapshot or the new one, never a truncated write.
func TestWriteJSONAtomicUnderConcurrentReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	require.NoError(t, WriteJSON(path, sampleSnapshot(1)))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Errorf("read snapshot: %v", err)
				return
			}
			var snap models.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				t.Errorf("reader observed partial document: %v", err)
				return
			}
			if snap.Count != len(snap.Items) {
				t.Errorf("count %d != items %d", snap.Count, len(snap.Items))
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, WriteJSON(path, sampleSnapshot(i%7+1)))
	}
	close(done)
	wg.Wait()
}

func TestReadMissingFile(t *testing.T) {
	resp := Read(filepath.Join(t.TempDir(), "news.json"))

	assert.Nil(t, resp.At)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestReadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"generated_at": "2024-`), 0644))

	resp := Read(path)

	assert.Nil(t, resp.At)
	assert.Empty(t, resp.Items)
}

func TestReadNormalizesStoredItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	raw := `{
		"generated_at": "2024-03-01T00:00:00Z",
		"count": 2,
		"items": [
			{
				"id": "aaaaaaaaaaaaaaaaaaaaaaaa",
				"title": "Canonical fields",
				"url": "https://example.com/a",
				"source": "newsapi",
				"source_name": "Example",
				"image_url": "https://img.example.com/a.jpg",
				"coins": ["BTC"],
				"published_at": "2024-02-29T12:00:00Z",
				"excerpt": "a"
			},
			{
				"title": "Legacy aliases, no id",
				"image": "https://img.example.com/b.jpg",
				"publishedAt": "2024-02-28T12:00:00Z"
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	resp := Read(path)

	require.NotNil(t, resp.At)
	assert.Equal(t, "2024-03-01T00:00:00Z", *resp.At)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, resp.Count, len(resp.Items))

	first := resp.Items[0]
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaa", first.ID)
	require.NotNil(t, first.Image)
	assert.Equal(t, "https://img.example.com/a.jpg", *first.Image)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, "2024-02-29T12:00:00Z", *first.PublishedAt)

	second := resp.Items[1]
	assert.Len(t, second.ID, 24, "missing id should be synthesized in the 24-hex format")
	require.NotNil(t, second.Image, "legacy image alias should be accepted")
	assert.Equal(t, "https://img.example.com/b.jpg", *second.Image)
	require.NotNil(t, second.PublishedAt, "legacy publishedAt alias should be accepted")
	assert.NotNil(t, second.Coins, "absent coins should normalize to an empty list")
	assert.Empty(t, second.Coins)
}
