package snapshot

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/tradelog/tradelog/internal/models"
)

// rawItem accepts both the persisted field spellings and the legacy client
// aliases, so snapshots written by older worker versions still load.
type rawItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Source        string   `json:"source"`
	SourceName    string   `json:"source_name"`
	ImageURL      *string  `json:"image_url"`
	ImageAlias    *string  `json:"image"`
	Coins         []string `json:"coins"`
	PublishedAt   *string  `json:"published_at"`
	PublishedAtCC *string  `json:"publishedAt"`
	Excerpt       string   `json:"excerpt"`
}

type rawSnapshot struct {
	GeneratedAt *string   `json:"generated_at"`
	Items       []rawItem `json:"items"`
}

// Empty returns the snapshot served when no data exists yet.
func Empty() models.NewsResponse {
	return models.NewsResponse{At: nil, Count: 0, Items: []models.ClientNewsItem{}}
}

// Read loads the snapshot file at path and normalizes it into the client
// shape. A missing, unreadable, or malformed file yields the empty snapshot
// rather than an error: the worker may simply not have run yet.
func Read(path string) models.NewsResponse {
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty()
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Empty()
	}

	items := make([]models.ClientNewsItem, 0, len(raw.Items))
	for _, it := range raw.Items {
		items = append(items, normalize(it))
	}

	return models.NewsResponse{
		At:    raw.GeneratedAt,
		Count: len(items),
		Items: items,
	}
}

// normalize fills defaults and unifies field spellings for a stored record.
func normalize(it rawItem) models.ClientNewsItem {
	id := it.ID
	if id == "" {
		id = randomID()
	}

	image := it.ImageURL
	if image == nil {
		image = it.ImageAlias
	}

	published := it.PublishedAt
	if published == nil {
		published = it.PublishedAtCC
	}

	coins := it.Coins
	if coins == nil {
		coins = []string{}
	}

	return models.ClientNewsItem{
		ID:          id,
		Title:       it.Title,
		URL:         it.URL,
		Source:      it.Source,
		SourceName:  it.SourceName,
		Image:       image,
		Coins:       coins,
		PublishedAt: published,
		Excerpt:     it.Excerpt,
	}
}

// randomID synthesizes an id for stored records that lack one. It matches
// the 24-hex-char format of worker-generated ids but is not stable.
func randomID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "000000000000000000000000"
	}
	return hex.EncodeToString(b[:])
}
