package news

import (
	"sort"
	"time"

	"github.com/tradelog/tradelog/internal/models"
	"github.com/tradelog/tradelog/internal/utils"
)

// Dedupe drops items whose identity key (URL, falling back to title) has
// been seen already. First occurrence wins. Running Dedupe on its own
// output is a no-op.
func Dedupe(items []models.NewsItem) []models.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		key := it.URL
		if key == "" {
			key = it.Title
		}
		h := utils.Hash(key)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SortByPublished orders items newest first. Items with a missing or
// unparseable timestamp sort as epoch zero, i.e. last. The sort is stable,
// so ties keep their original fetch order.
func SortByPublished(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return publishedUnix(items[i]) > publishedUnix(items[j])
	})
}

// publishedAtFormats are the timestamp shapes providers emit, tried in
// order: full RFC3339, a zoneless variant, and bare dates.
var publishedAtFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func publishedUnix(it models.NewsItem) int64 {
	if it.PublishedAt == nil {
		return 0
	}
	for _, layout := range publishedAtFormats {
		if t, err := time.Parse(layout, *it.PublishedAt); err == nil {
			return t.Unix()
		}
	}
	return 0
}
