package models

import "time"

// Snapshot is the complete document one worker run produces. The whole file
// is replaced atomically; Count always equals len(Items).
type Snapshot struct {
	GeneratedAt *string    `json:"generated_at"`
	Count       int        `json:"count"`
	Items       []NewsItem `json:"items"`
}

// NewSnapshot stamps the item set with the current UTC time and item count.
func NewSnapshot(items []NewsItem) Snapshot {
	if items == nil {
		items = []NewsItem{}
	}
	at := time.Now().UTC().Format(time.RFC3339)
	return Snapshot{
		GeneratedAt: &at,
		Count:       len(items),
		Items:       items,
	}
}
