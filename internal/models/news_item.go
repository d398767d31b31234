package models

// NewsItem is the persisted article record written by the ingestion worker.
// The id is a stable 24-hex-char hash of the article URL (or title when the
// URL is absent), so repeated runs produce the same id for the same article.
type NewsItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	SourceName  string   `json:"source_name"`
	ImageURL    *string  `json:"image_url"`
	Coins       []string `json:"coins"`
	PublishedAt *string  `json:"published_at"`
	Excerpt     string   `json:"excerpt"`
}
