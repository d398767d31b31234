package models

// ClientNewsItem is the API-facing article shape served to the dashboard.
// It differs from the persisted NewsItem in two field spellings: image
// (not image_url) and publishedAt (not published_at).
type ClientNewsItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	SourceName  string   `json:"source_name"`
	Image       *string  `json:"image"`
	Coins       []string `json:"coins"`
	PublishedAt *string  `json:"publishedAt"`
	Excerpt     string   `json:"excerpt"`
}

// NewsResponse is the /api/news payload. It is always served with HTTP 200;
// when something went wrong server-side the Error marker is set and the item
// list is empty, so the client renders an empty state rather than an error.
type NewsResponse struct {
	At      *string          `json:"at"`
	Count   int              `json:"count"`
	Items   []ClientNewsItem `json:"items"`
	Error   string           `json:"error,omitempty"`
	Message string           `json:"message,omitempty"`
}
