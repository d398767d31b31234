package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tradelog/tradelog/internal/config"
	"github.com/tradelog/tradelog/internal/models"
	"github.com/tradelog/tradelog/internal/utils"
)

// ErrDisabled marks a provider whose credentials are not configured.
// The worker skips such providers with a warning instead of failing.
var ErrDisabled = errors.New("provider credentials not configured")

// Provider fetches articles from one external news source, already
// normalized into the persisted item shape.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]models.NewsItem, error)
}

const newsAPIURL = "https://newsapi.org/v2/everything"

// NewsAPIProvider pulls recent crypto articles from NewsAPI.org.
type NewsAPIProvider struct {
	client   *resty.Client
	baseURL  string
	apiKey   string
	query    string
	pageSize int
	tagger   *Tagger
}

func NewNewsAPIProvider(cfg *config.Config, tagger *Tagger) *NewsAPIProvider {
	return &NewsAPIProvider{
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "tradelog/1.0"),
		baseURL:  newsAPIURL,
		apiKey:   cfg.NewsAPIKey,
		query:    strings.Join(cfg.NewsQuery, " OR "),
		pageSize: cfg.NewsPageSize,
		tagger:   tagger,
	}
}

func (p *NewsAPIProvider) Name() string {
	return "newsapi"
}

type newsAPIArticle struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type newsAPIResponse struct {
	Articles []newsAPIArticle `json:"articles"`
}

func (p *NewsAPIProvider) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	if p.apiKey == "" {
		return nil, ErrDisabled
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", p.apiKey).
		SetQueryParams(map[string]string{
			"q":        p.query,
			"language": "en",
			"sortBy":   "publishedAt",
			"pageSize": strconv.Itoa(p.pageSize),
		}).
		Get(p.baseURL)

	if err != nil {
		return nil, fmt.Errorf("fetch newsapi: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("newsapi HTTP %d: %s", resp.StatusCode(), truncate(resp.Body(), 200))
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse newsapi response: %w", err)
	}

	items := make([]models.NewsItem, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		items = append(items, p.toItem(a))
	}
	return items, nil
}

func (p *NewsAPIProvider) toItem(a newsAPIArticle) models.NewsItem {
	// Tag against every text field the provider gives us.
	text := strings.Join([]string{a.Title, a.Description, a.Content}, " ")

	key := a.URL
	if key == "" {
		key = a.Title
	}

	return models.NewsItem{
		ID:          utils.ShortHash(key),
		Title:       a.Title,
		URL:         a.URL,
		Source:      p.Name(),
		SourceName:  a.Source.Name,
		ImageURL:    a.URLToImage,
		Coins:       p.tagger.Tag(text),
		PublishedAt: a.PublishedAt,
		Excerpt:     a.Description,
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
