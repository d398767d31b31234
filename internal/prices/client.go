package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/tradelog/tradelog/internal/config"
)

// Quote holds the spot price and 24h change for one asset in both fiats.
type Quote struct {
	EUR          float64 `json:"eur"`
	USD          float64 `json:"usd"`
	EUR24hChange float64 `json:"eur_24h_change"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// Set maps asset ids (e.g. "bitcoin") to their quotes.
type Set map[string]Quote

const coinGeckoURL = "https://api.coingecko.com/api/v3/simple/price"

// Client fetches batch spot prices from CoinGecko.
type Client struct {
	client  *resty.Client
	baseURL string
	assets  []string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(cfg.PriceTimeout).
			SetHeader("User-Agent", "tradelog/1.0"),
		baseURL: coinGeckoURL,
		assets:  cfg.PriceAssets,
	}
}

// Fetch requests quotes for the configured asset set in one batch call.
// A partial or failed response is never returned as data.
func (c *Client) Fetch(ctx context.Context) (Set, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":                 strings.Join(c.assets, ","),
			"vs_currencies":       "eur,usd",
			"include_24hr_change": "true",
		}).
		Get(c.baseURL)

	if err != nil {
		return nil, fmt.Errorf("fetch coingecko: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		body := resp.Body()
		if len(body) > 120 {
			body = body[:120]
		}
		return nil, fmt.Errorf("coingecko HTTP %d: %s", resp.StatusCode(), body)
	}

	var data Set
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("parse coingecko response: %w", err)
	}
	return data, nil
}
