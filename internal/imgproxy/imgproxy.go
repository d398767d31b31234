package imgproxy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/tradelog/tradelog/internal/config"
)

const (
	browserUA   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124 Safari/537.36"
	imageAccept = "image/avif,image/webp,image/*,*/*;q=0.8"
)

// errNotUsable marks an upstream response that must not be cached or served:
// wrong status, non-image content type, or a near-empty body.
var errNotUsable = errors.New("upstream response not usable")

type entry struct {
	ts          time.Time
	buf         []byte
	contentType string
}

// Result is what a proxy request resolves to. Status is one of 200 (bytes),
// 400 (invalid or blocked input), 204 (unrecoverable failure, empty body).
type Result struct {
	Status       int
	Body         []byte
	ContentType  string
	CacheControl string
}

// fetchFunc performs one upstream attempt. A non-empty referer is sent as
// the Referer header; an empty one omits it.
type fetchFunc func(ctx context.Context, target, referer string) ([]byte, string, error)

// Service proxies remote news images through an allowlist with a two-tier
// in-memory cache: entries younger than the fresh TTL are served directly,
// entries within the longer stale window are served only when upstream
// fetching fails. Entries are superseded in place and never evicted.
type Service struct {
	fetch    fetchFunc
	allowed  []string
	freshTTL time.Duration
	staleTTL time.Duration
	log      *zerolog.Logger

	mu    sync.RWMutex
	cache map[string]entry
}

func NewService(cfg *config.Config, log *zerolog.Logger) *Service {
	client := resty.New().
		SetTimeout(cfg.ImageFetchTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	s := &Service{
		allowed:  cfg.ImageAllowedDomains,
		freshTTL: cfg.ImageFreshTTL,
		staleTTL: cfg.ImageStaleTTL,
		log:      log,
		cache:    make(map[string]entry),
	}
	s.fetch = newRestyFetch(client, cfg.ImageMinBytes)
	return s
}

func newRestyFetch(client *resty.Client, minBytes int) fetchFunc {
	return func(ctx context.Context, target, referer string) ([]byte, string, error) {
		req := client.R().
			SetContext(ctx).
			SetHeader("User-Agent", browserUA).
			SetHeader("Accept", imageAccept)
		if referer != "" {
			req.SetHeader("Referer", referer)
		}

		resp, err := req.Get(target)
		if err != nil {
			return nil, "", fmt.Errorf("fetch image: %w", err)
		}
		if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
			return nil, "", fmt.Errorf("%w: HTTP %d", errNotUsable, resp.StatusCode())
		}
		contentType := resp.Header().Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, "", fmt.Errorf("%w: content type %q", errNotUsable, contentType)
		}
		buf := resp.Body()
		if len(buf) < minBytes {
			return nil, "", fmt.Errorf("%w: body too small (%d bytes)", errNotUsable, len(buf))
		}
		return buf, contentType, nil
	}
}

// Get resolves one proxy request per the documented sequence: validate,
// allowlist, fresh cache, upstream with referer retry, stale fallback,
// empty response. It never returns an error status other than 400/204.
func (s *Service) Get(ctx context.Context, raw string) (res Result) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{Status: 400}
	}

	// Upgrade to https first so cached entries share one key and the
	// browser never sees mixed content.
	target := upgradeScheme(raw)

	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return Result{Status: 400}
	}

	if !s.allowedHost(u.Hostname()) {
		s.log.Warn().Str("host", u.Hostname()).Msg("blocked image host")
		return Result{Status: 400}
	}

	// Anything unexpected below this point degrades to the stale-or-empty
	// path instead of surfacing a 500.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("url", target).Msg("image proxy panic")
			res = s.staleOrEmpty(target)
		}
	}()

	if hit, ok := s.lookup(target); ok && time.Since(hit.ts) < s.freshTTL {
		return Result{
			Status:       200,
			Body:         hit.buf,
			ContentType:  hit.contentType,
			CacheControl: "public, max-age=300",
		}
	}

	// Some hosts reject cross-origin referers, others require one from
	// their own origin. Try with the target origin first, then without.
	referer := u.Scheme + "://" + u.Host
	buf, contentType, err := s.fetch(ctx, target, referer)
	if err != nil {
		buf, contentType, err = s.fetch(ctx, target, "")
	}
	if err != nil {
		s.log.Debug().Err(err).Str("url", target).Msg("image fetch failed")
		return s.staleOrEmpty(target)
	}

	// Stamp at store time so the TTLs count from when the bytes actually
	// arrived, not from before up to two fetch attempts.
	s.store(target, entry{ts: time.Now(), buf: buf, contentType: contentType})

	return Result{
		Status:       200,
		Body:         buf,
		ContentType:  contentType,
		CacheControl: "public, max-age=300",
	}
}

// staleOrEmpty serves a cache entry still inside the stale window with a
// short client cache lifetime, or an empty 204 so the client hides the image.
func (s *Service) staleOrEmpty(target string) Result {
	if hit, ok := s.lookup(target); ok && time.Since(hit.ts) < s.staleTTL {
		return Result{
			Status:       200,
			Body:         hit.buf,
			ContentType:  hit.contentType,
			CacheControl: "public, max-age=60",
		}
	}
	return Result{Status: 204}
}

// allowedHost permits a host that equals, or is a subdomain of, one of the
// configured base domains. Suffix matching is constrained to this fixed
// base-domain set, so the proxy cannot be pointed at arbitrary hosts.
func (s *Service) allowedHost(host string) bool {
	for _, d := range s.allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (s *Service) lookup(key string) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache[key]
	return e, ok
}

func (s *Service) store(key string, e entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = e
}

func upgradeScheme(raw string) string {
	if strings.HasPrefix(raw, "http:") {
		return "https:" + strings.TrimPrefix(raw, "http:")
	}
	return raw
}
