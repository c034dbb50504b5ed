package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/clausewise/internal/cache"
	"github.com/temoto/robotstxt"
)

const (
	robotsTTL      = time.Hour
	robotsMaxBytes = 512 << 10
)

// RobotsChecker answers robots.txt questions for document URLs.
// Raw robots.txt bodies are cached per host; a missing or unreachable file allows everything.
type RobotsChecker struct {
	store      cache.Cache
	httpClient *http.Client
	agent      string
}

// NewRobotsChecker creates a checker. store may be nil, in which case every call fetches.
func NewRobotsChecker(userAgent string, client *http.Client, store cache.Cache) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		store:      store,
		httpClient: client,
		agent:      NormalizeUserAgent(userAgent),
	}
}

// Allowed reports whether rawURL may be fetched
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.robotsFor(ctx, parsed)
	if err != nil {
		// Unreachable robots.txt is treated as permissive
		return true, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, r.agent), nil
}

func (r *RobotsChecker) robotsFor(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	key := cache.Key("robots", target.Scheme+"://"+target.Host)

	if r.store != nil {
		if body, ok := r.store.Get(key); ok {
			return robotstxt.FromBytes(body)
		}
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	// 4xx means "no rules", 5xx means "disallow all" (robotstxt semantics)
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	if r.store != nil && resp.StatusCode == http.StatusOK {
		_ = r.store.Set(key, body, robotsTTL)
	}
	return data, nil
}

// NormalizeUserAgent reduces a user agent to its product token ("ClauseWise/0.1 (...)" -> "ClauseWise")
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
