package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ppiankov/clausewise/internal/cache"
	"github.com/ppiankov/clausewise/internal/model"
	"github.com/ppiankov/clausewise/internal/util"
	"github.com/ppiankov/clausewise/internal/worker"
)

var (
	// ErrRobotsDisallowed is returned when robots.txt forbids the URL
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

	// ErrTooLarge is returned when a response body or a decoded document
	// exceeds its limit
	ErrTooLarge = errors.New("document exceeds size limit")
)

const fetchMaxAttempts = 3

// fetchSleep waits between retries; tests replace it to avoid real delays
var fetchSleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// statusError carries a non-2xx response status
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "unexpected status: " + e.status
}

// Fetcher downloads documents over HTTP
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots.txt is not consulted
	limiter    *worker.Limiter
}

// NewFetcher creates a fetcher from HTTP settings. limiter throttles per host
// and store caches robots.txt; both may be nil.
func NewFetcher(cfg model.HTTPConfig, limiter *worker.Limiter, store cache.Cache) *Fetcher {
	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		limiter:    limiter,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, client, store)
	}
	return f
}

// FetchResult holds a downloaded document body
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
}

// Fetch retrieves rawURL, honoring robots.txt, the host rate limit and the size limit
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	host, err := worker.HostKey(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
		}
	}

	var result *FetchResult
	for attempt := 0; attempt < fetchMaxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx, host); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}

		result, err = f.fetchOnce(ctx, rawURL)
		if err == nil || !retryable(ctx, err) || attempt == fetchMaxAttempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		if serr := fetchSleep(ctx, backoff); serr != nil {
			return nil, fmt.Errorf("fetch: %w", serr)
		}
	}
	return result, err
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.maxBytes)
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// retryable reports transient failures: 5xx, 429 and timeouts or refused connections
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

// formatFromContentType picks a decoder from the response type, falling
// back to the URL's extension for generic types
func formatFromContentType(contentType, finalURL string) (model.SourceFormat, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return model.FormatHTML, nil
	case "application/pdf":
		return model.FormatPDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return model.FormatDOCX, nil
	case "text/plain":
		return model.FormatText, nil
	case "text/markdown":
		return model.FormatMarkdown, nil
	}

	if parsed, err := url.Parse(finalURL); err == nil {
		if format, err := FormatOf(path.Base(parsed.Path)); err == nil {
			return format, nil
		}
	}

	// Most servers that omit a useful type are serving a web page
	if mediaType == "" {
		return model.FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
}
