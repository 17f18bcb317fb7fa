package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/uriel/internal/catalog"
	"github.com/pders01/uriel/internal/config"
	"github.com/pders01/uriel/internal/debuglog"
	"github.com/pders01/uriel/internal/validation"
)

const (
	mediaPath       = "/api/media"
	maxErrorBody    = 4 << 10
	requestIDHeader = "X-Request-ID"
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the remote media catalog service.
type Client struct {
	baseURL   *url.URL
	userAgent string
	client    *http.Client
}

var _ catalog.Remote = (*Client)(nil)

// NewClient builds a client for the configured base URL.
func NewClient(cfg *config.Config) (*Client, error) {
	raw, err := validation.NewServiceURLValidator(cfg.API.AllowPrivate).ValidateAndNormalize(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}

	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   base,
		userAgent: cfg.API.UserAgent,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches the catalog for params. Failures come back wrapped in
// catalog.ErrFetchFailed together with an empty, non-nil slice.
func (c *Client) List(ctx context.Context, params url.Values) ([]catalog.MediaItem, error) {
	var items []catalog.MediaItem
	if err := c.do(ctx, http.MethodGet, mediaPath, params, nil, &items); err != nil {
		return []catalog.MediaItem{}, fmt.Errorf("%w: %w", catalog.ErrFetchFailed, err)
	}
	if items == nil {
		items = []catalog.MediaItem{}
	}
	return items, nil
}

// Create submits one draft. The response body is not needed.
func (c *Client) Create(ctx context.Context, draft catalog.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, mediaPath, nil, draft, nil); err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrCreateFailed, err)
	}
	return nil
}

// IncrementDownload asks the service to count one download of id and
// returns its updated counter.
func (c *Client) IncrementDownload(ctx context.Context, id catalog.ItemID) (catalog.DownloadResult, error) {
	var res catalog.DownloadResult
	path := mediaPath + "/" + url.PathEscape(id.String()) + "/download"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &res); err != nil {
		return catalog.DownloadResult{}, fmt.Errorf("%w: %w", catalog.ErrDownloadFailed, err)
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	// path arrives escaped; keep both forms so ids containing reserved
	// characters are not escaped twice.
	u := *c.baseURL
	rawPath := strings.TrimRight(u.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return fmt.Errorf("building request path: %w", err)
	}
	u.Path, u.RawPath = unescaped, rawPath
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	log := debuglog.WithFields(map[string]interface{}{
		"method":     method,
		"url":        u.String(),
		"request_id": reqID,
	})
	log.Debugf("catalog request")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warnf("catalog service returned status %d", resp.StatusCode)
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
