package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ajg/form"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/storeops/storectl/internal/log"
)

// RequestIDHeader carries a fresh UUID on every request so backend logs can
// be matched to CLI logs.
const RequestIDHeader = "X-Request-ID"

// API is the slice of the admin backend the CLI talks to.
type API interface {
	// List fetches the raw JSON body of a collection endpoint.
	List(ctx context.Context, path string, query map[string]string) ([]byte, error)
	// PostForm submits v as an urlencoded form.
	PostForm(ctx context.Context, path string, v any) error
	Delete(ctx context.Context, path string) error
}

// Settings configures a Client.
type Settings struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is the resty backed API implementation. Requests are never retried:
// a failed list load leaves the page empty and the user decides to reload.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

// NewClient validates s and builds a Client.
func NewClient(s Settings, logger *slog.Logger) (*Client, error) {
	baseURL, err := validateBaseURL(s.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(s.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if s.Token != "" {
		rc.SetAuthToken(s.Token)
	}

	c := &Client{rc: rc, logger: logger}
	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader(RequestIDHeader, uuid.NewString())
		return nil
	})
	rc.OnAfterResponse(c.logResponse)
	rc.OnError(c.logError)

	return c, nil
}

func validateBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("backend base URL is not configured")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid backend base URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("backend base URL must be absolute, got: %s", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("backend base URL scheme must be http or https, got: %s", parsed.Scheme)
	}
	return strings.TrimRight(raw, "/"), nil
}

func (c *Client) List(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) PostForm(ctx context.Context, path string, v any) error {
	values, err := form.EncodeToValues(v)
	if err != nil {
		return fmt.Errorf("encoding form for %s: %w", path, err)
	}
	resp, err := c.rc.R().
		SetContext(ctx).
		SetFormDataFromValues(values).
		Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return checkResponse(resp)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		Delete(path)
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return &StatusError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}
}

func (c *Client) logResponse(_ *resty.Client, resp *resty.Response) error {
	ctx := resp.Request.Context()
	if !c.logger.Enabled(ctx, log.LevelTrace) {
		return nil
	}

	attrs := []slog.Attr{
		slog.String("method", resp.Request.Method),
		slog.String("url", resp.Request.URL),
		slog.String("request_id", resp.Request.Header.Get(RequestIDHeader)),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("duration", resp.Time()),
		slog.Any("headers", redactHeaders(resp.Header())),
		slog.Int("content_length", len(resp.Body())),
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		attrs = append(attrs, slog.String("error_body", truncate(string(resp.Body()), 1000)))
	}
	c.logger.LogAttrs(ctx, log.LevelTrace, "HTTP response", attrs...)
	return nil
}

func (c *Client) logError(req *resty.Request, err error) {
	ctx := req.Context()
	if !c.logger.Enabled(ctx, log.LevelTrace) {
		return
	}
	c.logger.LogAttrs(ctx, log.LevelTrace, "HTTP request failed",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
		slog.String("error", err.Error()),
	)
}

func redactHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		key := strings.ToLower(k)
		if key == "authorization" || key == "set-cookie" || strings.Contains(key, "token") {
			headers[k] = "[REDACTED]"
			continue
		}
		headers[k] = strings.Join(v, ", ")
	}
	return headers
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s... [truncated, total %d bytes]", s[:limit], len(s))
}
