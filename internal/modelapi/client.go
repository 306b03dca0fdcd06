// Package modelapi is a small JSON-over-HTTP client shared by the locally
// hosted model backends (generation, embeddings, entity recognition).
package modelapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-screener/internal/utils"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "spigell/resume-screener"

	// DefaultTimeout bounds a single model call. Local generation on CPU is slow.
	DefaultTimeout = 120 * time.Second

	maxErrorBody = 300
)

// StatusError reports a non-2xx answer from a model server.
type StatusError struct {
	URL    string
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: bad status: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("%s: bad status: %s: %s", e.URL, e.Status, e.Body)
}

// Client talks to one model server.
type Client struct {
	logger     *zap.Logger
	token      string
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

// New creates a client for baseURL. A zero timeout disables the deadline,
// a negative one selects DefaultTimeout. token, when set, is sent as a bearer token.
func New(logger *zap.Logger, baseURL, token string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout < 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		logger:     logger,
		token:      strings.TrimSpace(token),
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// PostJSON sends payload as JSON to path (relative to BaseURL, or an absolute
// URL) and decodes the JSON answer into target. A nil target discards the body.
func (c *Client) PostJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := c.url(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{
			URL:    url,
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   utils.TruncateForLog(string(data), maxErrorBody),
		}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}

	return nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" {
		return c.BaseURL
	}
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("model request done",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}
