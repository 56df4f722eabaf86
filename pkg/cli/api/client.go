// Package api is the HTTP transport shared by every sitesctl command.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client issues authenticated JSON requests against the content server.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger

	limiter *rate.Limiter
}

// NewClient returns a client for baseURL. A token takes precedence over
// basic credentials when both are set.
func NewClient(baseURL, username, password, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Username:   username,
		Password:   password,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetRateLimit caps outgoing requests to rps per second. A non-positive rps
// removes the limit.
func (c *Client) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Do sends a JSON request. body is marshalled when non-nil.
func (c *Client) Do(method, path string, query url.Values, body interface{}) (*http.Response, error) {
	return c.DoContext(context.Background(), method, path, query, body)
}

// DoContext is Do bound to ctx.
func (c *Client) DoContext(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		var data []byte
		switch b := body.(type) {
		case json.RawMessage:
			data = b
		default:
			var err error
			data, err = json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshal request body: %w", err)
			}
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.DoRaw(ctx, method, path, query, contentType, reader)
}

// DoRaw sends body as-is with the given content type.
func (c *Client) DoRaw(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	switch {
	case c.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.Token)
	case c.Username != "":
		req.SetBasicAuth(c.Username, c.Password)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	c.Logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)
	return resp, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.HTTPStatus, e.Message)
}

// CheckError closes resp and returns an *APIError for non-2xx responses.
func CheckError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil
	}
	body, _ := ReadBody(resp)
	return newAPIError(resp, body)
}

// ErrorFromBody builds the *APIError for a response whose body was already read.
func ErrorFromBody(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return newAPIError(resp, body)
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		HTTPStatus: resp.StatusCode,
		Message:    string(body),
	}
	if resp.Request != nil {
		apiErr.RequestID = resp.Request.Header.Get("X-Request-ID")
	}

	// The server reports problems either as {"code","message"} or as
	// RFC 7807 {"title","detail","o:errorCode"}.
	var parsed struct {
		Code      interface{} `json:"code"`
		Message   string      `json:"message"`
		Title     string      `json:"title"`
		Detail    string      `json:"detail"`
		ErrorCode string      `json:"o:errorCode"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.Message != "":
			apiErr.Message = parsed.Message
		case parsed.Detail != "":
			apiErr.Message = parsed.Detail
		case parsed.Title != "":
			apiErr.Message = parsed.Title
		}
		if parsed.ErrorCode != "" {
			apiErr.Code = parsed.ErrorCode
		} else if parsed.Code != nil {
			apiErr.Code = fmt.Sprintf("%v", parsed.Code)
		}
	}
	return apiErr
}

// ReadBody reads and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// DecodeJSON checks resp for an error status and decodes the body into target.
// A nil target only checks the status.
func DecodeJSON(resp *http.Response, target interface{}) error {
	body, err := ReadBody(resp)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := ErrorFromBody(resp, body); err != nil {
		return err
	}
	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
