package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// === NewClient ===

func TestNewClient_TrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8080/", "", "", "")
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
}

func TestNewClient_SetsTimeout(t *testing.T) {
	c := NewClient("http://localhost:8080", "", "", "")
	require.NotNil(t, c.HTTPClient)
	assert.Equal(t, 30*time.Second, c.HTTPClient.Timeout)
}

func TestNewClient_StoresCredentials(t *testing.T) {
	c := NewClient("http://localhost:8080", "alice", "pw", "my-token")
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, "pw", c.Password)
	assert.Equal(t, "my-token", c.Token)
}

// === Client.Do ===

func TestDo_URLConstruction(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", "", "")
	resp, err := c.Do(http.MethodGet, "/content/management/api/v1.1/channels", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "/content/management/api/v1.1/channels", gotPath)
}

func TestDo_QueryParams(t *testing.T) {
	var gotRawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", "", "")
	q := url.Values{}
	q.Set("limit", "10")
	q.Set("q", `(name eq "Blog")`)

	resp, err := c.Do(http.MethodGet, "/items", q, nil)
	require.NoError(t, err)
	resp.Body.Close()

	parsed, err := url.ParseQuery(gotRawQuery)
	require.NoError(t, err)
	assert.Equal(t, "10", parsed.Get("limit"))
	assert.Equal(t, `(name eq "Blog")`, parsed.Get("q"))
}

func TestDo_WithBody(t *testing.T) {
	var (
		gotContentType string
		gotBody        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", "", "")
	resp, err := c.Do(http.MethodPost, "/repositories", nil, map[string]string{"name": "Marketing"})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "application/json", gotContentType)
	var parsed map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &parsed))
	assert.Equal(t, "Marketing", parsed["name"])
}

func TestDo_RawMessageBodyIsSentVerbatim(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	raw := json.RawMessage(`{"name":"Article","fields":[]}`)
	c := NewClient(srv.URL, "", "", "")
	resp, err := c.Do(http.MethodPost, "/types", nil, raw)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, string(raw), string(gotBody))
}

func TestDo_NilBody(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", "", "")
	resp, err := c.Do(http.MethodGet, "/channels", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, gotContentType)
}

func TestDo_Headers(t *testing.T) {
	var gotAccept, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", "", "")
	resp, err := c.Do(http.MethodGet, "/channels", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "application/json", gotAccept)
	assert.Len(t, gotRequestID, 36)
}

func TestDo_Authentication(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		token    string
		check    func(t *testing.T, r *http.Request)
	}{
		{
			name:  "bearer token",
			token: "my-jwt-token",
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer my-jwt-token", r.Header.Get("Authorization"))
			},
		},
		{
			name:     "basic credentials",
			username: "alice",
			password: "secret",
			check: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				require.True(t, ok)
				assert.Equal(t, "alice", user)
				assert.Equal(t, "secret", pass)
			},
		},
		{
			name:     "token takes precedence",
			username: "alice",
			password: "secret",
			token:    "tok",
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			},
		},
		{
			name: "no auth",
			check: func(t *testing.T, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *http.Request
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Clone(context.Background())
				w.WriteHeader(http.StatusOK)
			}))
			t.Cleanup(srv.Close)

			c := NewClient(srv.URL, tt.username, tt.password, tt.token)
			resp, err := c.Do(http.MethodGet, "/channels", nil, nil)
			require.NoError(t, err)
			resp.Body.Close()

			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestDo_ConnectionRefused(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", "", "")
	_, err := c.Do(http.MethodGet, "/channels", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute request")
}

func TestDoContext_RateLimitHonoursCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", "", "")
	c.SetRateLimit(0.001, 1)

	resp, err := c.DoContext(context.Background(), http.MethodGet, "/a", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.DoContext(ctx, http.MethodGet, "/a", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

// === CheckError ===

func TestCheckError_SuccessRange(t *testing.T) {
	for _, code := range []int{200, 201, 204} {
		resp := &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(""))}
		assert.NoError(t, CheckError(resp))
	}
}

func TestCheckError_StructuredError(t *testing.T) {
	resp := &http.Response{
		StatusCode: 403,
		Body:       io.NopCloser(strings.NewReader(`{"code":403,"message":"forbidden"}`)),
	}
	err := CheckError(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 403): forbidden")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.HTTPStatus)
	assert.Equal(t, "403", apiErr.Code)
}

func TestCheckError_ProblemDetail(t *testing.T) {
	body := `{"type":"about:blank","title":"Not Found","detail":"type Article does not exist","o:errorCode":"OCE-CAAS-404"}`
	resp := &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader(body))}
	err := CheckError(resp)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "type Article does not exist", apiErr.Message)
	assert.Equal(t, "OCE-CAAS-404", apiErr.Code)
}

func TestCheckError_RawBodyFallback(t *testing.T) {
	resp := &http.Response{StatusCode: 500, Body: io.NopCloser(strings.NewReader("Internal Server Error"))}
	err := CheckError(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500): Internal Server Error")
}

func TestCheckError_EmptyMessage(t *testing.T) {
	body := `{"code":400,"message":""}`
	resp := &http.Response{StatusCode: 400, Body: io.NopCloser(strings.NewReader(body))}
	err := CheckError(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), body)
}

// === ReadBody ===

// spyReadCloser tracks whether Close was called.
type spyReadCloser struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (s *spyReadCloser) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestReadBody_ClosesBody(t *testing.T) {
	spy := &spyReadCloser{Reader: strings.NewReader("some content")}
	data, err := ReadBody(&http.Response{Body: spy})
	require.NoError(t, err)
	assert.Equal(t, "some content", string(data))
	assert.True(t, spy.closed)
}

func TestDecodeJSON(t *testing.T) {
	resp := &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{"id":"x1"}`))}
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, DecodeJSON(resp, &out))
	assert.Equal(t, "x1", out.ID)

	resp = &http.Response{StatusCode: 204, Body: io.NopCloser(strings.NewReader(""))}
	require.NoError(t, DecodeJSON(resp, &out))
}
