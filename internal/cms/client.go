// Package cms implements the domain server ports over the content server's
// REST API.
package cms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

const (
	managementPath = "/content/management/api/v1.1"
	socialPath     = "/osn/social/api/v1"
	documentsPath  = "/documents/api/1.2/files"
)

// Auth modes reported by Login.
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// Client is a domain.Server backed by the REST API.
type Client struct {
	api *api.Client
	now func() time.Time
}

var _ domain.Server = (*Client)(nil)

// NewClient wraps an API client.
func NewClient(c *api.Client) *Client {
	return &Client{api: c, now: time.Now}
}

// TokenInfo holds the claims of a bearer token that matter to the CLI.
type TokenInfo struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the token has an expiry before now.
func (t *TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now)
}

// ParseToken reads the claims of a JWT without verifying its signature. The
// server verifies tokens; the CLI only inspects them.
func ParseToken(token string) (*TokenInfo, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	info := &TokenInfo{}
	claims := parsed.Claims
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iss, err := claims.GetIssuer(); err == nil {
		info.Issuer = iss
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	return info, nil
}

// Login checks the credentials with one authenticated request. An expired
// JWT fails without contacting the server. Opaque tokens are passed through.
func (c *Client) Login(ctx context.Context) (*domain.SessionInfo, error) {
	info := &domain.SessionInfo{
		ServerURL: c.api.BaseURL,
		User:      c.api.Username,
		AuthMode:  AuthBasic,
	}
	switch {
	case c.api.Token != "":
		info.AuthMode = AuthBearer
		if tok, err := ParseToken(c.api.Token); err == nil {
			if tok.Expired(c.now()) {
				return nil, domain.ErrConnection(nil, "token expired at %s", tok.ExpiresAt.Format(time.RFC3339))
			}
			if tok.Subject != "" {
				info.User = tok.Subject
			}
		}
	case c.api.Username == "":
		return nil, domain.ErrConnection(nil, "no credentials configured for %s", c.api.BaseURL)
	}

	resp, err := c.api.DoContext(ctx, http.MethodGet, managementPath+"/repositories", url.Values{"limit": {"1"}}, nil)
	if err != nil {
		return nil, domain.ErrConnection(err, "connect to %s", c.api.BaseURL)
	}
	if err := api.CheckError(resp); err != nil {
		return nil, domain.ErrConnection(err, "authenticate with %s", c.api.BaseURL)
	}
	return info, nil
}

// get decodes the JSON response of a GET into target.
func (c *Client) get(ctx context.Context, path string, query url.Values, target interface{}) error {
	resp, err := c.api.DoContext(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return api.DecodeJSON(resp, target)
}

// send issues a request with a JSON body and decodes the response into target.
func (c *Client) send(ctx context.Context, method, path string, body, target interface{}) error {
	resp, err := c.api.DoContext(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	return api.DecodeJSON(resp, target)
}

// isStatus reports whether err is an API error with the given HTTP status.
func isStatus(err error, status int) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatus == status
}

// nameQuery is the item filter for an exact name.
func nameQuery(name string) url.Values {
	return url.Values{"q": {fmt.Sprintf("(name eq %q)", name)}, "fields": {"all"}}
}
