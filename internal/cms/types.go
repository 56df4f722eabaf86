package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

// GetContentType fetches a type definition. expand asks the server for the full definition.
func (c *Client) GetContentType(ctx context.Context, name string, expand bool) (*domain.ContentType, error) {
	var query url.Values
	if expand {
		query = url.Values{"expand": {"all"}}
	}
	resp, err := c.api.DoContext(ctx, http.MethodGet, managementPath+"/types/"+url.PathEscape(name), query, nil)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := api.DecodeJSON(resp, &raw); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, domain.ErrNotFound("type %s does not exist", name)
		}
		return nil, err
	}
	return parseContentType(raw)
}

// CreateContentType posts a saved definition unchanged.
func (c *Client) CreateContentType(ctx context.Context, def domain.TypeDefinition) (*domain.ContentType, error) {
	var raw json.RawMessage
	if err := c.send(ctx, http.MethodPost, managementPath+"/types", def.Raw, &raw); err != nil {
		return nil, err
	}
	return parseContentType(raw)
}

// UpdateContentType replaces the named type with a saved definition.
func (c *Client) UpdateContentType(ctx context.Context, def domain.TypeDefinition) (*domain.ContentType, error) {
	var raw json.RawMessage
	if err := c.send(ctx, http.MethodPut, managementPath+"/types/"+url.PathEscape(def.Name), def.Raw, &raw); err != nil {
		return nil, err
	}
	return parseContentType(raw)
}

func parseContentType(raw json.RawMessage) (*domain.ContentType, error) {
	def, err := domain.NewTypeDefinition(raw)
	if err != nil {
		return nil, err
	}
	var head struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &head)
	return &domain.ContentType{ID: head.ID, Name: def.Name, Definition: def}, nil
}
