package cms

import (
	"context"
	"net/http"
	"net/url"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

// GetGroupByName fetches a group by its exact name.
func (c *Client) GetGroupByName(ctx context.Context, name string) (*domain.Group, error) {
	var out domain.Group
	if err := c.get(ctx, socialPath+"/groups/"+url.PathEscape(name), nil, &out); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, domain.ErrNotFound("group %s does not exist", name)
		}
		return nil, err
	}
	return &out, nil
}

// FindUsers searches people by name across every result page. The server
// matches loosely, so callers pick the exact login name from the result.
func (c *Client) FindUsers(ctx context.Context, name string) ([]domain.User, error) {
	return api.FetchAll[domain.User](ctx, c.api, socialPath+"/people", url.Values{"q": {name}})
}

// DeleteFile removes an uploaded file from the document store.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.send(ctx, http.MethodDelete, documentsPath+"/"+url.PathEscape(fileID), nil, nil)
}
