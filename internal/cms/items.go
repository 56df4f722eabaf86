package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

type itemPayload struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Slug   string `json:"slug"`
	Fields struct {
		Size *json.Number `json:"size"`
	} `json:"fields"`
}

// QueryItems returns every item matching q, following result pages.
func (c *Client) QueryItems(ctx context.Context, q domain.ItemQuery) ([]domain.Asset, error) {
	query := url.Values{}
	if q.Q != "" {
		query.Set("q", q.Q)
	}
	if q.Fields != "" {
		query.Set("fields", q.Fields)
	}
	if q.IncludeAdditionalData {
		query.Set("includeAdditionalData", "true")
	}
	items, err := api.FetchAll[itemPayload](ctx, c.api, managementPath+"/items", query)
	if err != nil {
		return nil, err
	}

	assets := make([]domain.Asset, 0, len(items))
	for _, it := range items {
		a := domain.Asset{ID: it.ID, Type: it.Type, Name: it.Name, Status: it.Status, Slug: it.Slug}
		if it.Fields.Size != nil {
			size, err := parseSize(*it.Fields.Size)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", it.ID, err)
			}
			a.Size = &size
		}
		assets = append(assets, a)
	}
	return assets, nil
}

func parseSize(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", n)
	}
	return int64(f), nil
}
