package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPageSize is the limit requested per page by FetchAllPages.
const DefaultPageSize = 100

// PaginatedResponse is the envelope of offset-paged list endpoints.
type PaginatedResponse struct {
	Items   []json.RawMessage `json:"items"`
	HasMore bool              `json:"hasMore"`
	Offset  int               `json:"offset"`
	Count   int               `json:"count"`
	Limit   int               `json:"limit"`
}

// FetchAllPages follows offset/limit paging until the server reports no more
// items and returns every item in server order.
func FetchAllPages(ctx context.Context, client *Client, path string, query url.Values) ([]json.RawMessage, error) {
	var all []json.RawMessage
	offset := 0

	for {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("limit", strconv.Itoa(DefaultPageSize))
		q.Set("offset", strconv.Itoa(offset))

		resp, err := client.DoContext(ctx, http.MethodGet, path, q, nil)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}

		var page PaginatedResponse
		if err := DecodeJSON(resp, &page); err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}
		all = append(all, page.Items...)

		if !page.HasMore || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return all, nil
}

// FetchAll is FetchAllPages decoding every item into T.
func FetchAll[T any](ctx context.Context, client *Client, path string, query url.Values) ([]T, error) {
	raw, err := FetchAllPages(ctx, client, path, query)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("parse GET %s item: %w", path, err)
		}
		out = append(out, item)
	}
	return out, nil
}
