package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

// ListRepositories returns every repository with all fields.
func (c *Client) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	return api.FetchAll[domain.Repository](ctx, c.api, managementPath+"/repositories", url.Values{"fields": {"all"}})
}

// GetRepositoryByName finds a repository by name, ignoring case.
func (c *Client) GetRepositoryByName(ctx context.Context, name string) (*domain.Repository, error) {
	repos, err := api.FetchAll[domain.Repository](ctx, c.api, managementPath+"/repositories", nameQuery(name))
	if err != nil {
		return nil, err
	}
	for i := range repos {
		if strings.EqualFold(repos[i].Name, name) {
			return &repos[i], nil
		}
	}
	return nil, domain.ErrNotFound("repository %s does not exist", name)
}

// CreateRepository creates a repository with its initial types and channels.
func (c *Client) CreateRepository(ctx context.Context, req domain.CreateRepositoryRequest) (*domain.Repository, error) {
	body := map[string]interface{}{
		"name":         req.Name,
		"description":  req.Description,
		"contentTypes": emptyIfNil(req.ContentTypes),
		"channels":     emptyIfNil(req.Channels),
	}
	if req.DefaultLanguage != "" {
		body["defaultLanguage"] = req.DefaultLanguage
	}
	var out domain.Repository
	if err := c.send(ctx, http.MethodPost, managementPath+"/repositories", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRepository replaces the repository's membership collections. Every
// other field the server returned, including extra keys on existing
// membership entries, is sent back unchanged.
func (c *Client) UpdateRepository(ctx context.Context, repo *domain.Repository) (*domain.Repository, error) {
	body, err := repositoryBody(repo)
	if err != nil {
		return nil, err
	}

	var out domain.Repository
	if err := c.send(ctx, http.MethodPut, managementPath+"/repositories/"+url.PathEscape(repo.ID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func repositoryBody(repo *domain.Repository) (map[string]json.RawMessage, error) {
	base := repo.Raw
	if len(base) == 0 {
		var err error
		if base, err = json.Marshal(repo); err != nil {
			return nil, fmt.Errorf("marshal repository %s: %w", repo.Name, err)
		}
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, fmt.Errorf("parse repository %s: %w", repo.Name, err)
	}

	types, err := mergeEntries(fields["contentTypes"], repo.ContentTypes, func(t domain.TypeRef) string {
		return strings.ToLower(t.Name)
	})
	if err != nil {
		return nil, fmt.Errorf("repository %s content types: %w", repo.Name, err)
	}
	channels, err := mergeEntries(fields["channels"], repo.Channels, func(ch domain.ChannelRef) string { return ch.ID })
	if err != nil {
		return nil, fmt.Errorf("repository %s channels: %w", repo.Name, err)
	}
	taxonomies, err := mergeEntries(fields["taxonomies"], repo.Taxonomies, func(t domain.TaxonomyRef) string { return t.ID })
	if err != nil {
		return nil, fmt.Errorf("repository %s taxonomies: %w", repo.Name, err)
	}
	fields["contentTypes"] = types
	fields["channels"] = channels
	fields["taxonomies"] = taxonomies
	return fields, nil
}

// mergeEntries renders entries as a JSON array. An entry that matches an
// entry of original by key is written as the original bytes; each original
// entry is reused at most once.
func mergeEntries[T any](original json.RawMessage, entries []T, key func(T) string) (json.RawMessage, error) {
	var existing []json.RawMessage
	if len(original) > 0 {
		if err := json.Unmarshal(original, &existing); err != nil {
			return nil, err
		}
	}
	byKey := make(map[string][]json.RawMessage, len(existing))
	for _, raw := range existing {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		k := key(v)
		byKey[k] = append(byKey[k], raw)
	}

	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		k := key(e)
		if queue := byKey[k]; len(queue) > 0 {
			out = append(out, queue[0])
			byKey[k] = queue[1:]
			continue
		}
		data, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}

// GetCollectionByName finds a collection of a repository by name, ignoring case.
func (c *Client) GetCollectionByName(ctx context.Context, repositoryID, name string) (*domain.Collection, error) {
	path := fmt.Sprintf("%s/repositories/%s/collections", managementPath, url.PathEscape(repositoryID))
	colls, err := api.FetchAll[domain.Collection](ctx, c.api, path, nameQuery(name))
	if err != nil {
		return nil, err
	}
	for i := range colls {
		if strings.EqualFold(colls[i].Name, name) {
			return &colls[i], nil
		}
	}
	return nil, domain.ErrNotFound("collection %s does not exist", name)
}

// emptyIfNil keeps nil membership lists from being sent as JSON null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
