package cms

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

// ListChannels returns every channel with all fields.
func (c *Client) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	return api.FetchAll[domain.Channel](ctx, c.api, managementPath+"/channels", url.Values{"fields": {"all"}})
}

// GetChannelByName finds a channel by name, ignoring case.
func (c *Client) GetChannelByName(ctx context.Context, name string) (*domain.Channel, error) {
	channels, err := api.FetchAll[domain.Channel](ctx, c.api, managementPath+"/channels", nameQuery(name))
	if err != nil {
		return nil, err
	}
	for i := range channels {
		if strings.EqualFold(channels[i].Name, name) {
			return &channels[i], nil
		}
	}
	return nil, domain.ErrNotFound("channel %s does not exist", name)
}

// CreateChannel creates a channel, linking the localization policy when one is set.
func (c *Client) CreateChannel(ctx context.Context, req domain.CreateChannelRequest) (*domain.Channel, error) {
	body := map[string]interface{}{
		"name":          req.Name,
		"description":   req.Description,
		"channelType":   req.ChannelType,
		"publishPolicy": req.PublishPolicy,
	}
	if req.LocalizationPolicyID != "" {
		body["localizationPolicy"] = req.LocalizationPolicyID
	}
	var out domain.Channel
	if err := c.send(ctx, http.MethodPost, managementPath+"/channels", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTaxonomies returns taxonomies in every status with their available states.
func (c *Client) ListTaxonomies(ctx context.Context) ([]domain.Taxonomy, error) {
	return api.FetchAll[domain.Taxonomy](ctx, c.api, managementPath+"/taxonomies", url.Values{
		"q":      {`(status eq "all")`},
		"fields": {"availableStates"},
	})
}

// ListLocalizationPolicies returns every localization policy.
func (c *Client) ListLocalizationPolicies(ctx context.Context) ([]domain.LocalizationPolicy, error) {
	return api.FetchAll[domain.LocalizationPolicy](ctx, c.api, managementPath+"/localizationPolicies", url.Values{"fields": {"all"}})
}

// CreateLocalizationPolicy creates a localization policy.
func (c *Client) CreateLocalizationPolicy(ctx context.Context, req domain.CreateLocalizationPolicyRequest) (*domain.LocalizationPolicy, error) {
	optional := req.OptionalLanguages
	if optional == nil {
		optional = []string{}
	}
	body := map[string]interface{}{
		"name":           req.Name,
		"description":    req.Description,
		"defaultValue":   req.DefaultLanguage,
		"requiredValues": req.RequiredLanguages,
		"optionalValues": optional,
	}
	var out domain.LocalizationPolicy
	if err := c.send(ctx, http.MethodPost, managementPath+"/localizationPolicies", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
