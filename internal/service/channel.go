package service

import (
	"context"
	"fmt"

	"sitesctl/internal/domain"
)

// CreateChannelInput describes a new channel. Empty type and publish policy
// default to public and anythingPublished.
type CreateChannelInput struct {
	Name               string
	Description        string
	ChannelType        string
	PublishPolicy      string
	LocalizationPolicy string
}

// CreateChannel creates a channel after checking the name is free and the
// localization policy, when given, exists under that exact name.
func (s *AssetService) CreateChannel(ctx context.Context, in CreateChannelInput) (*domain.Channel, error) {
	req := domain.CreateChannelRequest{
		Name:          in.Name,
		Description:   in.Description,
		ChannelType:   in.ChannelType,
		PublishPolicy: in.PublishPolicy,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.connect(ctx); err != nil {
		return nil, err
	}

	channels, err := s.channels.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if res := Resolve([]string{in.Name}, channels, channelName); len(res.Resolved) > 0 {
		s.report.Error("channel %s already exists", in.Name)
		return nil, domain.ErrConflict("channel %s already exists", in.Name)
	}

	if in.LocalizationPolicy != "" {
		policies, err := s.policies.list(ctx)
		if err != nil {
			return nil, fmt.Errorf("list localization policies: %w", err)
		}
		for _, p := range policies {
			if p.Name == in.LocalizationPolicy {
				req.LocalizationPolicyID = p.ID
				break
			}
		}
		if req.LocalizationPolicyID == "" {
			s.report.Error("localization policy %s does not exist", in.LocalizationPolicy)
			return nil, domain.ErrNotFound("localization policy %s does not exist", in.LocalizationPolicy)
		}
		s.report.Progress("verify localization policy")
	}

	ch, err := s.server.CreateChannel(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create channel %s: %w", in.Name, err)
	}
	s.report.Progress("channel %s created", in.Name)
	return ch, nil
}
