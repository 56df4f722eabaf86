package service

import (
	"context"
	"fmt"

	"sitesctl/internal/domain"
)

// CreateLocalizationPolicyInput describes a new localization policy.
type CreateLocalizationPolicyInput struct {
	Name              string
	Description       string
	DefaultLanguage   string
	RequiredLanguages []string
	OptionalLanguages []string
}

// CreateLocalizationPolicy creates a policy unless one with exactly the same
// name exists.
func (s *AssetService) CreateLocalizationPolicy(ctx context.Context, in CreateLocalizationPolicyInput) (*domain.LocalizationPolicy, error) {
	req := domain.CreateLocalizationPolicyRequest{
		Name:              in.Name,
		Description:       in.Description,
		DefaultLanguage:   in.DefaultLanguage,
		RequiredLanguages: in.RequiredLanguages,
		OptionalLanguages: in.OptionalLanguages,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.connect(ctx); err != nil {
		return nil, err
	}

	policies, err := s.policies.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list localization policies: %w", err)
	}
	for _, p := range policies {
		if p.Name == in.Name {
			s.report.Error("localization policy %s already exists", in.Name)
			return nil, domain.ErrConflict("localization policy %s already exists", in.Name)
		}
	}
	s.report.Progress("verify localization policy name")

	policy, err := s.server.CreateLocalizationPolicy(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create localization policy %s: %w", in.Name, err)
	}
	s.report.Progress("localization policy %s created", in.Name)
	return policy, nil
}
