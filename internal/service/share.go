package service

import (
	"context"
	"fmt"

	"sitesctl/internal/domain"
)

// ShareInput describes a share or unshare request on a named resource.
type ShareInput struct {
	Name   string
	Users  []string
	Groups []string
	// Role is the role granted by share. Unshare ignores it.
	Role string
	// IncludeTypes extends a repository share to every content type in the
	// repository, granted with TypeRole.
	IncludeTypes bool
	TypeRole     string
}

func (in ShareInput) validate(kind, op string) error {
	if in.Name == "" {
		return domain.ErrValidation("%s name is required", kind)
	}
	if len(in.Users) == 0 && len(in.Groups) == 0 {
		return domain.ErrValidation("at least one user or group is required")
	}
	if op == domain.OperationUnshare {
		return nil
	}
	if err := domain.ValidateRole(kind, in.Role); err != nil {
		return err
	}
	if in.IncludeTypes && in.TypeRole != "" {
		return domain.ValidateRole(domain.ResourceType, in.TypeRole)
	}
	return nil
}

// ShareRepository grants a role on a repository, and optionally on its types.
func (s *AssetService) ShareRepository(ctx context.Context, in ShareInput) error {
	return s.share(ctx, domain.ResourceRepository, in)
}

// UnshareRepository removes access to a repository, and optionally its types.
func (s *AssetService) UnshareRepository(ctx context.Context, in ShareInput) error {
	return s.unshare(ctx, domain.ResourceRepository, in)
}

// ShareType grants a role on a content type.
func (s *AssetService) ShareType(ctx context.Context, in ShareInput) error {
	return s.share(ctx, domain.ResourceType, in)
}

// UnshareType removes access to a content type.
func (s *AssetService) UnshareType(ctx context.Context, in ShareInput) error {
	return s.unshare(ctx, domain.ResourceType, in)
}

// ShareChannel grants a role on a channel. Site channels are rejected.
func (s *AssetService) ShareChannel(ctx context.Context, in ShareInput) error {
	return s.share(ctx, domain.ResourceChannel, in)
}

// UnshareChannel removes access to a channel. Site channels are rejected.
func (s *AssetService) UnshareChannel(ctx context.Context, in ShareInput) error {
	return s.unshare(ctx, domain.ResourceChannel, in)
}

type shareTarget struct {
	ref       domain.ResourceRef
	typeNames []string
}

func (s *AssetService) share(ctx context.Context, kind string, in ShareInput) error {
	if err := in.validate(kind, domain.OperationShare); err != nil {
		return err
	}
	if _, err := s.connect(ctx); err != nil {
		return err
	}
	target, err := s.resolveShareTarget(ctx, kind, in.Name)
	if err != nil {
		return err
	}
	p := s.resolvePrincipals(ctx, in.Users, in.Groups)
	if p.empty() {
		return domain.ErrNotFound("no valid user or group to share %s %s with", kind, in.Name)
	}

	delta, err := s.applyGrant(ctx, target.ref, in.Role, p)
	s.reportGrant(target.ref.Kind, in.Name, in.Role, delta, err == nil)
	if err != nil {
		return fmt.Errorf("share %s %s: %w", kind, in.Name, err)
	}

	if !in.IncludeTypes || kind != domain.ResourceRepository {
		return nil
	}
	typeRole := in.TypeRole
	if typeRole == "" {
		typeRole = in.Role
	}
	return s.shareTypes(ctx, target.typeNames, typeRole, p)
}

func (s *AssetService) unshare(ctx context.Context, kind string, in ShareInput) error {
	if err := in.validate(kind, domain.OperationUnshare); err != nil {
		return err
	}
	if _, err := s.connect(ctx); err != nil {
		return err
	}
	target, err := s.resolveShareTarget(ctx, kind, in.Name)
	if err != nil {
		return err
	}
	p := s.resolvePrincipals(ctx, in.Users, in.Groups)
	if p.empty() {
		return domain.ErrNotFound("no valid user or group to unshare %s %s from", kind, in.Name)
	}

	// Unshare is unconditional: the server treats absent grants as a no-op.
	_, err = s.server.PerformPermissionOperation(ctx, domain.PermissionOperation{
		Operation: domain.OperationUnshare,
		Resource:  target.ref,
		Users:     p.Users,
		Groups:    p.Groups,
	})
	if err != nil {
		return fmt.Errorf("unshare %s %s: %w", kind, in.Name, err)
	}
	s.reportRevoke(p, kind, in.Name)

	if !in.IncludeTypes || kind != domain.ResourceRepository {
		return nil
	}
	return s.unshareTypes(ctx, target.typeNames, p)
}

func (s *AssetService) resolveShareTarget(ctx context.Context, kind, name string) (*shareTarget, error) {
	switch kind {
	case domain.ResourceRepository:
		repos, err := s.repositories.list(ctx)
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		res := Resolve([]string{name}, repos, repositoryName)
		if len(res.Missing) > 0 {
			s.report.Error("repository %s does not exist", name)
			return nil, domain.ErrNotFound("repository %s does not exist", name)
		}
		s.report.Progress("verify repository")
		repo := res.Resolved[0]
		target := &shareTarget{ref: domain.ResourceRef{Kind: kind, ID: repo.ID, Name: repo.Name}}
		for _, t := range repo.ContentTypes {
			target.typeNames = append(target.typeNames, t.Name)
		}
		return target, nil

	case domain.ResourceType:
		ct, err := s.server.GetContentType(ctx, name, false)
		if err != nil {
			if domain.IsNotFound(err) {
				s.report.Error("type %s does not exist", name)
			}
			return nil, err
		}
		s.report.Progress("verify type")
		return &shareTarget{ref: domain.ResourceRef{Kind: kind, Name: ct.Name}}, nil

	case domain.ResourceChannel:
		ch, err := s.server.GetChannelByName(ctx, name)
		if err != nil {
			if domain.IsNotFound(err) {
				s.report.Error("channel %s not found", name)
			}
			return nil, err
		}
		if ch.IsSiteChannel {
			s.report.Error("channel %s is a site channel", name)
			return nil, domain.ErrValidation("channel %s is a site channel", name)
		}
		s.report.Progress("verify channel")
		return &shareTarget{ref: domain.ResourceRef{Kind: kind, ID: ch.ID, Name: ch.Name}}, nil
	}
	return nil, domain.ErrValidation("unsupported resource kind %q", kind)
}

// applyGrant shares ref with the principals that do not hold role yet. No
// call is made when every principal already holds it.
func (s *AssetService) applyGrant(ctx context.Context, ref domain.ResourceRef, role string, p principals) (GrantDelta, error) {
	perms, err := s.server.GetResourcePermissions(ctx, ref)
	if err != nil {
		return GrantDelta{}, fmt.Errorf("get permissions: %w", err)
	}
	delta := ComputeGrantDelta(perms.Permissions, role, p.Users, p.Groups)
	if delta.Empty() {
		return delta, nil
	}
	_, err = s.server.PerformPermissionOperation(ctx, domain.PermissionOperation{
		Operation: domain.OperationShare,
		Resource:  ref,
		Role:      role,
		Users:     delta.UsersToGrant,
		Groups:    delta.GroupsToGrant,
	})
	return delta, err
}

func (s *AssetService) reportGrant(kind, name, role string, d GrantDelta, granted bool) {
	for _, g := range d.GrantedGroups {
		s.report.Progress("group %s already granted with role %s on %s %s", g.Name, role, kind, name)
	}
	for _, u := range d.GrantedUsers {
		s.report.Progress("user %s already granted with role %s on %s %s", u.LoginName, role, kind, name)
	}
	if !granted {
		return
	}
	if len(d.UsersToGrant) > 0 {
		s.report.Progress("user %s granted with role %s on %s %s", joinNames(loginNamesOf(d.UsersToGrant)), role, kind, name)
	}
	if len(d.GroupsToGrant) > 0 {
		s.report.Progress("group %s granted with role %s on %s %s", joinNames(groupNamesOf(d.GroupsToGrant)), role, kind, name)
	}
}

func (s *AssetService) reportRevoke(p principals, kind, name string) {
	if len(p.Users) > 0 {
		s.report.Progress("the access of user %s to %s %s removed", joinNames(p.UserNames), kind, name)
	}
	if len(p.Groups) > 0 {
		s.report.Progress("the access of group %s to %s %s removed", joinNames(p.GroupNames), kind, name)
	}
}

// repositoryTypes looks up the types of a repository concurrently and keeps
// the ones that still exist.
func (s *AssetService) repositoryTypes(ctx context.Context, typeNames []string) []domain.ContentType {
	if len(typeNames) == 0 {
		s.report.Progress("no content types in the repository")
		return nil
	}
	s.report.Progress("repository includes content type %s", joinNames(typeNames))

	results := settle(ctx, s.cfg.Concurrency, typeNames, func(ctx context.Context, name string) (*domain.ContentType, error) {
		return s.server.GetContentType(ctx, name, false)
	})
	var found []domain.ContentType
	for i, r := range results {
		if r.Err != nil {
			s.report.Error("type %s does not exist", typeNames[i])
			s.logger.Debug("type lookup failed", "type", typeNames[i], "error", r.Err)
			continue
		}
		found = append(found, *r.Value)
	}
	return found
}

func (s *AssetService) shareTypes(ctx context.Context, typeNames []string, role string, p principals) error {
	types := s.repositoryTypes(ctx, typeNames)
	if len(types) == 0 {
		return nil
	}

	deltas := settle(ctx, s.cfg.Concurrency, types, func(ctx context.Context, ct domain.ContentType) (GrantDelta, error) {
		return s.applyGrant(ctx, domain.ResourceRef{Kind: domain.ResourceType, Name: ct.Name}, role, p)
	})
	failed := 0
	for i, r := range deltas {
		s.reportGrant(domain.ResourceType, types[i].Name, role, r.Value, r.Err == nil)
		if r.Err != nil {
			failed++
			s.report.Error("failed to share type %s: %v", types[i].Name, r.Err)
		}
	}
	if failed > 0 {
		return failedTargets(failed, "type shares")
	}
	return nil
}

func (s *AssetService) unshareTypes(ctx context.Context, typeNames []string, p principals) error {
	types := s.repositoryTypes(ctx, typeNames)
	if len(types) == 0 {
		return nil
	}

	results := settle(ctx, s.cfg.Concurrency, types, func(ctx context.Context, ct domain.ContentType) (*domain.PermissionResult, error) {
		return s.server.PerformPermissionOperation(ctx, domain.PermissionOperation{
			Operation: domain.OperationUnshare,
			Resource:  domain.ResourceRef{Kind: domain.ResourceType, Name: ct.Name},
			Users:     p.Users,
			Groups:    p.Groups,
		})
	})
	var (
		removed []string
		failed  int
	)
	for i, r := range results {
		if r.Err != nil {
			failed++
			s.report.Error("failed to unshare type %s: %v", types[i].Name, r.Err)
			continue
		}
		name := types[i].Name
		if r.Value != nil && r.Value.ResourceName != "" {
			name = r.Value.ResourceName
		}
		removed = append(removed, name)
	}
	if len(removed) > 0 {
		s.reportRevoke(p, domain.ResourceType, joinNames(removed))
	}
	if failed > 0 {
		return failedTargets(failed, "type unshares")
	}
	return nil
}
