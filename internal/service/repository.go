package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sitesctl/internal/domain"
)

// CreateRepositoryInput describes a new repository.
type CreateRepositoryInput struct {
	Name            string
	Description     string
	DefaultLanguage string
	ContentTypes    []string
	Channels        []string
}

// CreateRepository creates a repository after checking the name is free and
// every named content type and channel exists.
func (s *AssetService) CreateRepository(ctx context.Context, in CreateRepositoryInput) (*domain.Repository, error) {
	req := domain.CreateRepositoryRequest{
		Name:            in.Name,
		Description:     in.Description,
		DefaultLanguage: in.DefaultLanguage,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.connect(ctx); err != nil {
		return nil, err
	}

	repos, err := s.repositories.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	if res := Resolve([]string{in.Name}, repos, repositoryName); len(res.Resolved) > 0 {
		s.report.Error("repository %s already exists", in.Name)
		return nil, domain.ErrConflict("repository %s already exists", in.Name)
	}
	s.report.Progress("verify repository name")

	// Types must all exist; channels are listed once and matched locally.
	var (
		types    []*domain.ContentType
		channels []domain.Channel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		types, err = all(gctx, s.cfg.Concurrency, in.ContentTypes, func(ctx context.Context, name string) (*domain.ContentType, error) {
			return s.server.GetContentType(ctx, name, false)
		})
		return err
	})
	if len(in.Channels) > 0 {
		g.Go(func() error {
			var err error
			channels, err = s.channels.list(gctx)
			if err != nil {
				return fmt.Errorf("list channels: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if domain.IsNotFound(err) {
			s.report.Error("%v", err)
		}
		return nil, err
	}
	if len(in.ContentTypes) > 0 {
		s.report.Progress("verify content types")
	}

	res := Resolve(in.Channels, channels, channelName)
	if len(res.Missing) > 0 {
		for _, name := range res.Missing {
			s.report.Error("channel %s does not exist", name)
		}
		return nil, domain.ErrNotFound("channel %s does not exist", res.Missing[0])
	}
	if len(in.Channels) > 0 {
		s.report.Progress("verify channels")
	}

	for _, ct := range types {
		req.ContentTypes = append(req.ContentTypes, domain.TypeRef{Name: ct.Name})
	}
	for _, ch := range res.Resolved {
		req.Channels = append(req.Channels, ch.Ref())
	}

	repo, err := s.server.CreateRepository(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create repository %s: %w", in.Name, err)
	}
	s.report.Progress("repository %s created", in.Name)
	return repo, nil
}

// ControlRepositoryInput describes a membership change applied to one or
// more repositories.
type ControlRepositoryInput struct {
	Action       MembershipAction
	Repositories []string
	ContentTypes []string
	Channels     []string
	Taxonomies   []string
}

func (in ControlRepositoryInput) validate() error {
	if len(in.Repositories) == 0 {
		return domain.ErrValidation("at least one repository is required")
	}
	var names []string
	switch in.Action.Kind() {
	case "type":
		names = in.ContentTypes
	case "channel":
		names = in.Channels
	case "taxonomy":
		names = in.Taxonomies
	default:
		_, err := ParseMembershipAction(string(in.Action))
		return err
	}
	if len(names) == 0 {
		return domain.ErrValidation("action %s requires at least one %s", in.Action, in.Action.Kind())
	}
	return nil
}

// ControlRepository applies a membership action to every named repository.
// Names that do not resolve are reported and skipped; repositories are then
// updated one at a time in the order given.
func (s *AssetService) ControlRepository(ctx context.Context, in ControlRepositoryInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	if _, err := s.connect(ctx); err != nil {
		return err
	}

	repos, err := s.repositories.list(ctx)
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}
	targets := Resolve(in.Repositories, repos, repositoryName)
	for _, name := range targets.Missing {
		s.report.Error("repository %s does not exist", name)
	}
	if len(targets.Resolved) == 0 {
		return domain.ErrNotFound("no repository to update")
	}
	if len(targets.Resolved) == 1 {
		s.report.Progress("verify repository")
	} else {
		s.report.Progress("verify repositories")
	}

	change, names, err := s.resolveMembers(ctx, in)
	if err != nil {
		return err
	}

	results := sequential(ctx, targets.Resolved, func(ctx context.Context, repo domain.Repository) error {
		updated := ApplyMembership(repo, in.Action, change)
		if _, err := s.server.UpdateRepository(ctx, &updated); err != nil {
			return err
		}
		if in.Action.IsAdd() {
			s.report.Progress("added %s %s to repository %s", in.Action.Kind(), joinNames(names), repo.Name)
		} else {
			s.report.Progress("removed %s %s from repository %s", in.Action.Kind(), joinNames(names), repo.Name)
		}
		return nil
	})
	for _, r := range results {
		if r.Err != nil {
			s.report.Error("failed to update repository %s: %v", r.Input.Name, r.Err)
		}
	}
	if n := countFailed(results); n > 0 {
		return failedTargets(n, "repository updates")
	}
	return nil
}

// resolveMembers resolves the content types, channels and taxonomies named
// in the input concurrently. A list that resolves to nothing aborts. It
// returns the change and the names used for the selected action.
func (s *AssetService) resolveMembers(ctx context.Context, in ControlRepositoryInput) (MembershipChange, []string, error) {
	var (
		typeResults []settled[*domain.ContentType]
		channels    []domain.Channel
		taxonomies  []domain.Taxonomy
	)
	g, gctx := errgroup.WithContext(ctx)
	if len(in.ContentTypes) > 0 {
		g.Go(func() error {
			typeResults = settle(gctx, s.cfg.Concurrency, in.ContentTypes, func(ctx context.Context, name string) (*domain.ContentType, error) {
				return s.server.GetContentType(ctx, name, false)
			})
			return nil
		})
	}
	if len(in.Channels) > 0 {
		g.Go(func() error {
			var err error
			if channels, err = s.channels.list(gctx); err != nil {
				return fmt.Errorf("list channels: %w", err)
			}
			return nil
		})
	}
	if len(in.Taxonomies) > 0 {
		g.Go(func() error {
			var err error
			if taxonomies, err = s.taxonomies.list(gctx); err != nil {
				return fmt.Errorf("list taxonomies: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MembershipChange{}, nil, err
	}

	var (
		change                            MembershipChange
		typeNames, channelNames, taxNames []string
	)

	if len(in.ContentTypes) > 0 {
		var found []domain.ContentType
		for _, r := range typeResults {
			if r.Err == nil && r.Value != nil {
				found = append(found, *r.Value)
			}
		}
		res := Resolve(in.ContentTypes, found, contentTypeName)
		for _, name := range res.Missing {
			s.report.Error("type %s does not exist", name)
		}
		if len(res.Resolved) == 0 {
			return change, nil, domain.ErrNotFound("no content type to %s", in.Action)
		}
		s.report.Progress("verify content types")
		for _, ct := range res.Resolved {
			change.Types = append(change.Types, domain.TypeRef{Name: ct.Name})
		}
		typeNames = res.Names
	}

	if len(in.Channels) > 0 {
		res := Resolve(in.Channels, channels, channelName)
		for _, name := range res.Missing {
			s.report.Error("channel %s does not exist", name)
		}
		if len(res.Resolved) == 0 {
			return change, nil, domain.ErrNotFound("no channel to %s", in.Action)
		}
		s.report.Progress("verify channels")
		for _, ch := range res.Resolved {
			change.Channels = append(change.Channels, ch.Ref())
		}
		channelNames = res.Names
	}

	if len(in.Taxonomies) > 0 {
		res, unpromoted := ResolveTaxonomies(in.Taxonomies, taxonomies)
		for _, name := range res.Missing {
			s.report.Error("taxonomy %s does not exist", name)
		}
		for _, name := range unpromoted {
			s.report.Error("taxonomy %s does not have promoted version", name)
		}
		if len(res.Resolved) == 0 {
			return change, nil, domain.ErrNotFound("no taxonomy to %s", in.Action)
		}
		if len(res.Resolved) == 1 {
			s.report.Progress("verify taxonomy")
		} else {
			s.report.Progress("verify taxonomies")
		}
		for _, tax := range res.Resolved {
			change.Taxonomies = append(change.Taxonomies, tax.Ref())
		}
		taxNames = res.Names
	}

	switch in.Action.Kind() {
	case "type":
		return change, typeNames, nil
	case "channel":
		return change, channelNames, nil
	default:
		return change, taxNames, nil
	}
}
