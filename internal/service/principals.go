package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"sitesctl/internal/domain"
)

// principals holds the users and groups resolved for a permission workflow.
type principals struct {
	Users      []domain.User
	UserNames  []string
	Groups     []domain.Group
	GroupNames []string
}

func (p principals) empty() bool {
	return len(p.Users) == 0 && len(p.Groups) == 0
}

// resolvePrincipals looks up groups and users concurrently. A lookup that
// fails is treated as a missing principal and reported by name.
func (s *AssetService) resolvePrincipals(ctx context.Context, userNames, groupNames []string) principals {
	var (
		groups []settled[*domain.Group]
		users  []settled[[]domain.User]
		g      errgroup.Group
	)
	g.Go(func() error {
		groups = settle(ctx, s.cfg.Concurrency, groupNames, s.server.GetGroupByName)
		return nil
	})
	g.Go(func() error {
		users = settle(ctx, s.cfg.Concurrency, userNames, s.server.FindUsers)
		return nil
	})
	_ = g.Wait()

	var p principals

	if len(groupNames) > 0 {
		var found []domain.Group
		for i, r := range groups {
			if r.Err != nil {
				if !domain.IsNotFound(r.Err) {
					s.logger.Warn("group lookup failed", "group", groupNames[i], "error", r.Err)
				}
				continue
			}
			if r.Value != nil {
				found = append(found, *r.Value)
			}
		}
		res := Resolve(groupNames, found, groupName)
		for _, name := range res.Missing {
			s.report.Error("group %s does not exist", name)
		}
		if len(res.Resolved) > 0 {
			s.report.Progress("verify groups")
		}
		p.Groups, p.GroupNames = res.Resolved, res.Names
	}

	if len(userNames) > 0 {
		var found []domain.User
		for i, r := range users {
			if r.Err != nil {
				s.logger.Warn("user lookup failed", "user", userNames[i], "error", r.Err)
				continue
			}
			found = append(found, r.Value...)
		}
		res := Resolve(userNames, found, userLoginName)
		for _, name := range res.Missing {
			s.report.Error("user %s does not exist", name)
		}
		if len(res.Resolved) > 0 {
			s.report.Progress("verify users")
		}
		p.Users, p.UserNames = res.Resolved, res.Names
	}
	return p
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

func loginNamesOf(users []domain.User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.LoginName
	}
	return names
}

func groupNamesOf(groups []domain.Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}
