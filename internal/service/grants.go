package service

import "sitesctl/internal/domain"

// GrantDelta partitions requested principals into those already holding a
// role on a resource and those that still need the grant.
type GrantDelta struct {
	GrantedUsers  []domain.User
	UsersToGrant  []domain.User
	GrantedGroups []domain.Group
	GroupsToGrant []domain.Group
}

// Empty reports whether nothing is left to grant.
func (d GrantDelta) Empty() bool {
	return len(d.UsersToGrant) == 0 && len(d.GroupsToGrant) == 0
}

// ComputeGrantDelta compares the requested principals with the existing
// permissions of a resource for role.
func ComputeGrantDelta(existing []domain.Permission, role string, users []domain.User, groups []domain.Group) GrantDelta {
	var d GrantDelta
	for _, g := range groups {
		if groupGranted(existing, role, g) {
			d.GrantedGroups = append(d.GrantedGroups, g)
		} else {
			d.GroupsToGrant = append(d.GroupsToGrant, g)
		}
	}
	for _, u := range users {
		if userGranted(existing, role, u) {
			d.GrantedUsers = append(d.GrantedUsers, u)
		} else {
			d.UsersToGrant = append(d.UsersToGrant, u)
		}
	}
	return d
}

func userGranted(perms []domain.Permission, role string, u domain.User) bool {
	for _, p := range perms {
		if p.RoleName == role && p.Type == domain.PrincipalUser && p.ID == u.LoginName {
			return true
		}
	}
	return false
}

// groupGranted also requires the origin type to match: groups of different
// origins can share a name.
func groupGranted(perms []domain.Permission, role string, g domain.Group) bool {
	for _, p := range perms {
		if p.RoleName == role && p.Type == domain.PrincipalGroup &&
			p.GroupType == g.GroupOriginType && p.FullName == g.Name {
			return true
		}
	}
	return false
}
