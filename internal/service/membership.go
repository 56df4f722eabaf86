package service

import (
	"strings"

	"sitesctl/internal/domain"
)

// MembershipAction is a change applied to the collections of a repository.
type MembershipAction string

// Supported membership actions.
const (
	ActionAddType        MembershipAction = "add-type"
	ActionRemoveType     MembershipAction = "remove-type"
	ActionAddChannel     MembershipAction = "add-channel"
	ActionRemoveChannel  MembershipAction = "remove-channel"
	ActionAddTaxonomy    MembershipAction = "add-taxonomy"
	ActionRemoveTaxonomy MembershipAction = "remove-taxonomy"
)

// MembershipActions lists the actions in help order.
var MembershipActions = []MembershipAction{
	ActionAddType, ActionRemoveType,
	ActionAddChannel, ActionRemoveChannel,
	ActionAddTaxonomy, ActionRemoveTaxonomy,
}

// ParseMembershipAction validates s.
func ParseMembershipAction(s string) (MembershipAction, error) {
	for _, a := range MembershipActions {
		if string(a) == s {
			return a, nil
		}
	}
	names := make([]string, len(MembershipActions))
	for i, a := range MembershipActions {
		names[i] = string(a)
	}
	return "", domain.ErrValidation("invalid action %q: must be one of %s", s, strings.Join(names, ", "))
}

// IsAdd reports whether a appends members.
func (a MembershipAction) IsAdd() bool {
	return strings.HasPrefix(string(a), "add-")
}

// Kind returns the collection the action changes: type, channel or taxonomy.
func (a MembershipAction) Kind() string {
	_, kind, _ := strings.Cut(string(a), "-")
	return kind
}

// MembershipChange holds the resolved entries of a membership action.
type MembershipChange struct {
	Types      []domain.TypeRef
	Channels   []domain.ChannelRef
	Taxonomies []domain.TaxonomyRef
}

// ApplyMembership returns a copy of repo with the change applied to the
// collection selected by action. repo itself is not modified.
func ApplyMembership(repo domain.Repository, action MembershipAction, change MembershipChange) domain.Repository {
	out := repo
	switch action {
	case ActionAddType:
		out.ContentTypes = AddMembers(repo.ContentTypes, change.Types)
	case ActionRemoveType:
		out.ContentTypes = RemoveMembers(repo.ContentTypes, change.Types, typeKey)
	case ActionAddChannel:
		out.Channels = AddMembers(repo.Channels, change.Channels)
	case ActionRemoveChannel:
		out.Channels = RemoveMembers(repo.Channels, change.Channels, channelKey)
	case ActionAddTaxonomy:
		out.Taxonomies = AddMembers(repo.Taxonomies, change.Taxonomies)
	case ActionRemoveTaxonomy:
		out.Taxonomies = RemoveMembers(repo.Taxonomies, change.Taxonomies, taxonomyKey)
	}
	return out
}

// AddMembers appends entries to current without de-duplication.
func AddMembers[T any](current, entries []T) []T {
	out := make([]T, 0, len(current)+len(entries))
	out = append(out, current...)
	return append(out, entries...)
}

// RemoveMembers removes the first occurrence of each entry from current.
// Entries not present are skipped.
func RemoveMembers[T any](current, entries []T, key func(T) string) []T {
	out := make([]T, len(current))
	copy(out, current)
	for _, e := range entries {
		k := key(e)
		for i, c := range out {
			if key(c) == k {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out
}

func typeKey(t domain.TypeRef) string         { return strings.ToLower(t.Name) }
func channelKey(c domain.ChannelRef) string   { return c.ID }
func taxonomyKey(t domain.TaxonomyRef) string { return t.ID }
