package service

import (
	"strings"

	"sitesctl/internal/domain"
)

// Resolution is the outcome of resolving user-supplied names against a
// candidate set.
type Resolution[T any] struct {
	// Resolved holds the matched candidates in the order of the names.
	Resolved []T
	// Names holds the supplied names that matched, parallel to Resolved.
	Names []string
	// Missing holds the supplied names that matched nothing.
	Missing []string
}

// Resolve matches every name to the first candidate whose key equals it
// case-insensitively.
func Resolve[T any](names []string, candidates []T, key func(T) string) Resolution[T] {
	var res Resolution[T]
	for _, name := range names {
		found := false
		for _, c := range candidates {
			if strings.EqualFold(name, key(c)) {
				res.Resolved = append(res.Resolved, c)
				res.Names = append(res.Names, name)
				found = true
				break
			}
		}
		if !found {
			res.Missing = append(res.Missing, name)
		}
	}
	return res
}

// ResolveTaxonomies resolves taxonomy names and drops the ones without a
// promoted state. Those names are returned separately from the missing ones.
func ResolveTaxonomies(names []string, candidates []domain.Taxonomy) (Resolution[domain.Taxonomy], []string) {
	matched := Resolve(names, candidates, taxonomyName)

	res := Resolution[domain.Taxonomy]{Missing: matched.Missing}
	var unpromoted []string
	for i, tax := range matched.Resolved {
		if !tax.HasPromotedState() {
			unpromoted = append(unpromoted, matched.Names[i])
			continue
		}
		res.Resolved = append(res.Resolved, tax)
		res.Names = append(res.Names, matched.Names[i])
	}
	return res, unpromoted
}

func repositoryName(r domain.Repository) string   { return r.Name }
func channelName(c domain.Channel) string         { return c.Name }
func taxonomyName(t domain.Taxonomy) string       { return t.Name }
func userLoginName(u domain.User) string          { return u.LoginName }
func groupName(g domain.Group) string             { return g.Name }
func contentTypeName(t domain.ContentType) string { return t.Name }
