package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"sitesctl/internal/domain"
)

// itemFields are the item fields requested by an asset listing.
const itemFields = "name,status,slug"

// AssetListInput filters an asset listing. Every filter is optional, but a
// collection requires a repository.
type AssetListInput struct {
	Repository string
	Collection string
	Channel    string
	Query      string
}

// AssetGroup is the assets of one type, sorted by name.
type AssetGroup struct {
	Type  string         `json:"type"`
	Items []domain.Asset `json:"items"`
}

// AssetListing is the result of an asset query.
type AssetListing struct {
	Repository   *domain.Repository `json:"repository,omitempty"`
	Collection   *domain.Collection `json:"collection,omitempty"`
	Channel      *domain.Channel    `json:"channel,omitempty"`
	ChannelToken string             `json:"channel_token,omitempty"`
	Query        string             `json:"query"`
	Total        int                `json:"total"`
	TotalSize    int64              `json:"total_size"`
	// Items keeps the order the server returned.
	Items  []domain.Asset `json:"-"`
	Groups []AssetGroup   `json:"groups"`
}

// ListAssets resolves the filters, queries the matching items and groups
// them by type.
func (s *AssetService) ListAssets(ctx context.Context, in AssetListInput) (*AssetListing, error) {
	if in.Collection != "" && in.Repository == "" {
		s.report.Error("no repository is specified")
		return nil, domain.ErrValidation("a collection requires a repository")
	}
	if _, err := s.connect(ctx); err != nil {
		return nil, err
	}

	listing := &AssetListing{}
	if in.Repository != "" {
		repo, err := s.server.GetRepositoryByName(ctx, in.Repository)
		if err != nil {
			if domain.IsNotFound(err) {
				s.report.Error("repository %s not found", in.Repository)
			}
			return nil, err
		}
		listing.Repository = repo
		s.report.Progress("validate repository (Id: %s)", repo.ID)
	}
	if in.Collection != "" {
		coll, err := s.server.GetCollectionByName(ctx, listing.Repository.ID, in.Collection)
		if err != nil {
			if domain.IsNotFound(err) {
				s.report.Error("collection %s not found", in.Collection)
			}
			return nil, err
		}
		listing.Collection = coll
		s.report.Progress("validate collection (Id: %s)", coll.ID)
	}
	if in.Channel != "" {
		ch, err := s.server.GetChannelByName(ctx, in.Channel)
		if err != nil {
			if domain.IsNotFound(err) {
				s.report.Error("channel %s not found", in.Channel)
			}
			return nil, err
		}
		listing.Channel = ch
		listing.ChannelToken = SelectChannelToken(ch.Tokens)
		s.report.Progress("validate channel (Id: %s token: %s)", ch.ID, listing.ChannelToken)
	}

	var repoID, collID, chanID string
	if listing.Repository != nil {
		repoID = listing.Repository.ID
	}
	if listing.Collection != nil {
		collID = listing.Collection.ID
	}
	if listing.Channel != nil {
		chanID = listing.Channel.ID
	}
	listing.Query = BuildItemQuery(repoID, collID, chanID, in.Query)
	if listing.Query != "" {
		s.report.Progress("query: %s", listing.Query)
	} else {
		s.report.Progress("query all assets")
	}

	items, err := s.server.QueryItems(ctx, domain.ItemQuery{
		Q:                     listing.Query,
		Fields:                itemFields,
		IncludeAdditionalData: true,
	})
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	listing.Items = items
	listing.Total = len(items)
	listing.Groups = GroupAssets(items)
	listing.TotalSize = totalSize(items)
	s.report.Progress("total items: %d", listing.Total)
	return listing, nil
}

// ReportAssets writes the listing as a table, or as per-item URLs when
// showURLs is set, followed by the item count.
func (s *AssetService) ReportAssets(listing *AssetListing, showURLs bool) {
	if listing.Total == 0 {
		return
	}
	const header = "   %-15s %s"
	if listing.Repository != nil {
		s.report.Line(header, "Repository:", listing.Repository.Name)
	}
	if listing.Collection != nil {
		s.report.Line(header, "Collection:", listing.Collection.Name)
	}
	if listing.Channel != nil {
		s.report.Line(header, "Channel:", listing.Channel.Name)
	}
	s.report.Line(header, "Items:", "")

	if showURLs {
		for _, line := range AssetURLs(s.cfg.ServerURL, listing.Items, listing.ChannelToken) {
			s.report.Line("%s", line)
		}
	} else {
		for _, line := range AssetTable(listing.Groups) {
			s.report.Line("%s", line)
		}
	}
	s.report.Progress("total items: %d", listing.Total)
}

// BuildItemQuery joins the parenthesized filter clauses with AND. Empty
// arguments are left out; no filters give an empty query. Ids are quoted
// as given, without escaping.
func BuildItemQuery(repositoryID, collectionID, channelID, query string) string {
	var clauses []string
	if repositoryID != "" {
		clauses = append(clauses, `(repositoryId eq "`+repositoryID+`")`)
	}
	if collectionID != "" {
		clauses = append(clauses, `(collections co "`+collectionID+`")`)
	}
	if channelID != "" {
		clauses = append(clauses, `(channels co "`+channelID+`")`)
	}
	if query != "" {
		clauses = append(clauses, "("+query+")")
	}
	return strings.Join(clauses, " AND ")
}

// GroupAssets groups items by type. Groups are sorted by type and items by
// name, both by byte order; items with equal names keep their query order.
func GroupAssets(items []domain.Asset) []AssetGroup {
	byType := make(map[string][]domain.Asset)
	var types []string
	for _, item := range items {
		if _, ok := byType[item.Type]; !ok {
			types = append(types, item.Type)
		}
		byType[item.Type] = append(byType[item.Type], item)
	}
	sort.Strings(types)

	groups := make([]AssetGroup, 0, len(types))
	for _, t := range types {
		group := byType[t]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Name < group[j].Name })
		groups = append(groups, AssetGroup{Type: t, Items: group})
	}
	return groups
}

// AssetTable renders groups one item per row. The type is shown on the first
// row of each group only. A positive total size closes the table in KiB.
func AssetTable(groups []AssetGroup) []string {
	const row = "   %-38s %-38s %-11s %-10s %s"
	lines := []string{fmt.Sprintf(row, "Type", "Id", "Status", "Size", "Name")}
	var total int64
	for _, g := range groups {
		for i, item := range g.Items {
			typeLabel := ""
			if i == 0 {
				typeLabel = item.Type
			}
			sizeLabel := ""
			if item.Size != nil && *item.Size != 0 {
				total += *item.Size
				sizeLabel = strconv.FormatInt(*item.Size, 10)
			}
			lines = append(lines, fmt.Sprintf(row, typeLabel, item.ID, item.Status, sizeLabel, item.Name))
		}
	}
	lines = append(lines, "")
	if total > 0 {
		lines = append(lines, fmt.Sprintf(" - total file size: %dk", total/1024))
	}
	return lines
}

// AssetURLs renders the name and management URL of every item, plus the
// delivery URL of published items when a channel token is known.
func AssetURLs(serverURL string, items []domain.Asset, channelToken string) []string {
	const row = "   %s"
	var lines []string
	for _, item := range items {
		lines = append(lines,
			fmt.Sprintf(row, item.Name),
			fmt.Sprintf(row, serverURL+"/content/management/api/v1.1/items/"+item.ID),
		)
		if channelToken != "" && item.Status == domain.ItemStatusPublished {
			lines = append(lines, fmt.Sprintf(row, serverURL+"/content/published/api/v1.1/items/"+item.ID+"?channelToken="+channelToken))
		}
		lines = append(lines, "")
	}
	return lines
}

func totalSize(items []domain.Asset) int64 {
	var total int64
	for _, item := range items {
		if item.Size != nil {
			total += *item.Size
		}
	}
	return total
}
