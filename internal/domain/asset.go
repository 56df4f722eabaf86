package domain

// ItemStatusPublished is the status of items visible through delivery.
const ItemStatusPublished = "published"

// Asset is a content item or digital asset returned by an item query.
type Asset struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Slug   string `json:"slug,omitempty"`
	Size   *int64 `json:"size,omitempty"`
}

// ItemQuery is a filtered query over content items.
type ItemQuery struct {
	Q                     string
	Fields                string
	IncludeAdditionalData bool
}
