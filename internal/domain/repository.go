package domain

import "encoding/json"

// TypeRef is a content type associated with a repository. Types are
// referenced by name.
type TypeRef struct {
	Name string `json:"name"`
}

// ChannelRef is a channel associated with a repository.
type ChannelRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TaxonomyRef is a taxonomy associated with a repository.
type TaxonomyRef struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	ShortName string `json:"shortName,omitempty"`
}

// Repository is a named container of content items with associated content
// types, channels and taxonomies. The membership slices are positional.
type Repository struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	DefaultLanguage string        `json:"defaultLanguage,omitempty"`
	ContentTypes    []TypeRef     `json:"contentTypes"`
	Channels        []ChannelRef  `json:"channels"`
	Taxonomies      []TaxonomyRef `json:"taxonomies"`

	// Raw is the repository as the server returned it. Updates send it back
	// with only the membership collections replaced.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the repository and keeps a copy of data in Raw.
func (r *Repository) UnmarshalJSON(data []byte) error {
	type plain Repository
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Repository(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// CreateRepositoryRequest holds parameters for creating a repository.
type CreateRepositoryRequest struct {
	Name            string
	Description     string
	DefaultLanguage string
	ContentTypes    []TypeRef
	Channels        []ChannelRef
}

// Validate checks that the request is well-formed.
func (r *CreateRepositoryRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("repository name is required")
	}
	return nil
}

// Collection is a named grouping of items inside a repository.
type Collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaxonomyStatePromoted marks a taxonomy version usable for assignment.
const TaxonomyStatePromoted = "promoted"

// Taxonomy is a hierarchical classification.
type Taxonomy struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ShortName       string          `json:"shortName,omitempty"`
	AvailableStates []TaxonomyState `json:"availableStates"`
}

// TaxonomyState is one version state of a taxonomy.
type TaxonomyState struct {
	Status    string `json:"status"`
	Published bool   `json:"published"`
}

// HasPromotedState reports whether any available state is promoted.
func (t Taxonomy) HasPromotedState() bool {
	for _, s := range t.AvailableStates {
		if s.Status == TaxonomyStatePromoted {
			return true
		}
	}
	return false
}

// Ref returns the membership reference for t.
func (t Taxonomy) Ref() TaxonomyRef {
	return TaxonomyRef{ID: t.ID, Name: t.Name, ShortName: t.ShortName}
}

// LocalizationPolicy is a named set of required, optional and default languages.
type LocalizationPolicy struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	DefaultLanguage   string   `json:"defaultValue"`
	RequiredLanguages []string `json:"requiredValues"`
	OptionalLanguages []string `json:"optionalValues"`
}

// CreateLocalizationPolicyRequest holds parameters for creating a localization policy.
type CreateLocalizationPolicyRequest struct {
	Name              string
	Description       string
	DefaultLanguage   string
	RequiredLanguages []string
	OptionalLanguages []string
}

// Validate checks that the request is well-formed.
func (r *CreateLocalizationPolicyRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("localization policy name is required")
	}
	if len(r.RequiredLanguages) == 0 {
		return ErrValidation("at least one required language is needed")
	}
	if r.DefaultLanguage == "" {
		return ErrValidation("default language is required")
	}
	return nil
}
