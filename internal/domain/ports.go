package domain

import "context"

// Session establishes an authenticated connection to the server.
// Implemented by cms.Client.
type Session interface {
	Login(ctx context.Context) (*SessionInfo, error)
}

// SessionInfo describes an established session.
type SessionInfo struct {
	ServerURL string
	User      string
	AuthMode  string
}

// RepositoryAPI manages repositories and their collections.
type RepositoryAPI interface {
	ListRepositories(ctx context.Context) ([]Repository, error)
	// GetRepositoryByName returns a *NotFoundError when no repository matches.
	GetRepositoryByName(ctx context.Context, name string) (*Repository, error)
	CreateRepository(ctx context.Context, req CreateRepositoryRequest) (*Repository, error)
	UpdateRepository(ctx context.Context, repo *Repository) (*Repository, error)
	GetCollectionByName(ctx context.Context, repositoryID, name string) (*Collection, error)
}

// ContentTypeAPI manages content type definitions.
type ContentTypeAPI interface {
	// GetContentType returns a *NotFoundError when the type does not exist.
	GetContentType(ctx context.Context, name string, expand bool) (*ContentType, error)
	CreateContentType(ctx context.Context, def TypeDefinition) (*ContentType, error)
	UpdateContentType(ctx context.Context, def TypeDefinition) (*ContentType, error)
}

// ChannelAPI manages channels.
type ChannelAPI interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	GetChannelByName(ctx context.Context, name string) (*Channel, error)
	CreateChannel(ctx context.Context, req CreateChannelRequest) (*Channel, error)
}

// TaxonomyAPI lists taxonomies.
type TaxonomyAPI interface {
	ListTaxonomies(ctx context.Context) ([]Taxonomy, error)
}

// LocalizationPolicyAPI manages localization policies.
type LocalizationPolicyAPI interface {
	ListLocalizationPolicies(ctx context.Context) ([]LocalizationPolicy, error)
	CreateLocalizationPolicy(ctx context.Context, req CreateLocalizationPolicyRequest) (*LocalizationPolicy, error)
}

// PrincipalAPI looks up users and groups.
type PrincipalAPI interface {
	GetGroupByName(ctx context.Context, name string) (*Group, error)
	// FindUsers returns the users whose names match the search term.
	FindUsers(ctx context.Context, name string) ([]User, error)
}

// PermissionAPI reads and changes grants on resources.
type PermissionAPI interface {
	GetResourcePermissions(ctx context.Context, ref ResourceRef) (*ResourcePermissions, error)
	PerformPermissionOperation(ctx context.Context, op PermissionOperation) (*PermissionResult, error)
}

// ItemAPI queries content items.
type ItemAPI interface {
	QueryItems(ctx context.Context, q ItemQuery) ([]Asset, error)
}

// DocumentAPI manages uploaded files.
type DocumentAPI interface {
	DeleteFile(ctx context.Context, fileID string) error
}

// Server is every collaborator operation the workflows call.
type Server interface {
	Session
	RepositoryAPI
	ContentTypeAPI
	ChannelAPI
	TaxonomyAPI
	LocalizationPolicyAPI
	PrincipalAPI
	PermissionAPI
	ItemAPI
	DocumentAPI
}

// ComponentTransfer moves custom editor and form components between the
// local source tree and the server. Implemented by component.Transfer.
type ComponentTransfer interface {
	// DownloadComponents fetches the named components into the source tree.
	DownloadComponents(ctx context.Context, names []string) error
	// ExportComponents packages the named components and returns the archive
	// path of each, keyed by name.
	ExportComponents(ctx context.Context, names []string) (map[string]string, error)
	// UploadComponent imports and publishes one archive and returns the id of
	// the uploaded file, which the caller deletes afterwards.
	UploadComponent(ctx context.Context, name, archivePath string) (string, error)
}
