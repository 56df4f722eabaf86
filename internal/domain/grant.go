package domain

// Principal type constants.
const (
	PrincipalUser  = "user"
	PrincipalGroup = "group"
)

// Shareable resource kinds.
const (
	ResourceRepository = "repository"
	ResourceType       = "type"
	ResourceChannel    = "channel"
)

// Permission operations.
const (
	OperationShare   = "share"
	OperationUnshare = "unshare"
)

// Role names.
const (
	RoleManager     = "manager"
	RoleContributor = "contributor"
	RoleViewer      = "viewer"
)

// ValidateRole checks role against the roles a resource kind supports.
func ValidateRole(kind, role string) error {
	switch role {
	case RoleManager, RoleContributor:
		return nil
	case RoleViewer:
		if kind != ResourceChannel {
			return nil
		}
	case "":
		return ErrValidation("role is required")
	}
	if kind == ResourceChannel {
		return ErrValidation("role must be '%s' or '%s'", RoleManager, RoleContributor)
	}
	return ErrValidation("role must be '%s', '%s' or '%s'", RoleManager, RoleContributor, RoleViewer)
}

// ResourceRef identifies a shareable resource. Repositories and channels are
// addressed by ID, content types by Name.
type ResourceRef struct {
	Kind string
	ID   string
	Name string
}

// Key returns the identifier the server expects for the resource.
func (r ResourceRef) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// Permission is one existing grant on a resource. For users ID holds the
// login name; for groups FullName and GroupType identify the group.
type Permission struct {
	ID        string `json:"id"`
	RoleName  string `json:"roleName"`
	Type      string `json:"type"`
	GroupType string `json:"groupType,omitempty"`
	FullName  string `json:"fullName,omitempty"`
}

// ResourcePermissions is the grant list of a resource.
type ResourcePermissions struct {
	Resource    string
	Permissions []Permission
}

// PermissionOperation is a share or unshare call. Role is ignored for unshare.
type PermissionOperation struct {
	Operation string
	Resource  ResourceRef
	Role      string
	Users     []User
	Groups    []Group
}

// Grantee is a principal the server reports as affected by an operation.
type Grantee struct {
	Name string
	Type string
}

// PermissionResult is the server's report of a permission operation.
type PermissionResult struct {
	ResourceName string
	Grantees     []Grantee
}
