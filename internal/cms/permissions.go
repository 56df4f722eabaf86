package cms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"sitesctl/internal/domain"
)

// resourcePaths maps resource kinds to their collection path.
var resourcePaths = map[string]string{
	domain.ResourceRepository: "repositories",
	domain.ResourceType:       "types",
	domain.ResourceChannel:    "channels",
}

func resourcePath(ref domain.ResourceRef) (string, error) {
	p, ok := resourcePaths[ref.Kind]
	if !ok {
		return "", domain.ErrValidation("unsupported resource kind %q", ref.Kind)
	}
	return fmt.Sprintf("%s/%s/%s", managementPath, p, url.PathEscape(ref.Key())), nil
}

// GetResourcePermissions returns the grants on a repository, type or channel.
func (c *Client) GetResourcePermissions(ctx context.Context, ref domain.ResourceRef) (*domain.ResourcePermissions, error) {
	path, err := resourcePath(ref)
	if err != nil {
		return nil, err
	}
	var out struct {
		Items []domain.Permission `json:"items"`
	}
	if err := c.get(ctx, path+"/permissions", nil, &out); err != nil {
		return nil, err
	}
	return &domain.ResourcePermissions{Resource: ref.Key(), Permissions: out.Items}, nil
}

type permissionResource struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

type permissionPrincipal struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type"`
	GroupType string `json:"groupType,omitempty"`
}

type permissionRole struct {
	Name  string                `json:"name"`
	Users []permissionPrincipal `json:"users"`
}

type permissionBody struct {
	Resource permissionResource    `json:"resource"`
	Roles    []permissionRole      `json:"roles,omitempty"`
	Users    []permissionPrincipal `json:"users,omitempty"`
}

// permissionPrincipals lists users and groups in the shape the permission
// operations endpoint expects.
func permissionPrincipals(users []domain.User, groups []domain.Group) []permissionPrincipal {
	out := make([]permissionPrincipal, 0, len(users)+len(groups))
	for _, u := range users {
		out = append(out, permissionPrincipal{ID: u.LoginName, Type: domain.PrincipalUser})
	}
	for _, g := range groups {
		out = append(out, permissionPrincipal{
			ID:        g.ID,
			Name:      g.Name,
			Type:      domain.PrincipalGroup,
			GroupType: g.GroupOriginType,
		})
	}
	return out
}

// PerformPermissionOperation shares or unshares a resource. Repositories and
// channels are addressed by id, types by name.
func (c *Client) PerformPermissionOperation(ctx context.Context, op domain.PermissionOperation) (*domain.PermissionResult, error) {
	if _, ok := resourcePaths[op.Resource.Kind]; !ok {
		return nil, domain.ErrValidation("unsupported resource kind %q", op.Resource.Kind)
	}
	res := permissionResource{Type: op.Resource.Kind}
	if op.Resource.ID != "" {
		res.ID = op.Resource.ID
	} else {
		res.Name = op.Resource.Name
	}

	principals := permissionPrincipals(op.Users, op.Groups)
	body := permissionBody{Resource: res}
	switch op.Operation {
	case domain.OperationShare:
		body.Roles = []permissionRole{{Name: op.Role, Users: principals}}
	case domain.OperationUnshare:
		body.Users = principals
	default:
		return nil, domain.ErrValidation("unsupported permission operation %q", op.Operation)
	}

	var out struct {
		Operations map[string]struct {
			Resource struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"resource"`
			Roles []struct {
				Users []permissionPrincipal `json:"users"`
			} `json:"roles"`
			Users []permissionPrincipal `json:"users"`
		} `json:"operations"`
	}
	reqBody := map[string]interface{}{
		"operations": map[string]permissionBody{op.Operation: body},
	}
	if err := c.send(ctx, http.MethodPost, managementPath+"/permissionOperations", reqBody, &out); err != nil {
		return nil, err
	}

	result := &domain.PermissionResult{}
	if o, ok := out.Operations[op.Operation]; ok {
		result.ResourceName = o.Resource.Name
		grantees := o.Users
		for _, r := range o.Roles {
			grantees = append(grantees, r.Users...)
		}
		for _, g := range grantees {
			name := g.Name
			if name == "" {
				name = g.ID
			}
			result.Grantees = append(result.Grantees, domain.Grantee{Name: name, Type: g.Type})
		}
	}
	return result, nil
}
