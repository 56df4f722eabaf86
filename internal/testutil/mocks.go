// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sync"

	"sitesctl/internal/domain"
)

// === Server Mock ===

// MockServer implements domain.Server for testing. Calls without a matching
// Fn panic, except Login which succeeds by default. Mutating calls are
// recorded for assertions.
type MockServer struct {
	LoginFn                      func(ctx context.Context) (*domain.SessionInfo, error)
	ListRepositoriesFn           func(ctx context.Context) ([]domain.Repository, error)
	GetRepositoryByNameFn        func(ctx context.Context, name string) (*domain.Repository, error)
	CreateRepositoryFn           func(ctx context.Context, req domain.CreateRepositoryRequest) (*domain.Repository, error)
	UpdateRepositoryFn           func(ctx context.Context, repo *domain.Repository) (*domain.Repository, error)
	GetCollectionByNameFn        func(ctx context.Context, repositoryID, name string) (*domain.Collection, error)
	GetContentTypeFn             func(ctx context.Context, name string, expand bool) (*domain.ContentType, error)
	CreateContentTypeFn          func(ctx context.Context, def domain.TypeDefinition) (*domain.ContentType, error)
	UpdateContentTypeFn          func(ctx context.Context, def domain.TypeDefinition) (*domain.ContentType, error)
	ListChannelsFn               func(ctx context.Context) ([]domain.Channel, error)
	GetChannelByNameFn           func(ctx context.Context, name string) (*domain.Channel, error)
	CreateChannelFn              func(ctx context.Context, req domain.CreateChannelRequest) (*domain.Channel, error)
	ListTaxonomiesFn             func(ctx context.Context) ([]domain.Taxonomy, error)
	ListLocalizationPoliciesFn   func(ctx context.Context) ([]domain.LocalizationPolicy, error)
	CreateLocalizationPolicyFn   func(ctx context.Context, req domain.CreateLocalizationPolicyRequest) (*domain.LocalizationPolicy, error)
	GetGroupByNameFn             func(ctx context.Context, name string) (*domain.Group, error)
	FindUsersFn                  func(ctx context.Context, name string) ([]domain.User, error)
	GetResourcePermissionsFn     func(ctx context.Context, ref domain.ResourceRef) (*domain.ResourcePermissions, error)
	PerformPermissionOperationFn func(ctx context.Context, op domain.PermissionOperation) (*domain.PermissionResult, error)
	QueryItemsFn                 func(ctx context.Context, q domain.ItemQuery) ([]domain.Asset, error)
	DeleteFileFn                 func(ctx context.Context, fileID string) error

	mu         sync.Mutex
	Updated    []domain.Repository
	Operations []domain.PermissionOperation
	Created    []string
	Deleted    []string
}

var _ domain.Server = (*MockServer)(nil)

func (m *MockServer) Login(ctx context.Context) (*domain.SessionInfo, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx)
	}
	return &domain.SessionInfo{ServerURL: "http://cms.test", User: "admin", AuthMode: "basic"}, nil
}

func (m *MockServer) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	if m.ListRepositoriesFn != nil {
		return m.ListRepositoriesFn(ctx)
	}
	panic("unexpected call to MockServer.ListRepositories")
}

func (m *MockServer) GetRepositoryByName(ctx context.Context, name string) (*domain.Repository, error) {
	if m.GetRepositoryByNameFn != nil {
		return m.GetRepositoryByNameFn(ctx, name)
	}
	panic("unexpected call to MockServer.GetRepositoryByName")
}

func (m *MockServer) CreateRepository(ctx context.Context, req domain.CreateRepositoryRequest) (*domain.Repository, error) {
	if m.CreateRepositoryFn != nil {
		return m.CreateRepositoryFn(ctx, req)
	}
	panic("unexpected call to MockServer.CreateRepository")
}

func (m *MockServer) UpdateRepository(ctx context.Context, repo *domain.Repository) (*domain.Repository, error) {
	m.mu.Lock()
	m.Updated = append(m.Updated, *repo)
	m.mu.Unlock()
	if m.UpdateRepositoryFn != nil {
		return m.UpdateRepositoryFn(ctx, repo)
	}
	return repo, nil
}

func (m *MockServer) GetCollectionByName(ctx context.Context, repositoryID, name string) (*domain.Collection, error) {
	if m.GetCollectionByNameFn != nil {
		return m.GetCollectionByNameFn(ctx, repositoryID, name)
	}
	panic("unexpected call to MockServer.GetCollectionByName")
}

func (m *MockServer) GetContentType(ctx context.Context, name string, expand bool) (*domain.ContentType, error) {
	if m.GetContentTypeFn != nil {
		return m.GetContentTypeFn(ctx, name, expand)
	}
	panic("unexpected call to MockServer.GetContentType")
}

func (m *MockServer) CreateContentType(ctx context.Context, def domain.TypeDefinition) (*domain.ContentType, error) {
	m.mu.Lock()
	m.Created = append(m.Created, def.Name)
	m.mu.Unlock()
	if m.CreateContentTypeFn != nil {
		return m.CreateContentTypeFn(ctx, def)
	}
	return &domain.ContentType{Name: def.Name, Definition: def}, nil
}

func (m *MockServer) UpdateContentType(ctx context.Context, def domain.TypeDefinition) (*domain.ContentType, error) {
	if m.UpdateContentTypeFn != nil {
		return m.UpdateContentTypeFn(ctx, def)
	}
	return &domain.ContentType{Name: def.Name, Definition: def}, nil
}

func (m *MockServer) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	if m.ListChannelsFn != nil {
		return m.ListChannelsFn(ctx)
	}
	panic("unexpected call to MockServer.ListChannels")
}

func (m *MockServer) GetChannelByName(ctx context.Context, name string) (*domain.Channel, error) {
	if m.GetChannelByNameFn != nil {
		return m.GetChannelByNameFn(ctx, name)
	}
	panic("unexpected call to MockServer.GetChannelByName")
}

func (m *MockServer) CreateChannel(ctx context.Context, req domain.CreateChannelRequest) (*domain.Channel, error) {
	if m.CreateChannelFn != nil {
		return m.CreateChannelFn(ctx, req)
	}
	panic("unexpected call to MockServer.CreateChannel")
}

func (m *MockServer) ListTaxonomies(ctx context.Context) ([]domain.Taxonomy, error) {
	if m.ListTaxonomiesFn != nil {
		return m.ListTaxonomiesFn(ctx)
	}
	panic("unexpected call to MockServer.ListTaxonomies")
}

func (m *MockServer) ListLocalizationPolicies(ctx context.Context) ([]domain.LocalizationPolicy, error) {
	if m.ListLocalizationPoliciesFn != nil {
		return m.ListLocalizationPoliciesFn(ctx)
	}
	panic("unexpected call to MockServer.ListLocalizationPolicies")
}

func (m *MockServer) CreateLocalizationPolicy(ctx context.Context, req domain.CreateLocalizationPolicyRequest) (*domain.LocalizationPolicy, error) {
	if m.CreateLocalizationPolicyFn != nil {
		return m.CreateLocalizationPolicyFn(ctx, req)
	}
	panic("unexpected call to MockServer.CreateLocalizationPolicy")
}

func (m *MockServer) GetGroupByName(ctx context.Context, name string) (*domain.Group, error) {
	if m.GetGroupByNameFn != nil {
		return m.GetGroupByNameFn(ctx, name)
	}
	panic("unexpected call to MockServer.GetGroupByName")
}

func (m *MockServer) FindUsers(ctx context.Context, name string) ([]domain.User, error) {
	if m.FindUsersFn != nil {
		return m.FindUsersFn(ctx, name)
	}
	panic("unexpected call to MockServer.FindUsers")
}

func (m *MockServer) GetResourcePermissions(ctx context.Context, ref domain.ResourceRef) (*domain.ResourcePermissions, error) {
	if m.GetResourcePermissionsFn != nil {
		return m.GetResourcePermissionsFn(ctx, ref)
	}
	panic("unexpected call to MockServer.GetResourcePermissions")
}

func (m *MockServer) PerformPermissionOperation(ctx context.Context, op domain.PermissionOperation) (*domain.PermissionResult, error) {
	m.mu.Lock()
	m.Operations = append(m.Operations, op)
	m.mu.Unlock()
	if m.PerformPermissionOperationFn != nil {
		return m.PerformPermissionOperationFn(ctx, op)
	}
	return &domain.PermissionResult{ResourceName: op.Resource.Key()}, nil
}

func (m *MockServer) QueryItems(ctx context.Context, q domain.ItemQuery) ([]domain.Asset, error) {
	if m.QueryItemsFn != nil {
		return m.QueryItemsFn(ctx, q)
	}
	panic("unexpected call to MockServer.QueryItems")
}

func (m *MockServer) DeleteFile(ctx context.Context, fileID string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, fileID)
	m.mu.Unlock()
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(ctx, fileID)
	}
	return nil
}

// === Component Transfer Mock ===

// MockComponentTransfer implements domain.ComponentTransfer for testing.
type MockComponentTransfer struct {
	DownloadComponentsFn func(ctx context.Context, names []string) error
	ExportComponentsFn   func(ctx context.Context, names []string) (map[string]string, error)
	UploadComponentFn    func(ctx context.Context, name, archivePath string) (string, error)

	mu         sync.Mutex
	Downloaded []string
	Uploaded   []string
}

var _ domain.ComponentTransfer = (*MockComponentTransfer)(nil)

func (m *MockComponentTransfer) DownloadComponents(ctx context.Context, names []string) error {
	m.mu.Lock()
	m.Downloaded = append(m.Downloaded, names...)
	m.mu.Unlock()
	if m.DownloadComponentsFn != nil {
		return m.DownloadComponentsFn(ctx, names)
	}
	return nil
}

func (m *MockComponentTransfer) ExportComponents(ctx context.Context, names []string) (map[string]string, error) {
	if m.ExportComponentsFn != nil {
		return m.ExportComponentsFn(ctx, names)
	}
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = "dist/" + n + ".zip"
	}
	return out, nil
}

func (m *MockComponentTransfer) UploadComponent(ctx context.Context, name, archivePath string) (string, error) {
	m.mu.Lock()
	m.Uploaded = append(m.Uploaded, name)
	m.mu.Unlock()
	if m.UploadComponentFn != nil {
		return m.UploadComponentFn(ctx, name, archivePath)
	}
	return "file-" + name, nil
}
