package service

import (
	"bytes"
	"context"
	"testing"

	"sitesctl/internal/domain"
	"sitesctl/internal/testutil"
	"sitesctl/internal/typestore"
)

type testEnv struct {
	svc        *AssetService
	out        *bytes.Buffer
	server     *testutil.MockServer
	components *testutil.MockComponentTransfer
	types      *typestore.Store
}

func newTestEnv(t *testing.T, server *testutil.MockServer) *testEnv {
	t.Helper()
	out := &bytes.Buffer{}
	components := &testutil.MockComponentTransfer{}
	src := t.TempDir()
	types := typestore.New(src)
	svc := NewAssetService(server, components, types, NewReporter(out), nil, Config{
		ServerURL:  "http://cms.test",
		SourceDir:  src,
		ProjectDir: src,
	})
	return &testEnv{svc: svc, out: out, server: server, components: components, types: types}
}

func notFoundType(_ context.Context, name string, _ bool) (*domain.ContentType, error) {
	return nil, domain.ErrNotFound("type %s does not exist", name)
}

func contentTypes(names ...string) func(context.Context, string, bool) (*domain.ContentType, error) {
	return func(_ context.Context, name string, _ bool) (*domain.ContentType, error) {
		for _, n := range names {
			if n == name {
				def, _ := domain.NewTypeDefinition([]byte(`{"name":"` + n + `"}`))
				return &domain.ContentType{ID: "id-" + n, Name: n, Definition: def}, nil
			}
		}
		return nil, domain.ErrNotFound("type %s does not exist", name)
	}
}

func int64Ptr(v int64) *int64 { return &v }
