package cms

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type requestRecorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *requestRecorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *requestRecorder) {
	t.Helper()
	reqs := &requestRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs.mu.Lock()
		reqs.reqs = append(reqs.reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		reqs.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	user, pass := "admin", "secret"
	if token != "" {
		user, pass = "", ""
	}
	return NewClient(api.NewClient(srv.URL, user, pass, token)), reqs
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func TestLogin(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"items": []interface{}{}})
		})
		info, err := c.Login(t.Context())
		require.NoError(t, err)
		assert.Equal(t, AuthBasic, info.AuthMode)
		assert.Equal(t, "admin", info.User)
		require.Len(t, reqs.all(), 1)
		assert.Equal(t, "/content/management/api/v1.1/repositories", reqs.all()[0].Path)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"title": "Unauthorized"})
		})
		_, err := c.Login(t.Context())
		var connErr *domain.ConnectionError
		require.ErrorAs(t, err, &connErr)
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	})

	t.Run("bearer subject", func(t *testing.T) {
		tok := signedToken(t, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()})
		c, _ := newTestClient(t, tok, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer "+tok, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"items": []interface{}{}})
		})
		info, err := c.Login(t.Context())
		require.NoError(t, err)
		assert.Equal(t, AuthBearer, info.AuthMode)
		assert.Equal(t, "alice", info.User)
	})

	t.Run("expired token fails without request", func(t *testing.T) {
		tok := signedToken(t, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(-time.Hour).Unix()})
		c, reqs := newTestClient(t, tok, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		_, err := c.Login(t.Context())
		var connErr *domain.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Contains(t, err.Error(), "token expired")
		assert.Empty(t, reqs.all())
	})
}

func TestParseToken(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	tok := signedToken(t, jwt.MapClaims{"sub": "bob", "iss": "idcs", "exp": exp.Unix()})

	info, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "bob", info.Subject)
	assert.Equal(t, "idcs", info.Issuer)
	assert.True(t, exp.Equal(info.ExpiresAt))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Second)))

	_, err = ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestListRepositories_Pages(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"items":   []map[string]interface{}{{"id": "R1", "name": "Site", "contentTypes": []map[string]string{{"name": "Blog"}}}},
				"hasMore": true,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items":   []map[string]interface{}{{"id": "R2", "name": "Docs"}},
			"hasMore": false,
		})
	})

	repos, err := c.ListRepositories(t.Context())
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "R1", repos[0].ID)
	assert.Equal(t, []domain.TypeRef{{Name: "Blog"}}, repos[0].ContentTypes)
	assert.Equal(t, "Docs", repos[1].Name)
	assert.Len(t, reqs.all(), 2)
}

func TestGetRepositoryByName(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": []map[string]interface{}{{"id": "R1", "name": "Site Repo"}},
		})
	})

	repo, err := c.GetRepositoryByName(t.Context(), "site repo")
	require.NoError(t, err)
	assert.Equal(t, "R1", repo.ID)
	assert.Contains(t, reqs.all()[0].Query, "q=%28name+eq+%22site+repo%22%29")

	_, err = c.GetRepositoryByName(t.Context(), "other")
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateRepository_KeepsServerFields(t *testing.T) {
	const stored = `{"id":"R1","name":"Site","repositoryType":"Standard","languageOptions":["en-US","fr-FR"],` +
		`"contentTypes":[{"name":"Blog","displayName":"Blog post"}],` +
		`"channels":[{"id":"C1","name":"web","link":{"href":"/channels/C1"}},{"id":"C2","name":"mobile"}],` +
		`"taxonomies":[]}`
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"items":[`+stored+`],"hasMore":false}`)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "R1", "name": "Site"})
	})

	repo, err := c.GetRepositoryByName(t.Context(), "Site")
	require.NoError(t, err)
	repo.ContentTypes = append(repo.ContentTypes, domain.TypeRef{Name: "News"})
	repo.Channels = repo.Channels[:1]
	repo.Taxonomies = append(repo.Taxonomies, domain.TaxonomyRef{ID: "X1", Name: "Topics"})

	_, err = c.UpdateRepository(t.Context(), repo)
	require.NoError(t, err)

	put := reqs.all()[1]
	assert.Equal(t, http.MethodPut, put.Method)
	assert.Equal(t, "/content/management/api/v1.1/repositories/R1", put.Path)
	assert.JSONEq(t, `{"id":"R1","name":"Site","repositoryType":"Standard","languageOptions":["en-US","fr-FR"],`+
		`"contentTypes":[{"name":"Blog","displayName":"Blog post"},{"name":"News"}],`+
		`"channels":[{"id":"C1","name":"web","link":{"href":"/channels/C1"}}],`+
		`"taxonomies":[{"id":"X1","name":"Topics"}]}`, put.Body)
}

func TestUpdateRepository_WithoutServerCopy(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"id": "R1", "name": "Site"})
	})

	_, err := c.UpdateRepository(t.Context(), &domain.Repository{ID: "R1", Name: "Site"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"R1","name":"Site","contentTypes":[],"channels":[],"taxonomies":[]}`, reqs.all()[0].Body)
}

func TestGetContentType(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/content/management/api/v1.1/types/Blog" {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"id":         "T1",
				"name":       "Blog",
				"properties": map[string]interface{}{"customForms": []string{"form1"}},
			})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
	})

	ct, err := c.GetContentType(t.Context(), "Blog", true)
	require.NoError(t, err)
	assert.Equal(t, "T1", ct.ID)
	assert.Equal(t, "Blog", ct.Name)
	assert.Equal(t, []string{"form1"}, ct.Definition.CustomForms())
	assert.Equal(t, "expand=all", reqs.all()[0].Query)

	_, err = c.GetContentType(t.Context(), "Missing", false)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "type Missing does not exist", err.Error())
}

func TestUpdateContentType_SendsDefinitionVerbatim(t *testing.T) {
	raw := `{"name":"Blog","fields":[{"name":"title"}]}`
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"id": "T1", "name": "Blog"})
	})
	def, err := domain.NewTypeDefinition([]byte(raw))
	require.NoError(t, err)

	ct, err := c.UpdateContentType(t.Context(), def)
	require.NoError(t, err)
	assert.Equal(t, "Blog", ct.Name)
	assert.Equal(t, http.MethodPut, reqs.all()[0].Method)
	assert.Equal(t, "/content/management/api/v1.1/types/Blog", reqs.all()[0].Path)
	assert.Equal(t, raw, reqs.all()[0].Body)
}

func TestGetResourcePermissions_Paths(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": []map[string]string{{"id": "alice", "roleName": "viewer", "type": "user"}},
		})
	})

	perms, err := c.GetResourcePermissions(t.Context(), domain.ResourceRef{Kind: domain.ResourceRepository, ID: "R1", Name: "Site"})
	require.NoError(t, err)
	require.Len(t, perms.Permissions, 1)
	assert.Equal(t, "alice", perms.Permissions[0].ID)

	_, err = c.GetResourcePermissions(t.Context(), domain.ResourceRef{Kind: domain.ResourceType, Name: "Blog"})
	require.NoError(t, err)

	assert.Equal(t, "/content/management/api/v1.1/repositories/R1/permissions", reqs.all()[0].Path)
	assert.Equal(t, "/content/management/api/v1.1/types/Blog/permissions", reqs.all()[1].Path)
}

func TestPerformPermissionOperation(t *testing.T) {
	users := []domain.User{{ID: "U1", LoginName: "alice"}}
	groups := []domain.Group{{ID: "G1", Name: "Editors", GroupOriginType: "CEC"}}

	t.Run("share", func(t *testing.T) {
		c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"operations": map[string]interface{}{
					"share": map[string]interface{}{
						"resource": map[string]string{"id": "R1", "name": "Site"},
						"roles": []map[string]interface{}{{
							"name":  "viewer",
							"users": []map[string]string{{"id": "alice", "type": "user"}, {"id": "G1", "name": "Editors", "type": "group"}},
						}},
					},
				},
			})
		})

		res, err := c.PerformPermissionOperation(t.Context(), domain.PermissionOperation{
			Operation: domain.OperationShare,
			Resource:  domain.ResourceRef{Kind: domain.ResourceRepository, ID: "R1"},
			Role:      "viewer",
			Users:     users,
			Groups:    groups,
		})
		require.NoError(t, err)
		assert.Equal(t, "Site", res.ResourceName)
		assert.Equal(t, []domain.Grantee{{Name: "alice", Type: "user"}, {Name: "Editors", Type: "group"}}, res.Grantees)

		assert.Equal(t, "/content/management/api/v1.1/permissionOperations", reqs.all()[0].Path)
		assert.JSONEq(t, `{"operations":{"share":{
			"resource":{"id":"R1","type":"repository"},
			"roles":[{"name":"viewer","users":[
				{"id":"alice","type":"user"},
				{"id":"G1","name":"Editors","type":"group","groupType":"CEC"}
			]}]
		}}}`, reqs.all()[0].Body)
	})

	t.Run("unshare by name", func(t *testing.T) {
		c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"operations": map[string]interface{}{}})
		})

		_, err := c.PerformPermissionOperation(t.Context(), domain.PermissionOperation{
			Operation: domain.OperationUnshare,
			Resource:  domain.ResourceRef{Kind: domain.ResourceType, Name: "Blog"},
			Users:     users,
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"operations":{"unshare":{
			"resource":{"name":"Blog","type":"type"},
			"users":[{"id":"alice","type":"user"}]
		}}}`, reqs.all()[0].Body)
	})

	t.Run("server error", func(t *testing.T) {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad role"})
		})
		_, err := c.PerformPermissionOperation(t.Context(), domain.PermissionOperation{
			Operation: domain.OperationShare,
			Resource:  domain.ResourceRef{Kind: domain.ResourceChannel, ID: "C1"},
			Role:      "viewer",
			Users:     users,
		})
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "bad role", apiErr.Message)
	})
}

func TestFindUsersAndGroups(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/osn/social/api/v1/people":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"items": []map[string]string{{"id": "U1", "loginName": "alice"}, {"id": "U2", "loginName": "alice2"}},
			})
		case "/osn/social/api/v1/groups/Editors":
			writeJSON(w, http.StatusOK, map[string]string{"id": "G1", "name": "Editors", "groupOriginType": "CEC"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"title": "no such group"})
		}
	})

	users, err := c.FindUsers(t.Context(), "alice")
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "limit=100&offset=0&q=alice", reqs.all()[0].Query)

	g, err := c.GetGroupByName(t.Context(), "Editors")
	require.NoError(t, err)
	assert.Equal(t, "CEC", g.GroupOriginType)

	_, err = c.GetGroupByName(t.Context(), "Nobody")
	assert.True(t, domain.IsNotFound(err))
}

func TestFindUsers_ReadsEveryPage(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"items":   []map[string]string{{"id": "U2", "loginName": "alice2"}},
				"hasMore": true,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items":   []map[string]string{{"id": "U1", "loginName": "alice"}},
			"hasMore": false,
		})
	})

	users, err := c.FindUsers(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[1].LoginName)
	require.Len(t, reqs.all(), 2)
	assert.Equal(t, "limit=100&offset=1&q=alice", reqs.all()[1].Query)
}

func TestQueryItems(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": "I1", "type": "Image", "name": "a.png", "status": "published", "fields": map[string]interface{}{"size": 2048}},
				{"id": "I2", "type": "Blog", "name": "post", "status": "draft", "fields": map[string]interface{}{}},
			},
		})
	})

	items, err := c.QueryItems(t.Context(), domain.ItemQuery{
		Q:                     `(repositoryId eq "R1")`,
		Fields:                "name,status,slug",
		IncludeAdditionalData: true,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Size)
	assert.Equal(t, int64(2048), *items[0].Size)
	assert.Nil(t, items[1].Size)

	q := reqs.all()[0].Query
	assert.Contains(t, q, "includeAdditionalData=true")
	assert.Contains(t, q, "fields=name%2Cstatus%2Cslug")
}

func TestCreateLocalizationPolicy_Body(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": "L1", "name": "Global"})
	})

	p, err := c.CreateLocalizationPolicy(t.Context(), domain.CreateLocalizationPolicyRequest{
		Name:              "Global",
		DefaultLanguage:   "en-US",
		RequiredLanguages: []string{"en-US", "fr-FR"},
	})
	require.NoError(t, err)
	assert.Equal(t, "L1", p.ID)
	assert.JSONEq(t, `{"name":"Global","description":"","defaultValue":"en-US",
		"requiredValues":["en-US","fr-FR"],"optionalValues":[]}`, reqs.all()[0].Body)
}
