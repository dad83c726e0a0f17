package users_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gatehouse/internal/rbac"
	"github.com/odyssey-erp/gatehouse/internal/shared"
	"github.com/odyssey-erp/gatehouse/internal/users"
	"github.com/odyssey-erp/gatehouse/internal/view"
	_ "github.com/odyssey-erp/gatehouse/testing"
)

type adminEnv struct {
	router   chi.Router
	sessions *shared.SessionManager
	store    *users.MemoryStore
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	require.NoError(t, err)
	store := users.NewMemoryStore()
	for _, u := range []users.User{
		{Username: "alice", PasswordHash: "x", Role: shared.RoleUser, CreatedAt: time.Now().UTC()},
		{Username: "root", PasswordHash: "x", Role: shared.RoleAdmin, CreatedAt: time.Now().UTC()},
	} {
		require.NoError(t, store.InsertIfAbsent(context.Background(), u))
	}

	handler := users.NewHandler(nil, users.NewService(store), templates, rbac.Middleware{Templates: templates})
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return &adminEnv{
		router:   router,
		sessions: shared.NewSessionManager(client, "test_session", "secret", time.Hour, false),
		store:    store,
	}
}

// do serves a request as the given principal; nil means no session.
func (e *adminEnv) do(t *testing.T, method, path string, form url.Values, as *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	sess, err := e.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	if as != nil {
		e.sessions.Establish(sess, *as)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	e.router.ServeHTTP(res, req)
	return res
}

var (
	adminPrincipal = &shared.Principal{Username: "root", Role: shared.RoleAdmin}
	userPrincipal  = &shared.Principal{Username: "alice", Role: shared.RoleUser}
)

func TestAdminPanelGate(t *testing.T) {
	env := newAdminEnv(t)

	res := env.do(t, http.MethodGet, "/admin", nil, nil)
	assert.Equal(t, http.StatusFound, res.Code)
	assert.Equal(t, "/signin", res.Header().Get("Location"))

	res = env.do(t, http.MethodGet, "/admin", nil, userPrincipal)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "Not Authorized")

	res = env.do(t, http.MethodGet, "/admin", nil, adminPrincipal)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "root")
	assert.Contains(t, body, `action="/promoteUser"`)
	assert.Contains(t, body, `action="/demoteUser"`)
}

func TestPromoteDemoteRequireAdmin(t *testing.T) {
	env := newAdminEnv(t)
	form := url.Values{"username": {"alice"}}

	res := env.do(t, http.MethodPost, "/promoteUser", form, nil)
	assert.Equal(t, http.StatusFound, res.Code)
	assert.Equal(t, "/signin", res.Header().Get("Location"))

	res = env.do(t, http.MethodPost, "/promoteUser", form, userPrincipal)
	assert.Equal(t, http.StatusForbidden, res.Code)

	got, err := env.store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleUser, got.Role, "unauthorized calls must not mutate")
}

func TestPromoteAndDemoteAsAdmin(t *testing.T) {
	env := newAdminEnv(t)
	form := url.Values{"username": {"alice"}}

	res := env.do(t, http.MethodPost, "/promoteUser", form, adminPrincipal)
	assert.Equal(t, http.StatusFound, res.Code)
	assert.Equal(t, "/admin", res.Header().Get("Location"))
	got, err := env.store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, got.Role)

	res = env.do(t, http.MethodPost, "/demoteUser", form, adminPrincipal)
	assert.Equal(t, http.StatusFound, res.Code)
	got, err = env.store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleUser, got.Role)
}

func TestPromoteFailureStillRedirects(t *testing.T) {
	env := newAdminEnv(t)

	for _, name := range []string{"ghost", "", "a b"} {
		res := env.do(t, http.MethodPost, "/promoteUser", url.Values{"username": {name}}, adminPrincipal)
		assert.Equal(t, http.StatusFound, res.Code, name)
		assert.Equal(t, "/admin", res.Header().Get("Location"), name)
	}
}
