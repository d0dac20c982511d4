package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-app/internal/core/session"
	"go-user-app/internal/repo"
	"go-user-app/internal/service"
	mdw "go-user-app/internal/transport/http/middleware"
	resp "go-user-app/internal/transport/http/response"
)

type adminRig struct {
	engine *gin.Engine
	svc    *service.UserService
	users  *repo.MemoryUserRepo
	cookie *http.Cookie
}

func newAdminRig(t *testing.T) *adminRig {
	t.Helper()
	users := repo.NewMemoryUserRepo()
	logs := repo.NewMemoryLoginLogRepo()
	sessions := session.NewManager(session.NewMemoryStore(), 0, 0)
	svc := service.NewUserService(users, logs, sessions, nil)

	r := gin.New()
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthSession(sessions, "sid"))
	NewUserHandler(svc, nil).MountAdmin(admin)

	ctx := context.Background()
	_, err := svc.Register(ctx, service.RegisterInput{
		Login: "admin", Firstname: "Ada", Lastname: "Root",
		Email: "admin@example.com", Password: "Adminpw1",
	})
	require.NoError(t, err)
	token, err := svc.Login(ctx, "admin", "Adminpw1", false, "127.0.0.1")
	require.NoError(t, err)

	return &adminRig{
		engine: r,
		svc:    svc,
		users:  users,
		cookie: &http.Cookie{Name: "sid", Value: token},
	}
}

func (a *adminRig) do(t *testing.T, method, path, body string, authed bool) resp.Resp {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(a.cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (a *adminRig) seed(t *testing.T, login, email string) string {
	t.Helper()
	id, err := a.svc.Register(context.Background(), service.RegisterInput{
		Login: login, Firstname: "Jane", Lastname: "Doe",
		Email: email, Password: "Abcdef12",
	})
	require.NoError(t, err)
	return id
}

func TestAdminRequiresSession(t *testing.T) {
	a := newAdminRig(t)
	out := a.do(t, http.MethodGet, "/admin/v1/users", "", false)
	assert.Equal(t, resp.CodeUnauthorized, out.Code)
	assert.Equal(t, resp.MsgNotLoggedIn, out.Msg)
}

func TestAdminListUsers(t *testing.T) {
	a := newAdminRig(t)
	a.seed(t, "jdoe", "jdoe@example.com")
	a.seed(t, "asmith", "asmith@example.com")

	out := a.do(t, http.MethodGet, "/admin/v1/users", "", true)
	require.Equal(t, resp.CodeOK, out.Code)
	data := out.Data.(map[string]any)
	assert.EqualValues(t, 3, data["total"]) // admin + two seeded

	out = a.do(t, http.MethodGet, "/admin/v1/users?q=smith", "", true)
	require.Equal(t, resp.CodeOK, out.Code)
	data = out.Data.(map[string]any)
	assert.EqualValues(t, 1, data["total"])
}

func TestAdminGetUser(t *testing.T) {
	a := newAdminRig(t)
	id := a.seed(t, "jdoe", "jdoe@example.com")

	out := a.do(t, http.MethodGet, "/admin/v1/users/"+id, "", true)
	require.Equal(t, resp.CodeOK, out.Code)
	data := out.Data.(map[string]any)
	assert.Equal(t, "jdoe", data["login"])

	out = a.do(t, http.MethodGet, "/admin/v1/users/missing", "", true)
	assert.Equal(t, resp.CodeNotFound, out.Code)
	assert.Equal(t, resp.MsgUserNotFound, out.Msg)
}

func TestAdminUpdateUser(t *testing.T) {
	a := newAdminRig(t)
	id := a.seed(t, "jdoe", "jdoe@example.com")

	out := a.do(t, http.MethodPut, "/admin/v1/users/"+id, `{"firstname":"Janet"}`, true)
	require.Equal(t, resp.CodeOK, out.Code)
	data := out.Data.(map[string]any)
	assert.Equal(t, true, data["changed"])

	raw, _ := a.users.Raw(id)
	assert.Equal(t, "Janet", raw.Firstname)

	// Re-sending the same value reports "no changes" instead of writing.
	out = a.do(t, http.MethodPut, "/admin/v1/users/"+id, `{"firstname":"Janet"}`, true)
	require.Equal(t, resp.CodeOK, out.Code)
	data = out.Data.(map[string]any)
	assert.Equal(t, false, data["changed"])
	assert.Equal(t, resp.MsgNoChanges, data["msg"])
}

func TestAdminUpdateConflicts(t *testing.T) {
	a := newAdminRig(t)
	id := a.seed(t, "jdoe", "jdoe@example.com")
	a.seed(t, "asmith", "asmith@example.com")

	out := a.do(t, http.MethodPut, "/admin/v1/users/"+id, `{"login":"asmith"}`, true)
	assert.Equal(t, resp.CodeConflict, out.Code)
	assert.Equal(t, resp.MsgLoginTaken, out.Msg)

	out = a.do(t, http.MethodPut, "/admin/v1/users/"+id, `{"password":"weak"}`, true)
	assert.Equal(t, resp.CodeBadRequest, out.Code)
	assert.Equal(t, resp.MsgWeakPassword, out.Msg)
}

func TestAdminDeleteUser(t *testing.T) {
	a := newAdminRig(t)
	id := a.seed(t, "jdoe", "jdoe@example.com")

	out := a.do(t, http.MethodDelete, "/admin/v1/users/"+id, "", true)
	require.Equal(t, resp.CodeOK, out.Code)

	raw, ok := a.users.Raw(id)
	require.True(t, ok, "soft delete keeps the row")
	assert.True(t, raw.DeletedAt.Valid)

	out = a.do(t, http.MethodGet, "/admin/v1/users/"+id, "", true)
	assert.Equal(t, resp.CodeNotFound, out.Code)

	out = a.do(t, http.MethodDelete, "/admin/v1/users/"+id, "", true)
	assert.Equal(t, resp.CodeNotFound, out.Code)
}

func TestAdminRecentLogins(t *testing.T) {
	a := newAdminRig(t)
	id := a.seed(t, "jdoe", "jdoe@example.com")
	_, err := a.svc.Login(context.Background(), "jdoe", "Abcdef12", false, "10.1.2.3")
	require.NoError(t, err)

	out := a.do(t, http.MethodGet, "/admin/v1/users/"+id+"/logins", "", true)
	require.Equal(t, resp.CodeOK, out.Code)
	data := out.Data.(map[string]any)
	items := data["items"].([]any)
	require.Len(t, items, 1)
	row := items[0].(map[string]any)
	assert.Equal(t, "10.1.2.3", row["ipAddress"])
}
