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
	resp "go-user-app/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func newAuthRig(t *testing.T) (*gin.Engine, *service.UserService) {
	t.Helper()
	users := repo.NewMemoryUserRepo()
	logs := repo.NewMemoryLoginLogRepo()
	sessions := session.NewManager(session.NewMemoryStore(), 0, 0)
	svc := service.NewUserService(users, logs, sessions, nil)

	r := gin.New()
	h := NewAuthHandler(svc, nil, "sid", false)
	h.MountAPI(r.Group("/api/v1"))
	return r, svc
}

func postJSON(t *testing.T, r *gin.Engine, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, resp.Resp) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func getJSON(t *testing.T, r *gin.Engine, path string, cookies ...*http.Cookie) resp.Resp {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sidCookie(w *httptest.ResponseRecorder) *http.Cookie {
	res := http.Response{Header: w.Header()}
	for _, c := range res.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

const registerBody = `{"login":"jdoe","firstname":"Jane","lastname":"Doe","email":"jdoe@example.com","password":"Abcdef12"}`

func TestRegisterEndpoint(t *testing.T) {
	r, _ := newAuthRig(t)

	_, out := postJSON(t, r, "/api/v1/auth/register", registerBody)
	assert.Equal(t, resp.CodeOK, out.Code)

	// Same login again conflicts with the app-standard message.
	_, out = postJSON(t, r, "/api/v1/auth/register",
		`{"login":"jdoe","firstname":"J","lastname":"D","email":"j2@example.com","password":"Abcdef12"}`)
	assert.Equal(t, resp.CodeConflict, out.Code)
	assert.Equal(t, resp.MsgLoginTaken, out.Msg)
}

func TestRegisterEndpointValidation(t *testing.T) {
	r, _ := newAuthRig(t)

	_, out := postJSON(t, r, "/api/v1/auth/register",
		`{"login":"jdoe","firstname":"J","lastname":"D","email":"not-an-email","password":"Abcdef12"}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)

	_, out = postJSON(t, r, "/api/v1/auth/register",
		`{"login":"jdoe","firstname":"J","lastname":"D","email":"jdoe@example.com","password":"abcdefgh"}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)
	assert.Equal(t, resp.MsgWeakPassword, out.Msg)
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := newAuthRig(t)
	postJSON(t, r, "/api/v1/auth/register", registerBody)

	_, out := postJSON(t, r, "/api/v1/auth/login", `{"login":"jdoe","password":"WrongPw12"}`)
	assert.Equal(t, resp.CodeUnauthorized, out.Code)
	assert.Equal(t, resp.MsgInvalidPassword, out.Msg)

	_, out = postJSON(t, r, "/api/v1/auth/login", `{"login":"ghost","password":"Abcdef12"}`)
	assert.Equal(t, resp.CodeUnauthorized, out.Code)
	assert.Equal(t, resp.MsgInvalidLogin, out.Msg)

	w, out := postJSON(t, r, "/api/v1/auth/login", `{"login":"jdoe","password":"Abcdef12"}`)
	assert.Equal(t, resp.CodeOK, out.Code)
	c := sidCookie(w)
	require.NotNil(t, c, "login must set the session cookie")
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, 0, c.MaxAge, "default session rides a browser-session cookie")
	assert.True(t, c.HttpOnly)
}

func TestLoginRememberCookieLifetime(t *testing.T) {
	r, _ := newAuthRig(t)
	postJSON(t, r, "/api/v1/auth/register", registerBody)

	w, out := postJSON(t, r, "/api/v1/auth/login", `{"login":"jdoe","password":"Abcdef12","remember":true}`)
	assert.Equal(t, resp.CodeOK, out.Code)
	c := sidCookie(w)
	require.NotNil(t, c)
	assert.Equal(t, 14*24*60*60, c.MaxAge)
}

func TestMeEndpoint(t *testing.T) {
	r, _ := newAuthRig(t)
	postJSON(t, r, "/api/v1/auth/register", registerBody)
	w, _ := postJSON(t, r, "/api/v1/auth/login", `{"login":"jdoe","password":"Abcdef12"}`)
	c := sidCookie(w)
	require.NotNil(t, c)

	out := getJSON(t, r, "/api/v1/me", c)
	require.Equal(t, resp.CodeOK, out.Code)
	data, ok := out.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jdoe", data["login"])
	assert.Equal(t, "jdoe@example.com", data["email"])
	assert.NotContains(t, data, "passwordHash")

	// Without a cookie the gate holds.
	out = getJSON(t, r, "/api/v1/me")
	assert.Equal(t, resp.CodeUnauthorized, out.Code)
	assert.Equal(t, resp.MsgNotLoggedIn, out.Msg)
}

func TestLogoutEndpoint(t *testing.T) {
	r, svc := newAuthRig(t)
	postJSON(t, r, "/api/v1/auth/register", registerBody)
	w, _ := postJSON(t, r, "/api/v1/auth/login", `{"login":"jdoe","password":"Abcdef12"}`)
	c := sidCookie(w)
	require.NotNil(t, c)
	require.True(t, svc.IsAuthenticated(context.Background(), c.Value))

	w2, out := postJSON(t, r, "/api/v1/auth/logout", ``, c)
	assert.Equal(t, resp.CodeOK, out.Code)
	assert.False(t, svc.IsAuthenticated(context.Background(), c.Value))

	cleared := sidCookie(w2)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	out = getJSON(t, r, "/api/v1/me", c)
	assert.Equal(t, resp.CodeUnauthorized, out.Code)
}
