package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resp "go-user-app/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func newTestRouter(fail error) *gin.Engine {
	r := gin.New()
	e := New(r.Group("/"))
	RegisterAction[echoIn, gin.H](e, Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *echoIn) (gin.H, error) {
			if fail != nil {
				return nil, fail
			}
			return gin.H{"name": in.Name}, nil
		},
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, body string) resp.Resp {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestActionSuccessEnvelope(t *testing.T) {
	out := doJSON(t, newTestRouter(nil), `{"name":"jdoe"}`)
	assert.Equal(t, resp.CodeOK, out.Code)
	assert.Equal(t, "OK", out.Msg)
}

func TestActionBindError(t *testing.T) {
	out := doJSON(t, newTestRouter(nil), `{}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)
}

func TestActionTypedError(t *testing.T) {
	out := doJSON(t, newTestRouter(Conflict("taken")), `{"name":"jdoe"}`)
	assert.Equal(t, resp.CodeConflict, out.Code)
	assert.Equal(t, "taken", out.Msg)
}

func TestActionGenericErrorStaysOpaque(t *testing.T) {
	out := doJSON(t, newTestRouter(errors.New("pq: connection refused")), `{"name":"jdoe"}`)
	assert.Equal(t, resp.CodeServerError, out.Code)
	assert.Equal(t, resp.MsgUnexpected, out.Msg)
	assert.NotContains(t, out.Msg, "pq:")
}

func TestAErrUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Internal("failed", inner)
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, "failed", err.Error())
}
