package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-user-app/internal/transport/http/response"
)

const (
	CtxUserID       = "userId"
	CtxSessionToken = "sessionToken"
)

// SessionResolver is the slice of the session manager the middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, bool, error)
}

// AuthSession gates a route group on a live session cookie. Resolving also
// slides non-remember sessions forward, so any authenticated request keeps
// the 20-minute window open.
func AuthSession(sessions SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, resp.MsgNotLoggedIn))
			return
		}
		uid, ok, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, ""))
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, resp.MsgNotLoggedIn))
			return
		}
		c.Set(CtxUserID, uid)
		c.Set(CtxSessionToken, token)
		c.Next()
	}
}
