package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-user-app/internal/core/cache"
	"go-user-app/internal/domain"
	"go-user-app/internal/service"
	"go-user-app/internal/transport/http/ez"
	mdw "go-user-app/internal/transport/http/middleware"
)

const userCacheTTL = 30 * time.Second

// AuthHandler serves the public account surface: register, login, logout and
// the current-user lookup.
type AuthHandler struct {
	svc          *service.UserService
	cache        *cache.Cache
	cookieName   string
	cookieSecure bool
}

func NewAuthHandler(svc *service.UserService, c *cache.Cache, cookieName string, cookieSecure bool) *AuthHandler {
	if cookieName == "" {
		cookieName = "sid"
	}
	return &AuthHandler{svc: svc, cache: c, cookieName: cookieName, cookieSecure: cookieSecure}
}

// MountAPI hangs the auth routes off /api/v1. /me gets its own session-gated
// subgroup; everything else is public.
func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	pub := ez.New(api)

	type registerIn struct {
		Login     string `json:"login" binding:"required,max=64"`
		Firstname string `json:"firstname" binding:"required,max=64"`
		Lastname  string `json:"lastname" binding:"required,max=64"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
	}
	type registerOut struct {
		ID string `json:"id"`
	}
	ez.RegisterAction[registerIn, registerOut](pub, ez.Action[registerIn, registerOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (registerOut, error) {
			id, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
				Login:     in.Login,
				Firstname: in.Firstname,
				Lastname:  in.Lastname,
				Email:     in.Email,
				Password:  in.Password,
			})
			if err != nil {
				return registerOut{}, svcErr(err)
			}
			return registerOut{ID: id}, nil
		},
	})

	type loginIn struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
		Remember bool   `json:"remember"`
	}
	type loginOut struct {
		Remember bool `json:"remember"`
	}
	ez.RegisterAction[loginIn, loginOut](pub, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			token, err := h.svc.Login(c.Request.Context(), in.Login, in.Password, in.Remember, c.ClientIP())
			if err != nil {
				return loginOut{}, svcErr(err)
			}
			// Remember-me cookies outlive the browser; default sessions ride
			// a browser-session cookie and expire server-side.
			maxAge := 0
			if in.Remember {
				maxAge = int(h.svc.Sessions().RememberTTL().Seconds())
			}
			c.SetCookie(h.cookieName, token, maxAge, "/", "", h.cookieSecure, true)
			return loginOut{Remember: in.Remember}, nil
		},
	})

	ez.RegisterAction[struct{}, gin.H](pub, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if token, err := c.Cookie(h.cookieName); err == nil && token != "" {
				if err := h.svc.Logout(c.Request.Context(), token); err != nil {
					return nil, svcErr(err)
				}
			}
			c.SetCookie(h.cookieName, "", -1, "/", "", h.cookieSecure, true)
			return gin.H{"ok": 1}, nil
		},
	})

	authed := api.Group("")
	authed.Use(mdw.AuthSession(h.svc.Sessions(), h.cookieName))
	me := ez.New(authed)

	ez.RegisterAction[struct{}, UserView](me, ez.Action[struct{}, UserView]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (UserView, error) {
			uid := c.GetString(mdw.CtxUserID)
			u, err := cache.GetOrLoadJSON[domain.User](h.cache, c.Request.Context(), userCacheKey(uid), userCacheTTL,
				func(ctx context.Context) (*domain.User, error) {
					return h.svc.GetUser(ctx, uid)
				})
			if err != nil {
				return UserView{}, svcErr(err)
			}
			if u == nil {
				return UserView{}, svcErr(service.ErrNotFound)
			}
			return toUserView(u), nil
		},
	})
}

func userCacheKey(id string) string { return "user:" + id }
