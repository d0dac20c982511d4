package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-user-app/internal/core/cache"
	"go-user-app/internal/service"
	"go-user-app/internal/transport/http/ez"
	resp "go-user-app/internal/transport/http/response"
)

// UserHandler serves the back-office user management surface.
type UserHandler struct {
	svc   *service.UserService
	cache *cache.Cache
}

func NewUserHandler(svc *service.UserService, c *cache.Cache) *UserHandler {
	return &UserHandler{svc: svc, cache: c}
}

// MountAdmin hangs the management routes off an already session-gated group.
func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	g := ez.New(admin)

	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"`
	}
	type listOut struct {
		Total int64      `json:"total"`
		Items []UserView `json:"items"`
	}
	ez.RegisterAction[listQ, listOut](g, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			users, total, err := h.svc.ListUsers(c.Request.Context(), in.Offset, in.Limit, in.Q)
			if err != nil {
				return listOut{}, svcErr(err)
			}
			out := listOut{Total: total, Items: make([]UserView, 0, len(users))}
			for i := range users {
				out.Items = append(out.Items, toUserView(&users[i]))
			}
			return out, nil
		},
	})

	ez.RegisterAction[struct{}, UserView](g, ez.Action[struct{}, UserView]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (UserView, error) {
			u, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
			if err != nil {
				return UserView{}, svcErr(err)
			}
			return toUserView(u), nil
		},
	})

	type updateIn struct {
		Login     *string `json:"login" binding:"omitempty,max=64"`
		Firstname *string `json:"firstname" binding:"omitempty,max=64"`
		Lastname  *string `json:"lastname" binding:"omitempty,max=64"`
		Email     *string `json:"email" binding:"omitempty,email"`
		Password  *string `json:"password"`
	}
	ez.RegisterAction[updateIn, gin.H](g, ez.Action[updateIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *updateIn) (gin.H, error) {
			id := c.Param("id")
			err := h.svc.Update(c.Request.Context(), id, service.UpdatePatch{
				Login:     in.Login,
				Firstname: in.Firstname,
				Lastname:  in.Lastname,
				Email:     in.Email,
				Password:  in.Password,
			})
			if errors.Is(err, service.ErrNoChanges) {
				return gin.H{"id": id, "changed": false, "msg": resp.MsgNoChanges}, nil
			}
			if err != nil {
				return nil, svcErr(err)
			}
			h.cache.Invalidate(c.Request.Context(), userCacheKey(id))
			return gin.H{"id": id, "changed": true}, nil
		},
	})

	ez.RegisterAction[struct{}, gin.H](g, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return nil, svcErr(err)
			}
			h.cache.Invalidate(c.Request.Context(), userCacheKey(id))
			return gin.H{"id": id}, nil
		},
	})

	type loginsQ struct {
		Limit int `form:"limit,default=20"`
	}
	type loginRow struct {
		IPAddress string    `json:"ipAddress"`
		CreatedAt time.Time `json:"createdAt"`
	}
	type loginsOut struct {
		Items []loginRow `json:"items"`
	}
	ez.RegisterAction[loginsQ, loginsOut](g, ez.Action[loginsQ, loginsOut]{
		Method: http.MethodGet,
		Path:   "/users/:id/logins",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *loginsQ) (loginsOut, error) {
			logs, err := h.svc.RecentLogins(c.Request.Context(), c.Param("id"), in.Limit)
			if err != nil {
				return loginsOut{}, svcErr(err)
			}
			out := loginsOut{Items: make([]loginRow, 0, len(logs))}
			for _, lg := range logs {
				out.Items = append(out.Items, loginRow{IPAddress: lg.IPAddress, CreatedAt: lg.CreatedAt})
			}
			return out, nil
		},
	})
}
