package handler

import (
	"errors"

	"go-user-app/internal/service"
	"go-user-app/internal/transport/http/ez"
	resp "go-user-app/internal/transport/http/response"
)

// svcErr translates typed service errors into the response envelope. Unknown
// errors stay generic so storage details never leak to the client.
func svcErr(err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return ez.Unauthorized(resp.MsgInvalidLogin)
	case errors.Is(err, service.ErrUserDeleted):
		return ez.Unauthorized(resp.MsgDeletedUser)
	case errors.Is(err, service.ErrInvalidPassword):
		return ez.Unauthorized(resp.MsgInvalidPassword)
	case errors.Is(err, service.ErrWeakPassword):
		return ez.BadRequest(resp.MsgWeakPassword)
	case errors.Is(err, service.ErrLoginTaken):
		return ez.Conflict(resp.MsgLoginTaken)
	case errors.Is(err, service.ErrEmailTaken):
		return ez.Conflict(resp.MsgEmailTaken)
	case errors.Is(err, service.ErrNotFound):
		return ez.NotFound(resp.MsgUserNotFound)
	default:
		return ez.Internal(resp.MsgUnexpected, err)
	}
}
