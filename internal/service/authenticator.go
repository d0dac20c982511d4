package service

import (
	"context"

	"go-user-app/internal/domain"
	"go-user-app/pkg/utils"
)

// Authenticator verifies credentials against the user store.
type Authenticator struct {
	users domain.UserRepository
}

func NewAuthenticator(users domain.UserRepository) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate checks login and password and returns the matching account.
// The checks run in a fixed order: a soft-deleted account reports
// ErrUserDeleted no matter what password was supplied.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	u, err := a.users.FindByLoginAnyState(ctx, login)
	if err != nil {
		return nil, err
	}
	if u != nil && u.DeletedAt.Valid {
		return nil, ErrUserDeleted
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidPassword
	}
	return u, nil
}
