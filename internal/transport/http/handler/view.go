package handler

import (
	"time"

	"go-user-app/internal/domain"
)

// UserView is the account shape served to clients; the hash never leaves the
// service boundary.
type UserView struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Login:     u.Login,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		CreatedAt: u.CreatedAt,
	}
}
