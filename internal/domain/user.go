package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// User is an account row. Login and email are unique among active rows;
// soft-deleted rows release them for reuse (postgres partial indexes).
type User struct {
	ID           string         `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Login        string         `gorm:"size:64;not null" json:"login"`
	Email        string         `gorm:"size:255;not null" json:"email"`
	Firstname    string         `gorm:"size:64;not null" json:"firstname"`
	Lastname     string         `gorm:"size:64;not null" json:"lastname"`
	PasswordHash string         `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// LoginLog records one successful login. Append-only.
type LoginLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	UserID    string    `gorm:"size:32;not null;index" json:"userId"`
	IPAddress string    `gorm:"size:45;not null" json:"ipAddress"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (LoginLog) TableName() string { return "login_logs" }

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateLogin = errors.New("login already taken")
	ErrDuplicateEmail = errors.New("email already taken")
)

type UserRepository interface {
	// FindByLoginAnyState also returns soft-deleted rows; the authenticator
	// needs to tell a deleted account apart from a missing one.
	FindByLoginAnyState(ctx context.Context, login string) (*User, error)
	FindActiveByID(ctx context.Context, id string) (*User, error)
	FindActiveByLogin(ctx context.Context, login string) (*User, error)
	FindActiveByEmail(ctx context.Context, email string) (*User, error)
	IsLoginTaken(ctx context.Context, login, excludeID string) (bool, error)
	IsEmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	ListActive(ctx context.Context, offset, limit int, q string) ([]User, int64, error)
	Insert(ctx context.Context, u *User) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	SoftDelete(ctx context.Context, id string) error
}

type LoginLogRepository interface {
	Append(ctx context.Context, userID, ip string) error
	RecentByUser(ctx context.Context, userID string, limit int) ([]LoginLog, error)
}
