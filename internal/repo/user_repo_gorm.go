package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-user-app/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// FindByLoginAnyState resolves a login to its account, including soft-deleted
// ones. A deleted row may share a login with a later active row; the active
// account must win, so the unscoped lookup only runs when no active row exists.
func (r *UserRepo) FindByLoginAnyState(ctx context.Context, login string) (*domain.User, error) {
	u, err := r.FindActiveByLogin(ctx, login)
	if err != nil || u != nil {
		return u, err
	}
	var del domain.User
	err = r.db.WithContext(ctx).Unscoped().First(&del, "login = ?", login).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &del, err
}

func (r *UserRepo) FindActiveByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindActiveByLogin(ctx context.Context, login string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "login = ?", login).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) IsLoginTaken(ctx context.Context, login, excludeID string) (bool, error) {
	return r.taken(ctx, "login", login, excludeID)
}

func (r *UserRepo) IsEmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.taken(ctx, "email", email, excludeID)
}

func (r *UserRepo) taken(ctx context.Context, col, val, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where(col+" = ?", val)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) ListActive(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("login LIKE ? OR email LIKE ? OR firstname LIKE ? OR lastname LIKE ?",
			like, like, like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := tx.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Insert(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	return mapDupKey(err)
}

// UpdateFields writes only the supplied columns. The default scope skips
// soft-deleted rows, so a missing or deleted account shows up as zero rows
// touched; unique violations from concurrent edits surface as duplicate errors.
func (r *UserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return mapDupKey(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapDupKey turns a driver unique-violation error into the matching domain
// error. The index name tells login and email conflicts apart; a generic
// duplicate with no recognizable index defaults to the login error.
func mapDupKey(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	dup := strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
	if !dup {
		return err
	}
	if strings.Contains(msg, "email") {
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateLogin
}
