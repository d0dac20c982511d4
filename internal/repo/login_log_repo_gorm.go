package repo

import (
	"context"

	"gorm.io/gorm"

	"go-user-app/internal/domain"
	"go-user-app/pkg/utils"
)

type LoginLogRepo struct{ db *gorm.DB }

func NewLoginLogRepo(db *gorm.DB) *LoginLogRepo { return &LoginLogRepo{db: db} }

func (r *LoginLogRepo) Append(ctx context.Context, userID, ip string) error {
	rec := domain.LoginLog{ID: utils.NewID(), UserID: userID, IPAddress: ip}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *LoginLogRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]domain.LoginLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []domain.LoginLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
