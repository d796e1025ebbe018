package repository

import (
	"context"
	"errors"
	"faang_prep_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) WithTx(tx *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: tx}
}

func (r *BadgeRepository) ListBadges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.WithContext(ctx).Clauses(byOrder).Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) Create(ctx context.Context, badge *model.Badge) error {
	return r.DB.WithContext(ctx).Create(badge).Error
}

func (r *BadgeRepository) ListAwards(ctx context.Context, userID string) ([]model.UserBadge, error) {
	var awards []model.UserBadge
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at").Find(&awards).Error
	return awards, err
}

func (r *BadgeRepository) FindAward(ctx context.Context, userID, badgeID string) (*model.UserBadge, error) {
	var award model.UserBadge
	err := r.DB.WithContext(ctx).Where("user_id = ? AND badge_id = ?", userID, badgeID).First(&award).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &award, nil
}

// InsertAward 已持有时不做任何事，返回是否新插入
func (r *BadgeRepository) InsertAward(ctx context.Context, userID, badgeID string, earnedAt time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
