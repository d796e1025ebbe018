package repository

import (
	"context"
	"errors"
	"faang_prep_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) WithTx(tx *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: tx}
}

// FindByUserAndDate day 为 YYYY-MM-DD，不存在时返回 nil, nil
func (r *ActivityRepository) FindByUserAndDate(ctx context.Context, userID, day string) (*model.DailyActivity, error) {
	var activity model.DailyActivity
	err := r.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, day).First(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// Increment 累加当天计数，当天记录不存在时创建
func (r *ActivityRepository) Increment(ctx context.Context, userID, day string, problems, xp int) error {
	existing, err := r.FindByUserAndDate(ctx, userID, day)
	if err != nil {
		return err
	}

	if existing != nil {
		return r.DB.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
			"problems_solved": gorm.Expr("problems_solved + ?", problems),
			"xp_earned":       gorm.Expr("xp_earned + ?", xp),
		}).Error
	}

	return r.DB.WithContext(ctx).Create(&model.DailyActivity{
		UserID:         userID,
		Date:           day,
		ProblemsSolved: problems,
		XPEarned:       xp,
	}).Error
}

// ListSince 返回 sinceDay（含）之后的记录，按日期倒序
func (r *ActivityRepository) ListSince(ctx context.Context, userID, sinceDay string) ([]model.DailyActivity, error) {
	var list []model.DailyActivity
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, sinceDay).
		Order("date DESC").
		Find(&list).Error
	return list, err
}
