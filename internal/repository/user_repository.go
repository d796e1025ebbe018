package repository

import (
	"context"
	"errors"
	"faang_prep_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库副本
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Level == 0 {
		user.Level = 1
	}
	return r.DB.WithContext(ctx).Create(user).Error
}

// FindByID 用户不存在时返回 nil, nil
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Upsert 按主键插入或更新资料字段，不触碰经验与连续打卡
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	if user.Level == 0 {
		user.Level = 1
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email",
			"first_name",
			"last_name",
			"profile_image_url",
			"updated_at",
		}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, user.ID)
}

func (r *UserRepository) UpdateXPAndLevel(ctx context.Context, userID string, xp, level int) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"xp":    xp,
			"level": level,
		}).Error
}

func (r *UserRepository) UpdateStreak(ctx context.Context, userID string, current, longest int, lastActive time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak":   current,
			"longest_streak":   longest,
			"last_active_date": lastActive,
		}).Error
}
