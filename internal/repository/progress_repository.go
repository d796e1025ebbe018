package repository

import (
	"context"
	"errors"
	"faang_prep_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// Find 记录不存在时返回 nil, nil
func (r *ProgressRepository) Find(ctx context.Context, userID, problemID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Save 新记录插入，已有记录原地更新
func (r *ProgressRepository) Save(ctx context.Context, progress *model.UserProgress) error {
	if progress.ID == "" {
		return r.DB.WithContext(ctx).Create(progress).Error
	}
	return r.DB.WithContext(ctx).Model(progress).
		Select("completed", "completed_at", "notes", "updated_at").
		Updates(progress).Error
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.UserProgress, error) {
	var list []model.UserProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

func (r *ProgressRepository) ListCompleted(ctx context.Context, userID string) ([]model.UserProgress, error) {
	var list []model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Find(&list).Error
	return list, err
}

// CompletedProblemIDs 已完成题目 ID 集合
func (r *ProgressRepository) CompletedProblemIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Pluck("problem_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
