package repository

import (
	"context"
	"errors"
	"faang_prep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 目录数据按 order 升序，order 相同时按插入时间
var byOrder = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "order"}},
	{Column: clause.Column{Name: "created_at"}},
}}

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: tx}
}

func (r *CatalogRepository) ListTopics(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.WithContext(ctx).Clauses(byOrder).Find(&topics).Error
	return topics, err
}

func (r *CatalogRepository) ListSubtopics(ctx context.Context, topicID string) ([]model.Subtopic, error) {
	var subtopics []model.Subtopic
	err := r.DB.WithContext(ctx).Where("topic_id = ?", topicID).Clauses(byOrder).Find(&subtopics).Error
	return subtopics, err
}

func (r *CatalogRepository) ListAllSubtopics(ctx context.Context) ([]model.Subtopic, error) {
	var subtopics []model.Subtopic
	err := r.DB.WithContext(ctx).Clauses(byOrder).Find(&subtopics).Error
	return subtopics, err
}

func (r *CatalogRepository) ListPatterns(ctx context.Context) ([]model.Pattern, error) {
	var patterns []model.Pattern
	err := r.DB.WithContext(ctx).Clauses(byOrder).Find(&patterns).Error
	return patterns, err
}

func (r *CatalogRepository) ListProblems(ctx context.Context) ([]model.Problem, error) {
	var problems []model.Problem
	err := r.DB.WithContext(ctx).Clauses(byOrder).Find(&problems).Error
	return problems, err
}

// FindProblem 不存在时返回 nil, nil
func (r *CatalogRepository) FindProblem(ctx context.Context, id string) (*model.Problem, error) {
	var problem model.Problem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&problem).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &problem, nil
}

func (r *CatalogRepository) CreateTopic(ctx context.Context, topic *model.Topic) error {
	return r.DB.WithContext(ctx).Create(topic).Error
}

func (r *CatalogRepository) CreateSubtopic(ctx context.Context, subtopic *model.Subtopic) error {
	return r.DB.WithContext(ctx).Create(subtopic).Error
}

func (r *CatalogRepository) CreatePattern(ctx context.Context, pattern *model.Pattern) error {
	return r.DB.WithContext(ctx).Create(pattern).Error
}

func (r *CatalogRepository) CreateProblem(ctx context.Context, problem *model.Problem) error {
	return r.DB.WithContext(ctx).Create(problem).Error
}
