package service

import (
	"context"
	"faang_prep_backend/internal/model"
	"faang_prep_backend/internal/repository"

	"gorm.io/gorm"
)

// ProgressService 把题库与用户完成记录合并为带进度的视图
type ProgressService struct {
	CatalogRepo  *repository.CatalogRepository
	ProgressRepo *repository.ProgressRepository
	Rules        Rules
}

func NewProgressService(
	catalogRepo *repository.CatalogRepository,
	progressRepo *repository.ProgressRepository,
	rules Rules,
) *ProgressService {
	return &ProgressService{
		CatalogRepo:  catalogRepo,
		ProgressRepo: progressRepo,
		Rules:        rules,
	}
}

func (s *ProgressService) WithTx(tx *gorm.DB) *ProgressService {
	return &ProgressService{
		CatalogRepo:  s.CatalogRepo.WithTx(tx),
		ProgressRepo: s.ProgressRepo.WithTx(tx),
		Rules:        s.Rules,
	}
}

func (s *ProgressService) load(ctx context.Context, userID string) ([]model.Problem, map[string]bool, error) {
	problems, err := s.CatalogRepo.ListProblems(ctx)
	if err != nil {
		return nil, nil, err
	}
	completed, err := s.ProgressRepo.CompletedProblemIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return problems, completed, nil
}

func (s *ProgressService) TopicsWithProgress(ctx context.Context, userID string) ([]model.TopicWithProgress, error) {
	topics, err := s.CatalogRepo.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	problems, completed, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return topicProgress(topics, problems, completed), nil
}

func (s *ProgressService) PatternsWithProgress(ctx context.Context, userID string) ([]model.PatternWithProgress, error) {
	patterns, err := s.CatalogRepo.ListPatterns(ctx)
	if err != nil {
		return nil, err
	}
	problems, completed, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return patternProgress(patterns, problems, completed), nil
}

// ProblemsWithDetails 全部题目，附带所属分类/子分类/套路及完成状态
func (s *ProgressService) ProblemsWithDetails(ctx context.Context, userID string) ([]model.ProblemWithDetails, error) {
	problems, completed, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	topics, err := s.CatalogRepo.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	subtopics, err := s.CatalogRepo.ListAllSubtopics(ctx)
	if err != nil {
		return nil, err
	}
	patterns, err := s.CatalogRepo.ListPatterns(ctx)
	if err != nil {
		return nil, err
	}

	topicByID := make(map[string]*model.Topic, len(topics))
	for i := range topics {
		topicByID[topics[i].ID] = &topics[i]
	}
	subtopicByID := make(map[string]*model.Subtopic, len(subtopics))
	for i := range subtopics {
		subtopicByID[subtopics[i].ID] = &subtopics[i]
	}
	patternByID := make(map[string]*model.Pattern, len(patterns))
	for i := range patterns {
		patternByID[patterns[i].ID] = &patterns[i]
	}

	out := make([]model.ProblemWithDetails, 0, len(problems))
	for _, p := range problems {
		d := model.ProblemWithDetails{
			Problem:     p,
			Topic:       topicByID[p.TopicID],
			IsCompleted: completed[p.ID],
		}
		if p.SubtopicID != nil {
			d.Subtopic = subtopicByID[*p.SubtopicID]
		}
		if p.PatternID != nil {
			d.Pattern = patternByID[*p.PatternID]
		}
		out = append(out, d)
	}
	return out, nil
}

// ProblemsByPattern 套路不存在时返回空列表
func (s *ProgressService) ProblemsByPattern(ctx context.Context, patternID, userID string) ([]model.ProblemWithDetails, error) {
	all, err := s.ProblemsWithDetails(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ProblemWithDetails, 0)
	for _, p := range all {
		if p.PatternID != nil && *p.PatternID == patternID {
			out = append(out, p)
		}
	}
	return out, nil
}

// RecommendProblems limit <= 0 时使用配置的默认值
func (s *ProgressService) RecommendProblems(ctx context.Context, userID string, limit int) ([]model.ProblemWithDetails, error) {
	if limit <= 0 {
		limit = s.Rules.RecommendLimit
	}
	all, err := s.ProblemsWithDetails(ctx, userID)
	if err != nil {
		return nil, err
	}
	return recommend(all, limit), nil
}

func (s *ProgressService) Subtopics(ctx context.Context, topicID string) ([]model.Subtopic, error) {
	subs, err := s.CatalogRepo.ListSubtopics(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.Subtopic{}
	}
	return subs, nil
}
