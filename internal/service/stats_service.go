package service

import (
	"context"
	"faang_prep_backend/internal/model"
	"faang_prep_backend/internal/repository"
	"faang_prep_backend/pkg/logger"
	"faang_prep_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StatsService struct {
	UserRepo     *repository.UserRepository
	BadgeRepo    *repository.BadgeRepository
	ActivityRepo *repository.ActivityRepository
	Progress     *ProgressService
	Cache        *repository.StatsCache
	Rules        Rules
	Now          func() time.Time

	// 与 GamificationService 共享，保证缓存写入不会晚于结算后的失效
	locks *userLocks
}

func NewStatsService(
	userRepo *repository.UserRepository,
	badgeRepo *repository.BadgeRepository,
	activityRepo *repository.ActivityRepository,
	progress *ProgressService,
	cache *repository.StatsCache,
	rules Rules,
) *StatsService {
	return &StatsService{
		UserRepo:     userRepo,
		BadgeRepo:    badgeRepo,
		ActivityRepo: activityRepo,
		Progress:     progress,
		Cache:        cache,
		Rules:        rules,
		Now:          time.Now,
		locks:        &userLocks{},
	}
}

// WithTx 事务内读取，不走缓存
func (s *StatsService) WithTx(tx *gorm.DB) *StatsService {
	return &StatsService{
		UserRepo:     s.UserRepo.WithTx(tx),
		BadgeRepo:    s.BadgeRepo.WithTx(tx),
		ActivityRepo: s.ActivityRepo.WithTx(tx),
		Progress:     s.Progress.WithTx(tx),
		Rules:        s.Rules,
		Now:          s.Now,
	}
}

func (s *StatsService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// UserStats 用户统计快照，优先读取 Redis 缓存。
// 未命中时在用户锁内计算并回写，进行中的结算提交前不会读到旧数据
func (s *StatsService) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	if s.Cache != nil && s.Cache.Enabled() {
		if stats, ok := s.Cache.Get(ctx, userID); ok {
			monitoring.StatsCacheLookups.WithLabelValues("hit").Inc()
			return stats, nil
		}
		monitoring.StatsCacheLookups.WithLabelValues("miss").Inc()
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	stats, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil && s.Cache.Enabled() {
		if err := s.Cache.Set(ctx, userID, stats); err != nil {
			logger.Log.Warn("Failed to cache user stats", zap.String("userId", userID), zap.Error(err))
		}
	}
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context, userID string) (*model.UserStats, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// 用户不存在时按新用户处理
		user = &model.User{Level: 1}
	}

	completed, err := s.Progress.ProgressRepo.ListCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	topics, err := s.Progress.TopicsWithProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	patterns, err := s.Progress.PatternsWithProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	activity, err := s.DailyActivity(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	badges, err := s.BadgesWithStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.UserStats{
		TotalSolved:     len(completed),
		CurrentStreak:   user.CurrentStreak,
		LongestStreak:   user.LongestStreak,
		XP:              user.XP,
		Level:           user.Level,
		TopicProgress:   topics,
		PatternProgress: patterns,
		RecentActivity:  activity,
		Badges:          badges,
	}, nil
}

// BadgesWithStatus 全部徽章按 order 排列，标注是否已获得
func (s *StatsService) BadgesWithStatus(ctx context.Context, userID string) ([]model.BadgeWithStatus, error) {
	badges, err := s.BadgeRepo.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	awards, err := s.BadgeRepo.ListAwards(ctx, userID)
	if err != nil {
		return nil, err
	}

	earned := make(map[string]time.Time, len(awards))
	for _, a := range awards {
		earned[a.BadgeID] = a.EarnedAt
	}

	out := make([]model.BadgeWithStatus, 0, len(badges))
	for _, b := range badges {
		status := model.BadgeWithStatus{Badge: b}
		if at, ok := earned[b.ID]; ok {
			status.Earned = true
			status.EarnedAt = &at
		}
		out = append(out, status)
	}
	return out, nil
}

// DailyActivity 最近 days 天（含今天）的活动记录，日期倒序
func (s *StatsService) DailyActivity(ctx context.Context, userID string, days int) ([]model.DailyActivity, error) {
	since := s.Rules.ActivitySince(s.now(), days)
	return s.ActivityRepo.ListSince(ctx, userID, since)
}
