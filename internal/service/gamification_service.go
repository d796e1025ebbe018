package service

import (
	"context"
	"faang_prep_backend/internal/model"
	"faang_prep_backend/internal/repository"
	"faang_prep_backend/internal/util"
	"faang_prep_backend/pkg/logger"
	"faang_prep_backend/pkg/monitoring"
	"faang_prep_backend/pkg/tracing"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GamificationService 完成题目后的经验、连续打卡、每日活动与徽章结算
type GamificationService struct {
	DB           *gorm.DB
	UserRepo     *repository.UserRepository
	CatalogRepo  *repository.CatalogRepository
	ProgressRepo *repository.ProgressRepository
	ActivityRepo *repository.ActivityRepository
	BadgeRepo    *repository.BadgeRepository
	Stats        *StatsService
	Cache        *repository.StatsCache
	Rules        Rules
	Now          func() time.Time

	locks *userLocks
}

func NewGamificationService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	catalogRepo *repository.CatalogRepository,
	progressRepo *repository.ProgressRepository,
	activityRepo *repository.ActivityRepository,
	badgeRepo *repository.BadgeRepository,
	stats *StatsService,
	cache *repository.StatsCache,
	rules Rules,
) *GamificationService {
	locks := &userLocks{}
	if stats != nil && stats.locks != nil {
		locks = stats.locks
	}
	return &GamificationService{
		DB:           db,
		UserRepo:     userRepo,
		CatalogRepo:  catalogRepo,
		ProgressRepo: progressRepo,
		ActivityRepo: activityRepo,
		BadgeRepo:    badgeRepo,
		Stats:        stats,
		Cache:        cache,
		Rules:        rules,
		Now:          time.Now,
		locks:        locks,
	}
}

func (s *GamificationService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// txScope 绑定到同一事务的仓储
type txScope struct {
	users    *repository.UserRepository
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	activity *repository.ActivityRepository
	badges   *repository.BadgeRepository
	stats    *StatsService

	// 事务内发放的经验，按来源累计，提交后再上报指标
	granted map[string]int
}

func (s *GamificationService) scope(tx *gorm.DB) *txScope {
	stats := s.Stats.WithTx(tx)
	stats.Now = s.now
	return &txScope{
		users:    s.UserRepo.WithTx(tx),
		catalog:  s.CatalogRepo.WithTx(tx),
		progress: s.ProgressRepo.WithTx(tx),
		activity: s.ActivityRepo.WithTx(tx),
		badges:   s.BadgeRepo.WithTx(tx),
		stats:    stats,
		granted:  make(map[string]int),
	}
}

// ToggleProblemCompletion 设置题目完成状态。
// 标记完成时发放经验、更新连续打卡、累加当日活动并结算徽章；取消完成只改记录。
func (s *GamificationService) ToggleProblemCompletion(ctx context.Context, userID, problemID string, completed bool) error {
	ctx, span := tracing.Tracer.Start(ctx, "GamificationService.ToggleProblemCompletion")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("problem.id", problemID),
		attribute.Bool("completed", completed),
	)

	unlock := s.locks.lock(userID)
	defer unlock()

	var (
		sc      *txScope
		awarded []model.Badge
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sc = s.scope(tx)
		awarded, err = s.toggle(ctx, sc, userID, problemID, completed)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidate(ctx, userID)
	monitoring.ProgressToggles.WithLabelValues(strconv.FormatBool(completed)).Inc()
	recordGrants(sc.granted)
	s.recordAwards(userID, awarded)

	logger.Log.Info("Problem completion toggled",
		zap.String("userId", userID),
		zap.String("problemId", problemID),
		zap.Bool("completed", completed),
		zap.Int("badgesAwarded", len(awarded)),
	)
	return nil
}

func (s *GamificationService) toggle(ctx context.Context, sc *txScope, userID, problemID string, completed bool) ([]model.Badge, error) {
	user, err := sc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, util.ErrUserNotFound
	}

	problem, err := sc.catalog.FindProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if problem == nil {
		return nil, util.ErrProblemNotFound
	}

	now := s.now()
	record, err := sc.progress.Find(ctx, userID, problemID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &model.UserProgress{UserID: userID, ProblemID: problemID}
	}
	record.Completed = completed
	if completed {
		record.CompletedAt = &now
	} else {
		record.CompletedAt = nil
	}
	if err := sc.progress.Save(ctx, record); err != nil {
		return nil, err
	}

	if !completed {
		return nil, nil
	}

	if _, err := s.grantXP(ctx, sc, userID, s.Rules.XPPerProblem, "problem"); err != nil {
		return nil, err
	}
	if err := s.updateStreak(ctx, sc, userID, now); err != nil {
		return nil, err
	}
	if err := sc.activity.Increment(ctx, userID, s.Rules.DayKey(now), 1, s.Rules.XPPerProblem); err != nil {
		return nil, err
	}
	return s.evaluate(ctx, sc, userID, now)
}

// grantXP 基于当前 XP 累加并按规则重算等级
func (s *GamificationService) grantXP(ctx context.Context, sc *txScope, userID string, amount int, source string) (int, error) {
	user, err := sc.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, util.ErrUserNotFound
	}

	xp := user.XP + amount
	level := s.Rules.LevelForXP(xp)
	if err := sc.users.UpdateXPAndLevel(ctx, userID, xp, level); err != nil {
		return 0, err
	}
	sc.granted[source] += amount

	if level > user.Level {
		logger.Log.Info("User leveled up",
			zap.String("userId", userID),
			zap.Int("level", level),
			zap.Int("xp", xp),
		)
	}
	return xp, nil
}

func (s *GamificationService) updateStreak(ctx context.Context, sc *txScope, userID string, now time.Time) error {
	user, err := sc.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return util.ErrUserNotFound
	}

	next, changed := s.Rules.NextStreak(StreakState{
		Current:    user.CurrentStreak,
		Longest:    user.LongestStreak,
		LastActive: user.LastActiveDate,
	}, now)
	if !changed {
		return nil
	}
	return sc.users.UpdateStreak(ctx, userID, next.Current, next.Longest, *next.LastActive)
}

// evaluate 基于一次统计快照按 order 判定全部徽章，本轮奖励的经验不会触发新的判定
func (s *GamificationService) evaluate(ctx context.Context, sc *txScope, userID string, now time.Time) ([]model.Badge, error) {
	stats, err := sc.stats.compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := sc.badges.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	awards, err := sc.badges.ListAwards(ctx, userID)
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool, len(awards))
	for _, a := range awards {
		held[a.BadgeID] = true
	}

	var awarded []model.Badge
	for _, badge := range badges {
		if held[badge.ID] {
			continue
		}
		value, err := s.Rules.RequirementStat(badge.Requirement, stats)
		if err != nil {
			logger.Log.Warn("Skipping badge with unknown requirement",
				zap.String("badge", badge.Name),
				zap.String("requirement", string(badge.Requirement)),
			)
			continue
		}
		if value < badge.Threshold {
			continue
		}

		inserted, err := sc.badges.InsertAward(ctx, userID, badge.ID, now)
		if err != nil {
			return nil, err
		}
		if !inserted {
			continue
		}
		held[badge.ID] = true
		if badge.XPReward > 0 {
			if _, err := s.grantXP(ctx, sc, userID, badge.XPReward, "badge"); err != nil {
				return nil, err
			}
		}
		awarded = append(awarded, badge)
	}
	return awarded, nil
}

// EvaluateBadges 单独触发一次徽章结算，返回本次新获得的徽章
func (s *GamificationService) EvaluateBadges(ctx context.Context, userID string) ([]model.Badge, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GamificationService.EvaluateBadges")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	unlock := s.locks.lock(userID)
	defer unlock()

	var (
		sc      *txScope
		awarded []model.Badge
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc = s.scope(tx)
		user, err := sc.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return util.ErrUserNotFound
		}
		awarded, err = s.evaluate(ctx, sc, userID, s.now())
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(awarded) > 0 {
		s.invalidate(ctx, userID)
	}
	recordGrants(sc.granted)
	s.recordAwards(userID, awarded)
	return awarded, nil
}

func (s *GamificationService) invalidate(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		logger.Log.Warn("Failed to invalidate stats cache", zap.String("userId", userID), zap.Error(err))
	}
}

func recordGrants(granted map[string]int) {
	for source, amount := range granted {
		monitoring.XPGranted.WithLabelValues(source).Add(float64(amount))
	}
}

func (s *GamificationService) recordAwards(userID string, awarded []model.Badge) {
	for _, b := range awarded {
		monitoring.BadgesAwarded.WithLabelValues(b.Name).Inc()
		logger.Log.Info("Badge awarded",
			zap.String("userId", userID),
			zap.String("badge", b.Name),
			zap.Int("xpReward", b.XPReward),
		)
	}
}

// userLocks 同一用户的结算与统计回写串行执行，nil 时不加锁
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) lock(userID string) func() {
	if l == nil {
		return func() {}
	}
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*userLock)
	}
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
