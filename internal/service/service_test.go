package service

import (
	"context"
	"errors"
	"faang_prep_backend/internal/config"
	"faang_prep_backend/internal/model"
	"faang_prep_backend/internal/repository"
	"faang_prep_backend/internal/repository/testutil"
	"faang_prep_backend/internal/util"
	"faang_prep_backend/pkg/monitoring"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	ctx      context.Context
	users    *repository.UserRepository
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	activity *repository.ActivityRepository
	badges   *repository.BadgeRepository

	progressSvc *ProgressService
	stats       *StatsService
	game        *GamificationService
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	rules := utcRules()
	f := &fixture{
		db:       db,
		ctx:      context.Background(),
		users:    repository.NewUserRepository(db),
		catalog:  repository.NewCatalogRepository(db),
		progress: repository.NewProgressRepository(db),
		activity: repository.NewActivityRepository(db),
		badges:   repository.NewBadgeRepository(db),
	}
	cache := repository.NewStatsCache(nil, time.Minute)
	f.progressSvc = NewProgressService(f.catalog, f.progress, rules)
	f.stats = NewStatsService(f.users, f.badges, f.activity, f.progressSvc, cache, rules)
	f.stats.Now = func() time.Time { return fixedNow }
	f.game = NewGamificationService(db, f.users, f.catalog, f.progress, f.activity, f.badges, f.stats, cache, rules)
	f.game.Now = func() time.Time { return fixedNow }
	return f
}

// smallCatalog 两个分类：Arrays 含 5 题（其中 3 题属于 Two Pointers），Graphs 含 1 题
type smallCatalog struct {
	arrays, graphs string
	twoPointers    string
	problems       []string
}

func seedSmallCatalog(t *testing.T, f *fixture) smallCatalog {
	t.Helper()
	arrays := &model.Topic{Name: "Arrays", Order: 1}
	graphs := &model.Topic{Name: "Graphs", Order: 2}
	require.NoError(t, f.catalog.CreateTopic(f.ctx, arrays))
	require.NoError(t, f.catalog.CreateTopic(f.ctx, graphs))

	tp := &model.Pattern{Name: "Two Pointers", Order: 1}
	require.NoError(t, f.catalog.CreatePattern(f.ctx, tp))

	sub := &model.Subtopic{TopicID: arrays.ID, Name: "Basics", Order: 1}
	require.NoError(t, f.catalog.CreateSubtopic(f.ctx, sub))

	specs := []struct {
		title string
		diff  model.Difficulty
		topic string
		pat   bool
	}{
		{"Two Sum", model.Easy, arrays.ID, true},
		{"3Sum", model.Medium, arrays.ID, true},
		{"Trapping Rain Water", model.Hard, arrays.ID, true},
		{"Contains Duplicate", model.Easy, arrays.ID, false},
		{"Group Anagrams", model.Medium, arrays.ID, false},
		{"Number of Islands", model.Medium, graphs.ID, false},
	}

	c := smallCatalog{arrays: arrays.ID, graphs: graphs.ID, twoPointers: tp.ID}
	for i, s := range specs {
		p := &model.Problem{Title: s.title, Difficulty: s.diff, TopicID: s.topic, Order: i}
		if s.pat {
			p.PatternID = &tp.ID
		}
		if i == 0 {
			p.SubtopicID = &sub.ID
		}
		require.NoError(t, f.catalog.CreateProblem(f.ctx, p))
		c.problems = append(c.problems, p.ID)
	}
	return c
}

func (f *fixture) user(t *testing.T, u *model.User) *model.User {
	t.Helper()
	return testutil.CreateUser(t, f.db, u)
}

func (f *fixture) reload(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := f.users.FindByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func TestToggleGrantsXPAndLevelsUp(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	u := f.user(t, &model.User{XP: 95, Level: 1})

	require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[0], true))

	got := f.reload(t, u.ID)
	assert.Equal(t, 105, got.XP)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 1, got.LongestStreak)
	require.NotNil(t, got.LastActiveDate)
	assert.Equal(t, "2026-10-16", got.LastActiveDate.In(time.UTC).Format(util.DateFormat))

	rec, err := f.progress.Find(f.ctx, u.ID, c.problems[0])
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Completed)
	require.NotNil(t, rec.CompletedAt)

	day, err := f.activity.FindByUserAndDate(f.ctx, u.ID, "2026-10-16")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, 1, day.ProblemsSolved)
	assert.Equal(t, 10, day.XPEarned)
}

func TestToggleStreakTransitions(t *testing.T) {
	yesterday := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	threeDaysAgo := time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		user        model.User
		wantCurrent int
		wantLongest int
	}{
		{"continues from yesterday", model.User{CurrentStreak: 4, LongestStreak: 4, LastActiveDate: &yesterday}, 5, 5},
		{"resets after gap", model.User{CurrentStreak: 6, LongestStreak: 9, LastActiveDate: &threeDaysAgo}, 1, 9},
		{"same day unchanged", model.User{CurrentStreak: 3, LongestStreak: 3, LastActiveDate: &today}, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testutil.DB(t))
			c := seedSmallCatalog(t, f)
			u := tt.user
			f.user(t, &u)

			require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[1], true))

			got := f.reload(t, u.ID)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak)
			assert.Equal(t, tt.wantLongest, got.LongestStreak)
			assert.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak)
		})
	}
}

func TestUncompleteKeepsXPAndClearsRecord(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	u := f.user(t, &model.User{})

	require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[0], true))
	require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[0], false))

	got := f.reload(t, u.ID)
	assert.Equal(t, 10, got.XP)

	rec, err := f.progress.Find(f.ctx, u.ID, c.problems[0])
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Completed)
	assert.Nil(t, rec.CompletedAt)

	stats, err := f.stats.UserStats(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSolved)
}

func TestRecompletingSameDayCountsTwice(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	u := f.user(t, &model.User{})

	for _, completed := range []bool{true, false, true} {
		require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[2], completed))
	}

	day, err := f.activity.FindByUserAndDate(f.ctx, u.ID, "2026-10-16")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, 2, day.ProblemsSolved)
	assert.Equal(t, 20, day.XPEarned)
	assert.Equal(t, 20, f.reload(t, u.ID).XP)
	assert.Equal(t, 1, f.reload(t, u.ID).CurrentStreak)

	list, err := f.progress.ListByUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestToggleRejectsUnknownEntities(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	u := f.user(t, &model.User{})

	err := f.game.ToggleProblemCompletion(f.ctx, u.ID, "missing", true)
	assert.ErrorIs(t, err, util.ErrProblemNotFound)

	err = f.game.ToggleProblemCompletion(f.ctx, "ghost", c.problems[0], true)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	list, err := f.progress.ListByUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, f.reload(t, u.ID).XP)
}

func TestProblemsSolvedBadgesAwardedOnce(t *testing.T) {
	f := newFixture(t, testutil.SeededDB(t))
	u := f.user(t, &model.User{})

	problems, err := f.catalog.ListProblems(f.ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(problems), 26)

	allBadges, err := f.badges.ListBadges(f.ctx)
	require.NoError(t, err)
	byName := make(map[string]model.Badge, len(allBadges))
	for _, b := range allBadges {
		byName[b.Name] = b
	}

	earned := func() map[string]bool {
		awards, err := f.badges.ListAwards(f.ctx, u.ID)
		require.NoError(t, err)
		out := make(map[string]bool, len(awards))
		for _, a := range awards {
			out[a.BadgeID] = true
		}
		return out
	}

	checkpoints := map[int]string{1: "First Steps", 10: "Getting Started", 25: "Problem Solver"}
	for i := 0; i < 26; i++ {
		require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, problems[i].ID, true))
		solved := i + 1
		for threshold, name := range checkpoints {
			assert.Equal(t, solved >= threshold, earned()[byName[name].ID], "%s after %d solves", name, solved)
		}
	}

	// 重复完成不会再次授予
	require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, problems[0].ID, true))

	awards, err := f.badges.ListAwards(f.ctx, u.ID)
	require.NoError(t, err)
	seen := make(map[string]int)
	rewards := 0
	for _, a := range awards {
		seen[a.BadgeID]++
		for _, b := range allBadges {
			if b.ID == a.BadgeID {
				rewards += b.XPReward
			}
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "badge %s", id)
	}

	// 经验 = 完成次数 * 10 + 已获徽章奖励之和
	user := f.reload(t, u.ID)
	assert.Equal(t, 27*10+rewards, user.XP)
	assert.Equal(t, user.XP/100+1, user.Level)
}

func TestBadgeRewardDoesNotCascadeWithinEvaluation(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	require.NoError(t, f.badges.Create(f.ctx, &model.Badge{Name: "First", Requirement: model.RequirementProblemsSolved, Threshold: 1, XPReward: 100, Order: 1}))
	require.NoError(t, f.badges.Create(f.ctx, &model.Badge{Name: "Hundred", Requirement: model.RequirementXPEarned, Threshold: 100, XPReward: 10, Order: 2}))
	require.NoError(t, f.badges.Create(f.ctx, &model.Badge{Name: "Broken", Requirement: "time_travel", Threshold: 0, XPReward: 999, Order: 3}))
	u := f.user(t, &model.User{})

	require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[0], true))
	assert.Equal(t, 110, f.reload(t, u.ID).XP)

	statuses, err := f.stats.BadgesWithStatus(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Earned)
	require.NotNil(t, statuses[0].EarnedAt)
	assert.False(t, statuses[1].Earned)
	assert.False(t, statuses[2].Earned)

	awarded, err := f.game.EvaluateBadges(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "Hundred", awarded[0].Name)
	assert.Equal(t, 120, f.reload(t, u.ID).XP)

	awarded, err = f.game.EvaluateBadges(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestConcurrentTogglesForSameUser(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	u := f.user(t, &model.User{})

	var wg sync.WaitGroup
	errs := make(chan error, len(c.problems))
	for _, id := range c.problems {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			errs <- f.game.ToggleProblemCompletion(f.ctx, u.ID, id, true)
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got := f.reload(t, u.ID)
	assert.Equal(t, len(c.problems)*10, got.XP)
	assert.Equal(t, 1, got.CurrentStreak)

	day, err := f.activity.FindByUserAndDate(f.ctx, u.ID, "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, len(c.problems), day.ProblemsSolved)
}

func TestProgressViews(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	u := f.user(t, &model.User{})

	// Arrays 5 题完成 3 题
	for _, i := range []int{0, 2, 3} {
		require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[i], true))
	}

	topics, err := f.progressSvc.TopicsWithProgress(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "Arrays", topics[0].Name)
	assert.Equal(t, 3, topics[0].CompletedCount)
	assert.Equal(t, 60, topics[0].Progress)
	assert.Equal(t, 0, topics[1].Progress)

	patterns, err := f.progressSvc.PatternsWithProgress(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, 67, patterns[0].Progress)
	assert.Equal(t, 67, patterns[0].MasteryScore)

	details, err := f.progressSvc.ProblemsWithDetails(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, details, 6)
	assert.True(t, details[0].IsCompleted)
	require.NotNil(t, details[0].Topic)
	assert.Equal(t, "Arrays", details[0].Topic.Name)
	require.NotNil(t, details[0].Subtopic)
	require.NotNil(t, details[0].Pattern)
	assert.Nil(t, details[3].Pattern)
	assert.Nil(t, details[3].Subtopic)

	byPattern, err := f.progressSvc.ProblemsByPattern(f.ctx, c.twoPointers, u.ID)
	require.NoError(t, err)
	assert.Len(t, byPattern, 3)

	// 不存在的套路返回空列表
	none, err := f.progressSvc.ProblemsByPattern(f.ctx, "missing", u.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	recommended, err := f.progressSvc.RecommendProblems(f.ctx, u.ID, 0)
	require.NoError(t, err)
	titles := make([]string, 0, len(recommended))
	for _, p := range recommended {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"3Sum", "Group Anagrams", "Number of Islands"}, titles)

	subs, err := f.progressSvc.Subtopics(f.ctx, c.arrays)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	noSubs, err := f.progressSvc.Subtopics(f.ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, noSubs)
	assert.Empty(t, noSubs)
}

func TestUserStatsSnapshot(t *testing.T) {
	f := newFixture(t, testutil.SeededDB(t))
	u := f.user(t, &model.User{})

	problems, err := f.catalog.ListProblems(f.ctx)
	require.NoError(t, err)
	require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, problems[0].ID, true))

	// 窗口为最近 91 天（含今天）
	require.NoError(t, f.activity.Increment(f.ctx, u.ID, "2026-07-18", 1, 10))
	require.NoError(t, f.activity.Increment(f.ctx, u.ID, "2026-07-17", 1, 10))

	stats, err := f.stats.UserStats(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 60, stats.XP) // 10 + First Steps 50
	assert.Equal(t, 1, stats.Level)
	assert.Len(t, stats.TopicProgress, 14)
	assert.Len(t, stats.PatternProgress, 16)
	assert.Len(t, stats.Badges, 12)
	assert.True(t, stats.Badges[0].Earned)

	require.Len(t, stats.RecentActivity, 2)
	assert.Equal(t, "2026-10-16", stats.RecentActivity[0].Date)
	assert.Equal(t, "2026-07-18", stats.RecentActivity[1].Date)

	week, err := f.stats.DailyActivity(f.ctx, u.ID, 7)
	require.NoError(t, err)
	assert.Len(t, week, 1)

	ghost, err := f.stats.UserStats(f.ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, ghost.TotalSolved)
	assert.Equal(t, 0, ghost.XP)
	assert.Equal(t, 1, ghost.Level)
	assert.Len(t, ghost.TopicProgress, 14)
	assert.Empty(t, ghost.RecentActivity)

	_, err = f.game.EvaluateBadges(f.ctx, "ghost")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestAuthService(t *testing.T) {
	db := testutil.DB(t)
	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	cfg.Auth.DemoLogin = true
	users := repository.NewUserRepository(db)
	auth := NewAuthService(users, cfg)
	ctx := context.Background()

	user, err := auth.Register(ctx, RegisterRequest{Email: "Ada@Example.com", Password: "secret1", FirstName: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 1, user.Level)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = auth.Register(ctx, RegisterRequest{Email: "ada@example.com", Password: "another"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	tok, err := auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := util.ParseJWT(tok.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	demo, err := auth.DemoLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, util.DemoUserID, demo.User.ID)
	require.NoError(t, users.UpdateXPAndLevel(ctx, util.DemoUserID, 250, 3))

	demo, err = auth.DemoLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, demo.User.XP)

	me, err := auth.CurrentUser(ctx, util.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "Demo User", me.DisplayName())
	_, err = auth.CurrentUser(ctx, "ghost")
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	cfg.Auth.DemoLogin = false
	_, err = auth.DemoLogin(ctx)
	assert.ErrorIs(t, err, util.ErrDemoLoginDisabled)
}

func TestRegisterMapsDuplicateEmailFromConcurrentSignup(t *testing.T) {
	db := testutil.DB(t)
	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	auth := NewAuthService(repository.NewUserRepository(db), cfg)

	// 在邮箱检查之后、插入之前写入同邮箱用户
	fired := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_signup", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "users" {
			return
		}
		fired = true
		email := "race@example.com"
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(&model.User{Email: &email, Level: 1}).Error; err != nil {
			tx.AddError(err)
		}
	}))

	_, err := auth.Register(context.Background(), RegisterRequest{Email: "race@example.com", Password: "secret1"})
	assert.True(t, fired)
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, label string) float64 {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(vec))
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestXPMetricOnlyCountsCommittedGrants(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	c := seedSmallCatalog(t, f)
	u := f.user(t, &model.User{})

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_activity", func(tx *gorm.DB) {
		if tx.Statement.Table == "daily_activities" {
			tx.AddError(errors.New("disk full"))
		}
	}))

	before := counterValue(t, monitoring.XPGranted, "problem")
	err := f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[0], true)
	require.Error(t, err)
	assert.Equal(t, before, counterValue(t, monitoring.XPGranted, "problem"))

	got, err := f.users.FindByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.XP)

	require.NoError(t, f.db.Callback().Create().Remove("test:fail_activity"))
	require.NoError(t, f.game.ToggleProblemCompletion(f.ctx, u.ID, c.problems[0], true))
	assert.Equal(t, before+10, counterValue(t, monitoring.XPGranted, "problem"))
}

func TestUserStatsWaitsForInFlightSettlement(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	seedSmallCatalog(t, f)
	u := f.user(t, &model.User{})
	require.Same(t, f.stats.locks, f.game.locks)

	// 模拟结算进行中
	unlock := f.game.locks.lock(u.ID)

	done := make(chan *model.UserStats, 1)
	go func() {
		stats, err := f.stats.UserStats(f.ctx, u.ID)
		assert.NoError(t, err)
		done <- stats
	}()

	select {
	case <-done:
		t.Fatal("stats computed while settlement held the user lock")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, f.users.UpdateXPAndLevel(f.ctx, u.ID, 40, 1))
	unlock()

	select {
	case stats := <-done:
		assert.Equal(t, 40, stats.XP)
	case <-time.After(5 * time.Second):
		t.Fatal("stats never returned")
	}
}
