package service

import (
	"faang_prep_backend/internal/config"
	"faang_prep_backend/internal/model"
	"faang_prep_backend/internal/util"
	"math"
	"sort"
	"time"
)

const (
	defaultXPPerProblem     = 10
	defaultXPPerLevel       = 100
	defaultMasteryThreshold = 80
	defaultActivityDays     = 91
	defaultRecommendLimit   = 5
)

// Rules 经验、等级、连续打卡与徽章判定的纯函数规则
type Rules struct {
	XPPerProblem     int
	XPPerLevel       int
	MasteryThreshold int
	ActivityDays     int
	RecommendLimit   int
	Location         *time.Location
}

func NewRules(cfg config.GamificationConfig) Rules {
	r := Rules{
		XPPerProblem:     cfg.XPPerProblem,
		XPPerLevel:       cfg.XPPerLevel,
		MasteryThreshold: cfg.MasteryThreshold,
		ActivityDays:     cfg.ActivityDays,
		RecommendLimit:   cfg.RecommendLimit,
		Location:         cfg.Location(),
	}
	if r.XPPerProblem <= 0 {
		r.XPPerProblem = defaultXPPerProblem
	}
	if r.XPPerLevel <= 0 {
		r.XPPerLevel = defaultXPPerLevel
	}
	if r.MasteryThreshold <= 0 {
		r.MasteryThreshold = defaultMasteryThreshold
	}
	if r.ActivityDays <= 0 {
		r.ActivityDays = defaultActivityDays
	}
	if r.RecommendLimit <= 0 {
		r.RecommendLimit = defaultRecommendLimit
	}
	return r
}

// DefaultRules 与默认配置一致
func DefaultRules() Rules {
	return NewRules(config.GamificationConfig{})
}

// LevelForXP level = floor(xp / XPPerLevel) + 1
func (r Rules) LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/r.XPPerLevel + 1
}

func (r Rules) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// Today 返回规则时区下当天零点
func (r Rules) Today(now time.Time) time.Time {
	t := now.In(r.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc())
}

// DayKey DailyActivity 使用的日期键
func (r Rules) DayKey(t time.Time) string {
	return t.In(r.loc()).Format(util.DateFormat)
}

// daysBetween 两个时刻在规则时区下相差的自然日数
func (r Rules) daysBetween(from, to time.Time) int {
	f := from.In(r.loc())
	t := to.In(r.loc())
	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(td.Sub(fd).Hours() / 24)
}

type StreakState struct {
	Current    int
	Longest    int
	LastActive *time.Time
}

// NextStreak 当天已计入时不变；昨天活跃则 +1；否则重置为 1
func (r Rules) NextStreak(s StreakState, now time.Time) (StreakState, bool) {
	today := r.Today(now)
	next := s

	if s.LastActive != nil {
		switch diff := r.daysBetween(*s.LastActive, today); {
		case diff == 0:
			return s, false
		case diff == 1:
			next.Current = s.Current + 1
		default:
			next.Current = 1
		}
	} else {
		next.Current = 1
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	next.LastActive = &today
	return next, true
}

// ActivitySince 最近 days 天（含今天）窗口的起始日期键
func (r Rules) ActivitySince(now time.Time, days int) string {
	if days <= 0 {
		days = r.ActivityDays
	}
	return r.DayKey(r.Today(now).AddDate(0, 0, -(days - 1)))
}

type requirementStat func(stats *model.UserStats, r Rules) int

var requirementStats = map[model.BadgeRequirement]requirementStat{
	model.RequirementProblemsSolved: func(s *model.UserStats, _ Rules) int {
		return s.TotalSolved
	},
	model.RequirementStreakDays: func(s *model.UserStats, _ Rules) int {
		return s.CurrentStreak
	},
	model.RequirementTopicsCompleted: func(s *model.UserStats, _ Rules) int {
		n := 0
		for _, t := range s.TopicProgress {
			if t.Progress == 100 {
				n++
			}
		}
		return n
	},
	model.RequirementPatternsMastered: func(s *model.UserStats, r Rules) int {
		n := 0
		for _, p := range s.PatternProgress {
			if p.MasteryScore >= r.MasteryThreshold {
				n++
			}
		}
		return n
	},
	model.RequirementXPEarned: func(s *model.UserStats, _ Rules) int {
		return s.XP
	},
}

// RequirementStat 取徽章条件对应的统计值，未知条件返回 ErrInvalidRequirement
func (r Rules) RequirementStat(req model.BadgeRequirement, stats *model.UserStats) (int, error) {
	fn, ok := requirementStats[req]
	if !ok {
		return 0, util.ErrInvalidRequirement
	}
	return fn(stats, r), nil
}

// Qualifies 统计值是否达到徽章阈值
func (r Rules) Qualifies(badge model.Badge, stats *model.UserStats) bool {
	v, err := r.RequirementStat(badge.Requirement, stats)
	if err != nil {
		return false
	}
	return v >= badge.Threshold
}

// percent round(100 * done / total)，total 为 0 时返回 0
func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}

func topicProgress(topics []model.Topic, problems []model.Problem, completed map[string]bool) []model.TopicWithProgress {
	total := make(map[string]int, len(topics))
	done := make(map[string]int, len(topics))
	for _, p := range problems {
		total[p.TopicID]++
		if completed[p.ID] {
			done[p.TopicID]++
		}
	}

	out := make([]model.TopicWithProgress, 0, len(topics))
	for _, t := range topics {
		t.ProblemCount = total[t.ID]
		out = append(out, model.TopicWithProgress{
			Topic:          t,
			CompletedCount: done[t.ID],
			Progress:       percent(done[t.ID], total[t.ID]),
		})
	}
	return out
}

// patternProgress 掌握度目前等同完成率
func patternProgress(patterns []model.Pattern, problems []model.Problem, completed map[string]bool) []model.PatternWithProgress {
	total := make(map[string]int, len(patterns))
	done := make(map[string]int, len(patterns))
	for _, p := range problems {
		if p.PatternID == nil {
			continue
		}
		total[*p.PatternID]++
		if completed[p.ID] {
			done[*p.PatternID]++
		}
	}

	out := make([]model.PatternWithProgress, 0, len(patterns))
	for _, p := range patterns {
		p.ProblemCount = total[p.ID]
		progress := percent(done[p.ID], total[p.ID])
		out = append(out, model.PatternWithProgress{
			Pattern:        p,
			CompletedCount: done[p.ID],
			Progress:       progress,
			MasteryScore:   progress,
		})
	}
	return out
}

// recommend 未完成题目按难度、再按 order 稳定排序后取前 limit 个
func recommend(problems []model.ProblemWithDetails, limit int) []model.ProblemWithDetails {
	unsolved := make([]model.ProblemWithDetails, 0, len(problems))
	for _, p := range problems {
		if !p.IsCompleted {
			unsolved = append(unsolved, p)
		}
	}

	sort.SliceStable(unsolved, func(i, j int) bool {
		ri, rj := unsolved[i].Difficulty.Rank(), unsolved[j].Difficulty.Rank()
		if ri != rj {
			return ri < rj
		}
		return unsolved[i].Order < unsolved[j].Order
	})

	if limit < len(unsolved) {
		unsolved = unsolved[:limit]
	}
	return unsolved
}
