package model

import "time"

// 以下为只读的派生视图，不落库

type TopicWithProgress struct {
	Topic
	CompletedCount int `json:"completedCount"`
	Progress       int `json:"progress"`
}

type PatternWithProgress struct {
	Pattern
	CompletedCount int `json:"completedCount"`
	Progress       int `json:"progress"`
	MasteryScore   int `json:"masteryScore"`
}

type ProblemWithDetails struct {
	Problem
	Topic       *Topic    `json:"topic,omitempty"`
	Subtopic    *Subtopic `json:"subtopic,omitempty"`
	Pattern     *Pattern  `json:"pattern,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
}

type BadgeWithStatus struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earnedAt,omitempty"`
}

// UserStats 用户统计快照，徽章判定与前端展示共用
type UserStats struct {
	TotalSolved     int                   `json:"totalSolved"`
	CurrentStreak   int                   `json:"currentStreak"`
	LongestStreak   int                   `json:"longestStreak"`
	XP              int                   `json:"xp"`
	Level           int                   `json:"level"`
	TopicProgress   []TopicWithProgress   `json:"topicProgress"`
	PatternProgress []PatternWithProgress `json:"patternProgress"`
	RecentActivity  []DailyActivity       `json:"recentActivity"`
	Badges          []BadgeWithStatus     `json:"badges"`
}
