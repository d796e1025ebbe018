package model

import "time"

// UserProgress 用户对单个题目的完成状态，(user_id, problem_id) 唯一
// swagger:model UserProgress
type UserProgress struct {
	UUIDBase
	UserID      string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_problem" json:"userId"`
	ProblemID   string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_problem" json:"problemId"`
	Completed   bool       `gorm:"default:false;not null" json:"completed"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// DailyActivity 每个用户每天一条，Date 为 YYYY-MM-DD
// swagger:model DailyActivity
type DailyActivity struct {
	UUIDBase
	UserID         string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_day" json:"userId"`
	Date           string `gorm:"size:10;not null;uniqueIndex:idx_user_day" json:"date"`
	ProblemsSolved int    `gorm:"default:0;not null" json:"problemsSolved"`
	XPEarned       int    `gorm:"default:0;not null" json:"xpEarned"`
}

func (DailyActivity) TableName() string {
	return "daily_activity"
}
