package model

import "time"

// BadgeRequirement 徽章解锁条件的种类，集合是封闭的
type BadgeRequirement string

const (
	RequirementProblemsSolved   BadgeRequirement = "problems_solved"
	RequirementStreakDays       BadgeRequirement = "streak_days"
	RequirementTopicsCompleted  BadgeRequirement = "topics_completed"
	RequirementPatternsMastered BadgeRequirement = "patterns_mastered"
	RequirementXPEarned         BadgeRequirement = "xp_earned"
)

func (r BadgeRequirement) Valid() bool {
	switch r {
	case RequirementProblemsSolved, RequirementStreakDays, RequirementTopicsCompleted,
		RequirementPatternsMastered, RequirementXPEarned:
		return true
	}
	return false
}

// swagger:model Badge
type Badge struct {
	UUIDBase
	Name        string           `gorm:"size:100;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Icon        string           `gorm:"size:50" json:"icon"`
	XPReward    int              `gorm:"default:0;not null" json:"xpReward"`
	Requirement BadgeRequirement `gorm:"size:50;not null" json:"requirement"`
	Threshold   int              `gorm:"default:1;not null" json:"threshold"`
	Order       int              `gorm:"column:order;default:0;not null" json:"order"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge 已获得的徽章，(user_id, badge_id) 唯一，只增不删
type UserBadge struct {
	UUIDBase
	UserID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_badge" json:"userId"`
	BadgeID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_badge" json:"badgeId"`
	EarnedAt time.Time `gorm:"not null" json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
