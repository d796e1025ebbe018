package model

import (
	"time"
)

// swagger:model User
type User struct {
	UUIDBase
	Email           *string    `gorm:"size:255;uniqueIndex" json:"email"`
	FirstName       string     `gorm:"size:100" json:"firstName"`
	LastName        string     `gorm:"size:100" json:"lastName"`
	ProfileImageURL string     `gorm:"size:255" json:"profileImageUrl"`
	Password        string     `gorm:"size:100" json:"-"`
	XP              int        `gorm:"default:0;not null" json:"xp"`
	Level           int        `gorm:"default:1;not null" json:"level"`
	CurrentStreak   int        `gorm:"default:0;not null" json:"currentStreak"`
	LongestStreak   int        `gorm:"default:0;not null" json:"longestStreak"`
	LastActiveDate  *time.Time `json:"lastActiveDate"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName 优先使用姓名，否则回退到邮箱
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" && u.Email != nil {
		return *u.Email
	}
	return name
}
