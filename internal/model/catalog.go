package model

import "gorm.io/datatypes"

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Rank 推荐排序使用的难度序号，未知难度按 Easy 处理
func (d Difficulty) Rank() int {
	switch d {
	case Medium:
		return 1
	case Hard:
		return 2
	default:
		return 0
	}
}

func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// Topic 题目分类（如 Arrays、Graphs、DP）
// swagger:model Topic
type Topic struct {
	UUIDBase
	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Icon         string `gorm:"size:50" json:"icon"`
	Order        int    `gorm:"column:order;default:0;not null;index" json:"order"`
	ProblemCount int    `gorm:"default:0;not null" json:"problemCount"`
}

func (Topic) TableName() string {
	return "topics"
}

// swagger:model Subtopic
type Subtopic struct {
	UUIDBase
	TopicID      string `gorm:"type:varchar(36);not null;index" json:"topicId"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Order        int    `gorm:"column:order;default:0;not null" json:"order"`
	ProblemCount int    `gorm:"default:0;not null" json:"problemCount"`
}

func (Subtopic) TableName() string {
	return "subtopics"
}

// Pattern 解题套路（如 Sliding Window、Two Pointers）
// swagger:model Pattern
type Pattern struct {
	UUIDBase
	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Icon         string `gorm:"size:50" json:"icon"`
	Color        string `gorm:"size:20" json:"color"`
	Order        int    `gorm:"column:order;default:0;not null" json:"order"`
	ProblemCount int    `gorm:"default:0;not null" json:"problemCount"`
}

func (Pattern) TableName() string {
	return "patterns"
}

// swagger:model Problem
type Problem struct {
	UUIDBase
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Difficulty  Difficulty                  `gorm:"size:20;not null" json:"difficulty"`
	TopicID     string                      `gorm:"type:varchar(36);not null;index" json:"topicId"`
	SubtopicID  *string                     `gorm:"type:varchar(36);index" json:"subtopicId"`
	PatternID   *string                     `gorm:"type:varchar(36);index" json:"patternId"`
	ExternalURL string                      `gorm:"type:text" json:"externalUrl"`
	Platform    string                      `gorm:"size:50" json:"platform"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Order       int                         `gorm:"column:order;default:0;not null;index" json:"order"`
}

func (Problem) TableName() string {
	return "problems"
}
