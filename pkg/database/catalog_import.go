package database

import (
	"database/sql"
	"faang_prep_backend/internal/model"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CatalogFile 题库导入文件格式，按名称引用分类与套路
type CatalogFile struct {
	Topics []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Icon        string `yaml:"icon"`
		Subtopics   []struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
		} `yaml:"subtopics"`
	} `yaml:"topics"`
	Patterns []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Icon        string `yaml:"icon"`
		Color       string `yaml:"color"`
	} `yaml:"patterns"`
	Problems []struct {
		Title      string   `yaml:"title"`
		Difficulty string   `yaml:"difficulty"`
		Topic      string   `yaml:"topic"`
		Subtopic   string   `yaml:"subtopic"`
		Pattern    string   `yaml:"pattern"`
		URL        string   `yaml:"url"`
		Platform   string   `yaml:"platform"`
		Tags       []string `yaml:"tags"`
	} `yaml:"problems"`
	Badges []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Icon        string `yaml:"icon"`
		XPReward    int    `yaml:"xp_reward"`
		Requirement string `yaml:"requirement"`
		Threshold   int    `yaml:"threshold"`
	} `yaml:"badges"`
}

type ImportResult struct {
	Topics, Subtopics, Patterns, Problems, Badges int
}

func nextOrder(tx *gorm.DB, m interface{}) (int, error) {
	var max sql.NullInt64
	if err := tx.Model(m).Select("MAX(`order`)").Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// ImportCatalog 导入 YAML 题库；同名条目跳过，排序追加在已有条目之后
func ImportCatalog(db *gorm.DB, r io.Reader) (*ImportResult, error) {
	var file CatalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	res := &ImportResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		topicIDs := map[string]string{}
		subtopicIDs := map[string]string{}
		patternIDs := map[string]string{}

		var topics []model.Topic
		if err := tx.Find(&topics).Error; err != nil {
			return err
		}
		for _, t := range topics {
			topicIDs[t.Name] = t.ID
		}
		var subtopics []model.Subtopic
		if err := tx.Find(&subtopics).Error; err != nil {
			return err
		}
		for _, s := range subtopics {
			subtopicIDs[s.TopicID+"/"+s.Name] = s.ID
		}
		var patterns []model.Pattern
		if err := tx.Find(&patterns).Error; err != nil {
			return err
		}
		for _, p := range patterns {
			patternIDs[p.Name] = p.ID
		}

		order, err := nextOrder(tx, &model.Topic{})
		if err != nil {
			return err
		}
		for _, t := range file.Topics {
			if _, ok := topicIDs[t.Name]; !ok {
				topic := model.Topic{Name: t.Name, Description: t.Description, Icon: t.Icon, Order: order}
				if err := tx.Create(&topic).Error; err != nil {
					return err
				}
				topicIDs[t.Name] = topic.ID
				order++
				res.Topics++
			}
			for i, s := range t.Subtopics {
				key := topicIDs[t.Name] + "/" + s.Name
				if _, ok := subtopicIDs[key]; ok {
					continue
				}
				sub := model.Subtopic{TopicID: topicIDs[t.Name], Name: s.Name, Description: s.Description, Order: i + 1}
				if err := tx.Create(&sub).Error; err != nil {
					return err
				}
				subtopicIDs[key] = sub.ID
				res.Subtopics++
			}
		}

		order, err = nextOrder(tx, &model.Pattern{})
		if err != nil {
			return err
		}
		for _, p := range file.Patterns {
			if _, ok := patternIDs[p.Name]; ok {
				continue
			}
			pattern := model.Pattern{Name: p.Name, Description: p.Description, Icon: p.Icon, Color: p.Color, Order: order}
			if err := tx.Create(&pattern).Error; err != nil {
				return err
			}
			patternIDs[p.Name] = pattern.ID
			order++
			res.Patterns++
		}

		var titles []string
		if err := tx.Model(&model.Problem{}).Pluck("title", &titles).Error; err != nil {
			return err
		}
		existing := make(map[string]bool, len(titles))
		for _, t := range titles {
			existing[t] = true
		}

		order, err = nextOrder(tx, &model.Problem{})
		if err != nil {
			return err
		}
		for _, p := range file.Problems {
			if existing[p.Title] {
				continue
			}
			difficulty := model.Difficulty(p.Difficulty)
			if !difficulty.Valid() {
				return fmt.Errorf("problem %q: invalid difficulty %q", p.Title, p.Difficulty)
			}
			topicID, ok := topicIDs[p.Topic]
			if !ok {
				return fmt.Errorf("problem %q: unknown topic %q", p.Title, p.Topic)
			}

			problem := model.Problem{
				Title:       p.Title,
				Difficulty:  difficulty,
				TopicID:     topicID,
				ExternalURL: p.URL,
				Platform:    p.Platform,
				Tags:        p.Tags,
				Order:       order,
			}
			if p.Subtopic != "" {
				id, ok := subtopicIDs[topicID+"/"+p.Subtopic]
				if !ok {
					return fmt.Errorf("problem %q: unknown subtopic %q", p.Title, p.Subtopic)
				}
				problem.SubtopicID = &id
			}
			if p.Pattern != "" {
				id, ok := patternIDs[p.Pattern]
				if !ok {
					return fmt.Errorf("problem %q: unknown pattern %q", p.Title, p.Pattern)
				}
				problem.PatternID = &id
			}
			if err := tx.Create(&problem).Error; err != nil {
				return err
			}
			existing[p.Title] = true
			order++
			res.Problems++
		}

		var badgeNames []string
		if err := tx.Model(&model.Badge{}).Pluck("name", &badgeNames).Error; err != nil {
			return err
		}
		haveBadge := make(map[string]bool, len(badgeNames))
		for _, n := range badgeNames {
			haveBadge[n] = true
		}
		order, err = nextOrder(tx, &model.Badge{})
		if err != nil {
			return err
		}
		for _, b := range file.Badges {
			if haveBadge[b.Name] {
				continue
			}
			req := model.BadgeRequirement(b.Requirement)
			if !req.Valid() {
				return fmt.Errorf("badge %q: unknown requirement %q", b.Name, b.Requirement)
			}
			badge := model.Badge{
				Name:        b.Name,
				Description: b.Description,
				Icon:        b.Icon,
				XPReward:    b.XPReward,
				Requirement: req,
				Threshold:   b.Threshold,
				Order:       order,
			}
			if err := tx.Create(&badge).Error; err != nil {
				return err
			}
			haveBadge[b.Name] = true
			order++
			res.Badges++
		}

		return RecountProblemCounts(tx)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
