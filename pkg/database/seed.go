package database

import (
	"faang_prep_backend/internal/model"
	"log"

	"gorm.io/gorm"
)

type topicSeed struct {
	Name, Description, Icon string
}

type patternSeed struct {
	Name, Description, Icon, Color string
}

type problemSeed struct {
	Title      string
	Difficulty model.Difficulty
	Topic      int
	Pattern    int // -1 表示无套路
	URL        string
	Tags       []string
}

var topicSeeds = []topicSeed{
	{"Arrays & Hashing", "Fundamental operations on arrays and hash tables", "Grid"},
	{"Two Pointers", "Techniques using two pointers for efficient solutions", "ArrowsHorizontal"},
	{"Sliding Window", "Optimize array/string problems with sliding window", "Window"},
	{"Stack", "LIFO data structure problems", "Layers"},
	{"Binary Search", "Efficient search in sorted data", "Search"},
	{"Linked List", "Node-based linear data structures", "Link"},
	{"Trees", "Hierarchical tree structures and traversals", "TreePine"},
	{"Heap / Priority Queue", "Priority-based data structures", "Mountain"},
	{"Backtracking", "Recursive exploration with pruning", "Undo"},
	{"Graphs", "Graph traversal and algorithms", "Network"},
	{"Dynamic Programming", "Optimization through subproblem solving", "Brain"},
	{"Greedy", "Locally optimal choices for global solutions", "Sparkles"},
	{"Bit Manipulation", "Operations on binary representations", "Binary"},
	{"Math & Geometry", "Mathematical algorithms and geometry", "Calculator"},
}

var patternSeeds = []patternSeed{
	{"Two Pointers", "Use two pointers moving in same or opposite directions", "ArrowsHorizontal", "#3b82f6"},
	{"Sliding Window", "Maintain a window that slides through data", "Window", "#10b981"},
	{"Fast & Slow Pointers", "Two pointers moving at different speeds", "Rabbit", "#f59e0b"},
	{"Merge Intervals", "Combine overlapping intervals", "Merge", "#8b5cf6"},
	{"Cyclic Sort", "Sort numbers in a given range", "RefreshCw", "#ec4899"},
	{"Binary Search", "Divide and conquer on sorted data", "Search", "#06b6d4"},
	{"BFS", "Breadth-first search traversal", "Layers", "#84cc16"},
	{"DFS", "Depth-first search traversal", "TreePine", "#f97316"},
	{"Top K Elements", "Find top/smallest K elements using heap", "Trophy", "#6366f1"},
	{"Subsets", "Generate all subsets/combinations", "Grid", "#14b8a6"},
	{"Modified Binary Search", "Variations of binary search", "SearchCode", "#a855f7"},
	{"Topological Sort", "Order nodes in a DAG", "GitBranch", "#0ea5e9"},
	{"DP on Subsequences", "Dynamic programming for subsequence problems", "Dna", "#d946ef"},
	{"DP on Strings", "Dynamic programming for string problems", "Text", "#22c55e"},
	{"DP on Grid", "Dynamic programming on 2D grids", "LayoutGrid", "#eab308"},
	{"Monotonic Stack", "Stack maintaining monotonic order", "BarChart", "#ef4444"},
}

const leetcode = "https://leetcode.com/problems/"

var problemSeeds = []problemSeed{
	// Arrays & Hashing
	{"Two Sum", model.Easy, 0, 0, "two-sum", []string{"array", "hash-table"}},
	{"Contains Duplicate", model.Easy, 0, -1, "contains-duplicate", []string{"array", "hash-table"}},
	{"Valid Anagram", model.Easy, 0, -1, "valid-anagram", []string{"string", "hash-table"}},
	{"Group Anagrams", model.Medium, 0, -1, "group-anagrams", []string{"array", "hash-table", "string"}},
	{"Top K Frequent Elements", model.Medium, 0, 8, "top-k-frequent-elements", []string{"array", "heap", "hash-table"}},
	// Two Pointers
	{"Valid Palindrome", model.Easy, 1, 0, "valid-palindrome", []string{"string", "two-pointers"}},
	{"3Sum", model.Medium, 1, 0, "3sum", []string{"array", "two-pointers"}},
	{"Container With Most Water", model.Medium, 1, 0, "container-with-most-water", []string{"array", "two-pointers", "greedy"}},
	// Sliding Window
	{"Best Time to Buy and Sell Stock", model.Easy, 2, 1, "best-time-to-buy-and-sell-stock", []string{"array", "dp"}},
	{"Longest Substring Without Repeating Characters", model.Medium, 2, 1, "longest-substring-without-repeating-characters", []string{"string", "sliding-window", "hash-table"}},
	{"Minimum Window Substring", model.Hard, 2, 1, "minimum-window-substring", []string{"string", "sliding-window", "hash-table"}},
	// Stack
	{"Valid Parentheses", model.Easy, 3, 15, "valid-parentheses", []string{"string", "stack"}},
	{"Daily Temperatures", model.Medium, 3, 15, "daily-temperatures", []string{"array", "stack", "monotonic-stack"}},
	{"Largest Rectangle in Histogram", model.Hard, 3, 15, "largest-rectangle-in-histogram", []string{"array", "stack", "monotonic-stack"}},
	// Binary Search
	{"Binary Search", model.Easy, 4, 5, "binary-search", []string{"array", "binary-search"}},
	{"Search in Rotated Sorted Array", model.Medium, 4, 10, "search-in-rotated-sorted-array", []string{"array", "binary-search"}},
	{"Find Minimum in Rotated Sorted Array", model.Medium, 4, 10, "find-minimum-in-rotated-sorted-array", []string{"array", "binary-search"}},
	// Linked List
	{"Reverse Linked List", model.Easy, 5, -1, "reverse-linked-list", []string{"linked-list", "recursion"}},
	{"Merge Two Sorted Lists", model.Easy, 5, -1, "merge-two-sorted-lists", []string{"linked-list", "recursion"}},
	{"Linked List Cycle", model.Easy, 5, 2, "linked-list-cycle", []string{"linked-list", "two-pointers"}},
	// Trees
	{"Invert Binary Tree", model.Easy, 6, 7, "invert-binary-tree", []string{"tree", "dfs", "bfs"}},
	{"Maximum Depth of Binary Tree", model.Easy, 6, 7, "maximum-depth-of-binary-tree", []string{"tree", "dfs", "bfs"}},
	{"Validate Binary Search Tree", model.Medium, 6, 7, "validate-binary-search-tree", []string{"tree", "dfs", "bst"}},
	{"Binary Tree Level Order Traversal", model.Medium, 6, 6, "binary-tree-level-order-traversal", []string{"tree", "bfs"}},
	// Graphs
	{"Number of Islands", model.Medium, 9, 7, "number-of-islands", []string{"graph", "dfs", "bfs"}},
	{"Clone Graph", model.Medium, 9, 6, "clone-graph", []string{"graph", "dfs", "bfs"}},
	{"Course Schedule", model.Medium, 9, 11, "course-schedule", []string{"graph", "topological-sort"}},
	// Dynamic Programming
	{"Climbing Stairs", model.Easy, 10, 12, "climbing-stairs", []string{"dp", "math"}},
	{"House Robber", model.Medium, 10, 12, "house-robber", []string{"dp", "array"}},
	{"Longest Increasing Subsequence", model.Medium, 10, 12, "longest-increasing-subsequence", []string{"dp", "binary-search"}},
	{"Longest Common Subsequence", model.Medium, 10, 13, "longest-common-subsequence", []string{"dp", "string"}},
	{"Unique Paths", model.Medium, 10, 14, "unique-paths", []string{"dp", "math"}},
	// Backtracking
	{"Subsets", model.Medium, 8, 9, "subsets", []string{"backtracking", "array"}},
	{"Combination Sum", model.Medium, 8, 9, "combination-sum", []string{"backtracking", "array"}},
	{"Permutations", model.Medium, 8, 9, "permutations", []string{"backtracking", "array"}},
	{"Word Search", model.Medium, 8, 7, "word-search", []string{"backtracking", "dfs", "matrix"}},
}

var badgeSeeds = []model.Badge{
	{Name: "First Steps", Description: "Solve your first problem", Icon: "Footprints", XPReward: 50, Requirement: model.RequirementProblemsSolved, Threshold: 1},
	{Name: "Getting Started", Description: "Solve 10 problems", Icon: "Rocket", XPReward: 100, Requirement: model.RequirementProblemsSolved, Threshold: 10},
	{Name: "Problem Solver", Description: "Solve 25 problems", Icon: "Target", XPReward: 200, Requirement: model.RequirementProblemsSolved, Threshold: 25},
	{Name: "Century", Description: "Solve 100 problems", Icon: "Trophy", XPReward: 500, Requirement: model.RequirementProblemsSolved, Threshold: 100},
	{Name: "Week Warrior", Description: "Maintain a 7-day streak", Icon: "Flame", XPReward: 150, Requirement: model.RequirementStreakDays, Threshold: 7},
	{Name: "Month Master", Description: "Maintain a 30-day streak", Icon: "Calendar", XPReward: 500, Requirement: model.RequirementStreakDays, Threshold: 30},
	{Name: "Topic Explorer", Description: "Complete 1 topic", Icon: "Map", XPReward: 200, Requirement: model.RequirementTopicsCompleted, Threshold: 1},
	{Name: "Topic Champion", Description: "Complete 5 topics", Icon: "Medal", XPReward: 500, Requirement: model.RequirementTopicsCompleted, Threshold: 5},
	{Name: "Pattern Learner", Description: "Master 1 pattern", Icon: "Puzzle", XPReward: 150, Requirement: model.RequirementPatternsMastered, Threshold: 1},
	{Name: "Pattern Expert", Description: "Master 5 patterns", Icon: "Brain", XPReward: 400, Requirement: model.RequirementPatternsMastered, Threshold: 5},
	{Name: "XP Hunter", Description: "Earn 500 XP", Icon: "Zap", XPReward: 100, Requirement: model.RequirementXPEarned, Threshold: 500},
	{Name: "XP Master", Description: "Earn 2000 XP", Icon: "Crown", XPReward: 300, Requirement: model.RequirementXPEarned, Threshold: 2000},
}

// BadgeSeeds 返回默认徽章定义的副本
func BadgeSeeds() []model.Badge {
	out := make([]model.Badge, len(badgeSeeds))
	copy(out, badgeSeeds)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// Seed 题库为空时写入默认题库与徽章
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Topic{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Database already seeded, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		topics := make([]model.Topic, len(topicSeeds))
		for i, t := range topicSeeds {
			topics[i] = model.Topic{Name: t.Name, Description: t.Description, Icon: t.Icon, Order: i + 1}
		}
		if err := tx.Create(&topics).Error; err != nil {
			return err
		}

		patterns := make([]model.Pattern, len(patternSeeds))
		for i, p := range patternSeeds {
			patterns[i] = model.Pattern{Name: p.Name, Description: p.Description, Icon: p.Icon, Color: p.Color, Order: i + 1}
		}
		if err := tx.Create(&patterns).Error; err != nil {
			return err
		}

		problems := make([]model.Problem, len(problemSeeds))
		for i, p := range problemSeeds {
			problems[i] = model.Problem{
				Title:       p.Title,
				Difficulty:  p.Difficulty,
				TopicID:     topics[p.Topic].ID,
				ExternalURL: leetcode + p.URL + "/",
				Platform:    "LeetCode",
				Tags:        p.Tags,
				Order:       i,
			}
			if p.Pattern >= 0 {
				problems[i].PatternID = &patterns[p.Pattern].ID
			}
		}
		if err := tx.Create(&problems).Error; err != nil {
			return err
		}

		badges := BadgeSeeds()
		if err := tx.Create(&badges).Error; err != nil {
			return err
		}

		if err := RecountProblemCounts(tx); err != nil {
			return err
		}

		log.Printf("Seeded %d topics, %d patterns, %d problems, %d badges",
			len(topics), len(patterns), len(problems), len(badges))
		return nil
	})
}

// RecountProblemCounts 重新计算 topics/subtopics/patterns 上的冗余题目数
func RecountProblemCounts(db *gorm.DB) error {
	type row struct {
		GroupKey string
		Total    int
	}

	recount := func(table, column string, target interface{}) error {
		var rows []row
		if err := db.Model(&model.Problem{}).
			Select(column + " AS group_key, COUNT(*) AS total").
			Where(column + " IS NOT NULL").
			Group(column).
			Scan(&rows).Error; err != nil {
			return err
		}

		if err := db.Model(target).Where("1 = 1").Update("problem_count", 0).Error; err != nil {
			return err
		}
		for _, r := range rows {
			if err := db.Table(table).Where("id = ?", r.GroupKey).Update("problem_count", r.Total).Error; err != nil {
				return err
			}
		}
		return nil
	}

	if err := recount("topics", "topic_id", &model.Topic{}); err != nil {
		return err
	}
	if err := recount("subtopics", "subtopic_id", &model.Subtopic{}); err != nil {
		return err
	}
	return recount("patterns", "pattern_id", &model.Pattern{})
}
