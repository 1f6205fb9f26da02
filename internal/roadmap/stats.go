package roadmap

import (
	"math"
	"slices"
	"time"

	"github.com/noah-isme/skillpath/internal/models"
)

// GoalStats is a goal decorated with counts derived from the skill snapshot.
type GoalStats struct {
	models.Goal
	SkillsCount          int `json:"skills_count"`
	CompletedSkillsCount int `json:"completed_skills_count"`
}

// WithGoalStats counts the skills attached to the goal and how many of them are done.
func WithGoalStats(goal models.Goal, skills []models.Skill) GoalStats {
	stats := GoalStats{Goal: goal}
	for _, skill := range skills {
		if !skill.BelongsTo(goal.ID) {
			continue
		}
		stats.SkillsCount++
		if skill.Status == models.SkillDone {
			stats.CompletedSkillsCount++
		}
	}
	return stats
}

// GoalsWithStats decorates every goal, keeping the input order.
func GoalsWithStats(goals []models.Goal, skills []models.Skill) []GoalStats {
	out := make([]GoalStats, 0, len(goals))
	for _, goal := range goals {
		out = append(out, WithGoalStats(goal, skills))
	}
	return out
}

// OverallProgress is the rounded share of completed skills, 0 for a goal without skills.
func OverallProgress(stats GoalStats) int {
	if stats.SkillsCount == 0 {
		return 0
	}
	return int(math.Round(float64(stats.CompletedSkillsCount) / float64(stats.SkillsCount) * 100))
}

// IsOverdue reports whether an unachieved goal's target date has passed.
func IsOverdue(goal models.Goal, now time.Time) bool {
	if goal.IsAchieved || goal.TargetDate == nil {
		return false
	}
	return time.Time(*goal.TargetDate).Before(now)
}

// SkillsForGoal returns the goal's skills in roadmap order.
func SkillsForGoal(goalID string, skills []models.Skill) []models.Skill {
	out := make([]models.Skill, 0)
	for _, skill := range skills {
		if skill.BelongsTo(goalID) {
			out = append(out, skill)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Skill) int {
		return a.OrderInRoadmap - b.OrderInRoadmap
	})
	return out
}

// GoalFilter selects goals by achievement: "all", "active" or "completed".
type GoalFilter string

const (
	GoalsAll       GoalFilter = "all"
	GoalsActive    GoalFilter = "active"
	GoalsCompleted GoalFilter = "completed"
)

// FilterGoals applies the achievement filter. Unknown filters behave like "all".
func FilterGoals(goals []GoalStats, filter GoalFilter) []GoalStats {
	out := make([]GoalStats, 0, len(goals))
	for _, goal := range goals {
		switch filter {
		case GoalsActive:
			if goal.IsAchieved {
				continue
			}
		case GoalsCompleted:
			if !goal.IsAchieved {
				continue
			}
		}
		out = append(out, goal)
	}
	return out
}
