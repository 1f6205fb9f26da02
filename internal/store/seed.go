package store

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/skillpath/internal/models"
)

// Demo goal "1" owns every seeded skill.
const demoGoalID = "1"

func seedGoals() []models.Goal {
	return []models.Goal{
		{
			ID:                     demoGoalID,
			OwnerID:                models.DemoOwnerID,
			Title:                  "Senior Software Engineer Role",
			Description:            "Land a senior software engineering position at a top tech company",
			TargetDate:             seedDate(2024, time.December, 31),
			EstimatedDurationWeeks: intPtr(16),
			CreatedAt:              seedTime(2024, time.October, 1),
			UpdatedAt:              seedTime(2024, time.October, 1),
		},
		{
			ID:                     "2",
			OwnerID:                models.DemoOwnerID,
			Title:                  "Full-Stack Developer",
			Description:            "Become proficient in both frontend and backend development",
			TargetDate:             seedDate(2024, time.November, 30),
			EstimatedDurationWeeks: intPtr(12),
			CreatedAt:              seedTime(2024, time.September, 15),
			UpdatedAt:              seedTime(2024, time.September, 15),
		},
	}
}

func seedSkills() []models.Skill {
	goalID := demoGoalID
	return []models.Skill{
		{
			ID:             "1",
			OwnerID:        models.DemoOwnerID,
			GoalID:         &goalID,
			Title:          "React Hooks",
			Description:    "Learning advanced React hooks patterns and custom hooks",
			Status:         models.SkillInProgress,
			TargetDate:     seedDate(2024, time.December, 31),
			OrderInRoadmap: 0,
			Notes:          "Focusing on useContext and useReducer patterns",
			CreatedAt:      seedTime(2024, time.October, 1),
			UpdatedAt:      seedTime(2024, time.October, 15),
			LastReviewedAt: seedTime(2024, time.October, 15),
		},
		{
			ID:             "2",
			OwnerID:        models.DemoOwnerID,
			GoalID:         &goalID,
			Title:          "Node.js Performance",
			Description:    "Understanding Node.js performance optimization techniques",
			Status:         models.SkillNotStarted,
			TargetDate:     seedDate(2024, time.November, 30),
			OrderInRoadmap: 1,
			CreatedAt:      seedTime(2024, time.October, 5),
			UpdatedAt:      seedTime(2024, time.October, 5),
			LastReviewedAt: seedTime(2024, time.October, 5),
		},
		{
			ID:             "3",
			OwnerID:        models.DemoOwnerID,
			GoalID:         &goalID,
			Title:          "TypeScript Advanced Types",
			Description:    "Mastering conditional types, mapped types, and template literals",
			Status:         models.SkillDone,
			TargetDate:     seedDate(2024, time.October, 20),
			OrderInRoadmap: 2,
			Notes:          "Completed the official TypeScript handbook",
			CreatedAt:      seedTime(2024, time.September, 15),
			UpdatedAt:      seedTime(2024, time.October, 20),
			LastReviewedAt: seedTime(2024, time.October, 20),
		},
	}
}

func seedTime(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func seedDate(year int, month time.Month, day int) *datatypes.Date {
	date := datatypes.Date(seedTime(year, month, day))
	return &date
}

func intPtr(v int) *int { return &v }

// toDate truncates a timestamp to its UTC calendar day.
func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	date := datatypes.Date(time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC))
	return &date
}
