package roadmap

import (
	"strings"

	"github.com/noah-isme/skillpath/internal/models"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// SkillFilter narrows a skill list. Empty fields match everything.
type SkillFilter struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
	GoalID string `json:"goal_id,omitempty"`
}

// FilterSkills keeps the skills matching every set criterion, preserving order. Search is
// case-insensitive over title and description.
func FilterSkills(skills []models.Skill, filter SkillFilter) []models.Skill {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	goalID := strings.TrimSpace(filter.GoalID)

	out := make([]models.Skill, 0, len(skills))
	for _, skill := range skills {
		if status != "" && status != StatusAll && string(skill.Status) != status {
			continue
		}
		if goalID != "" && !skill.BelongsTo(goalID) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(skill.Title), search) &&
			!strings.Contains(strings.ToLower(skill.Description), search) {
			continue
		}
		out = append(out, skill)
	}
	return out
}
