package roadmap

import (
	"errors"
	"fmt"

	"github.com/noah-isme/skillpath/internal/models"
)

// ErrUnknownStatus indicates a status value with no progress mapping.
var ErrUnknownStatus = errors.New("unknown status")

// ProgressOf maps a skill status to a percentage.
func ProgressOf(status models.SkillStatus) (int, error) {
	switch status {
	case models.SkillNotStarted:
		return 0, nil
	case models.SkillInProgress:
		return 50, nil
	case models.SkillDone:
		return 100, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
}

// StatusLabel returns the display label of a skill status.
func StatusLabel(status models.SkillStatus) string {
	switch status {
	case models.SkillNotStarted:
		return "Not Started"
	case models.SkillInProgress:
		return "In Progress"
	case models.SkillDone:
		return "Completed"
	default:
		return "Unknown"
	}
}
