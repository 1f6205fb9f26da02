package store

import (
	"context"
	"time"

	"github.com/noah-isme/skillpath/internal/models"
)

// GoalDraft carries the caller supplied fields of a new goal.
type GoalDraft struct {
	Title                  string     `json:"title" validate:"max=255"`
	Description            string     `json:"description" validate:"max=5000"`
	TargetDate             *time.Time `json:"target_date,omitempty"`
	EstimatedDurationWeeks *int       `json:"estimated_duration_weeks,omitempty" validate:"omitempty,min=0,max=520"`
}

// GoalPatch lists the goal fields to change. Nil fields are left alone.
type GoalPatch struct {
	Title                  *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description            *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	TargetDate             *time.Time `json:"target_date,omitempty"`
	ClearTargetDate        bool       `json:"clear_target_date,omitempty"`
	EstimatedDurationWeeks *int       `json:"estimated_duration_weeks,omitempty" validate:"omitempty,min=0,max=520"`
	IsAchieved             *bool      `json:"is_achieved,omitempty"`
	AchievementNotes       *string    `json:"achievement_notes,omitempty"`
}

func (p GoalPatch) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if p.Title != nil {
		changes["title"] = *p.Title
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.ClearTargetDate {
		changes["target_date"] = nil
	} else if p.TargetDate != nil {
		changes["target_date"] = toDate(p.TargetDate)
	}
	if p.EstimatedDurationWeeks != nil {
		changes["estimated_duration_weeks"] = *p.EstimatedDurationWeeks
	}
	if p.IsAchieved != nil {
		changes["is_achieved"] = *p.IsAchieved
	}
	if p.AchievementNotes != nil {
		changes["achievement_notes"] = *p.AchievementNotes
	}
	return changes
}

func (p GoalPatch) apply(goal *models.Goal) {
	if p.Title != nil {
		goal.Title = *p.Title
	}
	if p.Description != nil {
		goal.Description = *p.Description
	}
	if p.ClearTargetDate {
		goal.TargetDate = nil
	} else if p.TargetDate != nil {
		goal.TargetDate = toDate(p.TargetDate)
	}
	if p.EstimatedDurationWeeks != nil {
		weeks := *p.EstimatedDurationWeeks
		goal.EstimatedDurationWeeks = &weeks
	}
	if p.IsAchieved != nil {
		goal.IsAchieved = *p.IsAchieved
	}
	if p.AchievementNotes != nil {
		notes := *p.AchievementNotes
		goal.AchievementNotes = &notes
	}
}

// GoalStore holds the current owner's goals, newest first.
type GoalStore struct {
	*Collection[models.Goal, *models.Goal]
}

// NewGoalStore constructs the goal store.
func NewGoalStore(repos Repositories, opts Options) *GoalStore {
	desc := descriptor[models.Goal]{
		entity:  "goal",
		order:   "created_at DESC",
		prepend: true,
		touch:   []string{"updated_at"},
		seed:    seedGoals,
	}
	if !opts.RemoteCascade {
		desc.cascade = cascader{repos: repos}.goal
	}
	return &GoalStore{Collection: newCollection[models.Goal, *models.Goal](desc, repos.Goals, opts)}
}

// Create adds a goal. A blank title becomes "New Goal".
func (s *GoalStore) Create(ctx context.Context, draft GoalDraft) (models.Goal, error) {
	if err := validate.Struct(draft); err != nil {
		return models.Goal{}, err
	}

	var weeks *int
	if draft.EstimatedDurationWeeks != nil {
		value := *draft.EstimatedDurationWeeks
		weeks = &value
	}

	return s.create(ctx, models.Goal{
		Title:                  orDefault(draft.Title, "New Goal"),
		Description:            draft.Description,
		TargetDate:             toDate(draft.TargetDate),
		EstimatedDurationWeeks: weeks,
	})
}

// Update merges the patch into the goal and stamps UpdatedAt.
func (s *GoalStore) Update(ctx context.Context, id string, patch GoalPatch) (models.Goal, error) {
	if err := validate.Struct(patch); err != nil {
		return models.Goal{}, err
	}
	patch.AchievementNotes = sanitizeTextPtr(patch.AchievementNotes)
	return s.update(ctx, id, patch.changes(), patch.apply)
}
