package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/repository"
)

// SkillDraft carries the caller supplied fields of a new skill. New skills always start
// as not started and are appended to the end of their goal's roadmap.
type SkillDraft struct {
	GoalID                *string    `json:"goal_id,omitempty"`
	Title                 string     `json:"title" validate:"max=255"`
	Description           string     `json:"description" validate:"max=5000"`
	TargetDate            *time.Time `json:"target_date,omitempty"`
	EstimatedDurationDays *int       `json:"estimated_duration_days,omitempty" validate:"omitempty,min=0,max=3650"`
	Notes                 string     `json:"notes"`
}

// SkillPatch lists the skill fields to change. Nil fields are left alone.
type SkillPatch struct {
	GoalID                *string             `json:"goal_id,omitempty"`
	ClearGoal             bool                `json:"clear_goal,omitempty"`
	Title                 *string             `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description           *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status                *models.SkillStatus `json:"status,omitempty"`
	TargetDate            *time.Time          `json:"target_date,omitempty"`
	ClearTargetDate       bool                `json:"clear_target_date,omitempty"`
	EstimatedDurationDays *int                `json:"estimated_duration_days,omitempty" validate:"omitempty,min=0,max=3650"`
	OrderInRoadmap        *int                `json:"order_in_roadmap,omitempty" validate:"omitempty,min=0"`
	Notes                 *string             `json:"notes,omitempty"`
}

func (p SkillPatch) check() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: skill status %q", models.ErrInvalidStatus, *p.Status)
	}
	return nil
}

func (p SkillPatch) movesGoal() bool {
	return p.ClearGoal || p.GoalID != nil
}

func (p SkillPatch) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if p.ClearGoal {
		changes["goal_id"] = nil
	} else if p.GoalID != nil {
		changes["goal_id"] = *p.GoalID
	}
	if p.Title != nil {
		changes["title"] = *p.Title
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.Status != nil {
		changes["status"] = string(*p.Status)
	}
	if p.ClearTargetDate {
		changes["target_date"] = nil
	} else if p.TargetDate != nil {
		changes["target_date"] = toDate(p.TargetDate)
	}
	if p.EstimatedDurationDays != nil {
		changes["estimated_duration_days"] = *p.EstimatedDurationDays
	}
	if p.OrderInRoadmap != nil {
		changes["order_in_roadmap"] = *p.OrderInRoadmap
	}
	if p.Notes != nil {
		changes["notes"] = *p.Notes
	}
	return changes
}

func (p SkillPatch) apply(skill *models.Skill) {
	if p.ClearGoal {
		skill.GoalID = nil
	} else if p.GoalID != nil {
		goalID := *p.GoalID
		skill.GoalID = &goalID
	}
	if p.Title != nil {
		skill.Title = *p.Title
	}
	if p.Description != nil {
		skill.Description = *p.Description
	}
	if p.Status != nil {
		skill.Status = *p.Status
	}
	if p.ClearTargetDate {
		skill.TargetDate = nil
	} else if p.TargetDate != nil {
		skill.TargetDate = toDate(p.TargetDate)
	}
	if p.EstimatedDurationDays != nil {
		days := *p.EstimatedDurationDays
		skill.EstimatedDurationDays = &days
	}
	if p.OrderInRoadmap != nil {
		skill.OrderInRoadmap = *p.OrderInRoadmap
	}
	if p.Notes != nil {
		skill.Notes = *p.Notes
	}
}

// SkillStore holds every skill of the current owner, ordered by roadmap position.
type SkillStore struct {
	*Collection[models.Skill, *models.Skill]
}

// NewSkillStore constructs the skill store. Positions are sequenced per goal, with
// unattached skills forming their own sequence.
func NewSkillStore(repos Repositories, opts Options) *SkillStore {
	desc := descriptor[models.Skill]{
		entity: "skill",
		order:  "order_in_roadmap ASC, created_at ASC",
		seq: &sequence[models.Skill]{
			column: "order_in_roadmap",
			scope:  skillSequenceScope,
		},
		touch: []string{"updated_at", "last_reviewed_at"},
		seed:  seedSkills,
	}
	if !opts.RemoteCascade {
		desc.cascade = cascader{repos: repos}.skill
	}
	return &SkillStore{Collection: newCollection[models.Skill, *models.Skill](desc, repos.Skills, opts)}
}

func skillSequenceScope(skill *models.Skill) repository.Filter {
	if skill.GoalID == nil {
		return repository.Filter{Column: "goal_id", Value: nil}
	}
	return repository.Filter{Column: "goal_id", Value: *skill.GoalID}
}

// Create adds a skill. A blank title becomes "New Skill".
func (s *SkillStore) Create(ctx context.Context, draft SkillDraft) (models.Skill, error) {
	if err := validate.Struct(draft); err != nil {
		return models.Skill{}, err
	}

	skill := models.Skill{
		Title:       orDefault(draft.Title, "New Skill"),
		Description: draft.Description,
		Status:      models.SkillNotStarted,
		TargetDate:  toDate(draft.TargetDate),
		Notes:       sanitizeText(draft.Notes),
	}
	if draft.GoalID != nil && *draft.GoalID != "" {
		goalID := *draft.GoalID
		skill.GoalID = &goalID
	}
	if draft.EstimatedDurationDays != nil {
		days := *draft.EstimatedDurationDays
		skill.EstimatedDurationDays = &days
	}
	return s.create(ctx, skill)
}

// Update merges the patch into the skill. Every edit also counts as a review.
//
// A skill moved to another goal is appended to that goal's roadmap unless the patch
// names a position. A named position must be free in the target roadmap.
func (s *SkillStore) Update(ctx context.Context, id string, patch SkillPatch) (models.Skill, error) {
	if err := patch.check(); err != nil {
		return models.Skill{}, err
	}
	patch.Notes = sanitizeTextPtr(patch.Notes)
	if err := s.placePatch(ctx, id, &patch); err != nil {
		return models.Skill{}, err
	}
	return s.update(ctx, id, patch.changes(), patch.apply)
}

func (s *SkillStore) placePatch(ctx context.Context, id string, patch *SkillPatch) error {
	if patch.OrderInRoadmap == nil && !patch.movesGoal() {
		return nil
	}

	current, known := s.Get(id)
	target := models.Skill{ID: id, GoalID: current.GoalID}
	if patch.movesGoal() {
		if patch.ClearGoal {
			target.GoalID = nil
		} else {
			goalID := *patch.GoalID
			target.GoalID = &goalID
		}
	}

	if patch.OrderInRoadmap != nil {
		holder, err := s.positionHolder(ctx, &target, *patch.OrderInRoadmap, id)
		if err != nil {
			return err
		}
		if holder != "" {
			return fmt.Errorf("%w: roadmap position %d is held by skill %s", ErrPositionTaken, *patch.OrderInRoadmap, holder)
		}
		return nil
	}

	if known && skillSequenceScope(&current).Value == skillSequenceScope(&target).Value {
		return nil
	}
	position, err := s.nextPosition(ctx, &target)
	if err != nil {
		return err
	}
	patch.OrderInRoadmap = &position
	return nil
}

// SetStatus is a shorthand for a status-only update.
func (s *SkillStore) SetStatus(ctx context.Context, id string, status models.SkillStatus) (models.Skill, error) {
	return s.Update(ctx, id, SkillPatch{Status: &status})
}
