package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/roadmap"
	"github.com/noah-isme/skillpath/internal/store"
)

// DateLayout is the wire format of target dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate indicates a date that is not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// GoalCreateRequest is the payload for creating a goal.
type GoalCreateRequest struct {
	Title                  string `json:"title" validate:"max=255"`
	Description            string `json:"description" validate:"max=5000"`
	TargetDate             string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	EstimatedDurationWeeks *int   `json:"estimated_duration_weeks" validate:"omitempty,min=0,max=520"`
	// ExpandTemplate adds the suggested skills for the title. Defaults to true.
	ExpandTemplate *bool `json:"expand_template"`
}

// Draft converts the payload into a store draft.
func (r GoalCreateRequest) Draft() (store.GoalDraft, error) {
	target, err := parseDate(r.TargetDate)
	if err != nil {
		return store.GoalDraft{}, err
	}
	return store.GoalDraft{
		Title:                  r.Title,
		Description:            r.Description,
		TargetDate:             target,
		EstimatedDurationWeeks: r.EstimatedDurationWeeks,
	}, nil
}

// WantsTemplate reports whether template skills should be created with the goal.
func (r GoalCreateRequest) WantsTemplate() bool {
	return r.ExpandTemplate == nil || *r.ExpandTemplate
}

// GoalUpdateRequest is the payload for patching a goal. An empty target date clears it.
type GoalUpdateRequest struct {
	Title                  *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description            *string `json:"description" validate:"omitempty,max=5000"`
	TargetDate             *string `json:"target_date"`
	EstimatedDurationWeeks *int    `json:"estimated_duration_weeks" validate:"omitempty,min=0,max=520"`
	IsAchieved             *bool   `json:"is_achieved"`
	AchievementNotes       *string `json:"achievement_notes"`
}

// Patch converts the payload into a store patch.
func (r GoalUpdateRequest) Patch() (store.GoalPatch, error) {
	patch := store.GoalPatch{
		Title:                  r.Title,
		Description:            r.Description,
		EstimatedDurationWeeks: r.EstimatedDurationWeeks,
		IsAchieved:             r.IsAchieved,
		AchievementNotes:       r.AchievementNotes,
	}
	if r.TargetDate != nil {
		target, err := parseDate(*r.TargetDate)
		if err != nil {
			return store.GoalPatch{}, err
		}
		patch.TargetDate = target
		patch.ClearTargetDate = target == nil
	}
	return patch, nil
}

// AchieveRequest marks a goal as achieved.
type AchieveRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

// GoalListResponse lists goals with their derived counts.
type GoalListResponse struct {
	Items   []roadmap.GoalStats `json:"items"`
	Filter  string              `json:"filter"`
	Loading bool                `json:"loading"`
	Error   string              `json:"error,omitempty"`
}

// SkillCreateRequest is the payload for creating a skill.
type SkillCreateRequest struct {
	GoalID                *string `json:"goal_id"`
	Title                 string  `json:"title" validate:"max=255"`
	Description           string  `json:"description" validate:"max=5000"`
	TargetDate            string  `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	EstimatedDurationDays *int    `json:"estimated_duration_days" validate:"omitempty,min=0,max=3650"`
	Notes                 string  `json:"notes"`
}

// Draft converts the payload into a store draft.
func (r SkillCreateRequest) Draft() (store.SkillDraft, error) {
	target, err := parseDate(r.TargetDate)
	if err != nil {
		return store.SkillDraft{}, err
	}
	return store.SkillDraft{
		GoalID:                r.GoalID,
		Title:                 r.Title,
		Description:           r.Description,
		TargetDate:            target,
		EstimatedDurationDays: r.EstimatedDurationDays,
		Notes:                 r.Notes,
	}, nil
}

// SkillUpdateRequest is the payload for patching a skill. An empty goal id detaches the
// skill; an empty target date clears it.
type SkillUpdateRequest struct {
	GoalID                *string `json:"goal_id"`
	Title                 *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description           *string `json:"description" validate:"omitempty,max=5000"`
	Status                *string `json:"status"`
	TargetDate            *string `json:"target_date"`
	EstimatedDurationDays *int    `json:"estimated_duration_days" validate:"omitempty,min=0,max=3650"`
	OrderInRoadmap        *int    `json:"order_in_roadmap" validate:"omitempty,min=0"`
	Notes                 *string `json:"notes"`
}

// Patch converts the payload into a store patch.
func (r SkillUpdateRequest) Patch() (store.SkillPatch, error) {
	patch := store.SkillPatch{
		Title:                 r.Title,
		Description:           r.Description,
		EstimatedDurationDays: r.EstimatedDurationDays,
		OrderInRoadmap:        r.OrderInRoadmap,
		Notes:                 r.Notes,
	}
	if r.GoalID != nil {
		if strings.TrimSpace(*r.GoalID) == "" {
			patch.ClearGoal = true
		} else {
			patch.GoalID = r.GoalID
		}
	}
	if r.Status != nil {
		status, err := models.ParseSkillStatus(*r.Status)
		if err != nil {
			return store.SkillPatch{}, err
		}
		patch.Status = &status
	}
	if r.TargetDate != nil {
		target, err := parseDate(*r.TargetDate)
		if err != nil {
			return store.SkillPatch{}, err
		}
		patch.TargetDate = target
		patch.ClearTargetDate = target == nil
	}
	return patch, nil
}

// SkillListResponse lists skills after filtering.
type SkillListResponse struct {
	Items   []models.Skill `json:"items"`
	Total   int            `json:"total"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
}

// SkillProgressResponse reports the progress value of a skill.
type SkillProgressResponse struct {
	SkillID  string             `json:"skill_id"`
	Status   models.SkillStatus `json:"status"`
	Label    string             `json:"label"`
	Progress int                `json:"progress"`
}

// TemplateResponse lists the suggested skills for a goal title.
type TemplateResponse struct {
	Title    string                  `json:"title"`
	Template string                  `json:"template"`
	Skills   []roadmap.SkillTemplate `json:"skills"`
}

func parseDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return &parsed, nil
}
