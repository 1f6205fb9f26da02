package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Skill is a roadmap step, optionally attached to a Goal.
type Skill struct {
	ID                    string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID               string          `gorm:"size:64;not null;index" json:"owner_id"`
	GoalID                *string         `gorm:"type:varchar(36);index" json:"goal_id,omitempty"`
	Title                 string          `gorm:"size:255;not null" json:"title"`
	Description           string          `gorm:"type:text" json:"description"`
	Status                SkillStatus     `gorm:"size:16;not null;default:'not_started'" json:"status"`
	TargetDate            *datatypes.Date `json:"target_date,omitempty"`
	EstimatedDurationDays *int            `json:"estimated_duration_days,omitempty"`
	OrderInRoadmap        int             `gorm:"not null;default:0" json:"order_in_roadmap"`
	Notes                 string          `gorm:"type:text" json:"notes"`
	CreatedAt             time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	LastReviewedAt        time.Time       `json:"last_reviewed_at"`

	Goal *Goal `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the remote collection name.
func (Skill) TableName() string { return "skills" }

// BeforeCreate assigns an identifier and a default status.
func (s *Skill) BeforeCreate(tx *gorm.DB) error {
	s.EnsureID()
	if s.Status == "" {
		s.Status = SkillNotStarted
	}
	return nil
}

func (s *Skill) GetID() string      { return s.ID }
func (s *Skill) GetOwnerID() string { return s.OwnerID }
func (s *Skill) EnsureID()          { s.ID = newID(s.ID) }

func (s *Skill) Stamp(ownerID string, now time.Time) {
	s.OwnerID = ownerID
	s.CreatedAt = now
	s.UpdatedAt = now
	s.LastReviewedAt = now
}

// Touch counts every edit as a review.
func (s *Skill) Touch(now time.Time) {
	s.UpdatedAt = now
	s.LastReviewedAt = now
}

func (s *Skill) Position() int            { return s.OrderInRoadmap }
func (s *Skill) SetPosition(position int) { s.OrderInRoadmap = position }

// BelongsTo reports whether the skill is attached to the given goal.
func (s Skill) BelongsTo(goalID string) bool {
	return s.GoalID != nil && *s.GoalID == goalID
}
