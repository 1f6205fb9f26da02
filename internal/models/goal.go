package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Goal is a top-level learning objective. Skill counts are derived at read time and
// never stored here.
type Goal struct {
	ID                     string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID                string          `gorm:"size:64;not null;index" json:"owner_id"`
	Title                  string          `gorm:"size:255;not null" json:"title"`
	Description            string          `gorm:"type:text" json:"description"`
	TargetDate             *datatypes.Date `json:"target_date,omitempty"`
	EstimatedDurationWeeks *int            `json:"estimated_duration_weeks,omitempty"`
	IsAchieved             bool            `gorm:"not null;default:false" json:"is_achieved"`
	AchievementNotes       *string         `gorm:"type:text" json:"achievement_notes,omitempty"`
	CreatedAt              time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// TableName pins the remote collection name.
func (Goal) TableName() string { return "goals" }

// BeforeCreate assigns an identifier when the caller did not.
func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	g.EnsureID()
	return nil
}

func (g *Goal) GetID() string      { return g.ID }
func (g *Goal) GetOwnerID() string { return g.OwnerID }
func (g *Goal) EnsureID()          { g.ID = newID(g.ID) }

func (g *Goal) Stamp(ownerID string, now time.Time) {
	g.OwnerID = ownerID
	g.CreatedAt = now
	g.UpdatedAt = now
}

func (g *Goal) Touch(now time.Time) { g.UpdatedAt = now }
