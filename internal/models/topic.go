package models

import (
	"time"

	"gorm.io/gorm"
)

// Topic is a sub-breakdown of a Skill.
type Topic struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID     string      `gorm:"size:64;not null;index" json:"owner_id"`
	SkillID     string      `gorm:"type:varchar(36);not null;index" json:"skill_id"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Status      TopicStatus `gorm:"size:16;not null;default:'not_started'" json:"status"`
	OrderIndex  int         `gorm:"not null;default:0" json:"order_index"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	NotesCount  int         `gorm:"-" json:"notes_count"`

	Skill *Skill `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the remote collection name.
func (Topic) TableName() string { return "topics" }

// BeforeCreate assigns an identifier and a default status.
func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	t.EnsureID()
	if t.Status == "" {
		t.Status = TopicNotStarted
	}
	return nil
}

func (t *Topic) GetID() string      { return t.ID }
func (t *Topic) GetOwnerID() string { return t.OwnerID }
func (t *Topic) EnsureID()          { t.ID = newID(t.ID) }

func (t *Topic) Stamp(ownerID string, now time.Time) {
	t.OwnerID = ownerID
	t.CreatedAt = now
	t.UpdatedAt = now
}

func (t *Topic) Touch(now time.Time) { t.UpdatedAt = now }

func (t *Topic) Position() int            { return t.OrderIndex }
func (t *Topic) SetPosition(position int) { t.OrderIndex = position }
