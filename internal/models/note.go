package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is a free-text entry attached to a Topic.
type Note struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:64;not null;index" json:"owner_id"`
	TopicID   string    `gorm:"type:varchar(36);not null;index" json:"topic_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Topic *Topic `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the remote collection name.
func (Note) TableName() string { return "notes" }

// BeforeCreate assigns an identifier when the caller did not.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	n.EnsureID()
	return nil
}

func (n *Note) GetID() string      { return n.ID }
func (n *Note) GetOwnerID() string { return n.OwnerID }
func (n *Note) EnsureID()          { n.ID = newID(n.ID) }

func (n *Note) Stamp(ownerID string, now time.Time) {
	n.OwnerID = ownerID
	n.CreatedAt = now
	n.UpdatedAt = now
}

func (n *Note) Touch(now time.Time) { n.UpdatedAt = now }
