package models

import (
	"time"

	"gorm.io/gorm"
)

// SkillContent is a free-form or topic-like block attached directly to a Skill. A topic
// typed block is a lightweight alternative to a full Topic.
type SkillContent struct {
	ID         string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID    string      `gorm:"size:64;not null;index" json:"owner_id"`
	SkillID    string      `gorm:"type:varchar(36);not null;index" json:"skill_id"`
	Type       ContentType `gorm:"size:16;not null;default:'text'" json:"type"`
	Title      string      `gorm:"size:255;not null" json:"title"`
	Content    string      `gorm:"type:text" json:"content"`
	OrderIndex int         `gorm:"not null;default:0" json:"order_index"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	Skill *Skill `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the remote collection name.
func (SkillContent) TableName() string { return "skill_content" }

// BeforeCreate assigns an identifier and a default type.
func (c *SkillContent) BeforeCreate(tx *gorm.DB) error {
	c.EnsureID()
	if c.Type == "" {
		c.Type = ContentText
	}
	return nil
}

func (c *SkillContent) GetID() string      { return c.ID }
func (c *SkillContent) GetOwnerID() string { return c.OwnerID }
func (c *SkillContent) EnsureID()          { c.ID = newID(c.ID) }

func (c *SkillContent) Stamp(ownerID string, now time.Time) {
	c.OwnerID = ownerID
	c.CreatedAt = now
	c.UpdatedAt = now
}

func (c *SkillContent) Touch(now time.Time) { c.UpdatedAt = now }

func (c *SkillContent) Position() int            { return c.OrderIndex }
func (c *SkillContent) SetPosition(position int) { c.OrderIndex = position }
