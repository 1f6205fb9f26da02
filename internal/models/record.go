package models

import (
	"time"

	"github.com/google/uuid"
)

// DemoOwnerID owns every row created or seeded while no backend is configured.
const DemoOwnerID = "demo-user"

// Record is implemented by pointers to every owner-scoped entity.
type Record interface {
	GetID() string
	GetOwnerID() string
	// EnsureID assigns a fresh identifier when none is set.
	EnsureID()
	// Stamp sets ownership and creation timestamps on a new row.
	Stamp(ownerID string, now time.Time)
	// Touch records a modification.
	Touch(now time.Time)
}

// Sequenced is implemented by entities that carry a position within their parent.
type Sequenced interface {
	Position() int
	SetPosition(position int)
}

// All returns the entity models managed by the sync layer, in migration order.
func All() []interface{} {
	return []interface{}{&Goal{}, &Skill{}, &Topic{}, &Note{}, &SkillContent{}}
}

func newID(current string) string {
	if current != "" {
		return current
	}
	return uuid.NewString()
}
