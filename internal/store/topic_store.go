package store

import (
	"context"
	"fmt"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/repository"
)

// TopicDraft carries the caller supplied fields of a new topic.
type TopicDraft struct {
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// TopicPatch lists the topic fields to change.
type TopicPatch struct {
	Title       *string             `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *models.TopicStatus `json:"status,omitempty"`
}

func (p TopicPatch) check() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: topic status %q", models.ErrInvalidStatus, *p.Status)
	}
	return nil
}

func (p TopicPatch) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if p.Title != nil {
		changes["title"] = *p.Title
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.Status != nil {
		changes["status"] = string(*p.Status)
	}
	return changes
}

func (p TopicPatch) apply(topic *models.Topic) {
	if p.Title != nil {
		topic.Title = *p.Title
	}
	if p.Description != nil {
		topic.Description = *p.Description
	}
	if p.Status != nil {
		topic.Status = *p.Status
	}
}

// TopicStore holds the topics of one skill ordered by OrderIndex. NotesCount is filled
// on fetch and otherwise kept as last read.
type TopicStore struct {
	*Collection[models.Topic, *models.Topic]
	skillID string
}

// NewTopicStore constructs the topic store for a skill.
func NewTopicStore(skillID string, repos Repositories, opts Options) *TopicStore {
	desc := descriptor[models.Topic]{
		entity: "topic",
		order:  "order_index ASC, created_at ASC",
		scope:  []repository.Filter{{Column: "skill_id", Value: skillID}},
		seq: &sequence[models.Topic]{
			column: "order_index",
			scope: func(topic *models.Topic) repository.Filter {
				return repository.Filter{Column: "skill_id", Value: topic.SkillID}
			},
		},
		touch: []string{"updated_at"},
		carry: func(fresh *models.Topic, previous models.Topic) {
			fresh.NotesCount = previous.NotesCount
		},
	}

	store := &TopicStore{skillID: skillID}
	desc.enrich = func(ctx context.Context, ownerID string, rows []models.Topic) {
		fillNotesCount(ctx, repos.Notes, ownerID, rows, store.Collection)
	}
	if !opts.RemoteCascade {
		desc.cascade = cascader{repos: repos}.topic
	}
	store.Collection = newCollection[models.Topic, *models.Topic](desc, repos.Topics, opts)
	return store
}

// SkillID returns the skill the store is scoped to.
func (s *TopicStore) SkillID() string { return s.skillID }

// Create appends a topic to the skill. A blank title becomes "New Topic".
func (s *TopicStore) Create(ctx context.Context, draft TopicDraft) (models.Topic, error) {
	if err := validate.Struct(draft); err != nil {
		return models.Topic{}, err
	}
	return s.create(ctx, models.Topic{
		SkillID:     s.skillID,
		Title:       orDefault(draft.Title, "New Topic"),
		Description: draft.Description,
		Status:      models.TopicNotStarted,
	})
}

// Update merges the patch into the topic.
func (s *TopicStore) Update(ctx context.Context, id string, patch TopicPatch) (models.Topic, error) {
	if err := patch.check(); err != nil {
		return models.Topic{}, err
	}
	return s.update(ctx, id, patch.changes(), patch.apply)
}

// Reorder rewrites the positions of the given topics to 0..n-1 in the given order.
func (s *TopicStore) Reorder(ctx context.Context, ids []string) error {
	return s.reorder(ctx, ids)
}

func fillNotesCount(ctx context.Context, notes repository.OwnedRepository[models.Note], ownerID string, rows []models.Topic, c *Collection[models.Topic, *models.Topic]) {
	if notes == nil || len(rows) == 0 {
		return
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	counts, err := notes.CountBy(ctx, ownerID, "topic_id", ids)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to count topic notes")
		return
	}
	for i := range rows {
		rows[i].NotesCount = counts[rows[i].ID]
	}
}
