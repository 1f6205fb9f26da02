package store

import (
	"context"
	"fmt"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/repository"
)

// ContentDraft carries the fields of a new content block.
type ContentDraft struct {
	Type    models.ContentType `json:"type"`
	Title   string             `json:"title" validate:"max=255"`
	Content string             `json:"content" validate:"max=20000"`
}

// ContentPatch lists the content block fields to change.
type ContentPatch struct {
	Type    *models.ContentType `json:"type,omitempty"`
	Title   *string             `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content *string             `json:"content,omitempty" validate:"omitempty,max=20000"`
}

// ContentStore holds the content blocks of one skill ordered by OrderIndex.
type ContentStore struct {
	*Collection[models.SkillContent, *models.SkillContent]
	skillID string
}

// NewContentStore constructs the content store for a skill.
func NewContentStore(skillID string, repos Repositories, opts Options) *ContentStore {
	desc := descriptor[models.SkillContent]{
		entity: "content",
		order:  "order_index ASC, created_at ASC",
		scope:  []repository.Filter{{Column: "skill_id", Value: skillID}},
		seq: &sequence[models.SkillContent]{
			column: "order_index",
			scope: func(block *models.SkillContent) repository.Filter {
				return repository.Filter{Column: "skill_id", Value: block.SkillID}
			},
		},
		touch: []string{"updated_at"},
	}
	return &ContentStore{
		Collection: newCollection[models.SkillContent, *models.SkillContent](desc, repos.Content, opts),
		skillID:    skillID,
	}
}

// SkillID returns the skill the store is scoped to.
func (s *ContentStore) SkillID() string { return s.skillID }

// Create appends a block to the skill. Missing type means text; a blank title becomes
// "New Content".
func (s *ContentStore) Create(ctx context.Context, draft ContentDraft) (models.SkillContent, error) {
	if err := validate.Struct(draft); err != nil {
		return models.SkillContent{}, err
	}
	contentType, err := models.ParseContentType(string(draft.Type))
	if err != nil {
		return models.SkillContent{}, err
	}

	return s.create(ctx, models.SkillContent{
		SkillID: s.skillID,
		Type:    contentType,
		Title:   orDefault(draft.Title, "New Content"),
		Content: sanitizeText(draft.Content),
	})
}

// Update merges the patch into the block.
func (s *ContentStore) Update(ctx context.Context, id string, patch ContentPatch) (models.SkillContent, error) {
	if err := validate.Struct(patch); err != nil {
		return models.SkillContent{}, err
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return models.SkillContent{}, fmt.Errorf("%w: %q", models.ErrInvalidContentType, *patch.Type)
	}
	patch.Content = sanitizeTextPtr(patch.Content)

	changes := map[string]interface{}{}
	if patch.Type != nil {
		changes["type"] = string(*patch.Type)
	}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Content != nil {
		changes["content"] = *patch.Content
	}

	return s.update(ctx, id, changes, func(block *models.SkillContent) {
		if patch.Type != nil {
			block.Type = *patch.Type
		}
		if patch.Title != nil {
			block.Title = *patch.Title
		}
		if patch.Content != nil {
			block.Content = *patch.Content
		}
	})
}

// Reorder rewrites the positions of the given blocks to 0..n-1 in the given order.
func (s *ContentStore) Reorder(ctx context.Context, ids []string) error {
	return s.reorder(ctx, ids)
}
