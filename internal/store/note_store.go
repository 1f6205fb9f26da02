package store

import (
	"context"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/repository"
)

// NoteDraft carries the content of a new note.
type NoteDraft struct {
	Content string `json:"content" validate:"max=20000"`
}

// NotePatch replaces a note's content.
type NotePatch struct {
	Content *string `json:"content,omitempty" validate:"omitempty,min=1,max=20000"`
}

// NoteStore holds the notes of one topic, oldest first.
type NoteStore struct {
	*Collection[models.Note, *models.Note]
	topicID string
}

// NewNoteStore constructs the note store for a topic.
func NewNoteStore(topicID string, repos Repositories, opts Options) *NoteStore {
	desc := descriptor[models.Note]{
		entity: "note",
		order:  "created_at ASC",
		scope:  []repository.Filter{{Column: "topic_id", Value: topicID}},
		touch:  []string{"updated_at"},
	}
	return &NoteStore{
		Collection: newCollection[models.Note, *models.Note](desc, repos.Notes, opts),
		topicID:    topicID,
	}
}

// TopicID returns the topic the store is scoped to.
func (s *NoteStore) TopicID() string { return s.topicID }

// Create adds a note. Content is sanitised; blank content becomes "New note".
func (s *NoteStore) Create(ctx context.Context, draft NoteDraft) (models.Note, error) {
	if err := validate.Struct(draft); err != nil {
		return models.Note{}, err
	}
	return s.create(ctx, models.Note{
		TopicID: s.topicID,
		Content: orDefault(sanitizeText(draft.Content), "New note"),
	})
}

// Update replaces the note content.
func (s *NoteStore) Update(ctx context.Context, id string, patch NotePatch) (models.Note, error) {
	if err := validate.Struct(patch); err != nil {
		return models.Note{}, err
	}

	changes := map[string]interface{}{}
	content := sanitizeTextPtr(patch.Content)
	if content != nil {
		changes["content"] = *content
	}
	return s.update(ctx, id, changes, func(note *models.Note) {
		if content != nil {
			note.Content = *content
		}
	})
}
