package dto

import (
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/store"
)

// TopicCreateRequest is the payload for creating a topic.
type TopicCreateRequest struct {
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// TopicUpdateRequest is the payload for patching a topic.
type TopicUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      *string `json:"status"`
}

// Patch converts the payload into a store patch.
func (r TopicUpdateRequest) Patch() (store.TopicPatch, error) {
	patch := store.TopicPatch{Title: r.Title, Description: r.Description}
	if r.Status != nil {
		status, err := models.ParseTopicStatus(*r.Status)
		if err != nil {
			return store.TopicPatch{}, err
		}
		patch.Status = &status
	}
	return patch, nil
}

// NoteRequest is the payload for creating or replacing a note.
type NoteRequest struct {
	Content string `json:"content" validate:"max=20000"`
}

// ContentCreateRequest is the payload for creating a content block.
type ContentCreateRequest struct {
	Type    string `json:"type" validate:"omitempty,oneof=text topic"`
	Title   string `json:"title" validate:"max=255"`
	Content string `json:"content" validate:"max=20000"`
}

// ContentUpdateRequest is the payload for patching a content block.
type ContentUpdateRequest struct {
	Type    *string `json:"type" validate:"omitempty,oneof=text topic"`
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content" validate:"omitempty,max=20000"`
}

// Patch converts the payload into a store patch.
func (r ContentUpdateRequest) Patch() store.ContentPatch {
	patch := store.ContentPatch{Title: r.Title, Content: r.Content}
	if r.Type != nil {
		contentType := models.ContentType(*r.Type)
		patch.Type = &contentType
	}
	return patch
}

// ReorderRequest lists ids in their new order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// ListResponse wraps a scoped store snapshot.
type ListResponse[T any] struct {
	Items   []T    `json:"items"`
	Total   int    `json:"total"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// SessionRequest carries a session provider access token.
type SessionRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}
