package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStatus indicates a status value outside the entity's enum.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidContentType indicates a content block type outside {text, topic}.
	ErrInvalidContentType = errors.New("invalid content type")
)

// SkillStatus tracks progress on a roadmap skill.
type SkillStatus string

const (
	SkillNotStarted SkillStatus = "not_started"
	SkillInProgress SkillStatus = "in_progress"
	SkillDone       SkillStatus = "done"
)

// Valid reports whether the status is one of the known skill statuses.
func (s SkillStatus) Valid() bool {
	switch s {
	case SkillNotStarted, SkillInProgress, SkillDone:
		return true
	default:
		return false
	}
}

// ParseSkillStatus normalises and validates a skill status.
func ParseSkillStatus(value string) (SkillStatus, error) {
	status := SkillStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: skill status %q", ErrInvalidStatus, value)
	}
	return status, nil
}

// TopicStatus tracks progress on a topic. Its finished value differs from SkillStatus.
type TopicStatus string

const (
	TopicNotStarted TopicStatus = "not_started"
	TopicInProgress TopicStatus = "in_progress"
	TopicCompleted  TopicStatus = "completed"
)

// Valid reports whether the status is one of the known topic statuses.
func (s TopicStatus) Valid() bool {
	switch s {
	case TopicNotStarted, TopicInProgress, TopicCompleted:
		return true
	default:
		return false
	}
}

// ParseTopicStatus normalises and validates a topic status.
func ParseTopicStatus(value string) (TopicStatus, error) {
	status := TopicStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: topic status %q", ErrInvalidStatus, value)
	}
	return status, nil
}

// ContentType distinguishes free text blocks from lightweight topic blocks.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentTopic ContentType = "topic"
)

// Valid reports whether the type is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentText || t == ContentTopic
}

// ParseContentType normalises and validates a content type. Empty means text.
func ParseContentType(value string) (ContentType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ContentText, nil
	}
	contentType := ContentType(trimmed)
	if !contentType.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, value)
	}
	return contentType, nil
}
