package store

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  = validator.New(validator.WithRequiredStructEnabled())
	ugcPolicy = bluemonday.UGCPolicy()
)

func sanitizeText(value string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(value))
}

func sanitizeTextPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := sanitizeText(*value)
	return &cleaned
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
