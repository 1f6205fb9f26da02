package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/middleware"
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/roadmap"
	"github.com/noah-isme/skillpath/internal/service"
	"github.com/noah-isme/skillpath/internal/store"
	"github.com/noah-isme/skillpath/internal/utils"
)

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// bindAndValidate parses the body into target. When it reports false the error response
// has already been written and its result is returned as the error.
func bindAndValidate(c *fiber.Ctx, target interface{}) (bool, error) {
	if err := c.BodyParser(target); err != nil {
		return false, utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := payloadValidator.Struct(target); err != nil {
		return false, utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	}
	return true, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func isInputError(err error) bool {
	return isValidationError(err) ||
		errors.Is(err, models.ErrInvalidStatus) ||
		errors.Is(err, models.ErrInvalidContentType) ||
		errors.Is(err, dto.ErrInvalidDate) ||
		errors.Is(err, roadmap.ErrUnknownStatus)
}

func validationDetails(err error) map[string]string {
	details := map[string]string{}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
		}
		return details
	}
	details["error"] = err.Error()
	return details
}

// writeStoreError maps store and service failures onto HTTP statuses.
func writeStoreError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	var partial *store.PartialReorderError
	var remote *store.RemoteError

	switch {
	case errors.Is(err, store.ErrAuthRequired):
		return utils.SendError(c, fiber.StatusUnauthorized, "sign in required")
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrGoalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrPositionTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case isInputError(err):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	case errors.As(err, &partial):
		return utils.Fail(c, fiber.StatusConflict, "reorder partially applied", fiber.Map{
			"applied": partial.Applied,
			"total":   partial.Total,
		})
	case errors.As(err, &remote):
		requestLogger(logger, c).Error().Err(err).Msg("failed to " + action)
		return utils.SendError(c, fiber.StatusBadGateway, "failed to "+action)
	default:
		requestLogger(logger, c).Error().Err(err).Msg("failed to " + action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type lazyStore interface {
	Loaded() bool
	Fetch(ctx context.Context) error
}

// ensureLoaded fetches a scoped store on first use or when the caller asks for a refresh.
// Fetch failures stay on the store and are reported through its Err.
func ensureLoaded(c *fiber.Ctx, s lazyStore) {
	if wantsRefresh(c) || !s.Loaded() {
		_ = s.Fetch(c.UserContext())
	}
}

func wantsRefresh(c *fiber.Ctx) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query("refresh"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
