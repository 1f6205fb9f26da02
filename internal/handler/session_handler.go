package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/session"
	"github.com/noah-isme/skillpath/internal/utils"
)

// SessionController is the part of the session context exposed over HTTP.
type SessionController interface {
	State() session.State
	SignIn(ctx context.Context, accessToken string) (session.State, error)
	SignOut(ctx context.Context) error
}

// SessionHandler exposes the current identity.
type SessionHandler struct {
	session SessionController
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sess SessionController, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		session: sess,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires session routes. signInLimiter guards token submissions and may be nil.
func (h *SessionHandler) Register(router fiber.Router, signInLimiter fiber.Handler) {
	router.Get("/", h.state)
	if signInLimiter != nil {
		router.Post("/", signInLimiter, h.signIn)
	} else {
		router.Post("/", h.signIn)
	}
	router.Delete("/", h.signOut)
}

func (h *SessionHandler) state(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "session state", h.session.State())
}

func (h *SessionHandler) signIn(c *fiber.Ctx) error {
	var payload dto.SessionRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	state, err := h.session.SignIn(c.UserContext(), payload.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotConfigured):
			return utils.SendError(c, fiber.StatusConflict, "backend is not configured")
		case errors.Is(err, session.ErrInvalidToken):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid access token")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to sign in")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
	}

	return utils.SendSuccess(c, "signed in", state)
}

func (h *SessionHandler) signOut(c *fiber.Ctx) error {
	if err := h.session.SignOut(c.UserContext()); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to sign out")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign out")
	}
	return utils.SendSuccess(c, "signed out", h.session.State())
}
