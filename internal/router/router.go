package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/skillpath/internal/config"
	"github.com/noah-isme/skillpath/internal/handler"
	"github.com/noah-isme/skillpath/internal/middleware"
	"github.com/noah-isme/skillpath/internal/observability"
	"github.com/noah-isme/skillpath/internal/session"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Mode            session.Mode
	SessionHandler  *handler.SessionHandler
	GoalHandler     *handler.GoalHandler
	SkillHandler    *handler.SkillHandler
	TopicHandler    *handler.TopicHandler
	ContentHandler  *handler.ContentHandler
	NoteHandler     *handler.NoteHandler
	TemplateHandler *handler.TemplateHandler
	// SignInLimit caps token submissions per client per minute. Zero disables the limiter.
	SignInLimit int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		c.Set(middleware.HeaderPersistenceMode, deps.Mode.String())
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Mode))

	if deps.SessionHandler != nil {
		var limiter fiber.Handler
		if deps.SignInLimit > 0 {
			limiter = middleware.RateLimit("session", deps.SignInLimit, time.Minute)
		}
		deps.SessionHandler.Register(api.Group("/session"), limiter)
	}

	if deps.GoalHandler != nil {
		deps.GoalHandler.Register(api.Group("/goals"))
	}

	if deps.TopicHandler != nil {
		deps.TopicHandler.Register(api.Group("/skills/:skillId/topics"))
	}
	if deps.ContentHandler != nil {
		deps.ContentHandler.Register(api.Group("/skills/:skillId/content"))
	}
	if deps.SkillHandler != nil {
		deps.SkillHandler.Register(api.Group("/skills"))
	}

	if deps.NoteHandler != nil {
		deps.NoteHandler.Register(api.Group("/topics/:topicId/notes"))
	}

	if deps.TemplateHandler != nil {
		deps.TemplateHandler.Register(api.Group("/templates"))
	}
}
