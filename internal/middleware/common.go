package middleware

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// HeaderPersistenceMode reports whether the API serves demo data or owner rows.
const HeaderPersistenceMode = "X-Persistence-Mode"

// Config customises the middleware pipeline.
type Config struct {
	Logger *zerolog.Logger
	// AllowOrigins is a comma separated CORS origin list. Empty allows every origin.
	AllowOrigins string
	// AccessLog enables the plain-text access log on stdout.
	AccessLog bool
}

// Register attaches the middleware shared by every route, outermost first.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}
	origins := strings.TrimSpace(cfg.AllowOrigins)
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Logger != nil}))
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} cid=${locals:" + localCorrelationID + "}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + HeaderCorrelationID,
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: HeaderCorrelationID + ", " + HeaderPersistenceMode,
	}))
}
