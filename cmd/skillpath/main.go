package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/config"
	"github.com/noah-isme/skillpath/internal/database"
	"github.com/noah-isme/skillpath/internal/events"
	"github.com/noah-isme/skillpath/internal/handler"
	"github.com/noah-isme/skillpath/internal/middleware"
	"github.com/noah-isme/skillpath/internal/router"
	"github.com/noah-isme/skillpath/internal/service"
	"github.com/noah-isme/skillpath/internal/session"
	"github.com/noah-isme/skillpath/internal/store"
)

const signInLimitPerMinute = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	mode := session.ModeDemo
	var repos store.Repositories
	if cfg.IsConfigured() {
		mode = session.ModeConfigured

		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		repos = store.NewRepositories(db)
	} else {
		logger.Warn().Msg("backend not configured, running in demo mode")
	}

	var (
		identities session.IdentityStore
		publishers events.Multi
	)

	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(startupCtx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, sessions and events stay local")
		} else {
			defer redisClient.Close()
			identities = session.NewRedisIdentityStore(redisClient, cfg.EventChannel, cfg.SessionTTL)
			publishers = append(publishers, events.NewRedisPublisher(redisClient, cfg.EventChannel))
		}
	}

	if cfg.NATSURL != "" {
		natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, change events are not forwarded")
		} else {
			defer natsConn.Drain()
			publishers = append(publishers, events.NewNATSPublisher(natsConn, cfg.EventChannel))
		}
	}

	sess := session.New(session.Options{
		Mode:     mode,
		Verifier: session.NewHMACVerifier(cfg.TokenSecret()),
		Store:    identities,
		Logger:   logger,
	})
	if _, err := sess.Restore(startupCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to restore session")
	}

	workspace := store.NewWorkspace(repos, store.Options{
		Gate:          sess,
		Publisher:     publishers,
		Logger:        logger,
		RemoteCascade: cfg.RemoteCascade,
	})
	workspace.Bind(sess)
	defer workspace.Close()

	if err := workspace.Refresh(startupCtx); err != nil {
		logger.Warn().Err(err).Msg("initial fetch failed")
	}

	planner := service.NewPlannerService(workspace, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		Mode:            mode,
		SessionHandler:  handler.NewSessionHandler(sess, logger),
		GoalHandler:     handler.NewGoalHandler(workspace, planner, logger),
		SkillHandler:    handler.NewSkillHandler(workspace, logger),
		TopicHandler:    handler.NewTopicHandler(workspace, logger),
		ContentHandler:  handler.NewContentHandler(workspace, logger),
		NoteHandler:     handler.NewNoteHandler(workspace, logger),
		TemplateHandler: handler.NewTemplateHandler(),
		SignInLimit:     signInLimitPerMinute,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("mode", mode.String()).Str("address", cfg.HTTPAddress()).Msg("server started")
	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
