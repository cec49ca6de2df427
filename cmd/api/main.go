package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rank-service/internal/api/http"
	"github.com/spec-kit/rank-service/internal/api/http/handlers"
	"github.com/spec-kit/rank-service/internal/auth"
	"github.com/spec-kit/rank-service/internal/config"
	"github.com/spec-kit/rank-service/internal/directory"
	"github.com/spec-kit/rank-service/internal/events"
	"github.com/spec-kit/rank-service/internal/ledger"
	"github.com/spec-kit/rank-service/internal/observability"
	"github.com/spec-kit/rank-service/internal/persistence"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/presence"
	"github.com/spec-kit/rank-service/internal/promotion"
	"github.com/spec-kit/rank-service/internal/rank"
	"github.com/spec-kit/rank-service/internal/repository"
	"github.com/spec-kit/rank-service/internal/service"
	"github.com/spec-kit/rank-service/internal/staff"
	"github.com/spec-kit/rank-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	var (
		pg        *persistence.Postgres
		dir       directory.GroupDirectory
		staffRepo repository.StaffRepository
	)
	if cfg.Postgres.DSN != "" {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		dir = directory.NewPostgresDirectory(pg.PoolHandle())
		staffRepo = repository.NewStaffRepository(pg.PoolHandle())
	} else {
		logger.Warn("POSTGRES_DSN not set, group membership and stafflist are in-memory only")
		dir = directory.NewMemoryDirectory()
		staffRepo = repository.NewMemoryStaffRepository()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	table, err := rank.NewTable(cfg.Ranks.File, cfg.Ranks.Track, logger)
	if err != nil {
		logger.Fatal("failed to load rank definitions", zap.Error(err))
	}
	if err := table.SyncToDirectory(ctx, dir); err != nil {
		logger.Error("rank group sync failed, continuing with existing groups", zap.Error(err))
	}
	for _, name := range []string{cfg.Ranks.DefaultGroup, cfg.Ranks.StaffGroup} {
		exists, err := dir.GroupExists(ctx, name)
		if err == nil && !exists {
			err = dir.CreateGroup(ctx, directory.Group{Name: name})
		}
		if err != nil {
			logger.Error("could not ensure group", zap.String("group", name), zap.Error(err))
		}
	}

	registry := staff.NewRegistry(ctx, staffRepo, cfg.Staff.CacheTTL(), logger, metrics)
	points := ledger.NewRedisLedger(redis.Client)
	pending := promotion.NewPendingStore()
	tracker := presence.NewTracker()
	players := playerstore.NewStore(cfg.Players.StoreFile, logger)
	dispatcher := events.NewInMemoryDispatcher()

	notifications := service.NewNotificationService(
		dispatcher,
		&service.RedisPublisher{Client: redis.Client},
		tracker,
		pending,
		logger,
	)
	notifications.RegisterHandlers()

	engine := promotion.NewEngine(table, registry, points, dir, dispatcher, promotion.Config{
		DefaultGroup: cfg.Ranks.DefaultGroup,
		StaffGroup:   cfg.Ranks.StaffGroup,
	}, logger, metrics)

	pointsService := service.NewPointsService(points, table, players, registry, cfg.Staff.GivePoints, logger)
	staffService := service.NewStaffService(registry, dir, players, dispatcher, cfg.Ranks.StaffGroup, logger)
	sessionService := service.NewSessionService(tracker, players, registry, engine, notifications, logger)

	scheduler := worker.NewScheduler(cfg.Scheduler, tracker, registry, points, engine, players, logger, metrics)
	scheduler.Start(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(tokens, cfg.Auth.AdminPasswordHash),
		Points:         handlers.NewPointsHandler(pointsService, engine),
		Ranks:          handlers.NewRanksHandler(table, dir),
		Staff:          handlers.NewStaffHandler(staffService),
		Sessions:       handlers.NewSessionsHandler(sessionService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := players.Save(); err != nil {
		logger.Error("failed to flush player store", zap.Error(err))
	}
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
