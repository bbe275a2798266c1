package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/repository/memory"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var repos repository.Repositories
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgresRepositories(pg.PoolHandle())
	} else {
		repos = memory.NewStore().Repositories()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	images, err := persistence.NewImageStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init image store", zap.Error(err))
	}

	metrics := observability.NewMetrics(cfg.App.Name)
	dispatcher := events.NewInMemoryDispatcher(logger)
	broadcaster := events.NewBroadcaster(redis, cfg.Notification.Channel)
	notificationService := service.NewNotificationService(dispatcher, broadcaster, metrics, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	activityWriter := worker.NewActivityWriter(repos.Activities, cfg.Activity, logger, metrics)
	activityWriter.Start()

	activityService := service.NewActivityService(service.ActivityDependencies{
		ActivityRepo: repos.Activities,
		Sink:         activityWriter,
		Metrics:      metrics,
		Logger:       logger,
		WriteTimeout: cfg.Activity.WriteTimeout(),
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: repos.Users,
		Logger:   logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repos.Tickets,
		UserRepo:    repos.Users,
		CommentRepo: repos.Comments,
		Tx:          repos.Tx,
		Images:      images,
		ImageRefs:   repos.ImageRefs,
		Activity:    activityService,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: repos.Comments,
		TicketRepo:  repos.Tickets,
		Tx:          repos.Tx,
		Activity:    activityService,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	newsService := service.NewNewsService(service.NewsDependencies{
		NewsRepo:   repos.News,
		Tx:         repos.Tx,
		Images:     images,
		ImageRefs:  repos.ImageRefs,
		Activity:   activityService,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo: repos.Users,
		Tx:       repos.Tx,
		Activity: activityService,
		Logger:   logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), authService)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.Hardened())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, userService, activityService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		News:           handlers.NewNewsHandler(newsService),
		Admin:          handlers.NewAdminHandler(userService, ticketService),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := activityWriter.Stop(shutdownCtx); err != nil {
		logger.Warn("activity writer did not drain", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
