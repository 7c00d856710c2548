package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rewear-service/internal/api/http"
	"github.com/spec-kit/rewear-service/internal/api/http/handlers"
	"github.com/spec-kit/rewear-service/internal/auth"
	"github.com/spec-kit/rewear-service/internal/config"
	"github.com/spec-kit/rewear-service/internal/events"
	"github.com/spec-kit/rewear-service/internal/observability"
	"github.com/spec-kit/rewear-service/internal/persistence"
	"github.com/spec-kit/rewear-service/internal/repository"
	"github.com/spec-kit/rewear-service/internal/repository/memory"
	"github.com/spec-kit/rewear-service/internal/service"
	"github.com/spec-kit/rewear-service/internal/storage"
	"github.com/spec-kit/rewear-service/internal/worker"
)

type repositories struct {
	users       repository.UserRepository
	items       repository.ItemRepository
	swaps       repository.SwapRepository
	redemptions repository.RedemptionRepository
	history     repository.ItemHistoryRepository
}

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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	members := service.NewMembershipService(repos.users, repos.items, logger)
	authService := service.NewAuthService(cfg.Auth, repos.users, members)
	catalog := service.NewCatalogService(service.CatalogDependencies{
		ItemRepo:    repos.items,
		UserRepo:    repos.users,
		HistoryRepo: repos.history,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	swaps := service.NewSwapService(service.SwapDependencies{
		SwapRepo:    repos.swaps,
		ItemRepo:    repos.items,
		UserRepo:    repos.users,
		HistoryRepo: repos.history,
		Dispatcher:  dispatcher,
		Recorder:    metrics,
		Logger:      logger,
	})
	redemptions := service.NewRedemptionService(service.RedemptionDependencies{
		RedemptionRepo: repos.redemptions,
		ItemRepo:       repos.items,
		UserRepo:       repos.users,
		HistoryRepo:    repos.history,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	mediaStore, err := storage.NewMediaStore(cfg.Upload.MediaRoot, cfg.MediaBaseURL())
	if err != nil {
		logger.Fatal("failed to prepare media storage", zap.Error(err))
	}
	uploads := service.NewUploadService(mediaStore, cfg.Upload, metrics, logger)
	moderation := service.NewModerationService(repos.items, repos.history, mediaStore, dispatcher, logger)

	limiter, err := httptransport.NewRateLimiter(cfg.RateLimit, redis, logger)
	if err != nil {
		logger.Fatal("failed to build rate limiter", zap.Error(err))
	}

	app := httptransport.NewApp(cfg.App.Name, cfg.Upload.MaxBytes, cfg.App.RequestTimeout())
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.ExternalIdentitySecret),
		Users:          handlers.NewUsersHandler(members),
		Items:          handlers.NewItemsHandler(catalog),
		Swaps:          handlers.NewSwapsHandler(swaps),
		Redemptions:    handlers.NewRedemptionsHandler(redemptions),
		Admin:          handlers.NewAdminHandler(moderation),
		Upload:         handlers.NewUploadHandler(uploads),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.users),
		RateLimit:      httptransport.RateLimit(limiter, logger),
		Metrics:        metrics,
		MediaRoot:      mediaStore.Root(),
		MediaPath:      cfg.Upload.MediaURLPath,
	})

	expiry := worker.NewSwapExpiryWorker(swaps, cfg.Swap.PendingTTL, cfg.Swap.SweepInterval, logger)
	go expiry.Start(ctx)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

// buildRepositories picks Postgres when a pool is configured and the
// in-memory store otherwise.
func buildRepositories(pg *persistence.Postgres) repositories {
	if pg.Enabled() {
		return repositories{
			users:       repository.NewUserRepository(pg.Pool),
			items:       repository.NewItemRepository(pg.Pool),
			swaps:       repository.NewSwapRepository(pg.Pool),
			redemptions: repository.NewRedemptionRepository(pg.Pool),
			history:     repository.NewItemHistoryRepository(pg.Pool),
		}
	}
	store := memory.NewStore()
	return repositories{
		users:       store.Users(),
		items:       store.Items(),
		swaps:       store.Swaps(),
		redemptions: store.Redemptions(),
		history:     store.History(),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
