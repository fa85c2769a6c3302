package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/civicbridge/complaint-service/internal/api/http"
	"github.com/civicbridge/complaint-service/internal/api/http/handlers"
	"github.com/civicbridge/complaint-service/internal/config"
	"github.com/civicbridge/complaint-service/internal/events"
	"github.com/civicbridge/complaint-service/internal/lock"
	"github.com/civicbridge/complaint-service/internal/observability"
	"github.com/civicbridge/complaint-service/internal/persistence"
	"github.com/civicbridge/complaint-service/internal/repository"
	"github.com/civicbridge/complaint-service/internal/repository/memory"
	"github.com/civicbridge/complaint-service/internal/service"
	"github.com/civicbridge/complaint-service/internal/storage"
	"github.com/civicbridge/complaint-service/internal/worker"
)

type repositories struct {
	users       repository.UserRepository
	complaints  repository.ComplaintRepository
	assignments repository.AssignmentRepository
	messages    repository.MessageRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := newRepositories(pg)
	locker := newLocker(cfg.Locking, redis, logger)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, metrics))

	blobs, err := storage.NewBlobStore(cfg.Uploads, logger)
	if err != nil {
		logger.Fatal("failed to prepare upload dir", zap.Error(err))
	}

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:  repos.complaints,
		AssignmentRepo: repos.assignments,
		UserRepo:       repos.users,
		Dispatcher:     dispatcher,
		Locker:         locker,
		Metrics:        metrics,
		Logger:         logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		ComplaintRepo:  repos.complaints,
		AssignmentRepo: repos.assignments,
		Dispatcher:     dispatcher,
		Locker:         locker,
		Metrics:        metrics,
		Logger:         logger,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		ComplaintRepo: repos.complaints,
		Dispatcher:    dispatcher,
		Locker:        locker,
		Metrics:       metrics,
		Logger:        logger,
		Dwell:         cfg.Escalation.Dwell(),
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: repos.messages,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	accountService := service.NewAccountService(*cfg, service.AccountDependencies{
		UserRepo:       repos.users,
		ComplaintRepo:  repos.complaints,
		AssignmentRepo: repos.assignments,
		Metrics:        metrics,
		Logger:         logger,
	})

	app := httptransport.NewApp(cfg.App)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSOrigins)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, cfg.Locking.Enabled),
		Complaints:   handlers.NewComplaintsHandler(complaintService, escalationService, blobs),
		Assignments:  handlers.NewAssignmentsHandler(assignmentService),
		Messages:     handlers.NewMessagesHandler(messageService),
		Users:        handlers.NewUsersHandler(accountService),
		Metrics:      metrics,
		RateLimiter:  httptransport.NewIPRateLimiter(cfg.RateLimit.AccountRPS, cfg.RateLimit.AccountBurst),
		UploadPrefix: cfg.Uploads.PublicPrefix,
		UploadDir:    blobs.Dir(),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{
			users:       store.Users(),
			complaints:  store.Complaints(),
			assignments: store.Assignments(),
			messages:    store.Messages(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		users:       repository.NewUserRepository(pool),
		complaints:  repository.NewComplaintRepository(pool),
		assignments: repository.NewAssignmentRepository(pool),
		messages:    repository.NewMessageRepository(pool),
	}
}

func newLocker(cfg config.LockConfig, redis *persistence.Redis, logger *zap.Logger) lock.Locker {
	if !cfg.Enabled {
		return lock.NoopLocker{}
	}
	locker, err := lock.NewRedisLocker(redis.Client, cfg.TTL(), cfg.Wait())
	if err != nil {
		logger.Warn("complaint lock disabled", zap.Error(err))
		return lock.NoopLocker{}
	}
	logger.Info("complaint lock enabled", zap.Duration("ttl", cfg.TTL()), zap.Duration("wait", cfg.Wait()))
	return locker
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
