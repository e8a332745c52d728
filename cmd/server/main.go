package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"snippetbox/internal/api"
	"snippetbox/internal/api/handler"
	"snippetbox/internal/app/service"
	"snippetbox/internal/app/worker"
	"snippetbox/internal/common/security"
	"snippetbox/internal/domain/repository"
	"snippetbox/internal/platform/config"
	"snippetbox/internal/platform/database"
	"snippetbox/internal/platform/logger"
	"snippetbox/internal/platform/queue"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type storage struct {
	tx       database.Transactor
	users    repository.UserRepository
	roles    repository.RoleRepository
	snippets repository.SnippetRepository
}

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "production")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)
	log.Info().Str("env", cfg.Environment).Str("storage", cfg.StorageDriver).Msg("configuration loaded")

	ctx := context.Background()

	// 2. Security
	tokens, err := security.NewTokenService(cfg.JWTKey, cfg.JWTExp)
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}
	hasher, err := security.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hasher")
	}

	// 3. Storage
	store, checks, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}
	defer closeStore()

	// 4. Redis
	rdb, err := queue.ConnectRedis(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer queue.CloseRedis(rdb, log)
	checks = append(checks, handler.HealthCheck{
		Name:  "redis",
		Check: func(ctx context.Context) error { return queue.Ping(ctx, rdb) },
	})

	// 5. Services
	authService := service.NewAuthService(store.tx, store.users, store.roles, hasher, tokens, log)
	snippetService := service.NewSnippetService(store.tx, store.snippets, log)
	directoryService := service.NewDirectoryService(
		&http.Client{Timeout: cfg.DirectoryTimeout}, cfg.DirectoryBaseURL, rdb, cfg.DirectoryCacheTTL, log)
	notificationService := service.NewNotificationService(rdb, cfg.NotificationQueueName, log)

	// 6. Notification worker
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	var workers sync.WaitGroup
	startWorker(workerCtx, &workers, rdb, cfg, log)

	// 7. Router and HTTP server
	router := api.NewRouter(api.Dependencies{
		Logger:              log,
		RequestTimeout:      cfg.RequestTimeout,
		Tokens:              tokens,
		AuthService:         authService,
		SnippetService:      snippetService,
		DirectoryService:    directoryService,
		NotificationService: notificationService,
		HealthChecks:        checks,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.APIPort).Msg("could not listen")
		}
	}()

	<-stop

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	workerCancel()
	workers.Wait()
	log.Info().Msg("server and worker stopped")
}

func startWorker(ctx context.Context, wg *sync.WaitGroup, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) {
	w := worker.NewNotificationWorker(rdb, cfg.NotificationQueueName, worker.LogNotifier{Log: log}, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(ctx)
	}()
}

// openStorage wires the repositories for cfg.StorageDriver and returns the
// matching health check. closeFn releases the connection pool, if any.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store storage, checks []handler.HealthCheck, closeFn func(), err error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		mem := repository.NewMemoryStore()
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		store = storage{tx: mem.Transactor(), users: mem.Users(), roles: mem.Roles(), snippets: mem.Snippets()}
		checks = []handler.HealthCheck{{
			Name:  "database",
			Check: func(context.Context) error { return nil },
		}}
		return store, checks, func() {}, nil
	}

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return storage{}, nil, nil, err
	}
	if cfg.DBRunMigrations {
		if err := database.Migrate(ctx, db, log); err != nil {
			database.Close(db, log)
			return storage{}, nil, nil, err
		}
	}
	store = storage{
		tx:       database.NewTransactor(db),
		users:    repository.NewPgUserRepository(db),
		roles:    repository.NewPgRoleRepository(db),
		snippets: repository.NewPgSnippetRepository(db),
	}
	checks = []handler.HealthCheck{{
		Name:  "database",
		Check: func(ctx context.Context) error { return database.Ping(ctx, db) },
	}}
	return store, checks, func() { database.Close(db, log) }, nil
}
