// @title                       Task Tracker API
// @version                     1.0
// @description                 Multi-user task tracking with bearer-token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/api"
	"github.com/99minutos/task-tracker/internal/core/ports"
	"github.com/99minutos/task-tracker/internal/core/service"
	"github.com/99minutos/task-tracker/internal/infrastructure/config"
	"github.com/99minutos/task-tracker/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/task-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/task-tracker/internal/infrastructure/db/redis"
	"github.com/99minutos/task-tracker/internal/infrastructure/queue"
	"github.com/99minutos/task-tracker/internal/infrastructure/security"
	"github.com/99minutos/task-tracker/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

// stores groups the repositories of the selected backend.
type stores struct {
	accounts   ports.AccountRepository
	tasks      ports.TaskRepository
	activities ports.ActivityRepository
	pinger     ports.Pinger
	close      func(context.Context) error
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	tokens, err := security.NewJWTService(cfg.JWTSecret, security.DefaultTokenTTL)
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(security.DefaultPasswordCost)
	authService := service.NewAuthService(st.accounts, hasher, tokens, log)

	health := map[string]ports.Pinger{cfg.StoreDriver: st.pinger}

	var identities ports.IdentityResolver = authService
	var closeRedis func() error
	if cfg.Redis.Addr != "" {
		cache, err := redisdb.OpenIdentityCache(ctx, redisdb.CacheConfig{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
			TTL:  cfg.Redis.CacheTTL,
		}, authService, log)
		if err != nil {
			return err
		}
		closeRedis = cache.Close
		identities = cache
		health["redis"] = cache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("identity cache enabled")
	}

	// Workers outlive the signal context so queued activity is drained on shutdown.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, service.NewActivityService(st.activities, log), log)
	dispatcher.Start(workerCtx)

	taskService := service.NewTaskService(st.tasks, st.activities, dispatcher, log)

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		TaskService: taskService,
		Tokens:      tokens,
		Identities:  identities,
		Health:      health,
		Log:         log,
		Swagger:     !cfg.IsProduction(),
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case runErr = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancelWorkers()
	dispatcher.Wait()

	if closeRedis != nil {
		if err := closeRedis(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close")
	}

	return runErr
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &stores{
			accounts:   mem.Accounts(),
			tasks:      mem.Tasks(),
			activities: mem.Activities(),
			pinger:     mem,
			close:      func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	return &stores{
		accounts:   mongodb.NewAccountRepository(db),
		tasks:      mongodb.NewTaskRepository(db),
		activities: mongodb.NewActivityRepository(db),
		pinger:     mongodb.NewPinger(db),
		close:      client.Disconnect,
	}, nil
}
