package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/config"
	"github.com/classquest/edugame-platform/internal/content"
	"github.com/classquest/edugame-platform/internal/db/repository"
	"github.com/classquest/edugame-platform/internal/logging"
	"github.com/classquest/edugame-platform/internal/question"
	"github.com/classquest/edugame-platform/internal/ranking"
	"github.com/classquest/edugame-platform/internal/server"
	"github.com/classquest/edugame-platform/internal/session"
	ws "github.com/classquest/edugame-platform/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	sweeper   *session.Sweeper
	prefetch  *question.PrefetchWorker
	bgCancels []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	evaluationRepo := repository.NewEvaluationRepository(pool)
	auditRepo := repository.NewSessionAuditRepository(pool)

	// Question bank pipeline. Without a generator URL the service only
	// accepts evaluations carrying their questions inline.
	var questionSvc *question.Service
	var prefetch *question.PrefetchWorker
	var questionHandlers *question.HTTPHandlers
	if cfg.Generator.URL != "" {
		generator := question.NewHTTPGenerator(question.GeneratorConfig{
			URL:     cfg.Generator.URL,
			APIKey:  cfg.Generator.APIKey,
			Timeout: cfg.Generator.HTTPTimeout,
		}, logger)
		cache := question.NewCache(redisClient, cfg.Generator.CacheTTL)
		questionSvc = question.NewService(cache, generator)

		prefetchQueue := make(chan question.BankRequest, 64)
		prefetch = question.NewPrefetchWorker(questionSvc, generator, prefetchQueue, logger, cfg.Generator.HTTPTimeout)
		questionHandlers = question.NewHTTPHandlers(prefetchQueue, logger)
	} else {
		logger.Warn().Msg("GENERATOR_URL not set; evaluations must carry questions inline")
	}

	cat := catalog.Default()
	transformer := content.NewTransformer(cat)

	wsHub := ws.NewHub(logger)
	registry := session.NewRegistry(
		session.NewJoinCodeAllocator(cfg.Session.JoinCodeLength, time.Now().UnixNano()),
		logger,
	)
	tokens := session.NewTokenManager(session.TokenConfig{
		Secret: []byte(cfg.Security.HostTokenSecret),
		TTL:    cfg.Security.HostTokenTTL,
		Issuer: cfg.Name,
	})
	snapshots := session.NewRedisSnapshotStore(redisClient, cfg.Session.SnapshotTTL, logger)
	rankingSvc := ranking.NewService(redisClient, logger, ranking.ServiceOptions{
		TopN:     cfg.Ranking.TopN,
		EntryTTL: cfg.Ranking.EntryTTL,
	})

	sessionSvc := session.NewService(
		cat,
		transformer,
		questionSvc,
		registry,
		tokens,
		snapshots,
		rankingSvc,
		wsHub,
		auditRepo,
		evaluationRepo,
		session.ServiceOptions{
			PerQuestionLimit: cfg.Session.PerQuestionLimit,
		},
		logger,
	)

	sessionHandlers := session.NewHTTPHandlers(sessionSvc, logger)
	sessionWS := session.NewWSHandler(sessionSvc, wsHub, &server.WSUpgrader, logger)
	sweeper := session.NewSweeper(
		registry,
		snapshots,
		wsHub,
		cfg.Session.SweepInterval,
		cfg.Session.LobbyTimeout,
		cfg.Session.AbandonTimeout,
		logger,
	)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, sessionHandlers, sessionWS, questionHandlers)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		redis:     redisClient,
		http:      apiServer,
		sweeper:   sweeper,
		prefetch:  prefetch,
		bgCancels: make([]context.CancelFunc, 0, 2),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	if a.prefetch != nil {
		a.prefetch.Stop()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.sweeper != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.sweeper.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("session sweeper stopped")
			}
		}()
	}

	if a.prefetch != nil {
		go a.prefetch.Run()
	}
}
