package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classquest/edugame-platform/internal/config"
	"github.com/classquest/edugame-platform/internal/logging"
	"github.com/classquest/edugame-platform/internal/question"
	"github.com/classquest/edugame-platform/internal/session"
)

// WSUpgrader handles WebSocket upgrades. Origin checking is delegated to the
// platform gateway sitting in front of this service.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewHTTPServer wires routes for the session API: health, metrics, session
// lifecycle, catalog validation and the live-watch WebSocket endpoint.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	sessionHandlers *session.HTTPHandlers,
	sessionWS *session.WSHandler,
	questionHandlers *question.HTTPHandlers,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if sessionHandlers != nil {
		mux.HandleFunc("POST /v1/catalog/validate", sessionHandlers.ValidateTuple)

		mux.HandleFunc("POST /v1/sessions", sessionHandlers.CreateSession)
		mux.HandleFunc("GET /v1/sessions/code/{code}", sessionHandlers.ResolveByCode)
		mux.HandleFunc("GET /v1/sessions/{id}", sessionHandlers.GetSession)
		mux.HandleFunc("POST /v1/sessions/{id}/join", sessionHandlers.Join)
		mux.HandleFunc("POST /v1/sessions/{id}/start", sessionHandlers.Start)
		mux.HandleFunc("POST /v1/sessions/{id}/results", sessionHandlers.Submit)
		mux.HandleFunc("POST /v1/sessions/{id}/finish", sessionHandlers.Finish)
		mux.HandleFunc("GET /v1/sessions/{id}/ranking", sessionHandlers.Ranking)
	}

	if questionHandlers != nil {
		mux.HandleFunc("POST /v1/question-banks/prefetch", questionHandlers.Prefetch)
	}

	if sessionWS != nil {
		mux.HandleFunc("/ws/sessions", sessionWS.HandleWebSocket)
	} else {
		mux.HandleFunc("/ws/sessions", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "WebSocket handler not yet integrated", http.StatusNotImplemented)
		})
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS, mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if pool != nil {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
	}
	if redisClient != nil {
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
