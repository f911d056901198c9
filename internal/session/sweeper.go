package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/classquest/edugame-platform/pkg/http/ws"
)

// Sweeper expires stale sessions in the background: lobbies that never
// started within the lobby window, and active sessions abandoned by their
// host. Expiry is never triggered synchronously by reads.
type Sweeper struct {
	registry       *Registry
	snapshots      SnapshotStore
	hub            *ws.Hub
	logger         zerolog.Logger
	interval       time.Duration
	lobbyTimeout   time.Duration
	abandonTimeout time.Duration
}

func NewSweeper(registry *Registry, snapshots SnapshotStore, hub *ws.Hub, interval, lobbyTimeout, abandonTimeout time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if lobbyTimeout <= 0 {
		lobbyTimeout = 15 * time.Minute
	}
	if abandonTimeout <= 0 {
		abandonTimeout = time.Hour
	}
	return &Sweeper{
		registry:       registry,
		snapshots:      snapshots,
		hub:            hub,
		logger:         logger.With().Str("component", "session_sweeper").Logger(),
		interval:       interval,
		lobbyTimeout:   lobbyTimeout,
		abandonTimeout: abandonTimeout,
	}
}

// Run blocks until context cancellation.
func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	now := time.Now()
	for _, s := range w.registry.List() {
		if !s.ExpireIfStale(now, w.lobbyTimeout, w.abandonTimeout) {
			continue
		}

		// The expired session stays queryable by id for audit; only the
		// join code is recycled.
		w.registry.Retire(s.ID)
		metricSessionsExpired.Inc()
		metricSessionsLive.Set(float64(w.registry.Len()))

		if w.snapshots != nil {
			if err := w.snapshots.Store(ctx, s.Snapshot()); err != nil {
				w.logger.Warn().Err(err).Str("session_id", s.ID).Msg("snapshot after expiry failed")
			}
		}
		if w.hub != nil {
			w.hub.BroadcastToSession(s.ID, ws.NewMessage(ws.TypeSessionExpired, ws.SessionExpiredPayload{
				SessionID: s.ID,
			}))
		}
		w.logger.Info().
			Str("session_id", s.ID).
			Str("join_code", s.JoinCode).
			Msg("session expired")
	}
}
