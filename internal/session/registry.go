package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/content"
)

// Registry is the authoritative in-process store of live sessions, indexed
// by canonical id and by join code. It is constructed and injected, never
// ambient global state. Registry locks guard only the indexes; per-session
// state is guarded by each session's own mutex.
type Registry struct {
	mu        sync.RWMutex
	byID      map[string]*GameSession
	byCode    map[string]*GameSession
	allocator *JoinCodeAllocator
	logger    zerolog.Logger
}

func NewRegistry(allocator *JoinCodeAllocator, logger zerolog.Logger) *Registry {
	return &Registry{
		byID:      make(map[string]*GameSession),
		byCode:    make(map[string]*GameSession),
		allocator: allocator,
		logger:    logger.With().Str("component", "session_registry").Logger(),
	}
}

// CreateParams carries everything needed to register a new lobby session.
type CreateParams struct {
	EvaluationID string
	Title        string
	HostID       string
	FormatID     catalog.FormatID
	EngineID     catalog.EngineID
	SkinID       catalog.SkinID
	Questions    []content.EngineContent
}

// Create allocates an id and a join code, stores the session in lobby state
// and indexes it under both keys. Atomic with respect to other mutations.
func (r *Registry) Create(params CreateParams) (*GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.allocator.Allocate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &GameSession{
		ID:           NewID(),
		JoinCode:     code,
		EvaluationID: params.EvaluationID,
		Title:        params.Title,
		HostID:       params.HostID,
		FormatID:     params.FormatID,
		EngineID:     params.EngineID,
		SkinID:       params.SkinID,
		Questions:    params.Questions,
		CreatedAt:    now,
		status:       StatusLobby,
		participants: make(map[string]*ParticipantState),
		lastActivity: now,
	}

	r.byID[s.ID] = s
	r.byCode[code] = s

	r.logger.Info().
		Str("session_id", s.ID).
		Str("join_code", code).
		Str("engine_id", string(s.EngineID)).
		Msg("session created")
	return s, nil
}

// GetByID resolves a session by either textual id form.
func (r *Registry) GetByID(rawID string) (*GameSession, error) {
	id := NormalizeID(rawID)

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// GetByCode resolves a session by its live join code, case-insensitively.
// Codes of finished/expired sessions do not resolve.
func (r *Registry) GetByCode(code string) (*GameSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byCode[normalizeCode(code)]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Retire drops the join-code index for a session that is no longer joinable
// and releases the code for reuse. The session stays queryable by id for
// audit until Remove.
func (r *Registry) Retire(sessionID string) {
	id := NormalizeID(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return
	}
	if indexed, live := r.byCode[s.JoinCode]; live && indexed == s {
		delete(r.byCode, s.JoinCode)
		r.allocator.Release(s.JoinCode)
	}
}

// Remove evicts the session entirely, releasing its join code if still held.
func (r *Registry) Remove(sessionID string) {
	id := NormalizeID(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return
	}
	if indexed, live := r.byCode[s.JoinCode]; live && indexed == s {
		delete(r.byCode, s.JoinCode)
		r.allocator.Release(s.JoinCode)
	}
	delete(r.byID, id)
}

// List snapshots the current session set for background sweeps.
func (r *Registry) List() []*GameSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*GameSession, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
