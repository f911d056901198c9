package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/content"
)

// Session lifecycle states.
const (
	StatusLobby    = "lobby"
	StatusActive   = "active"
	StatusFinished = "finished"
	StatusExpired  = "expired"
)

// IDPrefix is the canonical textual prefix of a session identifier. Callers
// may supply the bare uuid form; it is normalized at the registry boundary
// and never propagated internally.
const IDPrefix = "game_"

// Sentinel errors for lookup, state and resource failures.
var (
	ErrNotFound            = errors.New("session not found")
	ErrSessionNotJoinable  = errors.New("session is not accepting participants")
	ErrSessionNotActive    = errors.New("session is not active")
	ErrNotAParticipant     = errors.New("student never joined this session")
	ErrDuplicateSubmission = errors.New("result already submitted")
	ErrNotHost             = errors.New("caller is not the session host")
	ErrCodeSpaceExhausted  = errors.New("join code space exhausted")
)

// AnswerResult is one per-question entry of a student's submission.
type AnswerResult struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
	ElapsedMs  int    `json:"elapsed_ms"`
}

// ParticipantState tracks a single student inside a session. Created on
// join; written once more on submission.
type ParticipantState struct {
	StudentID   string         `json:"student_id"`
	JoinedAt    time.Time      `json:"joined_at"`
	Score       *int           `json:"score,omitempty"`
	Results     []AnswerResult `json:"results,omitempty"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
}

func (p *ParticipantState) submitted() bool {
	return p.SubmittedAt != nil
}

// GameSession is the mutable runtime entity. All state mutations go through
// the methods below, which hold the per-session mutex so concurrent
// join/start/submit/finish calls resolve to clean state errors.
type GameSession struct {
	ID           string
	JoinCode     string
	EvaluationID string
	Title        string
	HostID       string
	FormatID     catalog.FormatID
	EngineID     catalog.EngineID
	SkinID       catalog.SkinID
	Questions    []content.EngineContent
	CreatedAt    time.Time

	mu           sync.Mutex
	status       string
	participants map[string]*ParticipantState
	startedAt    *time.Time
	endedAt      *time.Time
	lastActivity time.Time
}

// NewID returns a fresh canonical session identifier.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// NormalizeID maps the two accepted textual forms (bare uuid and prefixed)
// onto the canonical prefixed form. Unparseable input is returned unchanged
// so lookups fail with NotFound rather than a synthetic id matching nothing.
func NormalizeID(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, IDPrefix) {
		return raw
	}
	if _, err := uuid.Parse(raw); err == nil {
		return IDPrefix + raw
	}
	return raw
}

// Status returns the current lifecycle state.
func (s *GameSession) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Join registers a student while the session is in lobby. Joining twice with
// the same id is idempotent and returns the existing state.
func (s *GameSession) Join(studentID string) (ParticipantState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusLobby {
		return ParticipantState{}, ErrSessionNotJoinable
	}
	if existing, ok := s.participants[studentID]; ok {
		return *existing, nil
	}

	p := &ParticipantState{
		StudentID: studentID,
		JoinedAt:  time.Now(),
	}
	s.participants[studentID] = p
	s.lastActivity = time.Now()
	return *p, nil
}

// Start transitions lobby -> active. Zero participants is allowed (solo
// practice: the host plays along on the projector).
func (s *GameSession) Start(hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hostID != s.HostID {
		return ErrNotHost
	}
	if s.status != StatusLobby {
		return ErrSessionNotActive
	}

	now := time.Now()
	s.status = StatusActive
	s.startedAt = &now
	s.lastActivity = now
	return nil
}

// SubmitResult records a student's score once. A second submission is
// rejected, never overwritten.
func (s *GameSession) SubmitResult(studentID string, score int, results []AnswerResult) (ParticipantState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return ParticipantState{}, ErrSessionNotActive
	}
	p, ok := s.participants[studentID]
	if !ok {
		return ParticipantState{}, ErrNotAParticipant
	}
	if p.submitted() {
		return *p, ErrDuplicateSubmission
	}

	now := time.Now()
	p.Score = &score
	p.Results = results
	p.SubmittedAt = &now
	s.lastActivity = now
	return *p, nil
}

// Finish transitions active -> finished.
func (s *GameSession) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return ErrSessionNotActive
	}
	now := time.Now()
	s.status = StatusFinished
	s.endedAt = &now
	return nil
}

// AllSubmitted reports whether every participant has a recorded result.
// False for an empty lobby so solo-practice sessions end via the host.
func (s *GameSession) AllSubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.participants) == 0 {
		return false
	}
	for _, p := range s.participants {
		if !p.submitted() {
			return false
		}
	}
	return true
}

// ExpireIfStale transitions to expired when a lobby never started within
// lobbyTimeout, or an active session saw no activity for abandonTimeout.
// Returns true when the transition happened.
func (s *GameSession) ExpireIfStale(now time.Time, lobbyTimeout, abandonTimeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := false
	switch s.status {
	case StatusLobby:
		stale = now.Sub(s.CreatedAt) > lobbyTimeout
	case StatusActive:
		stale = now.Sub(s.lastActivity) > abandonTimeout
	}
	if !stale {
		return false
	}

	s.status = StatusExpired
	s.endedAt = &now
	return true
}

// View is an immutable snapshot handed to readers and serialized outward.
type View struct {
	ID           string                  `json:"session_id"`
	JoinCode     string                  `json:"join_code"`
	EvaluationID string                  `json:"evaluation_id,omitempty"`
	Title        string                  `json:"title"`
	HostID       string                  `json:"host_id"`
	FormatID     catalog.FormatID        `json:"format_id"`
	EngineID     catalog.EngineID        `json:"engine_id"`
	SkinID       catalog.SkinID          `json:"skin_id"`
	Status       string                  `json:"status"`
	Questions    []content.EngineContent `json:"questions"`
	Participants []ParticipantState      `json:"participants"`
	CreatedAt    time.Time               `json:"created_at"`
	StartedAt    *time.Time              `json:"started_at,omitempty"`
	EndedAt      *time.Time              `json:"ended_at,omitempty"`
}

// Snapshot copies the session under its lock.
func (s *GameSession) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	participants := make([]ParticipantState, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, *p)
	}

	return View{
		ID:           s.ID,
		JoinCode:     s.JoinCode,
		EvaluationID: s.EvaluationID,
		Title:        s.Title,
		HostID:       s.HostID,
		FormatID:     s.FormatID,
		EngineID:     s.EngineID,
		SkinID:       s.SkinID,
		Status:       s.status,
		Questions:    s.Questions,
		Participants: participants,
		CreatedAt:    s.CreatedAt,
		StartedAt:    s.startedAt,
		EndedAt:      s.endedAt,
	}
}
