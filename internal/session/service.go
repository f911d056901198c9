package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/content"
	"github.com/classquest/edugame-platform/internal/evaluation"
	"github.com/classquest/edugame-platform/internal/question"
	"github.com/classquest/edugame-platform/internal/ranking"
	"github.com/classquest/edugame-platform/internal/session/scoring"
	"github.com/classquest/edugame-platform/pkg/http/ws"
)

// ErrNoPlayableContent is returned when content transformation rejects every
// question in the deck.
var ErrNoPlayableContent = errors.New("no questions survived content transformation")

// AuditRecorder persists session lifecycle records for teacher reporting.
// Sessions themselves live in memory; the audit trail outlives them.
type AuditRecorder interface {
	RecordCreated(ctx context.Context, view View) error
	RecordFinished(ctx context.Context, view View) error
}

// EvaluationStore loads teacher-authored evaluations by id.
type EvaluationStore interface {
	GetByID(ctx context.Context, id string) (evaluation.Evaluation, error)
}

// Service orchestrates session lifecycle: creation from an evaluation,
// join/start/submit/finish transitions, live broadcasts and rankings.
type Service struct {
	catalog     *catalog.Catalog
	transformer *content.Transformer
	questionSvc *question.Service
	registry    *Registry
	tokens      *TokenManager
	snapshots   SnapshotStore
	ranking     *ranking.Service
	hub         *ws.Hub
	audit       AuditRecorder
	evaluations EvaluationStore
	scoring     *scoring.Engine

	perQuestionLimit time.Duration
	logger           zerolog.Logger
}

// ServiceOptions configures the session service.
type ServiceOptions struct {
	ScoringConfig    scoring.Config
	PerQuestionLimit time.Duration
}

// NewService creates a session service with all dependencies. Snapshots,
// ranking, audit and the hub may be nil; the corresponding side effects are
// skipped.
func NewService(
	cat *catalog.Catalog,
	transformer *content.Transformer,
	questionSvc *question.Service,
	registry *Registry,
	tokens *TokenManager,
	snapshots SnapshotStore,
	rankingSvc *ranking.Service,
	hub *ws.Hub,
	audit AuditRecorder,
	evaluations EvaluationStore,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	scoringCfg := opts.ScoringConfig
	if scoringCfg.BasePoints == 0 {
		scoringCfg = scoring.DefaultConfig()
	}
	limit := opts.PerQuestionLimit
	if limit == 0 {
		limit = 30 * time.Second
	}

	return &Service{
		catalog:          cat,
		transformer:      transformer,
		questionSvc:      questionSvc,
		registry:         registry,
		tokens:           tokens,
		snapshots:        snapshots,
		ranking:          rankingSvc,
		hub:              hub,
		audit:            audit,
		evaluations:      evaluations,
		scoring:          scoring.NewEngine(scoringCfg),
		perQuestionLimit: limit,
		logger:           logger.With().Str("component", "session_service").Logger(),
	}
}

// Created bundles the outputs of session creation: the lobby view, the host
// control token, and any per-question transformation diagnostics for decks
// that started with playable questions but lost some.
type Created struct {
	View      View
	HostToken string
	Dropped   []*content.TransformationError
}

// CreateFromEvaluation validates the evaluation's (format, engine, skin)
// tuple, builds an engine-ready deck and registers a lobby session.
func (s *Service) CreateFromEvaluation(ctx context.Context, ev evaluation.Evaluation) (Created, error) {
	if err := s.catalog.Validate(ev.FormatID, ev.EngineID, ev.SkinID); err != nil {
		return Created{}, err
	}

	questions := ev.Questions
	if len(questions) == 0 {
		if s.questionSvc == nil {
			return Created{}, fmt.Errorf("evaluation %s has no questions and no generator is configured", ev.ID)
		}
		bank, err := s.questionSvc.FetchBank(ctx, question.BankRequest{
			OACodes: ev.OACodes,
			Count:   ev.QuestionCount,
			Subject: ev.Subject,
		})
		if err != nil {
			return Created{}, fmt.Errorf("fetch question bank: %w", err)
		}
		questions = bank.Questions
	}

	result, err := s.transformer.Transform(questions, ev.EngineID, ev.SkinID, content.Options{
		LegacyTitle: ev.Title,
	})
	if err != nil {
		return Created{}, err
	}
	if len(result.Items) == 0 {
		return Created{}, ErrNoPlayableContent
	}

	sess, err := s.registry.Create(CreateParams{
		EvaluationID: ev.ID,
		Title:        ev.Title,
		HostID:       ev.TeacherID,
		FormatID:     ev.FormatID,
		EngineID:     ev.EngineID,
		SkinID:       ev.SkinID,
		Questions:    result.Items,
	})
	if err != nil {
		if errors.Is(err, ErrCodeSpaceExhausted) {
			metricCodeExhausted.Inc()
		}
		return Created{}, err
	}

	token, err := s.tokens.Issue(sess.ID, sess.HostID)
	if err != nil {
		s.registry.Remove(sess.ID)
		return Created{}, fmt.Errorf("issue host token: %w", err)
	}

	metricSessionsCreated.WithLabelValues(string(sess.EngineID)).Inc()
	metricSessionsLive.Set(float64(s.registry.Len()))

	view := sess.Snapshot()
	s.persist(ctx, view)
	if s.audit != nil {
		if err := s.audit.RecordCreated(ctx, view); err != nil {
			s.logger.Warn().Err(err).Str("session_id", view.ID).Msg("failed to record session creation")
		}
	}

	return Created{View: view, HostToken: token, Dropped: result.Failures}, nil
}

// CreateFromStoredEvaluation loads an evaluation by id and creates a session
// from it.
func (s *Service) CreateFromStoredEvaluation(ctx context.Context, evaluationID string) (Created, error) {
	if s.evaluations == nil {
		return Created{}, fmt.Errorf("no evaluation store configured")
	}
	ev, err := s.evaluations.GetByID(ctx, evaluationID)
	if err != nil {
		return Created{}, fmt.Errorf("load evaluation %s: %w", evaluationID, err)
	}
	return s.CreateFromEvaluation(ctx, ev)
}

// Get resolves a session by either textual id form.
func (s *Service) Get(rawID string) (View, error) {
	sess, err := s.registry.GetByID(rawID)
	if err != nil {
		return View{}, err
	}
	return sess.Snapshot(), nil
}

// ResolveByCode resolves a session by its join code.
func (s *Service) ResolveByCode(code string) (View, error) {
	sess, err := s.registry.GetByCode(code)
	if err != nil {
		return View{}, err
	}
	return sess.Snapshot(), nil
}

// Join adds a student to a lobby session and notifies watchers. The session
// reference may be either id form or the join code students type in.
func (s *Service) Join(ctx context.Context, ref, studentID string) (View, error) {
	sess, err := s.registry.GetByID(ref)
	if errors.Is(err, ErrNotFound) {
		sess, err = s.registry.GetByCode(ref)
	}
	if err != nil {
		return View{}, err
	}
	if _, err := sess.Join(studentID); err != nil {
		return View{}, err
	}

	view := sess.Snapshot()
	s.persist(ctx, view)
	s.broadcast(sess.ID, ws.NewMessage(ws.TypeParticipantJoined, ws.ParticipantJoinedPayload{
		SessionID:        sess.ID,
		StudentID:        studentID,
		ParticipantCount: len(view.Participants),
	}))
	return view, nil
}

// Start moves a session from lobby to active. Only the host, proven by its
// control token, may start.
func (s *Service) Start(ctx context.Context, rawID, hostToken string) (View, error) {
	sess, err := s.registry.GetByID(rawID)
	if err != nil {
		return View{}, err
	}
	hostID, err := s.tokens.Verify(hostToken, sess.ID)
	if err != nil {
		return View{}, err
	}
	if err := sess.Start(hostID); err != nil {
		return View{}, err
	}

	view := sess.Snapshot()
	s.persist(ctx, view)
	startedAt := ""
	if view.StartedAt != nil {
		startedAt = view.StartedAt.UTC().Format(time.RFC3339)
	}
	s.broadcast(sess.ID, ws.NewMessage(ws.TypeSessionStarted, ws.SessionStartedPayload{
		SessionID: sess.ID,
		StartedAt: startedAt,
	}))
	s.logger.Info().Str("session_id", sess.ID).Int("participants", len(view.Participants)).Msg("session started")
	return view, nil
}

// Submit records a student's results, computing the score server-side from
// correctness and timing. Finishes the session when every participant has
// submitted.
func (s *Service) Submit(ctx context.Context, rawID, studentID string, results []AnswerResult) (ParticipantState, error) {
	sess, err := s.registry.GetByID(rawID)
	if err != nil {
		return ParticipantState{}, err
	}

	outcomes := make([]scoring.Outcome, len(results))
	for i, r := range results {
		outcomes[i] = scoring.Outcome{
			Correct: r.Correct,
			Elapsed: time.Duration(r.ElapsedMs) * time.Millisecond,
		}
	}
	score, accuracy := s.scoring.Total(outcomes, s.perQuestionLimit)

	state, err := sess.SubmitResult(studentID, score, results)
	if err != nil {
		metricSubmissions.WithLabelValues("rejected").Inc()
		return ParticipantState{}, err
	}
	metricSubmissions.WithLabelValues("accepted").Inc()

	if s.ranking != nil {
		if err := s.ranking.Record(ctx, sess.ID, studentID, score); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to record ranking entry")
		}
	}

	s.persist(ctx, sess.Snapshot())
	s.broadcast(sess.ID, ws.NewMessage(ws.TypeResultSubmitted, ws.ResultSubmittedPayload{
		SessionID: sess.ID,
		StudentID: studentID,
		Score:     score,
	}))
	s.broadcastRanking(ctx, sess.ID)

	s.logger.Info().
		Str("session_id", sess.ID).
		Str("student_id", studentID).
		Int("score", score).
		Float64("accuracy", accuracy).
		Msg("result submitted")

	if sess.AllSubmitted() {
		if err := s.finish(ctx, sess); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("auto-finish failed")
		}
	}
	return state, nil
}

// Finish ends an active session at the host's request.
func (s *Service) Finish(ctx context.Context, rawID, hostToken string) (View, error) {
	sess, err := s.registry.GetByID(rawID)
	if err != nil {
		return View{}, err
	}
	if _, err := s.tokens.Verify(hostToken, sess.ID); err != nil {
		return View{}, err
	}
	if err := s.finish(ctx, sess); err != nil {
		return View{}, err
	}
	return sess.Snapshot(), nil
}

func (s *Service) finish(ctx context.Context, sess *GameSession) error {
	if err := sess.Finish(); err != nil {
		return err
	}

	// Free the join code for reuse; the session stays queryable by id.
	s.registry.Retire(sess.ID)
	metricSessionsLive.Set(float64(s.registry.Len()))

	view := sess.Snapshot()
	s.persist(ctx, view)
	if s.audit != nil {
		if err := s.audit.RecordFinished(ctx, view); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to record session finish")
		}
	}

	endedAt := ""
	if view.EndedAt != nil {
		endedAt = view.EndedAt.UTC().Format(time.RFC3339)
	}
	s.broadcast(sess.ID, ws.NewMessage(ws.TypeSessionFinished, ws.SessionFinishedPayload{
		SessionID: sess.ID,
		EndedAt:   endedAt,
	}))
	s.broadcastRanking(ctx, sess.ID)

	s.logger.Info().Str("session_id", sess.ID).Msg("session finished")
	return nil
}

// Ranking returns the current live ranking for a session.
func (s *Service) Ranking(ctx context.Context, rawID string, limit int) ([]ranking.Entry, error) {
	sess, err := s.registry.GetByID(rawID)
	if err != nil {
		return nil, err
	}
	if s.ranking == nil {
		return nil, nil
	}
	return s.ranking.Top(ctx, sess.ID, limit)
}

func (s *Service) persist(ctx context.Context, view View) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Store(ctx, view); err != nil {
		s.logger.Warn().Err(err).Str("session_id", view.ID).Msg("failed to store session snapshot")
	}
}

func (s *Service) broadcast(sessionID string, msg ws.Message) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToSession(sessionID, msg); err != nil {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("broadcast incomplete")
	}
}

func (s *Service) broadcastRanking(ctx context.Context, sessionID string) {
	if s.hub == nil || s.ranking == nil {
		return
	}
	entries, err := s.ranking.Top(ctx, sessionID, 10)
	if err != nil {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("ranking fetch for broadcast failed")
		return
	}
	rows := make([]ws.RankingEntry, len(entries))
	for i, e := range entries {
		rows[i] = ws.RankingEntry{
			StudentID: e.StudentID,
			Score:     e.Score,
			Accuracy:  e.Accuracy,
			Rank:      e.Rank,
		}
	}
	s.broadcast(sessionID, ws.NewMessage(ws.TypeRankingUpdate, ws.RankingUpdatePayload{
		SessionID: sessionID,
		Entries:   rows,
	}))
}
