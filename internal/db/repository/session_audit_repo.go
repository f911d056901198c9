package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/classquest/edugame-platform/internal/session"
)

// SessionAuditRepository writes the durable trail of in-memory game
// sessions. One row per session: inserted at creation, finalized with
// participant results when the session ends.
type SessionAuditRepository struct {
	db DBTX
}

// NewSessionAuditRepository constructs a new session audit repository.
func NewSessionAuditRepository(db DBTX) *SessionAuditRepository {
	return &SessionAuditRepository{db: db}
}

var _ session.AuditRecorder = (*SessionAuditRepository)(nil)

// RecordCreated inserts the audit row for a new session.
func (r *SessionAuditRepository) RecordCreated(ctx context.Context, view session.View) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO game_session_audit
			(session_id, evaluation_id, title, host_id, format_id, engine_id, skin_id,
			 join_code, status, question_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO NOTHING`,
		view.ID, nullable(view.EvaluationID), view.Title, view.HostID,
		string(view.FormatID), string(view.EngineID), string(view.SkinID),
		view.JoinCode, view.Status, len(view.Questions), view.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session audit: %w", err)
	}
	return nil
}

// RecordFinished finalizes the audit row with participant results.
func (r *SessionAuditRepository) RecordFinished(ctx context.Context, view session.View) error {
	participants, err := json.Marshal(view.Participants)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE game_session_audit
		SET status = $2,
		    participants = $3,
		    started_at = $4,
		    ended_at = $5
		WHERE session_id = $1`,
		view.ID, view.Status, participants, view.StartedAt, view.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("finalize session audit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AuditRecord is one row of the audit trail as read back for reporting.
type AuditRecord struct {
	SessionID     string
	EvaluationID  string
	Title         string
	HostID        string
	FormatID      string
	EngineID      string
	SkinID        string
	JoinCode      string
	Status        string
	QuestionCount int
	Participants  []session.ParticipantState
	CreatedAt     time.Time
	StartedAt     *time.Time
	EndedAt       *time.Time
}

const auditColumns = `session_id, evaluation_id, title, host_id, format_id,
	engine_id, skin_id, join_code, status, question_count, participants,
	created_at, started_at, ended_at`

// GetBySessionID fetches a single audit row.
func (r *SessionAuditRepository) GetBySessionID(ctx context.Context, sessionID string) (AuditRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+auditColumns+`
		FROM game_session_audit
		WHERE session_id = $1`, session.NormalizeID(sessionID))

	rec, err := scanAudit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AuditRecord{}, ErrNotFound
		}
		return AuditRecord{}, fmt.Errorf("select session audit: %w", err)
	}
	return rec, nil
}

// ListByEvaluation returns all sessions run from one evaluation, most recent
// first. Teachers compare runs of the same evaluation across classes.
func (r *SessionAuditRepository) ListByEvaluation(ctx context.Context, evaluationID string, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+auditColumns+`
		FROM game_session_audit
		WHERE evaluation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, evaluationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list session audit: %w", err)
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		rec, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session audit: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanAudit(row pgx.Row) (AuditRecord, error) {
	var rec AuditRecord
	var evaluationID *string
	var participants []byte

	err := row.Scan(
		&rec.SessionID, &evaluationID, &rec.Title, &rec.HostID, &rec.FormatID,
		&rec.EngineID, &rec.SkinID, &rec.JoinCode, &rec.Status, &rec.QuestionCount,
		&participants, &rec.CreatedAt, &rec.StartedAt, &rec.EndedAt,
	)
	if err != nil {
		return AuditRecord{}, err
	}

	if evaluationID != nil {
		rec.EvaluationID = *evaluationID
	}
	if len(participants) > 0 {
		if err := json.Unmarshal(participants, &rec.Participants); err != nil {
			return AuditRecord{}, fmt.Errorf("unmarshal participants: %w", err)
		}
	}
	return rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
