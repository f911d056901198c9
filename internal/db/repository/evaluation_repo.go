package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/evaluation"
	"github.com/classquest/edugame-platform/internal/question"
)

// EvaluationRepository persists teacher-authored evaluations. Questions are
// stored as a JSONB document; the relational columns cover what reporting
// queries filter on.
type EvaluationRepository struct {
	db DBTX
}

// NewEvaluationRepository constructs a new evaluation repository.
func NewEvaluationRepository(db DBTX) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

const evaluationColumns = `id, title, teacher_id, oa_codes, subject,
	format_id, engine_id, skin_id, questions, question_count,
	time_limit_minutes, weight, created_at`

// Create persists a new evaluation row.
func (r *EvaluationRepository) Create(ctx context.Context, ev evaluation.Evaluation) error {
	questions, err := json.Marshal(ev.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO evaluations (`+evaluationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		ev.ID, ev.Title, ev.TeacherID, ev.OACodes, ev.Subject,
		string(ev.FormatID), string(ev.EngineID), string(ev.SkinID), questions,
		ev.QuestionCount, ev.TimeLimitMinutes, ev.Weight, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// GetByID fetches a single evaluation.
func (r *EvaluationRepository) GetByID(ctx context.Context, id string) (evaluation.Evaluation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE id = $1`, id)

	ev, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return evaluation.Evaluation{}, ErrNotFound
		}
		return evaluation.Evaluation{}, fmt.Errorf("select evaluation: %w", err)
	}
	return ev, nil
}

// ListByTeacher returns a teacher's evaluations, most recent first.
func (r *EvaluationRepository) ListByTeacher(ctx context.Context, teacherID string, limit int) ([]evaluation.Evaluation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE teacher_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, teacherID, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []evaluation.Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Delete removes an evaluation. Sessions already created from it are not
// affected.
func (r *EvaluationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM evaluations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEvaluation(row pgx.Row) (evaluation.Evaluation, error) {
	var ev evaluation.Evaluation
	var formatID, engineID, skinID string
	var questions []byte

	err := row.Scan(
		&ev.ID, &ev.Title, &ev.TeacherID, &ev.OACodes, &ev.Subject,
		&formatID, &engineID, &skinID, &questions,
		&ev.QuestionCount, &ev.TimeLimitMinutes, &ev.Weight, &ev.CreatedAt,
	)
	if err != nil {
		return evaluation.Evaluation{}, err
	}

	ev.FormatID = catalog.FormatID(formatID)
	ev.EngineID = catalog.EngineID(engineID)
	ev.SkinID = catalog.SkinID(skinID)

	if len(questions) > 0 {
		var qs []question.Question
		if err := json.Unmarshal(questions, &qs); err != nil {
			return evaluation.Evaluation{}, fmt.Errorf("unmarshal questions: %w", err)
		}
		ev.Questions = qs
	}
	return ev, nil
}
