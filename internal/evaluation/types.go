package evaluation

import (
	"time"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/question"
)

// Evaluation is a teacher-authored assembly of questions plus the chosen
// (format, engine, skin) tuple and grading parameters. It is created by the
// teacher-facing workflow and consumed here as session-creation input.
type Evaluation struct {
	ID               string              `json:"evaluation_id"`
	Title            string              `json:"title"`
	TeacherID        string              `json:"teacher_id"`
	OACodes          []string            `json:"oa_codes,omitempty"`
	Subject          string              `json:"subject,omitempty"`
	FormatID         catalog.FormatID    `json:"format_id"`
	EngineID         catalog.EngineID    `json:"engine_id"`
	SkinID           catalog.SkinID      `json:"skin_id"`
	Questions        []question.Question `json:"questions,omitempty"`
	QuestionCount    int                 `json:"question_count"`
	TimeLimitMinutes int                 `json:"time_limit_minutes,omitempty"`
	Weight           float64             `json:"weight,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}
