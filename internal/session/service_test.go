package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/content"
	"github.com/classquest/edugame-platform/internal/evaluation"
	"github.com/classquest/edugame-platform/internal/question"
	"github.com/classquest/edugame-platform/internal/session/scoring"
)

type memorySnapshots struct {
	views map[string]View
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{views: make(map[string]View)}
}

func (m *memorySnapshots) Store(_ context.Context, view View) error {
	m.views[view.ID] = view
	return nil
}

func (m *memorySnapshots) Load(_ context.Context, sessionID string) (*View, error) {
	v, ok := m.views[sessionID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memorySnapshots) Delete(_ context.Context, sessionID string) error {
	delete(m.views, sessionID)
	return nil
}

type recordingAudit struct {
	created  []string
	finished []string
}

func (a *recordingAudit) RecordCreated(_ context.Context, view View) error {
	a.created = append(a.created, view.ID)
	return nil
}

func (a *recordingAudit) RecordFinished(_ context.Context, view View) error {
	a.finished = append(a.finished, view.ID)
	return nil
}

func countingQuestions() []question.Question {
	return []question.Question{
		{
			ID:            "q1",
			Stem:          "¿Cuántos {item} ves en el {place}?",
			Type:          question.TypeNumeric,
			CorrectAnswer: "7",
			Difficulty:    question.DifficultyEasy,
			NumericRange:  &question.NumericRange{Min: 1, Max: 20},
		},
		{
			ID:            "q2",
			Stem:          "Cuenta los {item} del grupo",
			Type:          question.TypeNumeric,
			CorrectAnswer: "12",
			Difficulty:    question.DifficultyEasy,
			NumericRange:  &question.NumericRange{Min: 1, Max: 20},
		},
	}
}

func testEvaluation() evaluation.Evaluation {
	return evaluation.Evaluation{
		ID:        "eval-1",
		Title:     "Conteo del 1 al 20",
		TeacherID: "teacher-7",
		FormatID:  catalog.FormatTriviaLightning,
		EngineID:  catalog.EngineCounter,
		SkinID:    catalog.SkinFarm,
		Questions: countingQuestions(),
		CreatedAt: time.Now(),
	}
}

func newTestService(t *testing.T) (*Service, *memorySnapshots, *recordingAudit) {
	t.Helper()
	cat := catalog.Default()
	snapshots := newMemorySnapshots()
	audit := &recordingAudit{}
	svc := NewService(
		cat,
		content.NewTransformer(cat),
		nil,
		NewRegistry(NewJoinCodeAllocator(6, 1), zerolog.Nop()),
		NewTokenManager(TokenConfig{Secret: []byte("test-secret")}),
		snapshots,
		nil,
		nil,
		audit,
		nil,
		ServiceOptions{},
		zerolog.Nop(),
	)
	return svc, snapshots, audit
}

func TestFullSessionLifecycle(t *testing.T) {
	svc, snapshots, audit := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateFromEvaluation(ctx, testEvaluation())
	require.NoError(t, err)
	require.NotEmpty(t, created.HostToken)
	assert.Empty(t, created.Dropped)
	assert.Equal(t, StatusLobby, created.View.Status)
	require.Len(t, created.View.Questions, 2)

	// Skin vocabulary was applied during creation.
	require.NotNil(t, created.View.Questions[0].Counting)
	assert.NotContains(t, created.View.Questions[0].Stem, "{item}")

	id := created.View.ID

	// Students resolve the session via the join code.
	byCode, err := svc.ResolveByCode(created.View.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, id, byCode.ID)

	_, err = svc.Join(ctx, id, "student-1")
	require.NoError(t, err)
	// Students may join with the code directly instead of the id.
	view, err := svc.Join(ctx, created.View.JoinCode, "student-2")
	require.NoError(t, err)
	assert.Len(t, view.Participants, 2)

	view, err = svc.Start(ctx, id, created.HostToken)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, view.Status)

	results := []AnswerResult{
		{QuestionID: "q1", Answer: "7", Correct: true, ElapsedMs: 15000},
		{QuestionID: "q2", Answer: "11", Correct: false, ElapsedMs: 20000},
	}
	state, err := svc.Submit(ctx, id, "student-1", results)
	require.NoError(t, err)
	require.NotNil(t, state.Score)

	expected, _ := scoring.NewEngine(scoring.DefaultConfig()).Total([]scoring.Outcome{
		{Correct: true, Elapsed: 15 * time.Second},
		{Correct: false, Elapsed: 20 * time.Second},
	}, 30*time.Second)
	assert.Equal(t, expected, *state.Score)

	// Session finishes automatically once every participant submitted.
	_, err = svc.Submit(ctx, id, "student-2", results)
	require.NoError(t, err)

	final, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, final.Status)

	// The join code no longer resolves; the id still does.
	_, err = svc.ResolveByCode(created.View.JoinCode)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{id}, audit.created)
	assert.Equal(t, []string{id}, audit.finished)
	assert.Equal(t, StatusFinished, snapshots.views[id].Status)
}

func TestCreateRejectsIncompatibleTuple(t *testing.T) {
	svc, _, _ := newTestService(t)

	ev := testEvaluation()
	ev.FormatID = catalog.FormatDragDropSorting
	ev.SkinID = catalog.SkinOcean

	_, err := svc.CreateFromEvaluation(context.Background(), ev)
	var mismatch *catalog.IncompatibleFormatEngineError
	assert.ErrorAs(t, err, &mismatch)
}

func TestCreateRejectsFullyUntransformableDeck(t *testing.T) {
	svc, _, _ := newTestService(t)

	ev := testEvaluation()
	// A counting deck whose answers are not numbers fails per question.
	ev.Questions = []question.Question{
		{ID: "q1", Stem: "¿De qué color es el cielo?", Type: question.TypeMultipleChoice, CorrectAnswer: "azul"},
	}

	_, err := svc.CreateFromEvaluation(context.Background(), ev)
	assert.ErrorIs(t, err, ErrNoPlayableContent)
}

func TestHostFinishesEarly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateFromEvaluation(ctx, testEvaluation())
	require.NoError(t, err)
	id := created.View.ID

	_, err = svc.Join(ctx, id, "student-1")
	require.NoError(t, err)
	_, err = svc.Start(ctx, id, created.HostToken)
	require.NoError(t, err)

	// A forged token does not finish the session.
	other := NewTokenManager(TokenConfig{Secret: []byte("wrong-secret")})
	forged, err := other.Issue(id, "teacher-7")
	require.NoError(t, err)
	_, err = svc.Finish(ctx, id, forged)
	assert.ErrorIs(t, err, ErrInvalidHostToken)

	view, err := svc.Finish(ctx, id, created.HostToken)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, view.Status)
}

func TestSweeperExpiresStaleLobby(t *testing.T) {
	cat := catalog.Default()
	reg := NewRegistry(NewJoinCodeAllocator(6, 1), zerolog.Nop())
	snapshots := newMemorySnapshots()
	svc := NewService(
		cat, content.NewTransformer(cat), nil, reg,
		NewTokenManager(TokenConfig{Secret: []byte("test-secret")}),
		snapshots, nil, nil, nil, nil, ServiceOptions{}, zerolog.Nop(),
	)

	created, err := svc.CreateFromEvaluation(context.Background(), testEvaluation())
	require.NoError(t, err)

	sweeper := NewSweeper(reg, snapshots, nil, time.Second, time.Nanosecond, time.Nanosecond, zerolog.Nop())
	time.Sleep(2 * time.Millisecond)
	sweeper.sweep(context.Background())

	view, err := svc.Get(created.View.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, view.Status)

	_, err = svc.ResolveByCode(created.View.JoinCode)
	assert.ErrorIs(t, err, ErrNotFound)
}
