package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/evaluation"
	"github.com/classquest/edugame-platform/internal/session"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgconn.CommandTag), called.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	called := m.Called(ctx, sql, args)
	rows, _ := called.Get(0).(pgx.Rows)
	return rows, called.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}

func TestEvaluationRepository_Create(t *testing.T) {
	db := new(mockDB)
	repo := NewEvaluationRepository(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Create(context.Background(), evaluation.Evaluation{
		ID:        "eval-1",
		Title:     "Conteo del 1 al 20",
		TeacherID: "teacher-7",
		FormatID:  catalog.FormatTriviaLightning,
		EngineID:  catalog.EngineCounter,
		SkinID:    catalog.SkinFarm,
		CreatedAt: time.Now(),
	})

	assert.NoError(t, err)
	db.AssertNumberOfCalls(t, "Exec", 1)
}

func TestEvaluationRepository_GetByIDNotFound(t *testing.T) {
	db := new(mockDB)
	repo := NewEvaluationRepository(db)

	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(errRow{err: pgx.ErrNoRows})

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluationRepository_DeleteNotFound(t *testing.T) {
	db := new(mockDB)
	repo := NewEvaluationRepository(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionAuditRepository_RecordCreated(t *testing.T) {
	db := new(mockDB)
	repo := NewSessionAuditRepository(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.RecordCreated(context.Background(), session.View{
		ID:       "game_00000000-0000-0000-0000-000000000001",
		Title:    "Conteo del 1 al 20",
		HostID:   "teacher-7",
		JoinCode: "H7K2Q9",
		Status:   "lobby",
	})

	assert.NoError(t, err)
	db.AssertNumberOfCalls(t, "Exec", 1)
}

func TestSessionAuditRepository_RecordFinishedMissingRow(t *testing.T) {
	db := new(mockDB)
	repo := NewSessionAuditRepository(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.RecordFinished(context.Background(), session.View{
		ID:     "game_00000000-0000-0000-0000-000000000002",
		Status: "finished",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
