package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLobbySession(t *testing.T) *GameSession {
	t.Helper()
	reg := newTestRegistry(t)
	s, err := reg.Create(testCreateParams())
	require.NoError(t, err)
	return s
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"prefixed passes through", "game_5f0c6e2a-9a1b-4ce5-8f23-0a9d1c2b3e4f", "game_5f0c6e2a-9a1b-4ce5-8f23-0a9d1c2b3e4f"},
		{"bare uuid gains prefix", "5f0c6e2a-9a1b-4ce5-8f23-0a9d1c2b3e4f", "game_5f0c6e2a-9a1b-4ce5-8f23-0a9d1c2b3e4f"},
		{"whitespace trimmed", "  5f0c6e2a-9a1b-4ce5-8f23-0a9d1c2b3e4f ", "game_5f0c6e2a-9a1b-4ce5-8f23-0a9d1c2b3e4f"},
		{"garbage unchanged", "not-a-uuid", "not-a-uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeID(tt.in))
		})
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	s := newLobbySession(t)

	first, err := s.Join("student-1")
	require.NoError(t, err)

	again, err := s.Join("student-1")
	require.NoError(t, err)
	assert.Equal(t, first.JoinedAt, again.JoinedAt)

	view := s.Snapshot()
	assert.Len(t, view.Participants, 1)
}

func TestJoinRejectedOutsideLobby(t *testing.T) {
	s := newLobbySession(t)
	_, err := s.Join("student-1")
	require.NoError(t, err)
	require.NoError(t, s.Start(s.HostID))

	_, err = s.Join("student-2")
	assert.ErrorIs(t, err, ErrSessionNotJoinable)
}

func TestStartRequiresHost(t *testing.T) {
	s := newLobbySession(t)

	err := s.Start("someone-else")
	assert.ErrorIs(t, err, ErrNotHost)
	assert.Equal(t, StatusLobby, s.Status())
}

func TestStartOnlyFromLobby(t *testing.T) {
	s := newLobbySession(t)
	require.NoError(t, s.Start(s.HostID))

	err := s.Start(s.HostID)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestStartWithEmptyLobbyAllowed(t *testing.T) {
	s := newLobbySession(t)

	require.NoError(t, s.Start(s.HostID))
	assert.Equal(t, StatusActive, s.Status())
	assert.False(t, s.AllSubmitted())
}

func TestSubmitResultStateErrors(t *testing.T) {
	s := newLobbySession(t)
	_, err := s.Join("student-1")
	require.NoError(t, err)

	// Not active yet.
	_, err = s.SubmitResult("student-1", 100, nil)
	assert.ErrorIs(t, err, ErrSessionNotActive)

	require.NoError(t, s.Start(s.HostID))

	// Never joined.
	_, err = s.SubmitResult("student-99", 100, nil)
	assert.ErrorIs(t, err, ErrNotAParticipant)

	// First submission sticks.
	state, err := s.SubmitResult("student-1", 120, []AnswerResult{
		{QuestionID: "q1", Answer: "7", Correct: true, ElapsedMs: 4000},
	})
	require.NoError(t, err)
	require.NotNil(t, state.Score)
	assert.Equal(t, 120, *state.Score)

	// Second submission is rejected, not overwritten.
	_, err = s.SubmitResult("student-1", 999, nil)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	view := s.Snapshot()
	require.Len(t, view.Participants, 1)
	assert.Equal(t, 120, *view.Participants[0].Score)
}

func TestAllSubmitted(t *testing.T) {
	s := newLobbySession(t)
	_, err := s.Join("student-1")
	require.NoError(t, err)
	_, err = s.Join("student-2")
	require.NoError(t, err)
	require.NoError(t, s.Start(s.HostID))

	_, err = s.SubmitResult("student-1", 100, nil)
	require.NoError(t, err)
	assert.False(t, s.AllSubmitted())

	_, err = s.SubmitResult("student-2", 80, nil)
	require.NoError(t, err)
	assert.True(t, s.AllSubmitted())
}

func TestFinishOnlyFromActive(t *testing.T) {
	s := newLobbySession(t)

	err := s.Finish()
	assert.ErrorIs(t, err, ErrSessionNotActive)

	require.NoError(t, s.Start(s.HostID))
	require.NoError(t, s.Finish())
	assert.Equal(t, StatusFinished, s.Status())

	view := s.Snapshot()
	require.NotNil(t, view.EndedAt)
}

func TestExpireIfStale(t *testing.T) {
	lobbyTimeout := 15 * time.Minute
	abandonTimeout := time.Hour

	t.Run("fresh lobby survives", func(t *testing.T) {
		s := newLobbySession(t)
		assert.False(t, s.ExpireIfStale(time.Now(), lobbyTimeout, abandonTimeout))
		assert.Equal(t, StatusLobby, s.Status())
	})

	t.Run("stale lobby expires", func(t *testing.T) {
		s := newLobbySession(t)
		future := time.Now().Add(lobbyTimeout + time.Minute)
		assert.True(t, s.ExpireIfStale(future, lobbyTimeout, abandonTimeout))
		assert.Equal(t, StatusExpired, s.Status())
	})

	t.Run("abandoned active session expires", func(t *testing.T) {
		s := newLobbySession(t)
		require.NoError(t, s.Start(s.HostID))
		future := time.Now().Add(abandonTimeout + time.Minute)
		assert.True(t, s.ExpireIfStale(future, lobbyTimeout, abandonTimeout))
		assert.Equal(t, StatusExpired, s.Status())
	})

	t.Run("finished session never expires", func(t *testing.T) {
		s := newLobbySession(t)
		require.NoError(t, s.Start(s.HostID))
		require.NoError(t, s.Finish())
		future := time.Now().Add(24 * time.Hour)
		assert.False(t, s.ExpireIfStale(future, lobbyTimeout, abandonTimeout))
		assert.Equal(t, StatusFinished, s.Status())
	})
}
