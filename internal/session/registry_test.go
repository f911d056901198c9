package session

import (
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classquest/edugame-platform/internal/catalog"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(NewJoinCodeAllocator(6, 1), zerolog.Nop())
}

func testCreateParams() CreateParams {
	return CreateParams{
		Title:    "Conteo del 1 al 20",
		HostID:   "teacher-7",
		FormatID: catalog.FormatTriviaLightning,
		EngineID: catalog.EngineCounter,
		SkinID:   catalog.SkinFarm,
	}
}

func TestCreateIndexesByIDAndCode(t *testing.T) {
	reg := newTestRegistry(t)

	s, err := reg.Create(testCreateParams())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.ID, IDPrefix))
	assert.Len(t, s.JoinCode, 6)
	assert.Equal(t, StatusLobby, s.Status())

	byID, err := reg.GetByID(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, byID)

	byCode, err := reg.GetByCode(s.JoinCode)
	require.NoError(t, err)
	assert.Same(t, s, byCode)
}

func TestGetByIDAcceptsBareUUID(t *testing.T) {
	reg := newTestRegistry(t)

	s, err := reg.Create(testCreateParams())
	require.NoError(t, err)

	bare := strings.TrimPrefix(s.ID, IDPrefix)
	got, err := reg.GetByID(bare)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestGetByCodeIsCaseInsensitive(t *testing.T) {
	reg := newTestRegistry(t)

	s, err := reg.Create(testCreateParams())
	require.NoError(t, err)

	got, err := reg.GetByCode(strings.ToLower(s.JoinCode))
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestLookupMissReturnsNotFound(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.GetByID("game_00000000-0000-0000-0000-00000000dead")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.GetByCode("ZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCreatesYieldUniqueCodes(t *testing.T) {
	reg := newTestRegistry(t)

	const n = 64
	var wg sync.WaitGroup
	codes := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := reg.Create(testCreateParams())
			if assert.NoError(t, err) {
				codes <- s.JoinCode
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]struct{})
	for code := range codes {
		_, dup := seen[code]
		require.False(t, dup, "join code %q issued twice", code)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestRetireRecyclesCodeButKeepsID(t *testing.T) {
	reg := newTestRegistry(t)

	s, err := reg.Create(testCreateParams())
	require.NoError(t, err)
	code := s.JoinCode

	reg.Retire(s.ID)

	_, err = reg.GetByCode(code)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := reg.GetByID(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	// The recycled code may now be issued to a new session.
	assert.False(t, reg.allocator.Reserved(code))
}

func TestRemoveDropsBothIndexes(t *testing.T) {
	reg := newTestRegistry(t)

	s, err := reg.Create(testCreateParams())
	require.NoError(t, err)

	reg.Remove(s.ID)
	assert.Equal(t, 0, reg.Len())

	_, err = reg.GetByID(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = reg.GetByCode(s.JoinCode)
	assert.ErrorIs(t, err, ErrNotFound)
}
