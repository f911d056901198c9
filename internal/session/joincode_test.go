package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateProducesValidCodes(t *testing.T) {
	alloc := NewJoinCodeAllocator(6, 1)

	for i := 0; i < 100; i++ {
		code, err := alloc.Allocate()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.Contains(t, codeAlphabet, string(c), "code %q contains char outside alphabet", code)
		}
	}
}

func TestAllocateNeverRepeatsLiveCodes(t *testing.T) {
	alloc := NewJoinCodeAllocator(6, 42)

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := alloc.Allocate()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "code %q issued twice", code)
		seen[code] = struct{}{}
	}
}

func TestAllocateExhaustsBoundedly(t *testing.T) {
	// Length-1 codes give a tiny space; drain it.
	alloc := NewJoinCodeAllocator(1, 7)

	issued := 0
	for {
		_, err := alloc.Allocate()
		if err != nil {
			assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
			break
		}
		issued++
		require.LessOrEqual(t, issued, len(codeAlphabet))
	}
	assert.Greater(t, issued, 0)
}

func TestReleaseRecyclesCode(t *testing.T) {
	alloc := NewJoinCodeAllocator(6, 3)

	code, err := alloc.Allocate()
	require.NoError(t, err)
	assert.True(t, alloc.Reserved(code))

	alloc.Release(code)
	assert.False(t, alloc.Reserved(code))
}

func TestReservedIsCaseInsensitive(t *testing.T) {
	alloc := NewJoinCodeAllocator(6, 9)

	code, err := alloc.Allocate()
	require.NoError(t, err)
	assert.True(t, alloc.Reserved(strings.ToLower(code)))
	assert.True(t, alloc.Reserved("  "+code+" "))
}
