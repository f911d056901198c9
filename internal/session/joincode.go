package session

import (
	"math/rand"
	"strings"
)

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I/L) so codes
// survive being read off a projector and typed on a tablet.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const (
	defaultCodeLength  = 6
	defaultMaxAttempts = 32
)

// JoinCodeAllocator hands out short human-enterable codes. It is not
// self-locking: the registry calls Allocate/Release while holding its own
// write lock, which is what makes "no two concurrently joinable sessions
// share a code" hold.
type JoinCodeAllocator struct {
	length      int
	maxAttempts int
	rng         *rand.Rand
	reserved    map[string]struct{}
}

func NewJoinCodeAllocator(length int, seed int64) *JoinCodeAllocator {
	if length <= 0 {
		length = defaultCodeLength
	}
	return &JoinCodeAllocator{
		length:      length,
		maxAttempts: defaultMaxAttempts,
		rng:         rand.New(rand.NewSource(seed)),
		reserved:    make(map[string]struct{}),
	}
}

// Allocate reserves a fresh code. Bounded retries: exhausting them means
// either a generation bug or far more live sessions than the code space was
// sized for, and is surfaced as ErrCodeSpaceExhausted rather than looping.
func (a *JoinCodeAllocator) Allocate() (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		code := a.generate()
		if _, taken := a.reserved[code]; taken {
			continue
		}
		a.reserved[code] = struct{}{}
		return code, nil
	}
	return "", ErrCodeSpaceExhausted
}

// Release frees a code for reuse once its session is no longer joinable.
func (a *JoinCodeAllocator) Release(code string) {
	delete(a.reserved, normalizeCode(code))
}

// Reserved reports whether a code is currently held.
func (a *JoinCodeAllocator) Reserved(code string) bool {
	_, ok := a.reserved[normalizeCode(code)]
	return ok
}

func (a *JoinCodeAllocator) generate() string {
	var b strings.Builder
	b.Grow(a.length)
	for i := 0; i < a.length; i++ {
		b.WriteByte(codeAlphabet[a.rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// normalizeCode makes join codes case-insensitive at every boundary.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
