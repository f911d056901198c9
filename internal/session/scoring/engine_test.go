package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreIncorrectIsZero(t *testing.T) {
	e := NewEngine(DefaultConfig())
	assert.Equal(t, 0, e.Score(false, time.Second, 15*time.Second, 3))
}

func TestScoreTimeBonusDecaysLinearly(t *testing.T) {
	e := NewEngine(DefaultConfig())

	instant := e.Score(true, 0, 10*time.Second, 0)
	half := e.Score(true, 5*time.Second, 10*time.Second, 0)
	expired := e.Score(true, 12*time.Second, 10*time.Second, 0)

	assert.Equal(t, 150, instant)
	assert.Equal(t, 125, half)
	assert.Equal(t, 100, expired)
}

func TestScoreStreakBonusIsCapped(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// 5% per streak step, capped at 50%.
	assert.Equal(t, 105, e.Score(true, 10*time.Second, 10*time.Second, 1))
	assert.Equal(t, 150, e.Score(true, 10*time.Second, 10*time.Second, 10))
	assert.Equal(t, 150, e.Score(true, 10*time.Second, 10*time.Second, 30))
}

func TestTotalTracksStreakAndAccuracy(t *testing.T) {
	e := NewEngine(DefaultConfig())

	outcomes := []Outcome{
		{Correct: true, Elapsed: 10 * time.Second},
		{Correct: true, Elapsed: 10 * time.Second},
		{Correct: false, Elapsed: 10 * time.Second},
		{Correct: true, Elapsed: 10 * time.Second},
	}

	total, accuracy := e.Total(outcomes, 10*time.Second)

	// streaks: 1, 2, reset, 1 -> 105 + 110 + 0 + 105
	assert.Equal(t, 320, total)
	assert.InDelta(t, 0.75, accuracy, 1e-9)
}

func TestTotalEmptySubmission(t *testing.T) {
	e := NewEngine(DefaultConfig())
	total, accuracy := e.Total(nil, 10*time.Second)
	assert.Zero(t, total)
	assert.Zero(t, accuracy)
}
