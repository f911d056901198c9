package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classquest/edugame-platform/internal/question"
)

func TestExtractNumericRange(t *testing.T) {
	cases := []struct {
		text string
		want question.NumericRange
		ok   bool
	}{
		{"Conteo del 10 al 50", question.NumericRange{Min: 10, Max: 50}, true},
		{"Numeros de 1 a 20", question.NumericRange{Min: 1, Max: 20}, true},
		{"Counting 10 to 50", question.NumericRange{Min: 10, Max: 50}, true},
		{"Rango 30-40", question.NumericRange{Min: 30, Max: 40}, true},
		{"Sumas y restas", question.NumericRange{}, false},
		{"del 50 al 10", question.NumericRange{}, false}, // inverted
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := ExtractNumericRange(tc.text)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestRangeForPrefersStructuredField(t *testing.T) {
	q := question.Question{
		Difficulty:   question.DifficultyHard,
		NumericRange: &question.NumericRange{Min: 5, Max: 8},
	}

	r := rangeFor(q, "del 1 al 100", 6)
	assert.Equal(t, question.NumericRange{Min: 5, Max: 8}, r)
}

func TestRangeForFallsBackToTitleThenDifficulty(t *testing.T) {
	q := question.Question{Difficulty: question.DifficultyMedium}

	r := rangeFor(q, "numeros del 10 al 30", 12)
	assert.Equal(t, question.NumericRange{Min: 10, Max: 30}, r)

	r = rangeFor(q, "no range here", 12)
	assert.Equal(t, question.NumericRange{Min: 1, Max: 20}, r)

	// Default widens to contain the target.
	r = rangeFor(question.Question{Difficulty: question.DifficultyEasy}, "", 42)
	assert.Equal(t, question.NumericRange{Min: 1, Max: 42}, r)
}
