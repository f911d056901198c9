package content

import (
	"regexp"
	"strconv"

	"github.com/classquest/edugame-platform/internal/question"
)

// Legacy patterns for ranges embedded in evaluation titles, e.g.
// "del 10 al 50", "numeros de 1 a 20", "counting 10 to 50", "10-50".
var (
	rangeWordPattern = regexp.MustCompile(`(?i)(?:del?\s+)?(\d+)\s+(?:a(?:l)?|to)\s+(\d+)`)
	rangeDashPattern = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
)

// ExtractNumericRange recovers a counting range from free text. This is the
// compatibility fallback for evaluations authored before the structured
// NumericRange field existed; new content should always carry the field.
func ExtractNumericRange(text string) (question.NumericRange, bool) {
	match := rangeWordPattern.FindStringSubmatch(text)
	if match == nil {
		match = rangeDashPattern.FindStringSubmatch(text)
	}
	if match == nil {
		return question.NumericRange{}, false
	}

	min, err1 := strconv.Atoi(match[1])
	max, err2 := strconv.Atoi(match[2])
	if err1 != nil || err2 != nil || min > max {
		return question.NumericRange{}, false
	}
	return question.NumericRange{Min: min, Max: max}, true
}

// rangeFor resolves the counting range for a question: structured field
// first, then the legacy title heuristic, then a difficulty default wide
// enough to contain the target.
func rangeFor(q question.Question, legacyTitle string, target int) question.NumericRange {
	if q.NumericRange != nil {
		return *q.NumericRange
	}
	if r, ok := ExtractNumericRange(legacyTitle); ok {
		return r
	}

	max := 10
	switch q.Difficulty {
	case question.DifficultyMedium:
		max = 20
	case question.DifficultyHard:
		max = 100
	}
	if target > max {
		max = target
	}
	return question.NumericRange{Min: 1, Max: max}
}
