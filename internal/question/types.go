package question

// Difficulty constants for readability.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question type constants.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeNumeric        = "numeric"
	TypeMatching       = "matching"
	TypeShortAnswer    = "short_answer"
)

// Bloom cognitive-complexity levels, lowest first.
const (
	BloomRemember   = "remember"
	BloomUnderstand = "understand"
	BloomApply      = "apply"
	BloomAnalyze    = "analyze"
	BloomEvaluate   = "evaluate"
	BloomCreate     = "create"
)

// NumericRange is the structured counting parameter supplied at authoring
// time. It replaces inference from free text; see content.ExtractNumericRange
// for the legacy fallback.
type NumericRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Question is a single item from an evaluation's question bank. Read-only to
// the session engine.
type Question struct {
	ID            string        `json:"id"`
	Stem          string        `json:"stem"`
	Type          string        `json:"type"`
	Options       []string      `json:"options,omitempty"`
	CorrectAnswer string        `json:"correct_answer,omitempty"` // server-side only
	Pairs         [][2]string   `json:"pairs,omitempty"`          // matching questions
	Difficulty    string        `json:"difficulty"`
	BloomLevel    string        `json:"bloom_level"`
	OACode        string        `json:"oa_code,omitempty"`
	Points        int           `json:"points"`
	NumericRange  *NumericRange `json:"numeric_range,omitempty"`
}

// BankRequest asks the content generator for a bank of curriculum questions.
type BankRequest struct {
	OACodes    []string `json:"oa_codes"`
	Count      int      `json:"count"`
	Difficulty string   `json:"difficulty,omitempty"`
	Subject    string   `json:"subject,omitempty"`
}

// BankResponse holds a generated bank plus cache metadata.
type BankResponse struct {
	Questions []Question `json:"questions"`
	ExpiresAt int64      `json:"expires_at"`
}
