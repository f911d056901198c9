package content

import (
	"github.com/classquest/edugame-platform/internal/catalog"
)

// EngineContent is one playable item in the shape a specific engine expects.
// Exactly one payload field is set, matching EngineID.
type EngineContent struct {
	EngineID   catalog.EngineID `json:"engine_id"`
	QuestionID string           `json:"question_id"`
	Order      int              `json:"order"`
	Stem       string           `json:"stem"`
	Points     int              `json:"points"`

	Counting *CountingContent `json:"counting,omitempty"`
	DragDrop *DragDropContent `json:"drag_drop,omitempty"`
	Choice   *ChoiceContent   `json:"choice,omitempty"`
	Pairs    *PairContent     `json:"pairs,omitempty"`
	Passage  *PassageContent  `json:"passage,omitempty"`
	Sequence *SequenceContent `json:"sequence,omitempty"`
}

// CountingContent parameterizes the counter/number-line engine (ENG01).
type CountingContent struct {
	Target   int      `json:"target"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
	ItemNoun string   `json:"item_noun"`
	IconKey  string   `json:"icon_key"`
	Options  []string `json:"options"`
}

// DragDropContent parameterizes the drag-drop numbers engine (ENG02).
type DragDropContent struct {
	Tokens       []string `json:"tokens"`
	CorrectOrder []string `json:"correct_order"`
}

// ChoiceContent parameterizes the text-recognition engine (ENG05).
type ChoiceContent struct {
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// PairContent parameterizes the letter-sound matching engine (ENG06). Each
// pair is a card front/back; the board shuffles client-side.
type PairContent struct {
	Pairs [][2]string `json:"pairs"`
}

// PassageContent parameterizes the reading-fluency engine (ENG07).
type PassageContent struct {
	Text           string `json:"text"`
	ExpectedAnswer string `json:"expected_answer"`
}

// SequenceContent parameterizes the life-cycle sequencing engine (ENG09).
// Stages are stored in correct order; the client presents them shuffled.
type SequenceContent struct {
	Stages []string `json:"stages"`
}
