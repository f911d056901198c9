package content

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/question"
)

// TransformationError reports a question the transformer could not map onto
// the requested engine's content shape.
type TransformationError struct {
	QuestionID string
	Reason     string
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

// Result carries the transformed deck plus per-question failures. Failures
// are diagnostics, not a total request failure: whether a partial deck is
// playable is the caller's policy.
type Result struct {
	Items    []EngineContent
	Failures []*TransformationError
}

// Transformer converts a generic question bank into engine-specific content,
// re-skinned for the chosen theme.
type Transformer struct {
	catalog *catalog.Catalog
}

func NewTransformer(cat *catalog.Catalog) *Transformer {
	return &Transformer{catalog: cat}
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Options pass side inputs that are not part of the question bank.
type Options struct {
	// LegacyTitle feeds the numeric-range fallback for decks authored
	// before Question.NumericRange existed.
	LegacyTitle string
}

// Transform maps each question onto engineID's content shape and applies
// skinID's vocabulary. Ordering is preserved and every input question lands
// either in Items or in Failures; when Failures is empty,
// len(Items) == len(input).
func (t *Transformer) Transform(questions []question.Question, engineID catalog.EngineID, skinID catalog.SkinID, opts Options) (Result, error) {
	engine, ok := t.catalog.Engine(engineID)
	if !ok {
		return Result{}, &catalog.UnknownIDError{Kind: "engine", ID: string(engineID)}
	}
	skin, ok := t.catalog.Skin(skinID)
	if !ok {
		return Result{}, &catalog.UnknownIDError{Kind: "skin", ID: string(skinID)}
	}

	var res Result
	for i, q := range questions {
		item, err := t.transformOne(q, engine, skin, opts, i+1)
		if err != nil {
			res.Failures = append(res.Failures, err)
			continue
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func (t *Transformer) transformOne(q question.Question, engine catalog.Engine, skin catalog.SkinTheme, opts Options, order int) (EngineContent, *TransformationError) {
	stem, err := applyVocabulary(q.ID, q.Stem, skin)
	if err != nil {
		return EngineContent{}, err
	}

	item := EngineContent{
		EngineID:   engine.ID,
		QuestionID: q.ID,
		Order:      order,
		Stem:       stem,
		Points:     q.Points,
	}

	// Closed dispatch: every engine in the catalog has a case here, and an
	// unmapped question type is an explicit per-question error.
	switch engine.ID {
	case catalog.EngineCounter:
		counting, cerr := buildCounting(q, skin, opts.LegacyTitle)
		if cerr != nil {
			return EngineContent{}, cerr
		}
		item.Counting = counting

	case catalog.EngineDragDrop:
		dd, derr := buildDragDrop(q)
		if derr != nil {
			return EngineContent{}, derr
		}
		item.DragDrop = dd

	case catalog.EngineTextRecog:
		if q.Type != question.TypeMultipleChoice && q.Type != question.TypeShortAnswer {
			return EngineContent{}, unmapped(q, engine.ID)
		}
		options, oerr := applyVocabularyAll(q.ID, q.Options, skin)
		if oerr != nil {
			return EngineContent{}, oerr
		}
		answer, aerr := applyVocabulary(q.ID, q.CorrectAnswer, skin)
		if aerr != nil {
			return EngineContent{}, aerr
		}
		item.Choice = &ChoiceContent{Options: options, CorrectAnswer: answer}

	case catalog.EngineLetterSound:
		if q.Type != question.TypeMatching || len(q.Pairs) == 0 {
			return EngineContent{}, unmapped(q, engine.ID)
		}
		pairs := make([][2]string, len(q.Pairs))
		for i, p := range q.Pairs {
			left, lerr := applyVocabulary(q.ID, p[0], skin)
			if lerr != nil {
				return EngineContent{}, lerr
			}
			right, rerr := applyVocabulary(q.ID, p[1], skin)
			if rerr != nil {
				return EngineContent{}, rerr
			}
			pairs[i] = [2]string{left, right}
		}
		item.Pairs = &PairContent{Pairs: pairs}

	case catalog.EngineReadingFluen:
		if q.Type != question.TypeShortAnswer && q.Type != question.TypeMultipleChoice {
			return EngineContent{}, unmapped(q, engine.ID)
		}
		answer, aerr := applyVocabulary(q.ID, q.CorrectAnswer, skin)
		if aerr != nil {
			return EngineContent{}, aerr
		}
		item.Passage = &PassageContent{Text: stem, ExpectedAnswer: answer}

	case catalog.EngineLifeCycle:
		stages, serr := buildStages(q, skin)
		if serr != nil {
			return EngineContent{}, serr
		}
		item.Sequence = &SequenceContent{Stages: stages}

	default:
		// Unreachable for catalog engines; a new engine id must be added
		// both to the catalog and to this switch.
		return EngineContent{}, &TransformationError{
			QuestionID: q.ID,
			Reason:     fmt.Sprintf("engine %s has no transform rule", engine.ID),
		}
	}

	return item, nil
}

func buildCounting(q question.Question, skin catalog.SkinTheme, legacyTitle string) (*CountingContent, *TransformationError) {
	if q.Type != question.TypeNumeric && q.Type != question.TypeMultipleChoice {
		return nil, unmapped(q, catalog.EngineCounter)
	}
	target, err := strconv.Atoi(q.CorrectAnswer)
	if err != nil {
		return nil, &TransformationError{QuestionID: q.ID, Reason: "correct answer is not numeric"}
	}

	r := rangeFor(q, legacyTitle, target)
	if target < r.Min || target > r.Max {
		return nil, &TransformationError{
			QuestionID: q.ID,
			Reason:     fmt.Sprintf("target %d outside declared range [%d,%d]", target, r.Min, r.Max),
		}
	}

	options := q.Options
	if len(options) == 0 {
		// Numeric questions without authored distractors get neighbors.
		options = neighborOptions(target, r)
	}

	return &CountingContent{
		Target:   target,
		Min:      r.Min,
		Max:      r.Max,
		ItemNoun: skin.Vocabulary["item"],
		IconKey:  skin.IconSet["item"],
		Options:  options,
	}, nil
}

func buildDragDrop(q question.Question) (*DragDropContent, *TransformationError) {
	if q.Type != question.TypeNumeric && q.Type != question.TypeMultipleChoice {
		return nil, unmapped(q, catalog.EngineDragDrop)
	}
	if len(q.Options) < 2 {
		return nil, &TransformationError{QuestionID: q.ID, Reason: "drag-drop needs at least two tokens"}
	}

	ordered := append([]string(nil), q.Options...)
	sort.Slice(ordered, func(i, j int) bool {
		a, errA := strconv.Atoi(ordered[i])
		b, errB := strconv.Atoi(ordered[j])
		if errA != nil || errB != nil {
			return ordered[i] < ordered[j]
		}
		return a < b
	})

	return &DragDropContent{
		Tokens:       q.Options,
		CorrectOrder: ordered,
	}, nil
}

func buildStages(q question.Question, skin catalog.SkinTheme) ([]string, *TransformationError) {
	var raw []string
	switch {
	case q.Type == question.TypeMatching && len(q.Pairs) > 0:
		// Pair right-hand sides carry the stage order.
		for _, p := range q.Pairs {
			raw = append(raw, p[1])
		}
	case q.Type == question.TypeMultipleChoice && len(q.Options) >= 2:
		raw = q.Options
	default:
		return nil, unmapped(q, catalog.EngineLifeCycle)
	}

	stages := make([]string, len(raw))
	for i, s := range raw {
		skinned, err := applyVocabulary(q.ID, s, skin)
		if err != nil {
			return nil, err
		}
		stages[i] = skinned
	}
	return stages, nil
}

func neighborOptions(target int, r question.NumericRange) []string {
	low := target - 1
	if low < r.Min {
		low = target + 3
	}
	return []string{
		strconv.Itoa(low),
		strconv.Itoa(target),
		strconv.Itoa(target + 1),
		strconv.Itoa(target + 2),
	}
}

// applyVocabulary substitutes every {placeholder} token with the skin's
// vocabulary. Substitution is total: an unmapped placeholder is an error,
// never a silent pass-through.
func applyVocabulary(questionID, text string, skin catalog.SkinTheme) (string, *TransformationError) {
	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := placeholderPattern.FindStringSubmatch(token)[1]
		if word, ok := skin.Vocabulary[key]; ok {
			return word
		}
		if missing == "" {
			missing = key
		}
		return token
	})
	if missing != "" {
		return "", &TransformationError{
			QuestionID: questionID,
			Reason:     fmt.Sprintf("skin %s has no vocabulary for placeholder %q", skin.ID, missing),
		}
	}
	return out, nil
}

func applyVocabularyAll(questionID string, texts []string, skin catalog.SkinTheme) ([]string, *TransformationError) {
	out := make([]string, len(texts))
	for i, s := range texts {
		skinned, err := applyVocabulary(questionID, s, skin)
		if err != nil {
			return nil, err
		}
		out[i] = skinned
	}
	return out, nil
}

func unmapped(q question.Question, engineID catalog.EngineID) *TransformationError {
	return &TransformationError{
		QuestionID: q.ID,
		Reason:     fmt.Sprintf("question type %q has no mapping rule for engine %s", q.Type, engineID),
	}
}
