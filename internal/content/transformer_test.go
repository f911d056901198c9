package content

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classquest/edugame-platform/internal/catalog"
	"github.com/classquest/edugame-platform/internal/question"
)

func countingQuestion(id string, answer int) question.Question {
	return question.Question{
		ID:            id,
		Stem:          "How many {item} are in the {place}?",
		Type:          question.TypeNumeric,
		CorrectAnswer: fmt.Sprint(answer),
		Difficulty:    question.DifficultyEasy,
		BloomLevel:    question.BloomRemember,
		Points:        10,
		NumericRange:  &question.NumericRange{Min: 1, Max: 10},
	}
}

func TestTransformCountingAppliesSkinAndRange(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	res, err := tr.Transform(
		[]question.Question{countingQuestion("q1", 4)},
		catalog.EngineCounter, catalog.SkinFarm, Options{},
	)
	require.NoError(t, err)
	require.Empty(t, res.Failures)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.Equal(t, "How many chicks are in the barnyard?", item.Stem)
	require.NotNil(t, item.Counting)
	assert.Equal(t, 4, item.Counting.Target)
	assert.Equal(t, 1, item.Counting.Min)
	assert.Equal(t, 10, item.Counting.Max)
	assert.Equal(t, "chicks", item.Counting.ItemNoun)
	assert.Contains(t, item.Counting.Options, "4")
}

func TestTransformPreservesOrderAndCardinality(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	qs := make([]question.Question, 5)
	for i := range qs {
		qs[i] = countingQuestion(fmt.Sprintf("q%d", i), i+1)
	}

	res, err := tr.Transform(qs, catalog.EngineCounter, catalog.SkinSpace, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Failures)
	require.Len(t, res.Items, len(qs))
	for i, item := range res.Items {
		assert.Equal(t, qs[i].ID, item.QuestionID)
		assert.Equal(t, i+1, item.Order)
	}
}

func TestTransformUnmappedPlaceholderFails(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	q := countingQuestion("q1", 3)
	q.Stem = "Count the {dinosaur}"

	res, err := tr.Transform([]question.Question{q}, catalog.EngineCounter, catalog.SkinFarm, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "q1", res.Failures[0].QuestionID)
	assert.Contains(t, res.Failures[0].Reason, "dinosaur")
}

func TestTransformUnmappedTypeIsPerQuestionDiagnostic(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	matching := question.Question{
		ID:    "q-match",
		Stem:  "Match the sounds",
		Type:  question.TypeMatching,
		Pairs: [][2]string{{"m", "moo"}},
	}
	counting := countingQuestion("q-count", 2)

	// Counting engine has no rule for matching questions; the numeric one
	// still transforms.
	res, err := tr.Transform([]question.Question{matching, counting}, catalog.EngineCounter, catalog.SkinFarm, Options{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "q-count", res.Items[0].QuestionID)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "q-match", res.Failures[0].QuestionID)
}

func TestTransformLetterSoundPairs(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	q := question.Question{
		ID:    "q1",
		Stem:  "Match each animal of the {group} to its sound",
		Type:  question.TypeMatching,
		Pairs: [][2]string{{"cow", "moo"}, {"sheep", "baa"}},
	}

	res, err := tr.Transform([]question.Question{q}, catalog.EngineLetterSound, catalog.SkinFarm, Options{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.NotNil(t, res.Items[0].Pairs)
	assert.Equal(t, [][2]string{{"cow", "moo"}, {"sheep", "baa"}}, res.Items[0].Pairs.Pairs)
	assert.Equal(t, "Match each animal of the herd to its sound", res.Items[0].Stem)
}

func TestTransformDragDropOrdersNumerically(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	q := question.Question{
		ID:      "q1",
		Stem:    "Order the numbers",
		Type:    question.TypeMultipleChoice,
		Options: []string{"30", "4", "12"},
	}

	res, err := tr.Transform([]question.Question{q}, catalog.EngineDragDrop, catalog.SkinSpace, Options{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.NotNil(t, res.Items[0].DragDrop)
	assert.Equal(t, []string{"4", "12", "30"}, res.Items[0].DragDrop.CorrectOrder)
	assert.Equal(t, []string{"30", "4", "12"}, res.Items[0].DragDrop.Tokens)
}

func TestTransformRejectsTargetOutsideRange(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	q := countingQuestion("q1", 15) // range is [1,10]

	res, err := tr.Transform([]question.Question{q}, catalog.EngineCounter, catalog.SkinFarm, Options{})
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Reason, "outside declared range")
}

func TestTransformUnknownEngineOrSkin(t *testing.T) {
	tr := NewTransformer(catalog.Default())

	_, err := tr.Transform(nil, "ENG99", catalog.SkinFarm, Options{})
	assert.Error(t, err)

	_, err = tr.Transform(nil, catalog.EngineCounter, "lava", Options{})
	assert.Error(t, err)
}
