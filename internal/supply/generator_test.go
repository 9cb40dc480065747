package supply

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizarena/internal/llm"
	"github.com/abhisek/quizarena/internal/quiz"
)

const generated = `{"questions":[
  {"kind":"multiple_choice","prompt":"Largest planet?","options":["Mars","Jupiter","Venus"],"correct_index":1,"correct_value":false,"explanation":"Jupiter is the largest."},
  {"kind":"true_false","prompt":"The Sun is a star.","options":[],"correct_index":0,"correct_value":true,"explanation":""},
  {"kind":"multiple_choice","prompt":"Broken","options":["A","B"],"correct_index":7,"correct_value":false,"explanation":""},
  {"kind":"multiple_choice","prompt":"  ","options":["A","B"],"correct_index":0,"correct_value":false,"explanation":""}
]}`

func TestGenerator(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(generated)})
	var logs bytes.Buffer
	g := &Generator{Provider: mock, Count: 4, Logger: log.New(&logs, "", 0)}

	batch, err := g.Fetch(context.Background(), "science", "planets")
	require.NoError(t, err)
	require.Len(t, batch, 2)

	mc := batch[0]
	assert.Equal(t, "gen-1", mc.ID)
	assert.Equal(t, quiz.KindMultipleChoice, mc.Kind)
	assert.Equal(t, []quiz.Option{{ID: "a", Label: "Mars"}, {ID: "b", Label: "Jupiter"}, {ID: "c", Label: "Venus"}}, mc.Options)
	assert.True(t, mc.IsCorrect(quiz.Choice("b")))
	assert.Equal(t, "science", mc.Subject)
	assert.Equal(t, "planets", mc.Topic)

	tfq := batch[1]
	assert.Equal(t, quiz.KindTrueFalse, tfq.Kind)
	assert.Empty(t, tfq.Options)
	assert.True(t, tfq.IsCorrect(quiz.Bool(true)))

	assert.Contains(t, logs.String(), "gen-3")
	assert.Contains(t, logs.String(), "gen-4")

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, BatchSchema, calls[0].Schema)
	assert.Contains(t, calls[0].Messages[0].Content, "Write 4 questions about science, focused on planets")
}

func TestGeneratorErrors(t *testing.T) {
	t.Run("provider failure", func(t *testing.T) {
		g := &Generator{Provider: llm.NewMockProvider()}
		_, err := g.Fetch(context.Background(), "science", "")
		var un *llm.ErrProviderUnavailable
		assert.ErrorAs(t, err, &un)
	})

	t.Run("nothing usable", func(t *testing.T) {
		g := &Generator{
			Provider: llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)}),
			Logger:   log.New(&bytes.Buffer{}, "", 0),
		}
		_, err := g.Fetch(context.Background(), "science", "")
		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("not json", func(t *testing.T) {
		g := &Generator{Provider: llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`nope`)})}
		_, err := g.Fetch(context.Background(), "science", "")
		assert.Error(t, err)
	})
}

func TestUserPrompt(t *testing.T) {
	assert.Equal(t, "Write 10 questions about history. Mix multiple_choice and true_false, roughly two thirds multiple_choice.",
		userPrompt("history", "", 10))
}

func TestOptionID(t *testing.T) {
	assert.Equal(t, "a", optionID(0))
	assert.Equal(t, "z", optionID(25))
	assert.Equal(t, "o26", optionID(26))
}
