package supply

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/abhisek/quizarena/internal/llm"
	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/session"
)

// PurposeQuizBatch labels generation requests in the llm event log.
const PurposeQuizBatch = "quiz-batch"

// BatchSchema is the structured output requested from the model. Every
// property is required so the schema also satisfies OpenAI strict mode;
// fields that do not apply to a kind are sent empty.
var BatchSchema = &llm.Schema{
	Name:        "quiz-batch",
	Description: "A batch of quiz questions on one subject",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"kind", "prompt", "options", "correct_index", "correct_value", "explanation"},
					"properties": map[string]any{
						"kind": map[string]any{
							"type": "string",
							"enum": []string{string(quiz.KindMultipleChoice), string(quiz.KindTrueFalse)},
						},
						"prompt": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":        "array",
							"description": "Answer labels for multiple_choice; empty for true_false",
							"items":       map[string]any{"type": "string"},
						},
						"correct_index": map[string]any{
							"type":        "integer",
							"description": "Zero-based index into options; ignored for true_false",
						},
						"correct_value": map[string]any{
							"type":        "boolean",
							"description": "The answer for true_false; ignored for multiple_choice",
						},
						"explanation": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

type generatedBatch struct {
	Questions []struct {
		Kind         string   `json:"kind"`
		Prompt       string   `json:"prompt"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correct_index"`
		CorrectValue bool     `json:"correct_value"`
		Explanation  string   `json:"explanation"`
	} `json:"questions"`
}

// Generator asks a language model for a fresh batch. Items that fail
// quiz validation are dropped and logged.
type Generator struct {
	Provider  llm.Provider
	Count     int // questions requested, default 10
	MaxTokens int // default 4096
	Logger    *log.Logger
}

var _ session.Supply = (*Generator)(nil)

func (g *Generator) Fetch(ctx context.Context, subject, topic string) ([]quiz.Question, error) {
	count := g.Count
	if count <= 0 {
		count = 10
	}
	maxTokens := g.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	resp, err := g.Provider.Generate(llm.WithPurpose(ctx, PurposeQuizBatch), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userPrompt(subject, topic, count)}},
		Schema:      BatchSchema,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s batch: %w", subject, err)
	}

	var out generatedBatch
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("decode generated batch: %w", err)
	}

	batch := make([]quiz.Question, 0, len(out.Questions))
	for i, item := range out.Questions {
		q := quiz.Question{
			ID:          fmt.Sprintf("gen-%d", i+1),
			Kind:        quiz.Kind(item.Kind),
			Prompt:      strings.TrimSpace(item.Prompt),
			Explanation: item.Explanation,
			Subject:     subject,
			Topic:       topic,
		}
		switch q.Kind {
		case quiz.KindMultipleChoice:
			for j, label := range item.Options {
				q.Options = append(q.Options, quiz.Option{ID: optionID(j), Label: label})
			}
			if item.CorrectIndex >= 0 && item.CorrectIndex < len(item.Options) {
				q.CorrectOptionID = optionID(item.CorrectIndex)
			}
		case quiz.KindTrueFalse:
			q.CorrectValue = item.CorrectValue
		}
		batch = append(batch, q)
	}

	valid, dropped := quiz.Sanitize(batch)
	for _, err := range dropped {
		g.logger().Printf("supply: dropping generated question: %v", err)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: model returned no usable questions for %s/%s", ErrNoQuestions, subject, topic)
	}
	return valid, nil
}

func (g *Generator) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}

// optionID maps 0, 1, 2... to "a", "b", "c"...
func optionID(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return fmt.Sprintf("o%d", i)
}

const systemPrompt = `You write short quiz questions for a timed game.
Each question must have exactly one correct answer.
Multiple-choice questions have 3 to 5 options and no "all of the above".
True/false statements must be unambiguous.
Keep prompts under 200 characters.`

func userPrompt(subject, topic string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d questions about %s", count, subject)
	if topic != "" {
		fmt.Fprintf(&b, ", focused on %s", topic)
	}
	b.WriteString(". Mix multiple_choice and true_false, roughly two thirds multiple_choice.")
	return b.String()
}
