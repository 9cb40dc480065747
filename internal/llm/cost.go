package llm

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// LookupCost returns list pricing for the models quiz generation is
// normally pointed at. Unknown models report ok=false.
func LookupCost(model string) (ModelCost, bool) {
	c, ok := modelCosts[model]
	return c, ok
}

var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":          {1, 5},
	"claude-haiku-4-5-20251001": {1, 5},
	"claude-sonnet-4-5":         {3, 15},
	"gpt-4o-mini":               {0.15, 0.6},
	"gpt-4o":                    {2.5, 10},
	"gpt-4.1-mini":              {0.4, 1.6},
	"gpt-5-mini":                {0.25, 2},
	"gemini-2.5-flash":          {0.3, 2.5},
	"gemini-2.5-flash-lite":     {0.1, 0.4},
	"gemini-2.5-pro":            {1.25, 10},
	"google/gemini-2.5-flash":   {0.3, 2.5},
}
