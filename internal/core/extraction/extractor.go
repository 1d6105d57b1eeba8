package extraction

import (
	"context"
	"fmt"

	"github.com/agenthands/concord/internal/config"
	"github.com/agenthands/concord/internal/core/model"
	"github.com/agenthands/concord/internal/llm"
)

// DefaultDifferencePrompt is used when prompts.differences is not configured.
// The first %s receives the left paragraph, the second the right one.
const DefaultDifferencePrompt = `Compare the following two paragraphs of parallel documents, which may be written in different languages, and list only the factual differences between them.
Focus on numbers, dates, names, units, measurable data and misspellings of names.
Ignore translation or stylistic differences.

Report every difference as a block of exactly these lines:
Segment:<number of the difference, starting at 1>
Field:<what the value describes>
Doc1:<value in the first paragraph>
Doc2:<value in the second paragraph>
Mismatch:<kind of mismatch, e.g. amount, date, name, unit, spelling>
Confidence:<number between 0 and 1>

If there are no factual differences, return "No differences found."

First paragraph: %s
Second paragraph: %s`

const parserProvider = "extractor"

type Extractor struct {
	LLM     llm.LLMClient
	Prompts config.Prompts
	Options llm.GenerateOptions
}

func NewExtractor(llmClient llm.LLMClient, prompts config.Prompts, opts llm.GenerateOptions) *Extractor {
	if prompts.Differences == "" {
		prompts.Differences = DefaultDifferencePrompt
	}
	return &Extractor{
		LLM:     llmClient,
		Prompts: prompts,
		Options: opts,
	}
}

// Extract asks the model for the factual differences between two paragraphs.
func (e *Extractor) Extract(ctx context.Context, paragraphA, paragraphB string) (model.Extraction, error) {
	prompt := fmt.Sprintf(e.Prompts.Differences, paragraphA, paragraphB)

	response, err := e.LLM.Generate(ctx, prompt, e.Options)
	if err != nil {
		return model.Extraction{}, fmt.Errorf("failed to generate differences: %w", err)
	}

	records, fallback, err := Records(ParseResponse(response))
	if err != nil {
		return model.Extraction{}, &llm.UpstreamError{Provider: parserProvider, Err: err}
	}

	return model.Extraction{Records: records, Fallback: fallback}, nil
}
