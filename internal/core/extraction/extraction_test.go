package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/agenthands/concord/internal/config"
	"github.com/agenthands/concord/internal/core/model"
	"github.com/agenthands/concord/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SingleRecord(t *testing.T) {
	mockLLM := &MockLLMClient{
		Response: "Segment:1\nField:Total\nDoc1:100 EUR\nDoc2:120 EUR\nMismatch:amount\nConfidence:0.92\n",
	}
	extractor := NewExtractor(mockLLM, config.Prompts{}, llm.GenerateOptions{MaxTokens: 100, Temperature: 0.2})

	got, err := extractor.Extract(context.Background(), "Total: 100 EUR", "Total: 120 EUR")

	require.NoError(t, err)
	assert.False(t, got.Fallback)
	assert.Equal(t, []model.DifferenceRecord{{
		Segment:      "1",
		Field:        "Total",
		Doc1Value:    "100 EUR",
		Doc2Value:    "120 EUR",
		MismatchType: "amount",
		Confidence:   0.92,
	}}, got.Records)

	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "Total: 100 EUR")
	assert.Contains(t, mockLLM.Prompts[0], "Total: 120 EUR")
	assert.Equal(t, llm.GenerateOptions{MaxTokens: 100, Temperature: 0.2}, mockLLM.Options[0])
}

func TestExtract_CustomPrompt(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "No differences found."}
	extractor := NewExtractor(mockLLM, config.Prompts{Differences: "A=%s B=%s"}, llm.GenerateOptions{})

	got, err := extractor.Extract(context.Background(), "x", "y")

	require.NoError(t, err)
	assert.Equal(t, "A=x B=y", mockLLM.Prompts[0])
	assert.NotNil(t, got.Records)
	assert.Empty(t, got.Records)
}

func TestExtract_RoundTripN(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Here are the differences:\n\n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&sb, "Segment:%d\nField:f%d\nDoc1:a%d\nDoc2:b%d\nMismatch:number\nConfidence:0.%d\n\n", i, i, i, i, i)
	}
	extractor := NewExtractor(&MockLLMClient{Response: sb.String()}, config.Prompts{}, llm.GenerateOptions{})

	got, err := extractor.Extract(context.Background(), "a", "b")

	require.NoError(t, err)
	require.Len(t, got.Records, 5)
	for i, r := range got.Records {
		n := i + 1
		assert.Equal(t, fmt.Sprint(n), r.Segment)
		assert.Equal(t, fmt.Sprintf("f%d", n), r.Field)
		assert.Equal(t, fmt.Sprintf("a%d", n), r.Doc1Value)
		assert.Equal(t, fmt.Sprintf("b%d", n), r.Doc2Value)
		assert.InDelta(t, float64(n)/10, r.Confidence, 1e-9)
	}
}

func TestExtract_DegradedGrammar(t *testing.T) {
	response := "Segment: 1\nField: Date\nMismatch: date\nConfidence: 0.8\n"
	extractor := NewExtractor(&MockLLMClient{Response: response}, config.Prompts{}, llm.GenerateOptions{})

	got, err := extractor.Extract(context.Background(), "1 May 2024", "2 Mai 2024")

	require.NoError(t, err)
	assert.True(t, got.Fallback)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "", got.Records[0].Doc1Value)
	assert.Equal(t, "", got.Records[0].Doc2Value)
	assert.Equal(t, "date", got.Records[0].MismatchType)
	assert.Equal(t, 0.8, got.Records[0].Confidence)
}

func TestExtract_BadConfidence(t *testing.T) {
	response := "Segment:1\nField:Total\nDoc1:1\nDoc2:2\nMismatch:amount\nConfidence:high\n\n" +
		"Segment:2\nField:Rate\nDoc1:3%\nDoc2:4%\nMismatch:rate\nConfidence:\n"
	extractor := NewExtractor(&MockLLMClient{Response: response}, config.Prompts{}, llm.GenerateOptions{})

	got, err := extractor.Extract(context.Background(), "a", "b")

	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	assert.Equal(t, 0.0, got.Records[0].Confidence)
	assert.Equal(t, 0.0, got.Records[1].Confidence)
}

func TestExtract_UpstreamError(t *testing.T) {
	upstreamErr := &llm.UpstreamError{Provider: "openai", StatusCode: 503, Err: errors.New("unavailable")}
	extractor := NewExtractor(&MockLLMClient{Err: upstreamErr}, config.Prompts{}, llm.GenerateOptions{})

	_, err := extractor.Extract(context.Background(), "a", "b")

	var ue *llm.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 503, ue.StatusCode)
}

func TestExtract_MalformedBlock(t *testing.T) {
	response := "Segment:1\nField:Total\nDoc1:100\nDoc2:120\nMismatch:amount\nConfidence:0.9\n\nSegment:2\nDoc1:x\n"
	extractor := NewExtractor(&MockLLMClient{Response: response}, config.Prompts{}, llm.GenerateOptions{})

	got, err := extractor.Extract(context.Background(), "a", "b")

	require.Error(t, err)
	assert.True(t, llm.IsUpstream(err))
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Nil(t, got.Records)
}

func TestParseResponse_Kinds(t *testing.T) {
	response := strings.Join([]string{
		"- **Segment:** 1",
		"- **Field:** Name",
		"- **Doc1:** Müller",
		"- **Doc2:** Mueller",
		"- **Mismatch:** spelling",
		"- **Confidence:** 0.7",
		"",
		"SEGMENT: 2",
		"field: Amount",
		"doc2: 5",
		"mismatch: amount",
		"confidence: 0.5",
		"",
		"Segment: 3",
		"Field: Something",
	}, "\n")

	blocks := ParseResponse(response)

	require.Len(t, blocks, 3)
	assert.Equal(t, FullRecord, blocks[0].Kind)
	assert.Equal(t, "Müller", blocks[0].Record.Doc1Value)
	assert.Equal(t, "Mueller", blocks[0].Record.Doc2Value)

	assert.Equal(t, DegradedRecord, blocks[1].Kind)
	assert.Equal(t, "", blocks[1].Record.Doc1Value)
	assert.Equal(t, "5", blocks[1].Record.Doc2Value)

	assert.Equal(t, Unparsed, blocks[2].Kind)
	assert.Equal(t, []string{"mismatch", "confidence"}, blocks[2].Missing)
}

func TestParseResponse_NoBlocks(t *testing.T) {
	assert.Empty(t, ParseResponse("No differences found."))
	assert.Empty(t, ParseResponse(""))
}

func TestParseResponse_ValueWithColon(t *testing.T) {
	blocks := ParseResponse("Segment:1\nField:Time\nDoc1:10:30\nDoc2:11:30\nMismatch:time\nConfidence:1\n")

	require.Len(t, blocks, 1)
	assert.Equal(t, "10:30", blocks[0].Record.Doc1Value)
	assert.Equal(t, "11:30", blocks[0].Record.Doc2Value)
}
