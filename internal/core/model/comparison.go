package model

import "time"

// Paragraph is a normalised unit of text. Position is the ordinal carried by
// the source document, if any.
type Paragraph struct {
	Text     string `json:"text"`
	Position *int   `json:"position,omitempty"`
}

// AlignedPair matches a left and right paragraph by ordinal slot. Index is the
// slot in the truncated sequences, before numeric filtering.
type AlignedPair struct {
	Index int       `json:"index"`
	Left  Paragraph `json:"left"`
	Right Paragraph `json:"right"`
}

// Kinds of per-pair failures reported inline in a ComparisonResult.
const (
	ErrorKindUpstream = "upstream"
	ErrorKindTimeout  = "timeout"
)

type PairError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ComparisonResult is emitted once per aligned pair. DetailedDifferences is
// nil (JSON null) when the pair met the similarity threshold and a non-nil,
// possibly empty, slice otherwise.
type ComparisonResult struct {
	Index               int                `json:"index"`
	Para1               string             `json:"para1"`
	Para2               string             `json:"para2"`
	Similarity          float64            `json:"similarity"`
	DetailedDifferences []DifferenceRecord `json:"detailed_differences"`
	Error               *PairError         `json:"error,omitempty"`
	ParseFallback       bool               `json:"parse_fallback,omitempty"`
}

// Escalated reports whether the pair went to the extractor.
func (r ComparisonResult) Escalated() bool {
	return r.DetailedDifferences != nil
}

type Summary struct {
	TotalSegments     int     `json:"total_segments"`
	TotalMismatches   int     `json:"total_mismatches"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Comparison is the envelope returned to callers and kept by result stores.
type Comparison struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Threshold float64            `json:"threshold"`
	Results   []ComparisonResult `json:"results"`
	Summary   Summary            `json:"summary"`
}
