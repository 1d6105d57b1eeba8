package model

// DifferenceRecord is one factual mismatch reported by the generative model
// for a paragraph pair.
type DifferenceRecord struct {
	Segment      string  `json:"segment"`
	Field        string  `json:"field"`
	Doc1Value    string  `json:"doc1_value"`
	Doc2Value    string  `json:"doc2_value"`
	MismatchType string  `json:"mismatch_type"`
	Confidence   float64 `json:"confidence"`
}

// MismatchMatch is the mismatch type a model uses for fields that agree.
const MismatchMatch = "match"

// Extraction is the parsed outcome of one extractor call.
type Extraction struct {
	Records []DifferenceRecord
	// Fallback is set when at least one block used the degraded grammar
	// without per-document values.
	Fallback bool
}
