// Package gate decides which aligned pairs are sent to the difference
// extractor.
package gate

type Decision int

const (
	Skip Decision = iota
	Escalate
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case Escalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// Decide escalates a pair whose similarity is strictly below threshold.
func Decide(similarity, threshold float64) Decision {
	if similarity < threshold {
		return Escalate
	}
	return Skip
}
