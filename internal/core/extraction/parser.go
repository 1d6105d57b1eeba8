package extraction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agenthands/concord/internal/core/model"
)

// ErrMalformedResponse is wrapped into the error returned when a completion
// contains a record block that cannot be read.
var ErrMalformedResponse = errors.New("malformed model response")

type BlockKind int

const (
	// FullRecord carries all six grammar lines.
	FullRecord BlockKind = iota
	// DegradedRecord lacks Doc1 and/or Doc2; those values are empty.
	DegradedRecord
	// Unparsed is a block starting with a Segment line that is missing a
	// required line.
	Unparsed
)

func (k BlockKind) String() string {
	switch k {
	case FullRecord:
		return "full"
	case DegradedRecord:
		return "degraded"
	default:
		return "unparsed"
	}
}

type Block struct {
	Kind   BlockKind
	Record model.DifferenceRecord
	// Missing lists required keys absent from an Unparsed block.
	Missing []string
	Raw     string
}

const (
	keySegment    = "segment"
	keyField      = "field"
	keyDoc1       = "doc1"
	keyDoc2       = "doc2"
	keyMismatch   = "mismatch"
	keyConfidence = "confidence"
)

var requiredKeys = []string{keySegment, keyField, keyMismatch, keyConfidence}

// ParseResponse splits a completion into record blocks. A block opens at a
// "Segment:" line and runs until the next one. Text before the first block,
// such as "No differences found.", is ignored, so a response without any
// Segment line yields no blocks.
func ParseResponse(text string) []Block {
	var (
		blocks []Block
		fields map[string]string
		raw    []string
	)
	flush := func() {
		if fields != nil {
			blocks = append(blocks, buildBlock(fields, strings.Join(raw, "\n")))
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		key, value, ok := splitLine(line)
		if ok && key == keySegment {
			flush()
			fields = map[string]string{}
			raw = nil
		}
		if fields == nil {
			continue
		}
		raw = append(raw, line)
		if !ok {
			continue
		}
		if _, dup := fields[key]; !dup {
			fields[key] = value
		}
	}
	flush()
	return blocks
}

func buildBlock(fields map[string]string, raw string) Block {
	b := Block{Raw: raw}
	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			b.Missing = append(b.Missing, k)
		}
	}
	if len(b.Missing) > 0 {
		b.Kind = Unparsed
		return b
	}

	b.Record = model.DifferenceRecord{
		Segment:      fields[keySegment],
		Field:        fields[keyField],
		Doc1Value:    fields[keyDoc1],
		Doc2Value:    fields[keyDoc2],
		MismatchType: fields[keyMismatch],
		Confidence:   parseConfidence(fields[keyConfidence]),
	}
	_, has1 := fields[keyDoc1]
	_, has2 := fields[keyDoc2]
	if has1 && has2 {
		b.Kind = FullRecord
	} else {
		b.Kind = DegradedRecord
	}
	return b
}

// splitLine reads "Key: value", tolerating list bullets and markdown bold
// around the key. Keys are returned lower-cased.
func splitLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-* ")
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.Trim(line[:idx], "* "))
	value := strings.TrimSpace(strings.Trim(line[idx+1:], "*"))
	switch key {
	case keySegment, keyField, keyDoc1, keyDoc2, keyMismatch, keyConfidence:
		return key, value, true
	}
	return "", "", false
}

func parseConfidence(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Records converts parsed blocks into difference records. It fails on the
// first Unparsed block and reports whether any degraded block was used.
func Records(blocks []Block) ([]model.DifferenceRecord, bool, error) {
	records := make([]model.DifferenceRecord, 0, len(blocks))
	fallback := false
	for i, b := range blocks {
		switch b.Kind {
		case Unparsed:
			return nil, false, fmt.Errorf("%w: block %d missing %s", ErrMalformedResponse, i+1, strings.Join(b.Missing, ", "))
		case DegradedRecord:
			fallback = true
		}
		records = append(records, b.Record)
	}
	return records, fallback, nil
}
