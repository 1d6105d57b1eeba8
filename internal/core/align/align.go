// Package align turns two paragraph-bearing documents into ordinal-aligned
// paragraph pairs.
//
// A document is either JSON (one record or an array of records, each holding
// its paragraphs under a configurable field) or a plain-text blob, bare JSON
// scalars included, whose
// paragraphs are separated by blank lines. Both sides are truncated to the
// shorter length; no content-based realignment is attempted, so drift past
// the shorter side is discarded. Slots where neither paragraph contains a
// digit are dropped because only factual, mostly numeric, mismatches are of
// interest.
package align

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/agenthands/concord/internal/core/model"
	"github.com/tidwall/gjson"
)

const (
	DefaultTextField     = "para"
	DefaultPositionField = "para_number"
)

type Options struct {
	TextField     string
	PositionField string
}

func DefaultOptions() Options {
	return Options{TextField: DefaultTextField, PositionField: DefaultPositionField}
}

func (o Options) withDefaults() Options {
	if o.TextField == "" {
		o.TextField = DefaultTextField
	}
	if o.PositionField == "" {
		o.PositionField = DefaultPositionField
	}
	return o
}

// ShapeError reports a document without a recognisable paragraph structure.
type ShapeError struct {
	Side   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s document: %s", e.Side, e.Reason)
}

// Align returns the kept left and right paragraph sequences. They always have
// equal length. On a ShapeError both sequences are empty.
func Align(left, right []byte, opts Options) ([]model.Paragraph, []model.Paragraph, error) {
	pairs, err := Pairs(left, right, opts)
	if err != nil {
		return []model.Paragraph{}, []model.Paragraph{}, err
	}
	l := make([]model.Paragraph, len(pairs))
	r := make([]model.Paragraph, len(pairs))
	for i, p := range pairs {
		l[i] = p.Left
		r[i] = p.Right
	}
	return l, r, nil
}

// Pairs is Align keeping the original slot index of every kept pair.
func Pairs(left, right []byte, opts Options) ([]model.AlignedPair, error) {
	opts = opts.withDefaults()

	lp, err := Flatten(left, opts)
	if err != nil {
		return nil, sideError("left", err)
	}
	rp, err := Flatten(right, opts)
	if err != nil {
		return nil, sideError("right", err)
	}

	n := min(len(lp), len(rp))
	pairs := make([]model.AlignedPair, 0, n)
	for i := 0; i < n; i++ {
		l := clean(lp[i])
		r := clean(rp[i])
		if !hasDigit(l.Text) && !hasDigit(r.Text) {
			continue
		}
		pairs = append(pairs, model.AlignedPair{Index: i, Left: l, Right: r})
	}
	return pairs, nil
}

// Flatten extracts the ordered paragraph rows of a single document without
// cleaning or filtering them.
func Flatten(doc []byte, opts Options) ([]model.Paragraph, error) {
	opts = opts.withDefaults()

	// Only an object or array is a JSON document. Bare scalars such as
	// "2024" are one-paragraph texts.
	if !gjson.ValidBytes(doc) {
		return splitText(string(doc)), nil
	}
	root := gjson.ParseBytes(doc)
	var records []gjson.Result
	switch {
	case root.IsArray():
		records = root.Array()
	case root.IsObject():
		records = []gjson.Result{root}
	default:
		return splitText(string(doc)), nil
	}

	textKey := gjson.Escape(opts.TextField)
	posKey := gjson.Escape(opts.PositionField)

	var (
		out       []model.Paragraph
		fieldSeen bool
	)
	for i, rec := range records {
		if !rec.IsObject() {
			return nil, &ShapeError{Reason: fmt.Sprintf("record %d is not an object", i)}
		}
		v := rec.Get(textKey)
		if !v.Exists() {
			continue
		}
		fieldSeen = true

		switch {
		case v.IsArray():
			for _, item := range v.Array() {
				if p, ok := paragraphOf(item, textKey, posKey); ok {
					out = append(out, p)
				}
			}
		case v.IsObject():
			if p, ok := paragraphOf(v, textKey, posKey); ok {
				out = append(out, p)
			}
		case v.Type == gjson.Null:
		default:
			// The record is itself a paragraph.
			out = append(out, model.Paragraph{Text: v.String(), Position: position(rec.Get(posKey))})
		}
	}

	if len(records) > 0 && !fieldSeen {
		return nil, &ShapeError{Reason: fmt.Sprintf("no record has a %q field", opts.TextField)}
	}
	return out, nil
}

func paragraphOf(item gjson.Result, textKey, posKey string) (model.Paragraph, bool) {
	switch {
	case item.IsObject():
		t := item.Get(textKey)
		if !t.Exists() || t.Type == gjson.Null || t.IsObject() || t.IsArray() {
			return model.Paragraph{}, false
		}
		return model.Paragraph{Text: t.String(), Position: position(item.Get(posKey))}, true
	case item.Type == gjson.String, item.Type == gjson.Number:
		return model.Paragraph{Text: item.String()}, true
	default:
		return model.Paragraph{}, false
	}
}

func position(v gjson.Result) *int {
	switch v.Type {
	case gjson.Number:
		n := int(v.Int())
		return &n
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

func splitText(s string) []model.Paragraph {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []model.Paragraph
	for _, block := range blankLine.Split(s, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		n := len(out) + 1
		out = append(out, model.Paragraph{Text: block, Position: &n})
	}
	return out
}

var controlStripper = strings.NewReplacer("\r", "", "\n", "", "\t", "")

func clean(p model.Paragraph) model.Paragraph {
	p.Text = controlStripper.Replace(p.Text)
	return p
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func sideError(side string, err error) error {
	if se, ok := err.(*ShapeError); ok {
		se.Side = side
		return se
	}
	return err
}
