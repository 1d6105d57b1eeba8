package driver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agenthands/concord/internal/core/model"
	"github.com/agenthands/concord/internal/store"
)

// Archive keeps comparisons as a graph:
// (:Comparison)-[:HAS_PAIR]->(:Pair)-[:HAS_DIFFERENCE]->(:Difference).
// The encoded comparison is kept on the Comparison node and is what reads
// return.
type Archive struct {
	Driver GraphDriver
}

func NewArchive(d GraphDriver) *Archive {
	return &Archive{Driver: d}
}

func (a *Archive) Save(ctx context.Context, c *model.Comparison) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode comparison: %w", err)
	}

	params := map[string]interface{}{
		"id":                 c.ID,
		"created_at":         c.CreatedAt,
		"threshold":          c.Threshold,
		"total_segments":     c.Summary.TotalSegments,
		"total_mismatches":   c.Summary.TotalMismatches,
		"average_confidence": c.Summary.AverageConfidence,
		"payload":            string(payload),
	}
	if _, err := a.Driver.ExecuteQuery(ctx, SaveComparisonQuery, params); err != nil {
		return fmt.Errorf("failed to save comparison %s: %w", c.ID, err)
	}

	if len(c.Results) == 0 {
		return nil
	}
	pairs := make([]map[string]interface{}, len(c.Results))
	for i, r := range c.Results {
		diffs := make([]map[string]interface{}, len(r.DetailedDifferences))
		for j, d := range r.DetailedDifferences {
			diffs[j] = map[string]interface{}{
				"segment":       d.Segment,
				"field":         d.Field,
				"doc1_value":    d.Doc1Value,
				"doc2_value":    d.Doc2Value,
				"mismatch_type": d.MismatchType,
				"confidence":    d.Confidence,
			}
		}
		errorKind := ""
		if r.Error != nil {
			errorKind = r.Error.Kind
		}
		pairs[i] = map[string]interface{}{
			"index":       r.Index,
			"para1":       r.Para1,
			"para2":       r.Para2,
			"similarity":  r.Similarity,
			"escalated":   r.Escalated(),
			"error_kind":  errorKind,
			"differences": diffs,
		}
	}
	if _, err := a.Driver.ExecuteQuery(ctx, SavePairsQuery, map[string]interface{}{"id": c.ID, "pairs": pairs}); err != nil {
		return fmt.Errorf("failed to save pairs of comparison %s: %w", c.ID, err)
	}
	return nil
}

func (a *Archive) Get(ctx context.Context, id string) (*model.Comparison, error) {
	return a.load(ctx, GetComparisonQuery, map[string]interface{}{"id": id})
}

func (a *Archive) Latest(ctx context.Context) (*model.Comparison, error) {
	return a.load(ctx, LatestComparisonQuery, nil)
}

func (a *Archive) load(ctx context.Context, query string, params map[string]interface{}) (*model.Comparison, error) {
	res, err := a.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, store.ErrNotFound
	}

	raw, ok := res.Records[0].Get("payload")
	payload, isString := raw.(string)
	if !ok || !isString {
		return nil, fmt.Errorf("comparison node has no payload")
	}

	var c model.Comparison
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("failed to decode archived comparison: %w", err)
	}
	return &c, nil
}
