package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Comparison(id);",
	"CREATE INDEX ON :Comparison(created_at);",
	"CREATE INDEX ON :Pair(comparison_id);",
}

const (
	SaveComparisonQuery = `
		MERGE (c:Comparison {id: $id})
		SET c.created_at = $created_at,
			c.threshold = $threshold,
			c.total_segments = $total_segments,
			c.total_mismatches = $total_mismatches,
			c.average_confidence = $average_confidence,
			c.payload = $payload
		RETURN c.id AS id
	`

	SavePairsQuery = `
		MATCH (c:Comparison {id: $id})
		UNWIND $pairs AS p
		MERGE (pair:Pair {comparison_id: $id, index: p.index})
		SET pair.para1 = p.para1,
			pair.para2 = p.para2,
			pair.similarity = p.similarity,
			pair.escalated = p.escalated,
			pair.error_kind = p.error_kind
		MERGE (c)-[:HAS_PAIR]->(pair)
		WITH pair, p
		UNWIND p.differences AS d
		CREATE (pair)-[:HAS_DIFFERENCE]->(:Difference {
			segment: d.segment,
			field: d.field,
			doc1_value: d.doc1_value,
			doc2_value: d.doc2_value,
			mismatch_type: d.mismatch_type,
			confidence: d.confidence
		})
	`

	GetComparisonQuery = `
		MATCH (c:Comparison {id: $id})
		RETURN c.payload AS payload
	`

	LatestComparisonQuery = `
		MATCH (c:Comparison)
		RETURN c.payload AS payload
		ORDER BY c.created_at DESC
		LIMIT 1
	`
)
