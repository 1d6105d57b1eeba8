package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/agenthands/concord/internal/core"
	"github.com/agenthands/concord/internal/core/model"
	"github.com/agenthands/concord/internal/preprocess"
	"github.com/spf13/cobra"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var (
		format    string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Compare two documents and print their factual differences",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				if threshold < -1 || threshold > 1 {
					return fmt.Errorf("threshold must be within [-1, 1], got %v", threshold)
				}
				cfg.Pipeline.SimilarityThreshold = threshold
			}
			if format != "json" && format != "table" {
				return fmt.Errorf("unsupported format %q (use json or table)", format)
			}

			docA, err := readDocument(args[0])
			if err != nil {
				return err
			}
			docB, err := readDocument(args[1])
			if err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			comparator, err := core.NewFromConfig(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			result, err := comparator.Compare(cmd.Context(), docA, docB)
			if err != nil {
				return err
			}

			if format == "json" {
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderComparison(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override pipeline.similarity_threshold")
	return cmd
}

func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if preprocess.IsJSON(data) {
		return data, nil
	}
	return []byte(preprocess.Normalize(string(data))), nil
}

const maxCellWidth = 48

// renderComparison prints one row per difference, plus one row for each pair
// that was skipped or failed.
func renderComparison(c *model.Comparison) string {
	headers := []string{"#", "Similarity", "Field", "Doc1", "Doc2", "Mismatch", "Confidence"}
	aligns := []columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}

	var rows [][]string
	for _, r := range c.Results {
		idx := fmt.Sprint(r.Index)
		sim := fmt.Sprintf("%.3f", r.Similarity)
		switch {
		case !r.Escalated():
			rows = append(rows, []string{idx, sim, "-", truncate(r.Para1), truncate(r.Para2), "similar", ""})
		case r.Error != nil:
			rows = append(rows, []string{idx, sim, "-", truncate(r.Para1), truncate(r.Para2), "error: " + r.Error.Kind, ""})
		case len(r.DetailedDifferences) == 0:
			rows = append(rows, []string{idx, sim, "-", truncate(r.Para1), truncate(r.Para2), "none found", ""})
		default:
			for _, d := range r.DetailedDifferences {
				rows = append(rows, []string{idx, sim, d.Field, truncate(d.Doc1Value), truncate(d.Doc2Value), d.MismatchType, fmt.Sprintf("%.2f", d.Confidence)})
			}
		}
	}

	summary := fmt.Sprintf("%d segments, %d mismatches, average confidence %.2f",
		c.Summary.TotalSegments, c.Summary.TotalMismatches, c.Summary.AverageConfidence)
	return renderTable(headers, rows, aligns) + "\n" + summary
}

func truncate(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= maxCellWidth {
		return string(r)
	}
	return string(r[:maxCellWidth-1]) + "…"
}
