package engine

import (
	"fmt"
	"strings"

	"github.com/timberlens-org/timberlens/domain"
)

// ============================================================================
// EXECUTOR — Validate and run a QuerySpec against the canonical table
// ============================================================================
// Execute is the whole constrained evaluation context: a QuerySpec either
// passes the grammar and runs the filter → group → aggregate pipeline, or it
// fails with QueryExecutionError. There is nothing else to reach — no file,
// network, or process capability exists here, and evaluation over an
// in-memory table of tens of thousands of rows completes in bounded time.
// ============================================================================

// Validate checks a QuerySpec against the restricted grammar.
// It returns *QueryExecutionError for anything outside it.
func Validate(spec QuerySpec) error {
	for field := range spec.Filters {
		if !domain.IsKeyField(field) {
			return &QueryExecutionError{
				Reason: fmt.Sprintf("filter field %q is not a key field (allowed: %s)",
					field, strings.Join(domain.KeyFields, ", ")),
			}
		}
	}

	seen := make(map[string]bool)
	for _, field := range spec.GroupBy {
		if !domain.IsKeyField(field) {
			return &QueryExecutionError{
				Reason: fmt.Sprintf("groupBy field %q is not a key field (allowed: %s)",
					field, strings.Join(domain.KeyFields, ", ")),
			}
		}
		if seen[field] {
			return &QueryExecutionError{Reason: fmt.Sprintf("groupBy field %q repeated", field)}
		}
		seen[field] = true
	}

	agg := spec.Aggregation
	if agg == "" {
		agg = AggSum
	}
	valid := false
	for _, a := range Aggregations {
		if agg == a {
			valid = true
			break
		}
	}
	if !valid {
		return &QueryExecutionError{
			Reason: fmt.Sprintf("aggregation %q not supported (allowed: %s)",
				spec.Aggregation, strings.Join(Aggregations, ", ")),
		}
	}

	switch spec.SortBy {
	case "", "value_desc", "value_asc", "key_asc", "key_desc":
	default:
		return &QueryExecutionError{Reason: fmt.Sprintf("sortBy %q not supported", spec.SortBy)}
	}

	if spec.Limit < 0 {
		return &QueryExecutionError{Reason: "limit must not be negative"}
	}
	return nil
}

// Execute validates spec and runs it over the view, returning the literal
// result. Every failure is a *QueryExecutionError; the caller captures it
// as data rather than aborting the turn.
func Execute(spec QuerySpec, view View) (*Result, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	aggregation := spec.Aggregation
	if aggregation == "" {
		aggregation = AggSum
	}

	filtered := ApplyFilters(view, spec.Filters)

	// Scalar path: no grouping.
	if len(spec.GroupBy) == 0 {
		return &Result{
			Kind:     KindNumber,
			Number:   aggregate(filtered, aggregation),
			Integral: aggregation == AggCount,
		}, nil
	}

	// Grouped path: one row per group.
	groups := groupBy(filtered, spec.GroupBy)
	rows := make([]ResultRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, ResultRow{
			Keys:  g.keys,
			Value: aggregate(g.view, aggregation),
		})
	}
	sortRows(rows, spec.SortBy)
	if spec.Limit > 0 && len(rows) > spec.Limit {
		rows = rows[:spec.Limit]
	}

	columns := append(append([]string{}, spec.GroupBy...), aggregation)
	return &Result{
		Kind: KindTable,
		Table: &ResultTable{
			Columns: columns,
			Rows:    rows,
		},
	}, nil
}
