package engine

import (
	"math"
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping and aggregation over views
// ============================================================================
// Grouping produces sub-views (index lists into the parent view). Group keys
// preserve first-seen order before sorting, so identical inputs always
// produce identical results.
// ============================================================================

// group is an intermediate grouped result.
type group struct {
	keys []string // one value per groupBy field
	view View
}

// groupBy partitions a view by the given key fields. An empty field list
// yields a single group covering the whole view.
func groupBy(view View, fields []string) []group {
	if len(fields) == 0 {
		return []group{{view: view}}
	}

	const sep = "\x1f"
	indices := make(map[string][]int)
	order := make([]string, 0)
	keysFor := make(map[string][]string)

	for i := 0; i < view.Len(); i++ {
		keys := make([]string, len(fields))
		for j, f := range fields {
			keys[j] = view.Field(i, f)
		}
		composite := strings.Join(keys, sep)
		if _, seen := indices[composite]; !seen {
			order = append(order, composite)
			keysFor[composite] = keys
		}
		indices[composite] = append(indices[composite], i)
	}

	groups := make([]group, 0, len(order))
	for _, composite := range order {
		groups = append(groups, group{
			keys: keysFor[composite],
			view: newSubView(view, indices[composite]),
		})
	}
	return groups
}

// aggregate reduces a view's values with the named aggregation.
func aggregate(view View, aggregation string) float64 {
	switch aggregation {
	case AggSum:
		return sumValues(view)
	case AggMean:
		if view.Len() == 0 {
			return 0
		}
		return sumValues(view) / float64(view.Len())
	case AggCount:
		return float64(view.Len())
	case AggMin:
		return extremum(view, func(v, m float64) bool { return v < m })
	case AggMax:
		return extremum(view, func(v, m float64) bool { return v > m })
	}
	return 0
}

func sumValues(view View) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Value(i)
	}
	return total
}

func extremum(view View, better func(v, m float64) bool) float64 {
	if view.Len() == 0 {
		return 0
	}
	m := math.NaN()
	for i := 0; i < view.Len(); i++ {
		v := view.Value(i)
		if math.IsNaN(m) || better(v, m) {
			m = v
		}
	}
	return m
}

// sortRows orders grouped result rows.
func sortRows(rows []ResultRow, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	case "value_asc":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value < rows[j].Value })
	case "key_asc":
		sort.SliceStable(rows, func(i, j int) bool { return compositeKey(rows[i]) < compositeKey(rows[j]) })
	case "key_desc":
		sort.SliceStable(rows, func(i, j int) bool { return compositeKey(rows[i]) > compositeKey(rows[j]) })
	default:
		// preserve grouping order
	}
}

// compositeKey joins key fields for ordering. Months in YYYY-MM form sort
// chronologically under plain string comparison.
func compositeKey(r ResultRow) string {
	return strings.Join(r.Keys, "\x1f")
}
