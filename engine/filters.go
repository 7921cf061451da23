package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Equality filtering on key fields
// ============================================================================
// Single pass: a row passes when it matches every filtered field (values
// within a field are OR-combined). Matching is case-insensitive so minor
// casing slips in the reasoning engine's output still resolve; the table
// itself is already upper-cased by the normalizer.
// ============================================================================

// ApplyFilters returns a view of rows matching all field filters.
// An empty filter map returns the original view.
func ApplyFilters(view View, filters map[string][]string) View {
	sets := make(map[string]map[string]bool)
	for field, allowed := range filters {
		if len(allowed) > 0 {
			sets[field] = toLowerSet(allowed)
		}
	}
	if len(sets) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for field, set := range sets {
			if !set[strings.ToLower(view.Field(i, field))] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}
