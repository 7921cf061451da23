package engine

// ============================================================================
// ENGINE TYPES — Restricted query algebra over the canonical table
// ============================================================================
// QuerySpec is the only form of computation the reasoning engine may request.
// The grammar is deliberately small: equality filters on the five key
// fields, group-by over a subset of those fields, and one aggregation over
// the value field. Anything outside it is rejected before evaluation — no
// general-purpose evaluator exists, so no ambient capability is reachable.
// ============================================================================

// Aggregations accepted by the grammar.
const (
	AggSum   = "sum"
	AggMean  = "mean"
	AggCount = "count"
	AggMin   = "min"
	AggMax   = "max"
)

// Aggregations lists every accepted aggregation.
var Aggregations = []string{AggSum, AggMean, AggCount, AggMin, AggMax}

// QuerySpec defines what the engine should compute. The translator produces
// it from the reasoning engine's fenced code block; the engine validates and
// executes it locally.
type QuerySpec struct {
	// Filters restrict rows by equality on key fields.
	// AND across fields, OR within a field. Empty = all rows.
	Filters map[string][]string `json:"filters"`

	// GroupBy is a subset of the key fields. Empty = single scalar result.
	GroupBy []string `json:"groupBy"`

	// Aggregation over the value field: sum, mean, count, min, max.
	Aggregation string `json:"aggregation"`

	// SortBy orders grouped results: value_desc, value_asc, key_asc, key_desc.
	SortBy string `json:"sortBy"`

	// Limit caps the number of groups returned. 0 = all.
	Limit int `json:"limit"`
}

// Result kinds.
const (
	KindNumber = "number"
	KindTable  = "table"
)

// Result is the literal outcome of executing a QuerySpec. It is the value
// the narrator is constrained to; presentation formats it but never alters
// it.
type Result struct {
	Kind string `json:"kind"`

	// Number holds the scalar result when Kind == "number".
	Number float64 `json:"number,omitempty"`

	// Integral marks results that are counts, so presentation formats
	// them without decimals.
	Integral bool `json:"integral,omitempty"`

	// Table holds grouped results when Kind == "table".
	Table *ResultTable `json:"table,omitempty"`
}

// ResultTable is a grouped aggregation result.
type ResultTable struct {
	// Columns are the groupBy fields followed by the aggregation name.
	Columns []string    `json:"columns"`
	Rows    []ResultRow `json:"rows"`
}

// ResultRow is one group: its key field values and the aggregated value.
type ResultRow struct {
	Keys  []string `json:"keys"`
	Value float64  `json:"value"`
}

// QueryExecutionError reports a QuerySpec rejected by the grammar or failed
// during evaluation. It is captured as data by the caller, never allowed to
// abort a turn.
type QueryExecutionError struct {
	Reason string
}

func (e *QueryExecutionError) Error() string {
	return "query execution: " + e.Reason
}
