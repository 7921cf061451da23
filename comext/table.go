package comext

import (
	"github.com/timberlens-org/timberlens/domain"
)

// ============================================================================
// CANONICAL TABLE — Normalized long-form fact table
// ============================================================================
// Built once per refresh from a full source re-fetch, then read-only.
// Base rows come straight from the source; CUM_VALUE and UNIT_VALUE rows are
// appended during normalization and never mutate base rows.
// ============================================================================

// Fact is one observation of the canonical table.
type Fact struct {
	Reporter   string  `json:"reporter"`
	Partner    string  `json:"partner"`
	Product    string  `json:"product"`
	Indicator  string  `json:"indicators"`
	TimePeriod string  `json:"time_period"`
	Value      float64 `json:"obs_value"`
}

// Key identifies a (reporter, partner, product, time_period) combination,
// independent of indicator.
type Key struct {
	Reporter   string `json:"reporter"`
	Partner    string `json:"partner"`
	Product    string `json:"product"`
	TimePeriod string `json:"time_period"`
}

// KeyOf extracts the indicator-independent key of a fact.
func KeyOf(f Fact) Key {
	return Key{Reporter: f.Reporter, Partner: f.Partner, Product: f.Product, TimePeriod: f.TimePeriod}
}

// Field returns a key field of the fact by canonical column name.
// Unknown names return "".
func (f Fact) Field(name string) string {
	switch name {
	case domain.FieldReporter:
		return f.Reporter
	case domain.FieldPartner:
		return f.Partner
	case domain.FieldProduct:
		return f.Product
	case domain.FieldIndicator:
		return f.Indicator
	case domain.FieldTimePeriod:
		return f.TimePeriod
	}
	return ""
}

// Table is the canonical table plus the diagnostics gathered while
// building it. Once returned by Normalize it must be treated as read-only;
// refresh replaces the whole Table rather than mutating it.
type Table struct {
	Facts []Fact

	// ProcessingLog records row counts at each normalization stage.
	// Informational only — it never affects the data.
	ProcessingLog []string

	// ZeroFilled lists the keys of UNIT_VALUE rows emitted with value 0
	// because the matching CUM_VALUE row was missing or zero.
	ZeroFilled []Key
}

// Len returns the number of facts in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Facts)
}

// QualitySummary are data-quality counters over the canonical table.
type QualitySummary struct {
	Rows                 int `json:"rows"`
	ZeroValues           int `json:"zeroValues"`
	NegativeValues       int `json:"negativeValues"`
	ZeroFilledUnitValues int `json:"zeroFilledUnitValues"`
}

// Quality computes the data-quality summary shown in diagnostics.
func (t *Table) Quality() QualitySummary {
	q := QualitySummary{}
	if t == nil {
		return q
	}
	q.Rows = len(t.Facts)
	q.ZeroFilledUnitValues = len(t.ZeroFilled)
	for _, f := range t.Facts {
		if f.Value == 0 {
			q.ZeroValues++
		} else if f.Value < 0 {
			q.NegativeValues++
		}
	}
	return q
}
