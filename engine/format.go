package engine

import (
	"fmt"
	"math"
	"strings"
)

// ============================================================================
// FORMATTING — Presentation of literal results
// ============================================================================
// Applied only at presentation and never alters the literal result:
// integers are thousands-grouped, floating values are thousands-grouped with
// exactly two decimal places.
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatFloat formats a float with comma separators and two decimals.
func FormatFloat(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	rounded := math.Round(v*100) / 100
	intPart := int64(rounded)
	decPart := int64(math.Round((rounded - float64(intPart)) * 100))
	if decPart == 100 {
		intPart++
		decPart = 0
	}
	s := fmt.Sprintf("%s.%02d", FormatInt(intPart), decPart)
	if negative {
		s = "-" + s
	}
	return s
}

// FormatNumber formats a scalar literal: integral values without decimals,
// floating values with two.
func FormatNumber(v float64, integral bool) string {
	if integral {
		return FormatInt(int64(math.Round(v)))
	}
	return FormatFloat(v)
}

// Render produces a plain-text form of a literal result, used for direct
// display and as the value handed to the narrator. Numbers are formatted
// per the presentation policy; tables render one "key: value" line per row.
func (r *Result) Render() string {
	if r == nil {
		return ""
	}
	switch r.Kind {
	case KindNumber:
		return FormatNumber(r.Number, r.Integral)
	case KindTable:
		if r.Table == nil || len(r.Table.Rows) == 0 {
			return "no matching rows"
		}
		integral := len(r.Table.Columns) > 0 &&
			r.Table.Columns[len(r.Table.Columns)-1] == AggCount
		var b strings.Builder
		for i, row := range r.Table.Rows {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.Join(row.Keys, " / "))
			b.WriteString(": ")
			b.WriteString(FormatNumber(row.Value, integral))
		}
		return b.String()
	}
	return ""
}
