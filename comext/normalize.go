package comext

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/timberlens-org/timberlens/domain"
)

// ============================================================================
// NORMALIZER — Raw csvdata extract → canonical fact table
// ============================================================================
// Pipeline:
//   1. Case-fold headers, select the six semantic columns (extras ignored).
//   2. Trim/upper-case key fields, coerce obs_value (unparsable → 0).
//   3. Drop rows with any empty key field.
//   4. Derive CUM_VALUE rows from QUANTITY_IN_100KG rows (density table).
//   5. Derive UNIT_VALUE rows from VALUE_IN_EUROS rows, dividing by the
//      matching CUM_VALUE; missing/zero denominator → 0 and a diagnostic.
// Base rows are never mutated; derivation only appends. Running the
// normalizer twice over the same payload yields identical tables.
// ============================================================================

// requiredColumns are the six semantic columns, by canonical name.
var requiredColumns = []string{
	domain.FieldReporter,
	domain.FieldPartner,
	domain.FieldProduct,
	domain.FieldIndicator,
	domain.FieldTimePeriod,
	"obs_value",
}

// SchemaError reports required columns missing from the source extract.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("comext schema: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Normalizer builds the canonical table from a raw delimited payload.
type Normalizer struct {
	log *zap.SugaredLogger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(log *zap.SugaredLogger) *Normalizer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Normalizer{log: log}
}

// Normalize transforms the raw payload into the canonical table.
// It returns *SchemaError when a required column is absent.
func (n *Normalizer) Normalize(payload []byte) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(string(payload)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, &SchemaError{Missing: requiredColumns}
	}

	t := &Table{}
	t.logf("raw extract loaded: %d columns", len(headers))

	// Map canonical column name → source column index, case-insensitively.
	index := make(map[string]int, len(requiredColumns))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, col := range requiredColumns {
			if name == col {
				index[col] = i
			}
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	// Read and clean base rows.
	raw, dropped := 0, 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}
		raw++

		f := Fact{
			Reporter:   strings.ToUpper(strings.TrimSpace(cell(row, index[domain.FieldReporter]))),
			Partner:    strings.ToUpper(strings.TrimSpace(cell(row, index[domain.FieldPartner]))),
			Product:    strings.TrimSpace(cell(row, index[domain.FieldProduct])),
			Indicator:  strings.ToUpper(strings.TrimSpace(cell(row, index[domain.FieldIndicator]))),
			TimePeriod: strings.TrimSpace(cell(row, index[domain.FieldTimePeriod])),
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(cell(row, index["obs_value"])), 64); err == nil {
			f.Value = v
		}

		if f.Reporter == "" || f.Partner == "" || f.Product == "" || f.Indicator == "" || f.TimePeriod == "" {
			dropped++
			continue
		}
		t.Facts = append(t.Facts, f)
	}
	t.logf("rows read: %d", raw)
	t.logf("dropped %d rows with missing key fields", dropped)
	t.logf("after cleaning: %d rows", len(t.Facts))

	n.deriveVolume(t)
	n.deriveUnitValue(t)

	n.log.Infow("canonical table built",
		"rows", len(t.Facts), "dropped", dropped, "zeroFilled", len(t.ZeroFilled))
	return t, nil
}

// deriveVolume appends one CUM_VALUE row per QUANTITY_IN_100KG row,
// applying the per-product density multiplier.
func (n *Normalizer) deriveVolume(t *Table) {
	base := t.Facts
	quantity := 0
	for _, f := range base {
		if f.Indicator != domain.IndicatorQuantity {
			continue
		}
		quantity++
		derived := f
		derived.Indicator = domain.IndicatorVolume
		derived.Value = f.Value * domain.VolumeMultiplier(f.Product)
		t.Facts = append(t.Facts, derived)
	}
	t.logf("found %d %s rows", quantity, domain.IndicatorQuantity)
	t.logf("after adding %s: %d rows", domain.IndicatorVolume, len(t.Facts))
}

// deriveUnitValue appends exactly one UNIT_VALUE row per VALUE_IN_EUROS row.
// The denominator lookup runs against the table after volume derivation.
// A missing or zero denominator produces a 0-valued row, never a skip, and
// the key is recorded for diagnostics.
func (n *Normalizer) deriveUnitValue(t *Table) {
	volumes := make(map[Key]float64)
	for _, f := range t.Facts {
		if f.Indicator == domain.IndicatorVolume {
			volumes[KeyOf(f)] = f.Value
		}
	}

	base := t.Facts
	valueRows := 0
	for _, f := range base {
		if f.Indicator != domain.IndicatorValue {
			continue
		}
		valueRows++
		derived := f
		derived.Indicator = domain.IndicatorUnitValue
		if vol, ok := volumes[KeyOf(f)]; ok && vol != 0 {
			derived.Value = f.Value / vol
		} else {
			derived.Value = 0
			t.ZeroFilled = append(t.ZeroFilled, KeyOf(f))
		}
		t.Facts = append(t.Facts, derived)
	}
	t.logf("found %d %s rows", valueRows, domain.IndicatorValue)
	t.logf("added %d %s rows (%d with zero/missing volume)",
		valueRows, domain.IndicatorUnitValue, len(t.ZeroFilled))
}

func (t *Table) logf(format string, args ...interface{}) {
	t.ProcessingLog = append(t.ProcessingLog, fmt.Sprintf(format, args...))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
