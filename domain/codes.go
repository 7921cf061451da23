package domain

import (
	"fmt"
	"sort"
)

// ============================================================================
// DOMAIN CODES — Fixed code sets for the Comext softwood export dataset
// ============================================================================
// The dataset shape is fixed: every query, prompt, and normalization step
// works over these enumerations. The normalizer validates against them, the
// translator embeds them in the AI primer, and the engine treats them as the
// only filterable/groupable fields.
// ============================================================================

// Field names of the canonical fact table. These are the only fields a
// QuerySpec may filter or group by.
const (
	FieldReporter   = "reporter"
	FieldPartner    = "partner"
	FieldProduct    = "product"
	FieldIndicator  = "indicators"
	FieldTimePeriod = "time_period"
)

// KeyFields lists the five key fields in canonical column order.
var KeyFields = []string{
	FieldReporter,
	FieldPartner,
	FieldProduct,
	FieldIndicator,
	FieldTimePeriod,
}

// Indicator codes. The first two come from the source; the last two are
// derived during normalization.
const (
	IndicatorQuantity  = "QUANTITY_IN_100KG"
	IndicatorValue     = "VALUE_IN_EUROS"
	IndicatorVolume    = "CUM_VALUE"  // cubic meters, quantity × density multiplier
	IndicatorUnitValue = "UNIT_VALUE" // EUR per cubic meter, value ÷ volume
)

// Indicators lists all four indicator codes present in the canonical table.
var Indicators = []string{IndicatorQuantity, IndicatorValue, IndicatorVolume, IndicatorUnitValue}

// Reporters maps exporting jurisdiction codes to display names (EU-27 + UK).
var Reporters = map[string]string{
	"AT": "Austria", "BE": "Belgium", "BG": "Bulgaria", "CY": "Cyprus",
	"CZ": "Czech Republic", "DE": "Germany", "DK": "Denmark", "EE": "Estonia",
	"ES": "Spain", "FI": "Finland", "FR": "France", "GB": "United Kingdom",
	"GR": "Greece", "HR": "Croatia", "HU": "Hungary", "IE": "Ireland",
	"IT": "Italy", "LT": "Lithuania", "LU": "Luxembourg", "LV": "Latvia",
	"MT": "Malta", "NL": "Netherlands", "PL": "Poland", "PT": "Portugal",
	"RO": "Romania", "SE": "Sweden", "SI": "Slovenia", "SK": "Slovakia",
}

// Partners maps importing jurisdiction codes to display names.
var Partners = map[string]string{
	"CN": "China", "EG": "Egypt", "SA": "Saudi Arabia", "AE": "UAE",
	"MA": "Morocco", "DZ": "Algeria", "JP": "Japan", "KR": "South Korea",
	"IN": "India",
}

// Products maps CN product codes to species labels.
var Products = map[string]string{
	"440711": "pine",
	"440712": "spruce and fir",
	"440713": "SPF",
	"440714": "hemlock and fir",
	"440719": "other softwoods",
}

// defaultMultiplier applies to product codes without a specific density.
const defaultMultiplier = 0.2

// multipliers converts QUANTITY_IN_100KG to cubic meters per product.
var multipliers = map[string]float64{
	"440711": 0.1888,
	"440712": 0.2128,
	"440713": 0.2,
	"440714": 0.2,
	"440719": 0.2,
}

// VolumeMultiplier returns the density multiplier for a product code.
// Unknown codes fall back to the default.
func VolumeMultiplier(product string) float64 {
	if m, ok := multipliers[product]; ok {
		return m
	}
	return defaultMultiplier
}

// Months returns the fixed month window of the dataset: Jan–Aug of 2024
// and 2025, in "YYYY-MM" form.
func Months() []string {
	months := make([]string, 0, 16)
	for _, year := range []int{2024, 2025} {
		for m := 1; m <= 8; m++ {
			months = append(months, fmt.Sprintf("%d-%02d", year, m))
		}
	}
	return months
}

// IsKeyField reports whether name is one of the five canonical key fields.
func IsKeyField(name string) bool {
	for _, f := range KeyFields {
		if f == name {
			return true
		}
	}
	return false
}

// SortedCodes returns map keys in ascending order, for deterministic
// prompt building and display.
func SortedCodes(m map[string]string) []string {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
