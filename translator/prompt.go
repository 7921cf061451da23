package translator

import (
	"fmt"
	"strings"

	"github.com/timberlens-org/timberlens/domain"
)

// ============================================================================
// PROMPT BUILDER — Domain primer + query-synthesis instructions
// ============================================================================
// The primer enumerates every valid code and the table shape, so the
// reasoning engine can only reference values that exist. The response
// contract asks for exactly one fenced JSON block holding a QuerySpec; the
// engine rejects anything outside that grammar.
// ============================================================================

// Primer returns the fixed domain primer describing the dataset.
func Primer() string {
	var b strings.Builder

	b.WriteString(`You are a helpful analyst for a statistics database of EU softwood timber exports to global markets. Your knowledge is limited outside this database.

The database is a long-form table with columns: reporter, partner, product, indicators, time_period, obs_value.

`)

	b.WriteString("Exporting countries (reporter — use uppercase codes):\n")
	writeCodeList(&b, domain.Reporters)

	b.WriteString("\nImporting countries (partner — use uppercase codes):\n")
	writeCodeList(&b, domain.Partners)

	b.WriteString("\nSpecies (product — use codes as strings):\n")
	writeCodeList(&b, domain.Products)

	b.WriteString(fmt.Sprintf(`
Indicators (use uppercase):
- %s: export quantity in 100kg units
- %s: export value in euros
- %s: cubic meters (derived from quantity)
- %s: price per cubic meter in EUR/m3 (derived from value/volume)

Monthly data from %s to %s (time_period format "YYYY-MM"; only January through August of each year is present).

When asked about export volumes and neither value nor tons is mentioned, answer in cubic meters (%s) by default.
`,
		domain.IndicatorQuantity, domain.IndicatorValue,
		domain.IndicatorVolume, domain.IndicatorUnitValue,
		domain.Months()[0], domain.Months()[len(domain.Months())-1],
		domain.IndicatorVolume))

	return b.String()
}

// BuildQueryPrompt assembles the query-synthesis prompt for a question.
func BuildQueryPrompt(question string) string {
	var b strings.Builder
	b.WriteString(Primer())
	b.WriteString(`
Translate the user's question into EXACTLY ONE query specification. Respond with a single fenced code block containing only JSON of this shape:

` + "```json" + `
{
  "filters": {"reporter": [], "partner": [], "product": [], "indicators": [], "time_period": []},
  "groupBy": [],
  "aggregation": "sum",
  "sortBy": "value_desc",
  "limit": 0
}
` + "```" + `

RULES:
1. "filters" keys must be among: reporter, partner, product, indicators, time_period. Omit or leave empty any field you do not filter. Values within a field are OR-combined; fields are AND-combined.
2. "aggregation" is one of: sum, mean, count, min, max. It applies to obs_value.
3. "groupBy" is a subset of the filter field names. Empty means a single number.
4. "sortBy" is one of: value_desc, value_asc, key_asc, key_desc. "limit" 0 means all groups.
5. Always filter "indicators" to exactly one indicator so values are not mixed.
6. Do NOT compute any values yourself — the engine executes the query locally.
7. If the question cannot be answered from this database, respond in plain text without any code block and say so clearly.

Example: "Germany's total pine export volume to China" →
` + "```json" + `
{"filters": {"reporter": ["DE"], "partner": ["CN"], "product": ["440711"], "indicators": ["CUM_VALUE"]}, "aggregation": "sum"}
` + "```" + `

User question: `)
	b.WriteString(question)
	return b.String()
}

func writeCodeList(b *strings.Builder, m map[string]string) {
	pairs := make([]string, 0, len(m))
	for _, code := range domain.SortedCodes(m) {
		pairs = append(pairs, fmt.Sprintf("%s=%s", code, m[code]))
	}
	b.WriteString(strings.Join(pairs, ", "))
	b.WriteString("\n")
}
