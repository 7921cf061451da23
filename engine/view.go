package engine

import (
	"github.com/timberlens-org/timberlens/comext"
)

// ============================================================================
// FACT VIEW — Zero-copy access to the canonical table
// ============================================================================
// The engine never owns or copies table data. A View is either the whole
// fact slice or an index list into it; filters and groups produce sub-views.
// ============================================================================

// View provides indexed, read-only access to canonical facts.
type View interface {
	Len() int
	Field(i int, name string) string
	Value(i int) float64
}

// FactView wraps a canonical fact slice as a View.
type FactView struct {
	facts []comext.Fact
}

// NewFactView creates a View over the canonical table's facts.
func NewFactView(facts []comext.Fact) View {
	return &FactView{facts: facts}
}

func (v *FactView) Len() int { return len(v.facts) }

func (v *FactView) Field(i int, name string) string {
	if i < 0 || i >= len(v.facts) {
		return ""
	}
	return v.facts[i].Field(name)
}

func (v *FactView) Value(i int) float64 {
	if i < 0 || i >= len(v.facts) {
		return 0
	}
	return v.facts[i].Value
}

// subView is a filtered subset: indices into a parent view, no data copy.
type subView struct {
	parent  View
	indices []int
}

func newSubView(parent View, indices []int) View {
	return &subView{parent: parent, indices: indices}
}

func (v *subView) Len() int { return len(v.indices) }

func (v *subView) Field(i int, name string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Field(v.indices[i], name)
}

func (v *subView) Value(i int) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Value(v.indices[i])
}
