package stats

// StatID enumerates the primary attributes tracked by the stats engine.
type StatID uint8

const (
	StatMight StatID = iota
	StatResonance
	StatFocus
	StatSpeed

	StatCount
)

// DerivedID enumerates derived stats computed from the attribute totals.
type DerivedID uint8

const (
	DerivedMaxHealth DerivedID = iota
	DerivedMaxMana
	DerivedMaxFocus
	DerivedAttackPower
	DerivedSpeedScalar

	DerivedCount
)

// Layer describes the precedence order for attribute contributions. The
// engine only exercises the base seed and equipment bonuses; contributions
// are additive across layers.
type Layer uint8

const (
	LayerBase Layer = iota
	LayerEquipment

	LayerCount
)

// ValueSet stores a fixed vector of attribute values. All stat arithmetic is
// integer so resolved totals are identical across platforms and replays.
type ValueSet [StatCount]int

// DerivedSet stores derived stat values.
type DerivedSet [DerivedCount]int

// Add returns the element-wise sum of two value sets.
func (v ValueSet) Add(other ValueSet) ValueSet {
	var out ValueSet
	for i := range v {
		out[i] = v[i] + other[i]
	}
	return out
}

// Component owns the attribute state for an actor and caches derived totals.
type Component struct {
	layers  [LayerCount]ValueSet
	totals  ValueSet
	derived DerivedSet
	dirty   bool
}

// NewComponent constructs a component seeded with the provided base values.
func NewComponent(base ValueSet) Component {
	c := Component{dirty: true}
	c.layers[LayerBase] = base
	c.Resolve()
	return c
}

// SetLayer replaces the contribution for a layer and marks totals stale.
func (c *Component) SetLayer(layer Layer, values ValueSet) {
	if layer >= LayerCount {
		return
	}
	c.layers[layer] = values
	c.dirty = true
}

// LayerValues returns the current contribution for a layer.
func (c *Component) LayerValues(layer Layer) ValueSet {
	if layer >= LayerCount {
		return ValueSet{}
	}
	return c.layers[layer]
}

// Resolve recomputes attribute totals and derived stats if stale.
func (c *Component) Resolve() {
	if !c.dirty {
		return
	}
	var totals ValueSet
	for layer := Layer(0); layer < LayerCount; layer++ {
		totals = totals.Add(c.layers[layer])
	}
	c.totals = totals
	c.derived = Derive(totals)
	c.dirty = false
}

// Totals returns the resolved attribute vector.
func (c *Component) Totals() ValueSet {
	c.Resolve()
	return c.totals
}

// DerivedValues returns the resolved derived stats.
func (c *Component) DerivedValues() DerivedSet {
	c.Resolve()
	return c.derived
}
