package stats

// Formula tuning values. These constants are intentionally simple so the
// transition pipeline stays easy to audit; balancing happens in rule tables,
// not here.
const (
	baseHealthFlat    = 20
	mightHealthScalar = 5
	baseManaFlat      = 10
	resonanceScalar   = 3
	baseFocusFlat     = 8
	focusScalar       = 2
	baseAttackFlat    = 2

	// Speed scalar is expressed in percent. 100 means costs apply
	// unmodified; faster actors resolve below 100.
	speedScalarBase = 140
	speedScalarStep = 4
	speedScalarMin  = 40
	speedScalarMax  = 160
)

// Derive computes the derived stat vector for the given attribute totals.
func Derive(totals ValueSet) DerivedSet {
	var d DerivedSet
	d[DerivedMaxHealth] = baseHealthFlat + totals[StatMight]*mightHealthScalar
	d[DerivedMaxMana] = baseManaFlat + totals[StatResonance]*resonanceScalar
	d[DerivedMaxFocus] = baseFocusFlat + totals[StatFocus]*focusScalar
	d[DerivedAttackPower] = baseAttackFlat + totals[StatMight]
	d[DerivedSpeedScalar] = clampInt(speedScalarBase-totals[StatSpeed]*speedScalarStep, speedScalarMin, speedScalarMax)
	return d
}

// ScaleCost applies an actor's speed scalar to a base tick cost. The result
// is rounded toward zero and never drops below one tick for a non-zero base.
func ScaleCost(base uint64, scalar int) uint64 {
	if base == 0 {
		return 0
	}
	if scalar <= 0 {
		scalar = speedScalarMin
	}
	scaled := base * uint64(scalar) / 100
	if scaled == 0 {
		scaled = 1
	}
	return scaled
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
