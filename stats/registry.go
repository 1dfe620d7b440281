package stats

// Archetype identifies the default attribute seed used to initialise a
// component.
type Archetype uint8

const (
	ArchetypeAdventurer Archetype = iota
	ArchetypeSkeleton
	ArchetypeGhoul
	ArchetypeRat
)

var archetypeBase = map[Archetype]ValueSet{
	ArchetypeAdventurer: {
		StatMight:     16,
		StatResonance: 12,
		StatFocus:     10,
		StatSpeed:     10,
	},
	ArchetypeSkeleton: {
		StatMight:     10,
		StatResonance: 4,
		StatFocus:     6,
		StatSpeed:     7,
	},
	ArchetypeGhoul: {
		StatMight:     13,
		StatResonance: 6,
		StatFocus:     5,
		StatSpeed:     9,
	},
	ArchetypeRat: {
		StatMight:     3,
		StatResonance: 1,
		StatFocus:     2,
		StatSpeed:     14,
	},
}

// DefaultBase returns a copy of the base values for the given archetype.
func DefaultBase(archetype Archetype) ValueSet {
	return archetypeBase[archetype]
}

// DefaultComponent constructs and resolves a component using the archetype
// defaults.
func DefaultComponent(archetype Archetype) Component {
	return NewComponent(DefaultBase(archetype))
}

// DefaultDerived returns the resolved derived stats for the given archetype.
func DefaultDerived(archetype Archetype) DerivedSet {
	comp := DefaultComponent(archetype)
	return comp.DerivedValues()
}
