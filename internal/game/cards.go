package game

import (
	"github.com/google/uuid"
)

// Seal is one of the five fixed elemental tags. Each player is assigned a
// unique seal at setup; a boss requirement map has one row per seal.
type Seal string

const (
	SealFuoco Seal = "fuoco"
	SealAcqua Seal = "acqua"
	SealTerra Seal = "terra"
	SealAria  Seal = "aria"
	SealLuce  Seal = "luce"
)

// sealOrder fixes the rotation order of the requirement map.
var sealOrder = [5]Seal{SealFuoco, SealAcqua, SealTerra, SealAria, SealLuce}

// Seals returns the five seals in rotation order.
func Seals() []Seal {
	out := make([]Seal, len(sealOrder))
	copy(out, sealOrder[:])
	return out
}

func sealIndex(s Seal) int {
	for i, v := range sealOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// CardKind is the closed set of card variants. All engine logic switches on
// the kind tag; there is no runtime type dispatch.
type CardKind int

const (
	KindResource CardKind = iota
	KindDemon
	KindArtifact
	KindImprevisto
	KindBoss
)

var kindNames = map[CardKind]string{
	KindResource:   "resource",
	KindDemon:      "demon",
	KindArtifact:   "artifact",
	KindImprevisto: "imprevisto",
	KindBoss:       "boss",
}

func (k CardKind) String() string { return kindNames[k] }

// Category splits resource cards into payment fuel and playable magic.
type Category int

const (
	CategoryNone Category = iota
	CategoryEnergy
	CategoryMagic
)

func (c Category) String() string {
	switch c {
	case CategoryEnergy:
		return "energy"
	case CategoryMagic:
		return "magic"
	default:
		return "none"
	}
}

// EffectKind is assigned to a card at construction from its definition.
// Effect resolution dispatches through a lookup table keyed by this kind;
// kinds with no handler resolve to the UnhandledEffect outcome so the game
// stays playable with incomplete content.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectRotateBoss
	EffectCancelRotation
	EffectDrawResource
	EffectDrawSummon
	EffectStarBonus
	EffectBlockSummoning
	EffectExtraSummonCost
	EffectDiscardRandom
)

var effectNames = map[EffectKind]string{
	EffectNone:            "none",
	EffectRotateBoss:      "rotate_boss",
	EffectCancelRotation:  "cancel_rotation",
	EffectDrawResource:    "draw_resource",
	EffectDrawSummon:      "draw_summon",
	EffectStarBonus:       "star_bonus",
	EffectBlockSummoning:  "block_summoning",
	EffectExtraSummonCost: "extra_summon_cost",
	EffectDiscardRandom:   "discard_random",
}

func (e EffectKind) String() string { return effectNames[e] }

// Card is a single card instance. Definition fields are immutable after
// construction; the only mutable fields are the boss negotiation scratch
// state (RotationOffset, Seen) and the demon StarMod.
type Card struct {
	ID   string
	Name string
	Kind CardKind

	// Resource fields.
	Category    Category
	Value       int
	Subtypes    []Seal // energy element tags
	SpecialCost int    // extra discard required to play (0 = none)
	Effect      EffectKind
	Steps       []int // rotation option set, rotation cards only
	Amount      int   // effect magnitude (draw count, star delta, ...)

	// Demon fields.
	Stars          int
	StarMod        int
	BaseCost       int
	CostSubtype    Seal // "" = no subtype requirement
	CostSubtypeMin int
	Element        Seal
	EffectText     string

	// Boss fields.
	Requirements   map[Seal]int
	RotationOffset int
	Seen           bool
}

// instantiate copies a card definition into a fresh instance with its own
// identity and requirement map.
func instantiate(def Card) *Card {
	c := def
	c.ID = uuid.NewString()
	if def.Subtypes != nil {
		c.Subtypes = make([]Seal, len(def.Subtypes))
		copy(c.Subtypes, def.Subtypes)
	}
	if def.Steps != nil {
		c.Steps = make([]int, len(def.Steps))
		copy(c.Steps, def.Steps)
	}
	if def.Requirements != nil {
		c.Requirements = make(map[Seal]int, len(def.Requirements))
		for k, v := range def.Requirements {
			c.Requirements[k] = v
		}
	}
	return &c
}

// IsRotation reports whether the card is a Spostastelle.
func (c *Card) IsRotation() bool {
	return c.Kind == KindResource && c.Effect == EffectRotateBoss
}

// IsCancellation reports whether the card is a Stoppastella.
func (c *Card) IsCancellation() bool {
	return c.Kind == KindResource && c.Effect == EffectCancelRotation
}

// HasSubtype reports whether a resource card carries the given element tag.
func (c *Card) HasSubtype(s Seal) bool {
	for _, t := range c.Subtypes {
		if t == s {
			return true
		}
	}
	return false
}

// EffectiveStars is a demon's contribution to its owner's star total,
// clamped non-negative per card.
func (c *Card) EffectiveStars() int {
	stars := c.Stars + c.StarMod
	if stars < 0 {
		return 0
	}
	return stars
}

// RequirementFor returns a boss's current requirement for the given seal,
// recomputed on demand from the base map and the rotation offset. The value
// is never cached across rotations.
func (c *Card) RequirementFor(seal Seal) int {
	idx := sealIndex(seal)
	if idx < 0 || c.Requirements == nil {
		return 0
	}
	n := len(sealOrder)
	rotated := ((idx+c.RotationOffset)%n + n) % n
	return c.Requirements[sealOrder[rotated]]
}
