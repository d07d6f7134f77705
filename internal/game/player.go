package game

// Player is the per-seat mutable record.
type Player struct {
	Name  string
	Human bool
	Agent Agent

	Hand            []*Card
	Circle          []*Card
	ConqueredBosses []*Card
	Seal            Seal // "" until assigned; unique per game

	// Per-turn flags, cleared when the player's turn begins.
	ExtraSummonCost  int
	SummoningBlocked bool
	ArtifactUsed     bool

	StarBonus int

	// Duel-scoped flag: a human who declined a prompt is not asked again
	// within the same conquest resolution. Cleared when the duel ends.
	skipDuelPrompts bool
}

// TotalStars is the player's derived star total: the clamped star sum of the
// circle, minus one per conquered boss, plus any accumulated bonus.
func (p *Player) TotalStars() int {
	total := 0
	for _, demon := range p.Circle {
		total += demon.EffectiveStars()
	}
	return total - len(p.ConqueredBosses) + p.StarBonus
}

// ResetTurnFlags clears the per-turn state at the start of the player's turn.
func (p *Player) ResetTurnFlags() {
	p.ExtraSummonCost = 0
	p.SummoningBlocked = false
	p.ArtifactUsed = false
}

// RemoveFromHand detaches the given instance from the hand. It reports
// whether the card was actually held, so a caller can never move a card out
// of a zone it is not in.
func (p *Player) RemoveFromHand(c *Card) bool {
	for i, held := range p.Hand {
		if held == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveFromCircle detaches the given demon from the circle.
func (p *Player) RemoveFromCircle(c *Card) bool {
	for i, held := range p.Circle {
		if held == c {
			p.Circle = append(p.Circle[:i], p.Circle[i+1:]...)
			return true
		}
	}
	return false
}

// RotationCards returns the Spostastelle currently held, in hand order.
func (p *Player) RotationCards() []*Card {
	var out []*Card
	for _, c := range p.Hand {
		if c.IsRotation() {
			out = append(out, c)
		}
	}
	return out
}

// CancellationCards returns the Stoppastelle currently held, in hand order.
func (p *Player) CancellationCards() []*Card {
	var out []*Card
	for _, c := range p.Hand {
		if c.IsCancellation() {
			out = append(out, c)
		}
	}
	return out
}

// HandNames returns the hand's card names in order, for events and logging.
func (p *Player) HandNames() []string {
	names := make([]string, len(p.Hand))
	for i, c := range p.Hand {
		names[i] = c.Name
	}
	return names
}
