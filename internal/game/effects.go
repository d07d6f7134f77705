package game

import (
	"fmt"

	"github.com/cerchia/cerchia-server-go/internal/game/tribute"
)

// EventOutcome reports the resolution of an imprevisto card.
type EventOutcome struct {
	Effect string // effect name, or UnhandledEffect
	Card   string
	Target string
	Amount int
	Cards  []string // cards moved by the effect, if any
}

// PlayResult reports a PlayMagic attempt.
type PlayResult struct {
	OK     bool
	Effect string
	Reason string
}

// imprevistoHandlers dispatches one-shot effects resolved when an imprevisto
// is drawn. Kinds without a handler fall back to UnhandledEffect, leaving all
// zones untouched. Populated in init: the draw handlers call back into the
// session draw path, which consults this map again for chained imprevisti.
var imprevistoHandlers map[EffectKind]func(s *Session, p *Player, c *Card) EventOutcome

func init() {
	imprevistoHandlers = map[EffectKind]func(s *Session, p *Player, c *Card) EventOutcome{
		EffectStarBonus:       resolveStarBonus,
		EffectBlockSummoning:  resolveBlockSummoning,
		EffectExtraSummonCost: resolveExtraSummonCost,
		EffectDiscardRandom:   resolveDiscardRandom,
		EffectDrawResource:    resolveDrawResource,
		EffectDrawSummon:      resolveDrawSummon,
	}
}

// ResolveEvent applies an imprevisto's effect to the drawing player. An
// unrecognized effect kind resolves as a tagged no-op: nothing moves, nothing
// changes, the game stays playable.
func (s *Session) ResolveEvent(c *Card, p *Player) EventOutcome {
	handler, ok := imprevistoHandlers[c.Effect]
	if !ok {
		s.narrate(p.Name, fmt.Sprintf("%s non ha alcun effetto conosciuto", c.Name))
		return EventOutcome{Effect: ReasonUnhandledEffect, Card: c.Name, Target: p.Name}
	}
	out := handler(s, p, c)
	out.Card = c.Name
	if out.Target == "" {
		out.Target = p.Name
	}
	return out
}

func resolveStarBonus(s *Session, p *Player, c *Card) EventOutcome {
	before := p.StarBonus
	p.StarBonus += c.Amount
	s.narrate(p.Name, fmt.Sprintf("%s: bonus stelle %+d", c.Name, c.Amount))
	return EventOutcome{Effect: EffectStarBonus.String(), Amount: p.StarBonus - before}
}

func resolveBlockSummoning(s *Session, p *Player, c *Card) EventOutcome {
	p.SummoningBlocked = true
	s.narrate(p.Name, fmt.Sprintf("%s: evocazioni bloccate per questo turno", c.Name))
	return EventOutcome{Effect: EffectBlockSummoning.String()}
}

func resolveExtraSummonCost(s *Session, p *Player, c *Card) EventOutcome {
	p.ExtraSummonCost += c.Amount
	s.narrate(p.Name, fmt.Sprintf("%s: le evocazioni costano %+d per questo turno", c.Name, c.Amount))
	return EventOutcome{Effect: EffectExtraSummonCost.String(), Amount: c.Amount}
}

func resolveDiscardRandom(s *Session, p *Player, c *Card) EventOutcome {
	if len(p.Hand) == 0 {
		s.narrate(p.Name, fmt.Sprintf("%s: nessuna carta da scartare", c.Name))
		return EventOutcome{Effect: EffectDiscardRandom.String()}
	}
	victim := p.Hand[s.rng.Intn(len(p.Hand))]
	s.Discard(p, []*Card{victim})
	s.narrate(p.Name, fmt.Sprintf("%s: scarta %s", c.Name, victim.Name))
	return EventOutcome{Effect: EffectDiscardRandom.String(), Cards: []string{victim.Name}}
}

func resolveDrawResource(s *Session, p *Player, c *Card) EventOutcome {
	n := c.Amount
	if n <= 0 {
		n = 1
	}
	var drawn []string
	for i := 0; i < n; i++ {
		if card := s.DrawResourceCard(p); card != nil {
			drawn = append(drawn, card.Name)
		}
	}
	return EventOutcome{Effect: EffectDrawResource.String(), Amount: len(drawn), Cards: drawn}
}

func resolveDrawSummon(s *Session, p *Player, c *Card) EventOutcome {
	card := s.DrawSummonCard(p)
	if card == nil {
		return EventOutcome{Effect: EffectDrawSummon.String()}
	}
	return EventOutcome{Effect: EffectDrawSummon.String(), Amount: 1, Cards: []string{card.Name}}
}

// PlayMagic plays a magic-category resource card or an artifact from the
// player's hand. Rotation and cancellation cards are only meaningful inside a
// boss negotiation and are refused here.
func (s *Session) PlayMagic(p *Player, c *Card) PlayResult {
	held := false
	for _, h := range p.Hand {
		if h == c {
			held = true
			break
		}
	}
	if !held {
		return PlayResult{Reason: ReasonNoTarget}
	}

	switch {
	case c.Kind == KindArtifact:
		if p.ArtifactUsed {
			s.narrate(p.Name, "ha già usato un artefatto questo turno")
			return PlayResult{Reason: ReasonArtifactUsed}
		}
	case c.Kind == KindResource && c.Category == CategoryMagic:
		if c.Effect == EffectRotateBoss || c.Effect == EffectCancelRotation {
			s.narrate(p.Name, fmt.Sprintf("%s si gioca solo durante una conquista", c.Name))
			return PlayResult{Reason: ReasonNoTarget}
		}
	default:
		return PlayResult{Reason: ReasonNoTarget}
	}

	handler, ok := imprevistoHandlers[c.Effect]
	if !ok {
		s.narrate(p.Name, fmt.Sprintf("%s non ha alcun effetto conosciuto", c.Name))
		return PlayResult{Reason: ReasonUnhandledEffect}
	}

	if c.SpecialCost > 0 && !s.paySpecialCost(p, c) {
		return PlayResult{Reason: ReasonPaymentInsufficient}
	}

	p.RemoveFromHand(c)
	if c.Kind == KindArtifact {
		p.ArtifactUsed = true
	}
	s.graveyard = append(s.graveyard, c)
	s.publishHandChanged(p)

	out := handler(s, p, c)
	s.logEvent("magia", fmt.Sprintf("%s gioca %s", p.Name, c.Name), map[string]any{
		"player": p.Name,
		"card":   c.Name,
		"effect": out.Effect,
	})
	return PlayResult{OK: true, Effect: out.Effect}
}

// paySpecialCost covers a card's extra discard requirement from the player's
// energy cards, excluding the card being played. All-or-nothing.
func (s *Session) paySpecialCost(p *Player, playing *Card) bool {
	var cands []tribute.Candidate
	for i, h := range p.Hand {
		if h == playing || h.Kind != KindResource || h.Category != CategoryEnergy {
			continue
		}
		cands = append(cands, tribute.Candidate{Index: i, Value: h.Value})
	}
	res := tribute.Find(cands, playing.SpecialCost, "", 0)
	if !res.Success {
		s.narrate(p.Name, fmt.Sprintf("non può pagare il costo di %s", playing.Name))
		return false
	}
	cards := make([]*Card, 0, len(res.Plan.Indices))
	for _, idx := range res.Plan.Indices {
		cards = append(cards, p.Hand[idx])
	}
	for _, paid := range cards {
		p.RemoveFromHand(paid)
	}
	s.Discard(nil, cards)
	s.publishHandChanged(p)
	return true
}
