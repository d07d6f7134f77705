package game

import (
	"context"
	"time"
)

// PlayBotTurn drives a complete turn for the current player with the
// built-in policy, then advances the turn. The gateway calls this whenever
// the turn lands on a bot seat. Decisions are separated by the configured
// pacing delay, which is presentational only.
func (s *Session) PlayBotTurn(ctx context.Context) {
	p := s.CurrentPlayer()
	for s.actions.Remaining() > 0 {
		if ctx.Err() != nil {
			break
		}
		s.pause(ctx)
		kind, run := s.pickBotAction(ctx, p)
		if res := s.RequestAction(kind); !res.OK {
			break
		}
		consumed := run()
		s.CompleteAction(consumed)
		if !consumed {
			break
		}
	}
	s.pause(ctx)
	s.AdvanceTurn()
}

// pickBotAction chooses the next action for a bot, preferring a summon it
// can pay, then a conquest it has a chance at, then revealing a new demon,
// and falling back to drawing supplies.
func (s *Session) pickBotAction(ctx context.Context, p *Player) (string, func() bool) {
	for i, demon := range s.limbo {
		if !p.SummoningBlocked && s.canAffordSummon(p, demon) {
			idx := i
			return "evocazione", func() bool { return s.SummonFromLimbo(idx, p).OK }
		}
	}

	if len(s.bossQueue) > 0 && p.Seal != "" {
		head := s.bossQueue[0]
		stars := p.TotalStars()
		if stars >= head.RequirementFor(p.Seal) || len(rotationOptions(p, head, p.Seal, stars, false)) > 0 {
			return "conquista", func() bool {
				s.AttemptConquest(ctx, nil)
				return true // the attempt spends the action win or lose
			}
		}
	}

	if len(s.limbo) == 0 && s.summonDeck.Size() > 0 && s.handEnergyValue(p) >= 4 {
		return "rivelazione", func() bool { return s.DrawSummonCard(p) != nil }
	}

	return "pesca", func() bool { return s.DrawResourceCard(p) != nil }
}

// canAffordSummon simulates the payment without committing it.
func (s *Session) canAffordSummon(p *Player, demon *Card) bool {
	cost := s.ComputeEffectiveCost(p, demon)
	total := 0
	matching := 0
	for _, c := range p.Hand {
		if c.Kind != KindResource || c.Category != CategoryEnergy {
			continue
		}
		total += c.Value
		if demon.CostSubtype != "" && c.HasSubtype(demon.CostSubtype) {
			matching++
		}
	}
	if demon.CostSubtype != "" && matching < demon.CostSubtypeMin {
		return false
	}
	return total >= cost
}

func (s *Session) handEnergyValue(p *Player) int {
	total := 0
	for _, c := range p.Hand {
		if c.Kind == KindResource && c.Category == CategoryEnergy {
			total += c.Value
		}
	}
	return total
}

func (s *Session) pause(ctx context.Context) {
	if s.cfg.BotDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.cfg.BotDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
