package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cerchia/cerchia-server-go/internal/game/rules"
)

// maxDuelIterations bounds the negotiation loop. The cap is a hard invariant:
// the duel terminates after at most this many response rounds even if both
// sides keep finding useful rotations.
const maxDuelIterations = 20

// bossSnapshot captures the requirement state before a rotation so a
// cancellation can restore it exactly, regardless of call order.
type bossSnapshot struct {
	offset int
	reqs   map[Seal]int
}

func snapshotBoss(b *Card) bossSnapshot {
	reqs := make(map[Seal]int, len(b.Requirements))
	for k, v := range b.Requirements {
		reqs[k] = v
	}
	return bossSnapshot{offset: b.RotationOffset, reqs: reqs}
}

func restoreBoss(b *Card, snap bossSnapshot) {
	b.RotationOffset = snap.offset
	b.Requirements = snap.reqs
}

// requirementAfter computes what the boss would require from the seal if the
// offset shifted by step, without mutating anything.
func requirementAfter(b *Card, seal Seal, step int) int {
	idx := sealIndex(seal)
	if idx < 0 || b.Requirements == nil {
		return 0
	}
	n := len(sealOrder)
	rotated := ((idx+b.RotationOffset+step)%n + n) % n
	return b.Requirements[sealOrder[rotated]]
}

// AttemptConquest runs the boss negotiation for the current player against
// the head of the boss queue. It returns whether the boss was conquered. On
// success the boss moves into the attacker's conquered list; on failure it
// stays at the queue head with its rotation offset intact and is marked seen.
func (s *Session) AttemptConquest(ctx context.Context, boss *Card) bool {
	if len(s.bossQueue) == 0 {
		s.narrate(s.CurrentPlayer().Name, "nessun boss disponibile")
		return false
	}
	head := s.bossQueue[0]
	if boss == nil {
		boss = head
	}
	if boss != head {
		s.narrate(s.CurrentPlayer().Name, fmt.Sprintf("%s non è in cima alla fila", boss.Name))
		return false
	}

	attacker := s.CurrentPlayer()
	defer s.clearDuelFlags()

	if attacker.Seal == "" {
		s.narrate(attacker.Name, "non ha un sigillo: la conquista fallisce")
		boss.Seen = true
		return false
	}

	requirement := boss.RequirementFor(attacker.Seal)
	stars := attacker.TotalStars()
	s.narrate(attacker.Name, fmt.Sprintf("sfida %s (richiesta %d, stelle %d)", boss.Name, requirement, stars))
	s.logEvent("conquista", fmt.Sprintf("%s sfida %s", attacker.Name, boss.Name), map[string]any{
		"player":      attacker.Name,
		"boss":        boss.Name,
		"requirement": requirement,
		"stars":       stars,
	})

	ok := stars >= requirement
	for i := 0; i < maxDuelIterations; i++ {
		var responded bool
		if ok {
			// The attacker would succeed: every other player gets one chance
			// to raise the requirement back above the attacker's stars.
			responded = s.tryDefenderRotation(ctx, boss, attacker)
		} else {
			// The attacker would fail: one chance to lower the requirement
			// with their own rotation card.
			responded = s.tryAttackerRotation(ctx, boss, attacker)
		}
		ok = attacker.TotalStars() >= boss.RequirementFor(attacker.Seal)
		if !responded {
			break
		}
	}

	if ok {
		s.bossQueue = s.bossQueue[1:]
		attacker.ConqueredBosses = append(attacker.ConqueredBosses, boss)
		s.narrate(attacker.Name, fmt.Sprintf("conquista %s!", boss.Name))
		s.logEvent("conquista", fmt.Sprintf("%s conquistato da %s", boss.Name, attacker.Name), map[string]any{
			"player": attacker.Name,
			"boss":   boss.Name,
			"stars":  attacker.TotalStars(),
		})
	} else {
		boss.Seen = true
		s.narrate(attacker.Name, fmt.Sprintf("non riesce a conquistare %s", boss.Name))
		s.logEvent("conquista", fmt.Sprintf("%s resiste a %s", boss.Name, attacker.Name), map[string]any{
			"player": attacker.Name,
			"boss":   boss.Name,
		})
	}
	return ok
}

// defendersOf returns the other players in seating order starting after the
// attacker, with human seats moved to the front so a human involved in the
// defense is always asked first.
func (s *Session) defendersOf(attacker *Player) []*Player {
	idx := 0
	for i, p := range s.players {
		if p == attacker {
			idx = i
			break
		}
	}
	var seated []*Player
	for off := 1; off < len(s.players); off++ {
		seated = append(seated, s.players[(idx+off)%len(s.players)])
	}
	ordered := make([]*Player, 0, len(seated))
	for _, p := range seated {
		if p.Human {
			ordered = append(ordered, p)
		}
	}
	for _, p := range seated {
		if !p.Human {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// rotationOptions lists the holder's rotation plays that would flip the
// outcome: raise the requirement above the attacker's stars when raise is
// set, bring it within reach otherwise.
func rotationOptions(holder *Player, boss *Card, seal Seal, attackerStars int, raise bool) []ShiftOption {
	var opts []ShiftOption
	for _, card := range holder.RotationCards() {
		for _, step := range card.Steps {
			after := requirementAfter(boss, seal, step)
			if raise && after > attackerStars {
				opts = append(opts, ShiftOption{Card: card, Step: step})
			}
			if !raise && after <= attackerStars {
				opts = append(opts, ShiftOption{Card: card, Step: step})
			}
		}
	}
	return opts
}

func (s *Session) tryDefenderRotation(ctx context.Context, boss *Card, attacker *Player) bool {
	stars := attacker.TotalStars()
	for _, def := range s.defendersOf(attacker) {
		if def.skipDuelPrompts {
			continue
		}
		opts := rotationOptions(def, boss, attacker.Seal, stars, true)
		if len(opts) == 0 {
			continue
		}
		choice := s.askShift(ctx, def, ShiftPrompt{
			Boss:          boss,
			Attacker:      attacker.Name,
			Mode:          ShiftModeDifesa,
			Requirement:   boss.RequirementFor(attacker.Seal),
			AttackerStars: stars,
			Options:       opts,
			Defending:     true,
		})
		if choice == nil || choice.Card == nil {
			if def.Human {
				def.skipDuelPrompts = true
			}
			continue
		}
		if !choiceAllowed(opts, choice) {
			continue
		}
		s.applyRotation(ctx, boss, attacker, def, choice.Card, choice.Step, true)
		return true
	}
	return false
}

func (s *Session) tryAttackerRotation(ctx context.Context, boss *Card, attacker *Player) bool {
	if attacker.skipDuelPrompts {
		return false
	}
	stars := attacker.TotalStars()
	opts := rotationOptions(attacker, boss, attacker.Seal, stars, false)
	if len(opts) == 0 {
		return false
	}
	choice := s.askShift(ctx, attacker, ShiftPrompt{
		Boss:          boss,
		Attacker:      attacker.Name,
		Mode:          ShiftModeAttacco,
		Requirement:   boss.RequirementFor(attacker.Seal),
		AttackerStars: stars,
		Options:       opts,
	})
	if choice == nil || choice.Card == nil {
		if attacker.Human {
			attacker.skipDuelPrompts = true
		}
		return false
	}
	if !choiceAllowed(opts, choice) {
		return false
	}
	s.applyRotation(ctx, boss, attacker, attacker, choice.Card, choice.Step, false)
	return true
}

// applyRotation discards the rotation card, shifts the requirement map and
// runs the cancellation sub-protocol. The rotation card stays discarded even
// if the rotation is cancelled.
func (s *Session) applyRotation(ctx context.Context, boss *Card, attacker, actor *Player, card *Card, step int, byDefender bool) {
	snap := snapshotBoss(boss)
	before := boss.RequirementFor(attacker.Seal)

	s.Discard(actor, []*Card{card})
	boss.RotationOffset += step
	after := boss.RequirementFor(attacker.Seal)

	s.narrate(actor.Name, fmt.Sprintf("gioca %s: la richiesta di %s passa da %d a %d", card.Name, boss.Name, before, after))
	s.publish(rules.Event{
		Name:   rules.EventBossRuotato,
		Player: actor.Name,
		Cards:  []string{card.Name, boss.Name},
		Amount: step,
		Before: before,
		After:  after,
	})
	s.logEvent("rotazione", fmt.Sprintf("%s ruota %s di %+d", actor.Name, boss.Name, step), map[string]any{
		"player": actor.Name,
		"boss":   boss.Name,
		"step":   step,
		"before": before,
		"after":  after,
	})

	s.offerCancellation(ctx, boss, attacker, snap, step, byDefender)
}

// offerCancellation gives the side opposing the rotation's actor the chance
// to revert it with a Stoppastella. The offer is made only when reverting
// would change whether the attacker currently clears the requirement. Only
// the attacker may answer a defender's rotation; any defender may answer the
// attacker's.
func (s *Session) offerCancellation(ctx context.Context, boss *Card, attacker *Player, snap bossSnapshot, step int, byDefender bool) {
	okNow := attacker.TotalStars() >= boss.RequirementFor(attacker.Seal)

	restoredIdx := sealIndex(attacker.Seal)
	n := len(sealOrder)
	rotated := ((restoredIdx+snap.offset)%n + n) % n
	restoredReq := snap.reqs[sealOrder[rotated]]
	okRestored := attacker.TotalStars() >= restoredReq
	if okNow == okRestored {
		return
	}

	var side []*Player
	if byDefender {
		side = []*Player{attacker}
	} else {
		side = s.defendersOf(attacker)
	}

	for _, pl := range side {
		if pl.skipDuelPrompts {
			continue
		}
		for _, stoppa := range pl.CancellationCards() {
			if !s.canPaySpecialCost(pl, stoppa) {
				continue
			}
			choice := s.askShift(ctx, pl, ShiftPrompt{
				Boss:            boss,
				Attacker:        attacker.Name,
				Mode:            ShiftModeStoppastella,
				LastStep:        step,
				CanStoppastella: true,
				Requirement:     boss.RequirementFor(attacker.Seal),
				AttackerStars:   attacker.TotalStars(),
				Options:         []ShiftOption{{Card: stoppa, Stoppa: true}},
				Defending:       !byDefender,
			})
			if choice == nil || choice.Card == nil || !choice.Stoppa {
				if pl.Human {
					pl.skipDuelPrompts = true
				}
				continue
			}
			if stoppa.SpecialCost > 0 && !s.paySpecialCost(pl, stoppa) {
				continue
			}
			s.Discard(pl, []*Card{stoppa})
			beforeRestore := boss.RequirementFor(attacker.Seal)
			restoreBoss(boss, snap)
			afterRestore := boss.RequirementFor(attacker.Seal)

			s.narrate(pl.Name, fmt.Sprintf("gioca %s: la rotazione di %s è annullata", stoppa.Name, boss.Name))
			s.publish(rules.Event{
				Name:   rules.EventBossRuotato,
				Player: pl.Name,
				Cards:  []string{stoppa.Name, boss.Name},
				Amount: -step,
				Before: beforeRestore,
				After:  afterRestore,
				Detail: map[string]any{"annullata": true},
			})
			s.logEvent("stoppastella", fmt.Sprintf("%s annulla la rotazione di %s", pl.Name, boss.Name), map[string]any{
				"player": pl.Name,
				"boss":   boss.Name,
				"step":   step,
			})
			return
		}
	}
}

// canPaySpecialCost simulates the extra discard without committing it.
func (s *Session) canPaySpecialCost(p *Player, playing *Card) bool {
	if playing.SpecialCost <= 0 {
		return true
	}
	total := 0
	for _, h := range p.Hand {
		if h == playing || h.Kind != KindResource || h.Category != CategoryEnergy {
			continue
		}
		total += h.Value
	}
	return total >= playing.SpecialCost
}

// askShift relays a prompt to the player's agent. Errors and cancelled
// contexts resolve as a decline so an abandoned dialog can never wedge the
// duel or the action reservation.
func (s *Session) askShift(ctx context.Context, p *Player, prompt ShiftPrompt) *ShiftChoice {
	choice, err := p.Agent.ChooseStarShift(ctx, prompt)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("star shift prompt failed",
				zap.String("player", p.Name),
				zap.String("mode", string(prompt.Mode)),
				zap.Error(err),
			)
		}
		return nil
	}
	return choice
}

func choiceAllowed(opts []ShiftOption, choice *ShiftChoice) bool {
	for _, o := range opts {
		if o.Card == choice.Card && o.Step == choice.Step && o.Stoppa == choice.Stoppa {
			return true
		}
	}
	return false
}

func (s *Session) clearDuelFlags() {
	for _, p := range s.players {
		p.skipDuelPrompts = false
	}
}
