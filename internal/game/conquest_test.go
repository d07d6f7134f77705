package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// autoAgent always takes the first offered option.
type autoAgent struct {
	asked int
}

func (a *autoAgent) ChooseStarShift(ctx context.Context, prompt ShiftPrompt) (*ShiftChoice, error) {
	a.asked++
	if len(prompt.Options) == 0 {
		return nil, nil
	}
	opt := prompt.Options[0]
	return &ShiftChoice{Card: opt.Card, Step: opt.Step, Stoppa: opt.Stoppa}, nil
}

// declineAgent refuses every prompt.
type declineAgent struct {
	asked int
}

func (a *declineAgent) ChooseStarShift(ctx context.Context, prompt ShiftPrompt) (*ShiftChoice, error) {
	a.asked++
	return nil, nil
}

// newDuelSession builds a two-seat session with emptied hands, fixed seals
// and a single custom boss at the head of the queue.
func newDuelSession(t *testing.T, attackerAgent, defenderAgent Agent, boss *Card) (*Session, *Player, *Player) {
	t.Helper()
	s, err := NewSession(Config{Seed: 7, BotDelay: -1, DefenderWithhold: -1}, []Seat{
		{Name: "alba", Human: true, Agent: attackerAgent},
		{Name: "bruno", Human: true, Agent: defenderAgent},
	}, nil)
	require.NoError(t, err)

	attacker := s.Players()[0]
	defender := s.Players()[1]
	attacker.Hand = nil
	defender.Hand = nil
	attacker.Seal = SealFuoco
	defender.Seal = SealAcqua
	s.bossQueue = []*Card{boss}
	return s, attacker, defender
}

func testBoss(fuoco, acqua int) *Card {
	return instantiate(Card{
		Name: "Custode della Soglia",
		Kind: KindBoss,
		Requirements: map[Seal]int{
			SealFuoco: fuoco,
			SealAcqua: acqua,
			SealTerra: 9,
			SealAria:  9,
			SealLuce:  9,
		},
	})
}

func spostastelle(steps ...int) *Card {
	return instantiate(Card{
		Name: "Spostastelle", Kind: KindResource, Category: CategoryMagic,
		Effect: EffectRotateBoss, Steps: steps,
	})
}

func stoppastella() *Card {
	return instantiate(Card{
		Name: "Stoppastella", Kind: KindResource, Category: CategoryMagic,
		Effect: EffectCancelRotation, SpecialCost: 1,
	})
}

// TestConquestImmediateSuccess covers the duel with no negotiation: enough
// stars, no rotation cards anywhere.
func TestConquestImmediateSuccess(t *testing.T) {
	attackerAgent := &autoAgent{}
	defenderAgent := &autoAgent{}
	boss := testBoss(5, 7)
	s, attacker, _ := newDuelSession(t, attackerAgent, defenderAgent, boss)
	attacker.Circle = []*Card{instantiate(demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""))}

	ok := s.AttemptConquest(context.Background(), nil)

	require.True(t, ok)
	assert.Contains(t, attacker.ConqueredBosses, boss)
	assert.Empty(t, s.BossQueue())
	assert.Zero(t, attackerAgent.asked, "no prompt expected without rotation cards")
	assert.Zero(t, defenderAgent.asked, "no prompt expected without rotation cards")
}

// TestConquestAttackerRotation covers the short-side negotiation: the
// attacker lowers the requirement with one rotation and then succeeds.
func TestConquestAttackerRotation(t *testing.T) {
	attackerAgent := &autoAgent{}
	boss := testBoss(5, 3)
	s, attacker, _ := newDuelSession(t, attackerAgent, &declineAgent{}, boss)
	attacker.Circle = []*Card{instantiate(demon("Succube", 3, 5, SealAcqua, SealAcqua, 1, ""))}
	rotation := spostastelle(1)
	attacker.Hand = []*Card{rotation}

	ok := s.AttemptConquest(context.Background(), nil)

	require.True(t, ok)
	assert.Equal(t, 1, attackerAgent.asked)
	assert.Contains(t, attacker.ConqueredBosses, boss)
	assert.Contains(t, s.DiscardPile(), rotation)
	assert.NotContains(t, attacker.Hand, rotation)
}

// TestConquestCancellation covers the Stoppastella sub-protocol: a defender
// rotation is reverted and the rotation card stays discarded anyway.
func TestConquestCancellation(t *testing.T) {
	boss := testBoss(5, 7)
	s, attacker, defender := newDuelSession(t, &autoAgent{}, &autoAgent{}, boss)
	attacker.Circle = []*Card{instantiate(demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""))}

	rotation := spostastelle(1)
	defender.Hand = []*Card{rotation}
	stoppa := stoppastella()
	fuel := instantiate(energy("Scintilla", 1, SealFuoco))
	attacker.Hand = []*Card{stoppa, fuel}

	ok := s.AttemptConquest(context.Background(), nil)

	require.True(t, ok)
	assert.Contains(t, attacker.ConqueredBosses, boss)

	// The rotation was undone exactly.
	assert.Equal(t, 0, boss.RotationOffset)
	assert.Equal(t, 5, boss.RequirementFor(SealFuoco))

	// The rotation card, the Stoppastella and its fuel are all spent.
	assert.Contains(t, s.DiscardPile(), rotation)
	assert.Contains(t, s.DiscardPile(), stoppa)
	assert.Contains(t, s.DiscardPile(), fuel)
	assert.Empty(t, attacker.Hand)
	assert.Empty(t, defender.Hand)
}

// TestConquestCancellationNeedsFuel: a Stoppastella the holder cannot pay
// for is never offered, so the defender rotation stands.
func TestConquestCancellationNeedsFuel(t *testing.T) {
	attackerAgent := &autoAgent{}
	boss := testBoss(5, 7)
	s, attacker, defender := newDuelSession(t, attackerAgent, &autoAgent{}, boss)
	attacker.Circle = []*Card{instantiate(demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""))}

	defender.Hand = []*Card{spostastelle(1)}
	attacker.Hand = []*Card{stoppastella()} // no energy to cover the cost

	ok := s.AttemptConquest(context.Background(), nil)

	assert.False(t, ok)
	assert.True(t, boss.Seen)
	assert.Zero(t, attackerAgent.asked, "unpayable Stoppastella must not be offered")
}

// TestConquestTerminates bounds the negotiation: both sides hold far more
// rotation cards than the loop will ever consume.
func TestConquestTerminates(t *testing.T) {
	boss := testBoss(5, 7)
	s, attacker, defender := newDuelSession(t, &autoAgent{}, &autoAgent{}, boss)
	attacker.Circle = []*Card{instantiate(demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""))}

	for i := 0; i < 15; i++ {
		attacker.Hand = append(attacker.Hand, spostastelle(-1))
		defender.Hand = append(defender.Hand, spostastelle(1))
	}

	ok := s.AttemptConquest(context.Background(), nil)

	// Rounds alternate raise/lower; the cap cuts the exchange at 20 rounds
	// with the last word to the attacker.
	require.True(t, ok)
	assert.Len(t, s.DiscardPile(), maxDuelIterations)
	assert.Len(t, attacker.Hand, 5)
	assert.Len(t, defender.Hand, 5)
}

func TestConquestFailureMarksSeen(t *testing.T) {
	boss := testBoss(5, 7)
	s, attacker, _ := newDuelSession(t, &declineAgent{}, &declineAgent{}, boss)
	attacker.Circle = []*Card{instantiate(demon("Folletto", 1, 2, SealFuoco, "", 0, ""))}

	ok := s.AttemptConquest(context.Background(), nil)

	assert.False(t, ok)
	assert.True(t, boss.Seen)
	assert.Len(t, s.BossQueue(), 1, "failed boss stays at the queue head")
	assert.Empty(t, attacker.ConqueredBosses)
}

func TestConquestDeclineStopsPrompting(t *testing.T) {
	attackerAgent := &declineAgent{}
	boss := testBoss(5, 3)
	s, attacker, _ := newDuelSession(t, attackerAgent, &declineAgent{}, boss)
	attacker.Circle = []*Card{instantiate(demon("Succube", 3, 5, SealAcqua, SealAcqua, 1, ""))}
	attacker.Hand = []*Card{spostastelle(1), spostastelle(1)}

	ok := s.AttemptConquest(context.Background(), nil)

	assert.False(t, ok)
	assert.Equal(t, 1, attackerAgent.asked, "a declining human is not asked again in the same duel")

	// The skip flag does not leak past the duel.
	for _, p := range s.Players() {
		assert.False(t, p.skipDuelPrompts)
	}
}

func TestConquestWithoutSeal(t *testing.T) {
	boss := testBoss(5, 7)
	s, attacker, _ := newDuelSession(t, &autoAgent{}, &autoAgent{}, boss)
	attacker.Seal = ""
	attacker.Circle = []*Card{instantiate(demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""))}

	ok := s.AttemptConquest(context.Background(), nil)

	assert.False(t, ok)
	assert.True(t, boss.Seen)
}

func TestConquestEmptyQueue(t *testing.T) {
	s, _, _ := newDuelSession(t, &autoAgent{}, &autoAgent{}, testBoss(5, 7))
	s.bossQueue = nil

	assert.False(t, s.AttemptConquest(context.Background(), nil))
}

func TestConquestRejectsNonHeadBoss(t *testing.T) {
	boss := testBoss(5, 7)
	s, attacker, _ := newDuelSession(t, &autoAgent{}, &autoAgent{}, boss)
	attacker.Circle = []*Card{instantiate(demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""))}
	other := testBoss(1, 1)

	assert.False(t, s.AttemptConquest(context.Background(), other))
	assert.Len(t, s.BossQueue(), 1)
}

func TestBossRotationShiftsRequirements(t *testing.T) {
	boss := testBoss(5, 7)

	assert.Equal(t, 5, boss.RequirementFor(SealFuoco))
	boss.RotationOffset = 1
	assert.Equal(t, 7, boss.RequirementFor(SealFuoco))
	boss.RotationOffset = -4 // wraps around the five seals
	assert.Equal(t, 7, boss.RequirementFor(SealFuoco))
	boss.RotationOffset = 5
	assert.Equal(t, 5, boss.RequirementFor(SealFuoco))
}

func TestDefendersOfOrdersHumansFirst(t *testing.T) {
	s, err := NewSession(Config{Seed: 3, BotDelay: -1}, []Seat{
		{Name: "alba", Human: true},
		{Name: "bot-1"},
		{Name: "carla", Human: true},
		{Name: "bot-2"},
	}, nil)
	require.NoError(t, err)

	defenders := s.defendersOf(s.Players()[0])
	require.Len(t, defenders, 3)
	assert.Equal(t, "carla", defenders[0].Name)
	assert.Equal(t, "bot-1", defenders[1].Name)
	assert.Equal(t, "bot-2", defenders[2].Name)
}
