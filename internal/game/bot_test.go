package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotTurnSpendsBudgetAndAdvances(t *testing.T) {
	s := newTestSession(t, "bot-1", "bot-2")
	first := s.CurrentPlayer()

	s.PlayBotTurn(context.Background())

	assert.NotSame(t, first, s.CurrentPlayer())
	assert.Equal(t, 2, s.Turn())
	assert.Equal(t, 0, s.ActionsTaken(), "budget resets for the next player")
}

func TestBotPrefersAffordableSummon(t *testing.T) {
	s := newTestSession(t, "bot-1", "bot-2")
	p := s.CurrentPlayer()

	folletto := instantiate(demon("Folletto", 1, 2, SealFuoco, "", 0, ""))
	s.SendToLimbo(folletto)
	p.Hand = []*Card{instantiate(energy("Rogo", 3, SealFuoco))}

	kind, run := s.pickBotAction(context.Background(), p)
	assert.Equal(t, "evocazione", kind)
	assert.True(t, run())
	assert.Contains(t, p.Circle, folletto)
}

func TestBotAttemptsReachableConquest(t *testing.T) {
	s := newTestSession(t, "bot-1", "bot-2")
	p := s.CurrentPlayer()
	for _, pl := range s.Players() {
		pl.Hand = nil
	}
	p.Seal = SealFuoco
	p.Circle = []*Card{instantiate(demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""))}
	s.bossQueue = []*Card{testBoss(5, 7)}

	kind, run := s.pickBotAction(context.Background(), p)
	assert.Equal(t, "conquista", kind)
	assert.True(t, run(), "the attempt consumes the action either way")
	assert.Len(t, p.ConqueredBosses, 1)
}

func TestBotFallsBackToDrawing(t *testing.T) {
	s := newTestSession(t, "bot-1", "bot-2")
	p := s.CurrentPlayer()
	p.Hand = nil
	p.Seal = SealFuoco
	s.bossQueue = []*Card{testBoss(9, 9)}

	kind, _ := s.pickBotAction(context.Background(), p)
	assert.Equal(t, "pesca", kind)
}

func TestBotAgentTakesFirstOption(t *testing.T) {
	bot := NewBotAgent(rand.New(rand.NewSource(1)), 0, 0)
	card := instantiate(Card{Name: "Spostastelle", Kind: KindResource, Category: CategoryMagic, Effect: EffectRotateBoss, Steps: []int{1}})

	choice, err := bot.ChooseStarShift(context.Background(), ShiftPrompt{
		Mode:    ShiftModeAttacco,
		Options: []ShiftOption{{Card: card, Step: 1}, {Card: card, Step: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.Same(t, card, choice.Card)
	assert.Equal(t, 1, choice.Step)
}

func TestBotAgentDeclinesWithoutOptions(t *testing.T) {
	bot := NewBotAgent(rand.New(rand.NewSource(1)), 0, 0)
	choice, err := bot.ChooseStarShift(context.Background(), ShiftPrompt{Mode: ShiftModeDifesa})
	require.NoError(t, err)
	assert.Nil(t, choice)
}

func TestBotAgentDeclinesOnCancelledContext(t *testing.T) {
	bot := NewBotAgent(rand.New(rand.NewSource(1)), time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	card := instantiate(Card{Name: "Stoppastella", Kind: KindResource, Category: CategoryMagic, Effect: EffectCancelRotation})
	choice, err := bot.ChooseStarShift(ctx, ShiftPrompt{
		Mode:    ShiftModeStoppastella,
		Options: []ShiftOption{{Card: card, Stoppa: true}},
	})
	require.NoError(t, err)
	assert.Nil(t, choice)
}

func TestBotAgentAlwaysWithholds(t *testing.T) {
	bot := NewBotAgent(rand.New(rand.NewSource(1)), 0, 1.0)
	card := instantiate(Card{Name: "Stoppastella", Kind: KindResource, Category: CategoryMagic, Effect: EffectCancelRotation})

	choice, err := bot.ChooseStarShift(context.Background(), ShiftPrompt{
		Mode:      ShiftModeStoppastella,
		Defending: true,
		Options:   []ShiftOption{{Card: card, Stoppa: true}},
	})
	require.NoError(t, err)
	assert.Nil(t, choice, "withhold chance 1.0 always declines")
}
