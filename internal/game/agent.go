package game

import (
	"context"
	"math/rand"
	"time"
)

// ShiftMode says on whose behalf a star-shift prompt is issued.
type ShiftMode string

const (
	// ShiftModeAttacco asks the attacker to lower the boss requirement.
	ShiftModeAttacco ShiftMode = "attacco"
	// ShiftModeDifesa asks a defender to raise the boss requirement.
	ShiftModeDifesa ShiftMode = "difesa"
	// ShiftModeStoppastella asks whether to cancel the rotation just applied.
	ShiftModeStoppastella ShiftMode = "stoppastella"
)

// ShiftOption is one concrete move the engine has already validated as
// useful: playing Card with Step (rotation), or playing Card as a
// cancellation when Stoppa is set.
type ShiftOption struct {
	Card   *Card
	Step   int
	Stoppa bool
}

// ShiftPrompt carries everything a player needs to decide a negotiation move.
// Options only contains moves that would change whether the attacker clears
// the requirement; the engine never prompts when the list would be empty.
type ShiftPrompt struct {
	Boss            *Card
	Attacker        string
	Mode            ShiftMode
	LastStep        int  // step of the rotation a Stoppastella would undo
	CanStoppastella bool
	Defending       bool // the prompted player is on the defending side
	Requirement     int  // current requirement for the attacker's seal
	AttackerStars   int
	Options         []ShiftOption
}

// ShiftChoice is the answer to a ShiftPrompt. A nil choice means decline.
type ShiftChoice struct {
	Card   *Card
	Step   int
	Stoppa bool
}

// Agent decides negotiation moves for one seat. Human seats are served by the
// gateway, which suspends on the player's modal response; bots answer from a
// deterministic heuristic. The context bounds the wait: a cancelled context
// resolves as a decline, never as a stuck reservation.
type Agent interface {
	ChooseStarShift(ctx context.Context, prompt ShiftPrompt) (*ShiftChoice, error)
}

// BotAgent plays the negotiation with a fixed policy: take the first useful
// option the engine offers. When defending with a Stoppastella it withholds
// with a configurable probability so bot play is not always optimal.
type BotAgent struct {
	rng      *rand.Rand
	delay    time.Duration
	withhold float64
}

// NewBotAgent creates a bot. The delay is UI pacing between bot decisions,
// not a correctness requirement; withhold is the defense-cancellation skip
// chance in [0,1].
func NewBotAgent(rng *rand.Rand, delay time.Duration, withhold float64) *BotAgent {
	return &BotAgent{rng: rng, delay: delay, withhold: withhold}
}

// ChooseStarShift implements Agent.
func (b *BotAgent) ChooseStarShift(ctx context.Context, prompt ShiftPrompt) (*ShiftChoice, error) {
	if b.delay > 0 {
		timer := time.NewTimer(b.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil
		case <-timer.C:
		}
	}

	if len(prompt.Options) == 0 {
		return nil, nil
	}

	// A bot holding a useful Stoppastella as a defender sometimes sits on it.
	if prompt.Mode == ShiftModeStoppastella && prompt.Defending && b.withhold > 0 && b.rng.Float64() < b.withhold {
		return nil, nil
	}

	opt := prompt.Options[0]
	return &ShiftChoice{Card: opt.Card, Step: opt.Step, Stoppa: opt.Stoppa}, nil
}
