package rules

import (
	"errors"
	"fmt"
)

// Phase represents the two states of the action gate.
type Phase int

const (
	// PhaseTurn means the current player is idle, awaiting an action request.
	PhaseTurn Phase = iota
	// PhaseActionInProgress means one action slot is reserved and no other
	// action may start until it completes.
	PhaseActionInProgress
)

var phaseNames = map[Phase]string{
	PhaseTurn:             "turn",
	PhaseActionInProgress: "actionInProgress",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Failure reasons returned across the engine boundary. The string form is the
// reason tag the UI switches on.
var (
	ErrInvalidPhase     = errors.New("InvalidPhase")
	ErrActionsExhausted = errors.New("ActionsExhausted")
	ErrActionInProgress = errors.New("ActionAlreadyInProgress")
)

// ActionController gates how many discrete actions the current player may take
// per turn and prevents overlapping actions. The single reservation is the
// engine's only concurrency-control mechanism: while an action (possibly
// suspended on a human decision) is in progress, no other action can start.
type ActionController struct {
	phase  Phase
	kind   string
	taken  int
	budget int
}

// NewActionController creates a controller with the given per-turn budget.
func NewActionController(budget int) *ActionController {
	if budget <= 0 {
		budget = 2
	}
	return &ActionController{phase: PhaseTurn, budget: budget}
}

// Phase returns the current gate state.
func (ac *ActionController) Phase() Phase { return ac.phase }

// CurrentKind returns the reserved action kind, or "" when idle.
func (ac *ActionController) CurrentKind() string { return ac.kind }

// Taken returns how many actions have been consumed this turn.
func (ac *ActionController) Taken() int { return ac.taken }

// Budget returns the per-turn action allowance.
func (ac *ActionController) Budget() int { return ac.budget }

// Remaining returns how many actions are still available this turn.
func (ac *ActionController) Remaining() int { return ac.budget - ac.taken }

// Request reserves an action slot for the given kind. It fails when the gate
// is not idle, when the budget is spent, or when a kind is already reserved
// (unreachable under correct external sequencing, kept as a guard).
func (ac *ActionController) Request(kind string) error {
	if ac.phase != PhaseTurn {
		return ErrInvalidPhase
	}
	if ac.taken >= ac.budget {
		return ErrActionsExhausted
	}
	if ac.kind != "" {
		return ErrActionInProgress
	}
	ac.kind = kind
	ac.phase = PhaseActionInProgress
	return nil
}

// Complete releases the reservation. When consumed is true the action is
// charged against the budget. The previously reserved kind is returned so the
// caller can narrate what finished.
func (ac *ActionController) Complete(consumed bool) (kind string) {
	kind = ac.kind
	if consumed && ac.phase == PhaseActionInProgress {
		ac.taken++
	}
	ac.kind = ""
	ac.phase = PhaseTurn
	return kind
}

// Reset clears the budget and any pending reservation for a new turn. A
// stuck reservation must never survive a turn change.
func (ac *ActionController) Reset() {
	ac.taken = 0
	ac.kind = ""
	ac.phase = PhaseTurn
}
