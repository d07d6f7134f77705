package game

// Failure reason tags. Operations return these inside their result instead of
// raising errors across the engine boundary, so the UI can react without a
// recover path.
const (
	ReasonInvalidPhase        = "InvalidPhase"
	ReasonActionsExhausted    = "ActionsExhausted"
	ReasonActionInProgress    = "ActionAlreadyInProgress"
	ReasonPaymentInsufficient = "PaymentInsufficient"
	ReasonNoTarget            = "NoTarget"
	ReasonUnhandledEffect     = "UnhandledEffect"
	ReasonSummoningBlocked    = "SummoningBlocked"
	ReasonArtifactUsed        = "ArtifactUsed"
)

// OpResult is the outcome of an engine operation.
type OpResult struct {
	OK     bool
	Reason string
}

func success() OpResult              { return OpResult{OK: true} }
func failure(reason string) OpResult { return OpResult{Reason: reason} }
