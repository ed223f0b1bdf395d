// Package turn orchestrates a single turn: the resource gate that protects the
// last arrow, the executor that submits the turn and reconciles state, and the
// session that runs them in order.
package turn

// Phase is where a session is in the turn pipeline.
type Phase int

const (
	// PhaseIdle - ready for the next turn
	PhaseIdle Phase = iota
	// PhaseGateChecking - querying the quiver
	PhaseGateChecking
	// PhaseGateConfirming - waiting for the operator to confirm the last arrow
	PhaseGateConfirming
	// PhaseGateAborted - the gate stopped the turn; nothing was sent
	PhaseGateAborted
	// PhaseGateProceeding - the gate let the turn through
	PhaseGateProceeding
	// PhaseExecuting - the turn is being submitted
	PhaseExecuting
	// PhaseApplied - the server's outcome was applied
	PhaseApplied
	// PhaseFailed - the server rejected the turn or could not be reached
	PhaseFailed
	// PhaseFinished - the game is over; only a new game leaves this phase
	PhaseFinished
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGateChecking:
		return "gate_checking"
	case PhaseGateConfirming:
		return "gate_confirming"
	case PhaseGateAborted:
		return "gate_aborted"
	case PhaseGateProceeding:
		return "gate_proceeding"
	case PhaseExecuting:
		return "executing"
	case PhaseApplied:
		return "applied"
	case PhaseFailed:
		return "failed"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Busy reports whether a turn is in flight in this phase.
func (p Phase) Busy() bool {
	switch p {
	case PhaseIdle, PhaseFinished:
		return false
	default:
		return true
	}
}
