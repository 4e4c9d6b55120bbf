// Package combat implements the battle scheduler: a step-driven phase state
// machine that orders the combatants of two parties by speed, executes their
// queued actions, applies forced actions, and decides how the battle ends.
package combat

// Phase is the scheduler's current state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStart
	PhaseInput
	PhaseTurn
	PhaseAction
	PhaseTurnEnd
	PhaseAborting
	PhaseBattleEnd
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStart:
		return "start"
	case PhaseInput:
		return "input"
	case PhaseTurn:
		return "turn"
	case PhaseAction:
		return "action"
	case PhaseTurnEnd:
		return "turn_end"
	case PhaseAborting:
		return "aborting"
	case PhaseBattleEnd:
		return "battle_end"
	default:
		return "unknown"
	}
}

// Result is how the battle itself ended.
type Result int

const (
	ResultNone Result = iota
	ResultVictory
	ResultEscaped
	ResultDefeat
)

// String returns a human-readable result label.
func (r Result) String() string {
	switch r {
	case ResultVictory:
		return "victory"
	case ResultEscaped:
		return "escaped"
	case ResultDefeat:
		return "defeat"
	default:
		return "none"
	}
}

// Outcome is what the host should do once the battle is reported.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeVictory returns to the map with rewards granted.
	OutcomeVictory
	// OutcomeEscaped returns to the map without rewards.
	OutcomeEscaped
	// OutcomeContinueAfterDefeat returns to the map with the party revived.
	OutcomeContinueAfterDefeat
	// OutcomeGameOver ends the game session.
	OutcomeGameOver
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeEscaped:
		return "escaped"
	case OutcomeContinueAfterDefeat:
		return "continue_after_defeat"
	case OutcomeGameOver:
		return "game_over"
	default:
		return "none"
	}
}
