package combat

import (
	"context"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/party"
)

// Bridge is the presentation layer. The scheduler polls Busy once per tick and
// does no work while it reports true; it never waits on Emit.
type Bridge interface {
	Busy() bool
	Emit(Event)
}

// TargetSelector resolves an action into its ordered targets. It must not
// mutate anything the scheduler owns.
type TargetSelector interface {
	Targets(a *battler.Action, friends, opponents *party.Party) []*battler.Combatant
}

// EffectEvaluator applies one action to one target. It clamps vitals, updates
// the target's ledger, and returns the outcome record it left on the target.
type EffectEvaluator interface {
	Apply(a *battler.Action, target *battler.Combatant) battler.ActionResult
}

// Trigger names the moment a battle event hook fires.
type Trigger int

const (
	TriggerBattleStart Trigger = iota
	TriggerTurnStart
	TriggerTurnEnd
)

// String returns the hook name scripts define for the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerBattleStart:
		return "on_battle_start"
	case TriggerTurnStart:
		return "on_turn_start"
	case TriggerTurnEnd:
		return "on_turn_end"
	default:
		return "unknown"
	}
}

// EventHooks runs troop battle events. Hooks may call ForceAction, Abort, or
// Say on the session.
//
// Running is the suspension point for hooks that span several updates, such as
// a script waiting on a message window. While it reports true the scheduler
// does no work. Hooks that finish inside Run, like troopevent.Hooks, always
// report false.
type EventHooks interface {
	Running() bool
	Run(trigger Trigger, s *Session)
}

// Metrics receives battle counters. *observability.BattleMetrics implements it.
type Metrics interface {
	BattleStarted(ctx context.Context)
	ActionExecuted(ctx context.Context, skill string)
	TurnCompleted(ctx context.Context)
	BattleEnded(ctx context.Context, result string)
}

type noopMetrics struct{}

func (noopMetrics) BattleStarted(context.Context)          {}
func (noopMetrics) ActionExecuted(context.Context, string) {}
func (noopMetrics) TurnCompleted(context.Context)          {}
func (noopMetrics) BattleEnded(context.Context, string)    {}
