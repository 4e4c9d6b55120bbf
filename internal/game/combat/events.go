package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Event is one presentation notification. Events reach the Bridge in the
// exact order the scheduler produced them.
type Event interface {
	EventType() string
}

// BattleStarted opens the battle.
type BattleStarted struct {
	SessionID uuid.UUID
	Party     []*battler.Combatant
	Troop     []*battler.Combatant
}

// Emerged announces one troop member.
type Emerged struct {
	Name string
}

// Preemptive announces that the party strikes first.
type Preemptive struct {
	Party string
}

// Surprised announces that the troop ambushes the party.
type Surprised struct {
	Party string
}

// InputStarted asks the host for the party's commands.
type InputStarted struct {
	Turn int
}

// TurnStarted carries the turn's execution order.
type TurnStarted struct {
	Turn  int
	Order []*battler.Combatant
}

// ActionStarted announces an action and its resolved targets.
type ActionStarted struct {
	Subject *battler.Combatant
	Skill   *skill.Def
	Targets []*battler.Combatant
	Forced  bool
}

// Countered announces that Counter strikes back at Subject instead of being hit.
type Countered struct {
	Counter *battler.Combatant
	Subject *battler.Combatant
}

// Reflected announces that Reflector bounces a magical action back to its user.
type Reflected struct {
	Reflector *battler.Combatant
}

// Substituted announces that Substitute takes the hit meant for Target.
type Substituted struct {
	Substitute *battler.Combatant
	Target     *battler.Combatant
}

// ActionResulted carries the outcome record left on Target.
type ActionResulted struct {
	Subject *battler.Combatant
	Target  *battler.Combatant
	Result  battler.ActionResult
}

// NoEffect replaces a target's events when nothing noteworthy happened.
type NoEffect struct {
	Target *battler.Combatant
}

// Collapsed announces that Target was knocked out.
type Collapsed struct {
	Target       *battler.Combatant
	CollapseType int
}

// ActionEnded closes the action started by the matching ActionStarted.
type ActionEnded struct {
	Subject *battler.Combatant
}

// StatesExpired reports conditions and buffs swept by an end-of-actions or end-of-turn hook.
type StatesExpired struct {
	Member        *battler.Combatant
	RemovedStates []int
	RemovedBuffs  []trait.Param
}

// Regenerated reports end-of-turn regeneration or slip damage.
type Regenerated struct {
	Member *battler.Combatant
	Regen  battler.Regen
}

// TurnEnded closes the turn.
type TurnEnded struct {
	Turn int
}

// EscapeAttempted reports a party escape attempt.
type EscapeAttempted struct {
	Success bool
	Ratio   float64
}

// Aborting is the cue that the party leaves the battle.
type Aborting struct {
	Escaped bool
}

// Victory carries the rewards the party is about to receive.
type Victory struct {
	Reward Reward
}

// Defeat is the cue that the party has fallen.
type Defeat struct {
	CanLose bool
}

// Message is free text pushed by a battle event script.
type Message struct {
	Text string
}

// BattleEnded is the last event of a session.
type BattleEnded struct {
	Result  Result
	Outcome Outcome
}

func (BattleStarted) EventType() string   { return "battle_started" }
func (Emerged) EventType() string         { return "emerged" }
func (Preemptive) EventType() string      { return "preemptive" }
func (Surprised) EventType() string       { return "surprised" }
func (InputStarted) EventType() string    { return "input_started" }
func (TurnStarted) EventType() string     { return "turn_started" }
func (ActionStarted) EventType() string   { return "action_started" }
func (Countered) EventType() string       { return "countered" }
func (Reflected) EventType() string       { return "reflected" }
func (Substituted) EventType() string     { return "substituted" }
func (ActionResulted) EventType() string  { return "action_resulted" }
func (NoEffect) EventType() string        { return "no_effect" }
func (Collapsed) EventType() string       { return "collapsed" }
func (ActionEnded) EventType() string     { return "action_ended" }
func (StatesExpired) EventType() string   { return "states_expired" }
func (Regenerated) EventType() string     { return "regenerated" }
func (TurnEnded) EventType() string       { return "turn_ended" }
func (EscapeAttempted) EventType() string { return "escape_attempted" }
func (Aborting) EventType() string        { return "aborting" }
func (Victory) EventType() string         { return "victory" }
func (Defeat) EventType() string          { return "defeat" }
func (Message) EventType() string         { return "message" }
func (BattleEnded) EventType() string     { return "battle_ended" }
