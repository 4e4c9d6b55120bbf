package combat

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/party"
)

// Options are the rule switches of one battle.
type Options struct {
	CanEscape            bool
	CanLose              bool
	EscapeRatioIncrement float64
	// OpeningRates decides preemptive and surprise odds; nil uses DefaultOpeningRates.
	OpeningRates OpeningRates
}

// OptionsFromConfig derives Options from the battle configuration.
func OptionsFromConfig(cfg config.BattleConfig) Options {
	return Options{
		CanEscape:            cfg.CanEscape,
		CanLose:              cfg.CanLose,
		EscapeRatioIncrement: cfg.EscapeRatioIncrement,
	}
}

// Deps are the collaborators a Session drives.
type Deps struct {
	Party *party.Party
	Troop *party.Party
	// PartyChooser fills the party's queues automatically. When nil the host
	// supplies commands through InputActions and EndInput.
	PartyChooser party.ActionChooser
	TroopChooser party.ActionChooser
	// Targets defaults to StandardTargets.
	Targets TargetSelector
	Effects EffectEvaluator
	Bridge  Bridge
	// Rewards, Hooks, Logger, and Metrics are optional.
	Rewards RewardSink
	Hooks   EventHooks
	Roller  *dice.Roller
	Logger  *zap.Logger
	Metrics Metrics
}

// Session is one battle. It is step driven: every Update advances the phase
// machine by at most one unit of work and never blocks.
//
// It is not safe for concurrent use; Driver serialises host commands with ticks.
type Session struct {
	id      uuid.UUID
	opts    Options
	party   *party.Party
	troop   *party.Party
	pc      party.ActionChooser
	tc      party.ActionChooser
	targets TargetSelector
	effects EffectEvaluator
	bridge  Bridge
	rewards RewardSink
	hooks   EventHooks
	roller  *dice.Roller
	logger  *zap.Logger
	metrics Metrics

	phase       Phase
	result      Result
	outcome     Outcome
	reported    bool
	preemptive  bool
	surprise    bool
	escapeRatio float64
	escaped     bool
	abort       bool
	// turnForced is reported by TurnForced and logged at turn end; the
	// scheduler does not branch on it.
	turnForced  bool
	reward      Reward

	order   []*battler.Combatant
	subject *battler.Combatant
	action  *battler.Action
	pending []*battler.Combatant
	forced  []*battler.Combatant

	// resume holds the phase and subject a forced action interrupted.
	resume        Phase
	resumeSubject *battler.Combatant
	inForced      bool

	// scope buffers the events of one target's resolution.
	scope   []Event
	scoping bool
}

// NewSession creates an idle Session.
//
// Precondition: Party, Troop, Effects, Bridge, and Roller must be non-nil.
// Postcondition: Phase() == PhaseIdle.
func NewSession(opts Options, deps Deps) *Session {
	if deps.Party == nil || deps.Troop == nil {
		panic("combat: NewSession requires Party and Troop")
	}
	if deps.Effects == nil || deps.Bridge == nil || deps.Roller == nil {
		panic("combat: NewSession requires Effects, Bridge, and Roller")
	}
	if opts.OpeningRates == nil {
		opts.OpeningRates = DefaultOpeningRates
	}
	if deps.Targets == nil {
		deps.Targets = StandardTargets{Roller: deps.Roller}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	id := uuid.New()
	return &Session{
		id:      id,
		opts:    opts,
		party:   deps.Party,
		troop:   deps.Troop,
		pc:      deps.PartyChooser,
		tc:      deps.TroopChooser,
		targets: deps.Targets,
		effects: deps.Effects,
		bridge:  deps.Bridge,
		rewards: deps.Rewards,
		hooks:   deps.Hooks,
		roller:  deps.Roller,
		logger:  deps.Logger.With(zap.String("session", id.String())),
		metrics: deps.Metrics,
	}
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) Phase() Phase         { return s.phase }
func (s *Session) Result() Result       { return s.result }
func (s *Session) Outcome() Outcome     { return s.outcome }
func (s *Session) IsReported() bool     { return s.reported }
func (s *Session) Preemptive() bool     { return s.preemptive }
func (s *Session) Surprise() bool       { return s.surprise }
func (s *Session) EscapeRatio() float64 { return s.escapeRatio }
func (s *Session) Escaped() bool        { return s.escaped }

// TurnForced reports whether a forced action ran during the current turn. It
// is informational and resets when the turn ends.
func (s *Session) TurnForced() bool { return s.turnForced }

func (s *Session) Rewards() Reward     { return s.reward }
func (s *Session) Party() *party.Party { return s.party }
func (s *Session) Troop() *party.Party { return s.troop }
func (s *Session) CanEscape() bool     { return s.opts.CanEscape }

// Subject returns the combatant whose actions are being processed, or nil.
func (s *Session) Subject() *battler.Combatant { return s.subject }

// ActionOrder returns the combatants still waiting to act this turn.
func (s *Session) ActionOrder() []*battler.Combatant {
	return append([]*battler.Combatant(nil), s.order...)
}

// InputActions replaces a party member's queue with the host's commands.
//
// Precondition: Phase() == PhaseInput and m is a party battle member.
func (s *Session) InputActions(m *battler.Combatant, actions ...*battler.Action) {
	s.mustPhase("InputActions", PhaseInput)
	if m == nil || !s.party.IsBattleMember(m) {
		panic("combat: InputActions requires a party battle member")
	}
	for _, a := range actions {
		if a == nil || a.Subject() != m {
			panic(fmt.Sprintf("combat: InputActions got an action not owned by %s", m.Name()))
		}
	}
	m.SetActions(actions)
}

// EndInput closes the input phase and starts the turn.
//
// Precondition: Phase() == PhaseInput.
func (s *Session) EndInput() {
	s.mustPhase("EndInput", PhaseInput)
	s.startTurn()
}

// Escape attempts to flee. A preemptive battle always escapes; otherwise the
// draw succeeds with probability EscapeRatio. Failure raises the ratio, clears
// the party's queued actions, and starts the turn without them.
//
// Precondition: Phase() == PhaseInput and CanEscape().
func (s *Session) Escape() bool {
	s.mustPhase("Escape", PhaseInput)
	if !s.opts.CanEscape {
		panic("combat: Escape called in a battle that forbids escape")
	}
	success := s.preemptive || s.roller.Chance("escape", s.escapeRatio)
	s.emit(EscapeAttempted{Success: success, Ratio: s.escapeRatio})
	s.logger.Info("escape attempted", zap.Bool("success", success), zap.Float64("ratio", s.escapeRatio))
	if success {
		s.startAborting()
		return true
	}
	s.escapeRatio += s.opts.EscapeRatioIncrement
	s.party.ClearActions()
	s.startTurn()
	return false
}

// Abort asks the battle to end as an escape. It is honoured at the next
// termination check, never in the middle of an action's target loop.
func (s *Session) Abort() {
	s.abort = true
}

// ForceAction makes subject use skillID at targetIndex ahead of the normal
// order. The subject is removed from the remaining turn order so the forced
// action is its only action this turn.
//
// Precondition: subject is a member of either party; the battle is running.
func (s *Session) ForceAction(subject *battler.Combatant, skillID, targetIndex int) {
	if subject == nil {
		panic("combat: ForceAction requires a subject")
	}
	if s.unitOf(subject) == nil {
		panic(fmt.Sprintf("combat: ForceAction subject %s is in neither party", subject.Name()))
	}
	if s.phase == PhaseIdle || s.phase == PhaseBattleEnd {
		panic(fmt.Sprintf("combat: ForceAction called in phase %s", s.phase))
	}
	subject.ClearActions()
	subject.AddAction(battler.NewAction(subject, true).SetSkill(skillID).SetTarget(targetIndex))
	s.order = slices.DeleteFunc(s.order, func(c *battler.Combatant) bool { return c == subject })
	if !slices.Contains(s.forced, subject) {
		s.forced = append(s.forced, subject)
	}
}

// Say pushes a script message to the presentation layer.
func (s *Session) Say(text string) {
	s.emit(Message{Text: text})
}

func (s *Session) mustPhase(op string, want Phase) {
	if s.phase != want {
		panic(fmt.Sprintf("combat: %s called in phase %s, want %s", op, s.phase, want))
	}
}

func (s *Session) setPhase(p Phase) {
	if s.phase != p {
		s.logger.Debug("phase", zap.Stringer("from", s.phase), zap.Stringer("to", p))
	}
	s.phase = p
}

// unitOf returns the party c fights for, or nil.
func (s *Session) unitOf(c *battler.Combatant) *party.Party {
	switch {
	case slices.Contains(s.party.Members(), c):
		return s.party
	case slices.Contains(s.troop.Members(), c):
		return s.troop
	default:
		return nil
	}
}

func (s *Session) opponentsOf(c *battler.Combatant) *party.Party {
	if s.unitOf(c) == s.party {
		return s.troop
	}
	return s.party
}

// emit sends e to the bridge, or to the open log scope.
func (s *Session) emit(e Event) {
	if s.scoping {
		s.scope = append(s.scope, e)
		return
	}
	s.bridge.Emit(e)
}

func (s *Session) pushScope() {
	s.scope = s.scope[:0]
	s.scoping = true
}

// popScope flushes the scope when keep is true and replaces it with a single
// NoEffect event otherwise.
func (s *Session) popScope(keep bool, target *battler.Combatant) {
	s.scoping = false
	if !keep {
		s.bridge.Emit(NoEffect{Target: target})
		return
	}
	for _, e := range s.scope {
		s.bridge.Emit(e)
	}
}
