package combat_test

import (
	"context"
	"sync"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/party"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// fixedSrc returns val clamped into [0, n).
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

const (
	stateKnockout = 1
	stateGuard    = 2
)

const (
	skillAttack = 1
	skillGuard  = 2
	skillFire   = 3
)

func testConditions() *condition.Registry {
	reg := condition.NewRegistry()
	reg.Register(&condition.Def{ID: stateKnockout, Name: "Knockout", Priority: 100, Restriction: condition.RestrictCannotMove})
	reg.Register(&condition.Def{ID: stateGuard, Name: "Guard", AutoRemovalTiming: condition.RemoveAtActionEnd,
		MinTurns: 1, MaxTurns: 1, RemoveAtBattleEnd: true,
		Traits: []trait.Trait{{Code: trait.CodeSpecialFlag, DataID: trait.FlagGuard}}})
	return reg
}

func testSkills() *skill.Registry {
	reg := skill.NewRegistry()
	reg.Register(&skill.Def{ID: skillAttack, Name: "Attack", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitPhysical, Damage: skill.Damage{Type: skill.DamageHP, ElementID: -1, Formula: "a.atk * 4 - b.def * 2"}})
	reg.Register(&skill.Def{ID: skillGuard, Name: "Guard", Scope: skill.ScopeUser, SuccessRate: 100, Repeats: 1, Speed: 2000,
		Effects: []skill.Effect{{Code: skill.EffectAddState, DataID: stateGuard, Value1: 1}}})
	reg.Register(&skill.Def{ID: skillFire, Name: "Fire", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitMagical, MPCost: 10, Damage: skill.Damage{Type: skill.DamageHP, ElementID: 2, Formula: "100"}})
	return reg
}

type member struct {
	name   string
	agi    int
	traits []trait.Trait
	yield  battler.Yield
}

func newMember(roller *dice.Roller, kind battler.Kind, m member) *battler.Combatant {
	limits := battler.DefaultActorLimits()
	if kind == battler.KindEnemy {
		limits = battler.DefaultEnemyLimits()
	}
	return battler.New(battler.Config{
		Name:       m.name,
		Kind:       kind,
		Level:      1,
		Base:       [trait.ParamCount]int{100, 30, 20, 10, 10, 10, m.agi, 10},
		Traits:     m.traits,
		SkillIDs:   []int{skillAttack, skillGuard, skillFire},
		Yield:      m.yield,
		Limits:     limits,
		Conditions: testConditions(),
		Skills:     testSkills(),
		Roller:     roller,
	})
}

func newUnit(roller *dice.Roller, name string, kind battler.Kind, ms ...member) *party.Party {
	p := party.New(name, 8, roller)
	for _, m := range ms {
		p.Add(newMember(roller, kind, m))
	}
	return p
}

// recorder is a Bridge that keeps every event it is given.
type recorder struct {
	mu     sync.Mutex
	busy   bool
	events []combat.Event
}

func (r *recorder) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

func (r *recorder) Emit(e combat.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) setBusy(b bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy = b
}

func (r *recorder) all() []combat.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]combat.Event(nil), r.events...)
}

func eventsOf[T combat.Event](r *recorder) []T {
	var out []T
	for _, e := range r.all() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// flatDamage deals dmg HP damage for every opponent-targeting action and
// marks every other action as used without effect.
type flatDamage struct{ dmg int }

func (f flatDamage) Apply(a *battler.Action, target *battler.Combatant) battler.ActionResult {
	target.ClearResult()
	target.Result().Used = true
	if a.IsForOpponent() {
		target.GainHP(-f.dmg)
	}
	return *target.Result()
}

type hookFunc func(combat.Trigger, *combat.Session)

func (hookFunc) Running() bool { return false }

func (f hookFunc) Run(t combat.Trigger, s *combat.Session) { f(t, s) }

type countingMetrics struct {
	started, turns int
	actions        []string
	ended          []string
}

func (m *countingMetrics) BattleStarted(context.Context) { m.started++ }

func (m *countingMetrics) ActionExecuted(_ context.Context, skill string) {
	m.actions = append(m.actions, skill)
}

func (m *countingMetrics) TurnCompleted(context.Context) { m.turns++ }

func (m *countingMetrics) BattleEnded(_ context.Context, result string) {
	m.ended = append(m.ended, result)
}

func attackChooser() party.ActionChooser {
	return party.ChooserFunc(func(subject *battler.Combatant, times int, _, _ *party.Party) []*battler.Action {
		out := make([]*battler.Action, 0, times)
		for range times {
			out = append(out, battler.NewAction(subject, false).SetAttack().SetTarget(0))
		}
		return out
	})
}

func skillChooser(id int) party.ActionChooser {
	return party.ChooserFunc(func(subject *battler.Combatant, _ int, _, _ *party.Party) []*battler.Action {
		return []*battler.Action{battler.NewAction(subject, false).SetSkill(id).SetTarget(0)}
	})
}

func noOpening(_, _ *party.Party) (float64, float64) { return 0, 0 }

type fixture struct {
	roller  *dice.Roller
	party   *party.Party
	troop   *party.Party
	bridge  *recorder
	metrics *countingMetrics
}

func newFixture(val int, heroes, enemies []member) *fixture {
	roller := dice.NewLoggedRoller(fixedSrc{val: val}, nil)
	return &fixture{
		roller:  roller,
		party:   newUnit(roller, "Heroes", battler.KindActor, heroes...),
		troop:   newUnit(roller, "Slimes", battler.KindEnemy, enemies...),
		bridge:  &recorder{},
		metrics: &countingMetrics{},
	}
}

func (f *fixture) session(opts combat.Options, deps combat.Deps) *combat.Session {
	if opts.OpeningRates == nil {
		opts.OpeningRates = noOpening
	}
	deps.Party = f.party
	deps.Troop = f.troop
	deps.Roller = f.roller
	deps.Bridge = f.bridge
	deps.Metrics = f.metrics
	if deps.Effects == nil {
		deps.Effects = flatDamage{dmg: 1}
	}
	return combat.NewSession(opts, deps)
}

// stepUntil calls Update until done reports true or limit steps pass.
func stepUntil(s *combat.Session, limit int, done func() bool) int {
	for i := 0; i < limit; i++ {
		if done() {
			return i
		}
		s.Update()
	}
	return limit
}

func names(cs []*battler.Combatant) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name())
	}
	return out
}
