package troopevent_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/effect"
	"github.com/cory-johannsen/battlecore/internal/game/party"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
	"github.com/cory-johannsen/battlecore/internal/game/troopevent"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

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
	statePoison   = 3
)

const (
	skillAttack = 1
	skillGuard  = 2
)

type recorder struct {
	mu     sync.Mutex
	events []combat.Event
}

func (r *recorder) Busy() bool { return false }

func (r *recorder) Emit(e combat.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if m, ok := e.(combat.Message); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *recorder) forced() []combat.ActionStarted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []combat.ActionStarted
	for _, e := range r.events {
		if as, ok := e.(combat.ActionStarted); ok && as.Forced {
			out = append(out, as)
		}
	}
	return out
}

type battle struct {
	session *combat.Session
	hooks   *troopevent.Hooks
	bridge  *recorder
	party   *party.Party
	troop   *party.Party
}

func newBattle(t *testing.T, script string) *battle {
	t.Helper()
	logger := zap.NewNop()
	roller := dice.NewLoggedRoller(fixedSrc{val: 999999}, logger)

	conds := condition.NewRegistry()
	conds.Register(&condition.Def{ID: stateKnockout, Name: "Knockout", Priority: 100, Restriction: condition.RestrictCannotMove})
	conds.Register(&condition.Def{ID: stateGuard, Name: "Guard", AutoRemovalTiming: condition.RemoveAtActionEnd,
		MinTurns: 1, MaxTurns: 1, Traits: []trait.Trait{{Code: trait.CodeSpecialFlag, DataID: trait.FlagGuard}}})
	conds.Register(&condition.Def{ID: statePoison, Name: "Poison", Priority: 50})
	skills := skill.NewRegistry()
	skills.Register(&skill.Def{ID: skillAttack, Name: "Attack", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitPhysical, Damage: skill.Damage{Type: skill.DamageHP, ElementID: -1, Formula: "a.atk * 4 - b.def * 2"}})
	skills.Register(&skill.Def{ID: skillGuard, Name: "Guard", Scope: skill.ScopeUser, SuccessRate: 100, Repeats: 1, Speed: 2000,
		Effects: []skill.Effect{{Code: skill.EffectAddState, DataID: stateGuard, Value1: 1}}})

	newMember := func(name string, kind battler.Kind, agi int) *battler.Combatant {
		return battler.New(battler.Config{
			Name:       name,
			Kind:       kind,
			Level:      1,
			Base:       [trait.ParamCount]int{200, 30, 20, 10, 10, 10, agi, 10},
			Traits:     []trait.Trait{{Code: trait.CodeXParam, DataID: int(trait.HIT), Value: 1}},
			SkillIDs:   []int{skillAttack, skillGuard},
			Limits:     battler.DefaultActorLimits(),
			Conditions: conds,
			Skills:     skills,
			Roller:     roller,
		})
	}
	heroes := party.New("Heroes", 4, roller)
	heroes.Add(newMember("Hero", battler.KindActor, 10))
	slimes := party.New("Slimes", 8, roller)
	slimes.Add(newMember("Slime", battler.KindEnemy, 5))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.lua"), []byte(script), 0644))
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.LoadTroop("slimes", dir, 0))

	formulas := scripting.NewFormulas(0)
	t.Cleanup(formulas.Close)

	attack := party.ChooserFunc(func(subject *battler.Combatant, times int, _, _ *party.Party) []*battler.Action {
		out := make([]*battler.Action, 0, times)
		for range times {
			out = append(out, battler.NewAction(subject, false).SetAttack().SetTarget(0))
		}
		return out
	})
	b := &battle{
		hooks:  troopevent.New(mgr, "slimes", logger),
		bridge: &recorder{},
		party:  heroes,
		troop:  slimes,
	}
	b.session = combat.NewSession(
		combat.Options{OpeningRates: func(_, _ *party.Party) (float64, float64) { return 0, 0 }},
		combat.Deps{
			Party:        heroes,
			Troop:        slimes,
			PartyChooser: attack,
			TroopChooser: attack,
			Effects:      effect.New(roller, formulas, logger),
			Bridge:       b.bridge,
			Hooks:        b.hooks,
			Roller:       roller,
		},
	)
	return b
}

func (b *battle) run(t *testing.T, limit int) {
	t.Helper()
	b.session.Start()
	for range limit {
		if b.session.IsReported() {
			return
		}
		b.session.Update()
	}
	t.Fatalf("battle not reported after %d steps", limit)
}

func TestNew_PanicsWithoutManager(t *testing.T) {
	assert.Panics(t, func() { troopevent.New(nil, "slimes", nil) })
}

func TestHooks_ScriptedBattle(t *testing.T) {
	b := newBattle(t, `
		function on_battle_start(turn)
			battle.message("The slime wobbles.")
		end

		function on_turn_start(turn)
			if turn == 1 then
				local ok, err = battle.force_action("troop", 1, 99)
				if not ok then battle.message(err) end
				battle.force_action("troop", 1, 2)
			end
		end

		function on_turn_end(turn)
			if turn == 2 then battle.abort() end
		end
	`)
	b.run(t, 500)

	assert.Equal(t, []string{"The slime wobbles.", "troopevent: unknown skill 99"}, b.bridge.messages())
	forced := b.bridge.forced()
	require.Len(t, forced, 1)
	assert.Equal(t, "Slime", forced[0].Subject.Name())
	assert.Equal(t, "Guard", forced[0].Skill.Name)
	assert.Equal(t, combat.ResultEscaped, b.session.Result())
	assert.Equal(t, 2, b.troop.TurnCount())
	assert.False(t, b.hooks.Running())
}

func TestHooks_MemberAndAddState(t *testing.T) {
	b := newBattle(t, `
		function on_battle_start(turn)
			local hero = battle.member("party", 1)
			battle.message(hero.name .. " " .. hero.hp .. "/" .. hero.mhp)
			local ok = battle.add_state("party", 1, 3)
			battle.message(tostring(ok))
			local bad, err = battle.add_state("party", 1, 42)
			battle.message(err)
			local gone, why = battle.force_action("party", 4, 1)
			battle.message(why)
		end
	`)
	b.session.Start()

	assert.Equal(t, []string{
		"Hero 200/200",
		"true",
		"troopevent: state 42 cannot be added to Hero",
		"troopevent: no party member 4",
	}, b.bridge.messages())
	assert.True(t, b.party.Member(0).IsStateAffected(statePoison))
}

func TestHooks_ForceActionBeforeStartIsRejected(t *testing.T) {
	b := newBattle(t, `
		function on_turn_start(turn)
			local ok, err = battle.force_action("troop", 1, 1)
			battle.message(err)
		end
	`)
	b.hooks.Run(combat.TriggerTurnStart, b.session)
	assert.Equal(t, []string{troopevent.ErrNotRunning.Error()}, b.bridge.messages())
}
