package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/effect"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

var _ combat.EffectEvaluator = (*effect.Standard)(nil)

// fixedSrc returns val clamped into [0, n). val 0 makes every chance above
// zero succeed; val 999999 makes only certainties succeed.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

const (
	always = 0
	never  = 999999
)

const (
	stateKnockout = 1
	stateGuard    = 2
	statePoison   = 3
)

const (
	skillAttack = iota + 1
	skillGuard
	skillFire
	skillHeal
	skillDrain
	skillRaise
	skillBroken
	skillPoison
	skillVenom
	skillBuffs
	skillSmash
	skillDrainMP
)

func conditions() *condition.Registry {
	reg := condition.NewRegistry()
	reg.Register(&condition.Def{ID: stateKnockout, Name: "Knockout", Priority: 100, Restriction: condition.RestrictCannotMove})
	reg.Register(&condition.Def{ID: stateGuard, Name: "Guard", AutoRemovalTiming: condition.RemoveAtActionEnd,
		MinTurns: 1, MaxTurns: 1, Traits: []trait.Trait{{Code: trait.CodeSpecialFlag, DataID: trait.FlagGuard}}})
	reg.Register(&condition.Def{ID: statePoison, Name: "Poison", Priority: 50})
	return reg
}

func skills() *skill.Registry {
	reg := skill.NewRegistry()
	physical := func(id int, name, formula string) *skill.Def {
		return &skill.Def{ID: id, Name: name, Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1, HitType: skill.HitPhysical,
			Damage: skill.Damage{Type: skill.DamageHP, ElementID: skill.ElementNormalAttack, Formula: formula}}
	}
	reg.Register(physical(skillAttack, "Attack", "a.atk * 4 - b.def * 2"))
	reg.Register(&skill.Def{ID: skillGuard, Name: "Guard", Scope: skill.ScopeUser, SuccessRate: 100, Repeats: 1,
		Effects: []skill.Effect{{Code: skill.EffectAddState, DataID: stateGuard, Value1: 1}}})
	reg.Register(&skill.Def{ID: skillFire, Name: "Fire", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitMagical, TPGain: 10, Damage: skill.Damage{Type: skill.DamageHP, ElementID: 2, Formula: "100"}})
	reg.Register(&skill.Def{ID: skillHeal, Name: "Heal", Scope: skill.ScopeAlly, SuccessRate: 100, Repeats: 1,
		Damage: skill.Damage{Type: skill.RecoverHP, Formula: "50"}})
	reg.Register(&skill.Def{ID: skillDrain, Name: "Drain", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitMagical, Damage: skill.Damage{Type: skill.DrainHP, Formula: "500"}})
	reg.Register(&skill.Def{ID: skillRaise, Name: "Raise", Scope: skill.ScopeDeadAlly, SuccessRate: 100, Repeats: 1,
		Effects: []skill.Effect{{Code: skill.EffectRemoveState, DataID: stateKnockout, Value1: 1}}})
	reg.Register(physical(skillBroken, "Broken", "a.atk +"))
	poison := physical(skillPoison, "Poison Sting", "1")
	poison.Effects = []skill.Effect{{Code: skill.EffectAddState, DataID: statePoison, Value1: 1}}
	reg.Register(poison)
	venom := physical(skillVenom, "Venom Bite", "1")
	venom.Effects = []skill.Effect{{Code: skill.EffectAddState, DataID: 0, Value1: 1}}
	reg.Register(venom)
	reg.Register(&skill.Def{ID: skillBuffs, Name: "Rally", Scope: skill.ScopeAlly, SuccessRate: 100, Repeats: 1,
		Effects: []skill.Effect{
			{Code: skill.EffectAddBuff, DataID: int(trait.ATK), Value1: 3},
			{Code: skill.EffectAddDebuff, DataID: int(trait.DEF), Value1: 3},
			{Code: skill.EffectRecoverMP, Value1: 0.1, Value2: 5},
			{Code: skill.EffectGainTP, Value1: 12.7},
		}})
	smash := physical(skillSmash, "Smash", "a.atk * 4 - b.def * 2")
	smash.Damage.Critical = true
	reg.Register(smash)
	reg.Register(&skill.Def{ID: skillDrainMP, Name: "Mana Drain", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitCertain, Damage: skill.Damage{Type: skill.DrainMP, Formula: "30"}})
	return reg
}

type world struct {
	conds  *condition.Registry
	skills *skill.Registry
	roller *dice.Roller
	eval   *effect.Standard
	logs   *observer.ObservedLogs
}

func newWorld(t testing.TB, val int) *world {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(fixedSrc{val: val}, logger)
	formulas := scripting.NewFormulas(0)
	t.Cleanup(formulas.Close)
	return &world{
		conds:  conditions(),
		skills: skills(),
		roller: roller,
		eval:   effect.New(roller, formulas, logger),
		logs:   logs,
	}
}

func (w *world) combatant(name string, kind battler.Kind, traits ...trait.Trait) *battler.Combatant {
	limits := battler.DefaultActorLimits()
	if kind == battler.KindEnemy {
		limits = battler.DefaultEnemyLimits()
	}
	return battler.New(battler.Config{
		Name:       name,
		Kind:       kind,
		Level:      1,
		Base:       [trait.ParamCount]int{200, 50, 20, 10, 15, 10, 10, 10},
		Traits:     append([]trait.Trait{{Code: trait.CodeXParam, DataID: int(trait.HIT), Value: 1}}, traits...),
		Limits:     limits,
		Conditions: w.conds,
		Skills:     w.skills,
		Roller:     w.roller,
	})
}

func (w *world) apply(subject *battler.Combatant, skillID int, target *battler.Combatant) battler.ActionResult {
	return w.eval.Apply(battler.NewAction(subject, false).SetSkill(skillID), target)
}

func TestNew_PanicsOnNilCollaborators(t *testing.T) {
	roller := dice.NewLoggedRoller(fixedSrc{}, nil)
	assert.Panics(t, func() { effect.New(nil, scripting.NewFormulas(0), nil) })
	assert.Panics(t, func() { effect.New(roller, nil, nil) })
}

func TestApply_PhysicalHit(t *testing.T) {
	w := newWorld(t, never)
	hero := w.combatant("Hero", battler.KindActor)
	slime := w.combatant("Slime", battler.KindEnemy)

	r := w.apply(hero, skillAttack, slime)
	assert.True(t, r.IsHit())
	assert.True(t, r.Physical)
	assert.True(t, r.Success)
	assert.Equal(t, 60, r.HPDamage)
	assert.Equal(t, 140, slime.HP())
	assert.Equal(t, 15, slime.TP(), "damage charges TP by 50 * damage / mhp")
}

func TestApply_MissWithoutHitRate(t *testing.T) {
	w := newWorld(t, never)
	hero := w.combatant("Hero", battler.KindActor, trait.Trait{Code: trait.CodeXParam, DataID: int(trait.HIT), Value: -1})
	slime := w.combatant("Slime", battler.KindEnemy)

	r := w.apply(hero, skillAttack, slime)
	assert.True(t, r.Used)
	assert.True(t, r.Missed)
	assert.False(t, r.IsHit())
	assert.Equal(t, 200, slime.HP())
}

func TestApply_Evasion(t *testing.T) {
	w := newWorld(t, always)
	hero := w.combatant("Hero", battler.KindActor)
	slime := w.combatant("Slime", battler.KindEnemy, trait.Trait{Code: trait.CodeXParam, DataID: int(trait.EVA), Value: 0.05})

	r := w.apply(hero, skillAttack, slime)
	assert.False(t, r.Missed)
	assert.True(t, r.Evaded)
	assert.Equal(t, 200, slime.HP())

	r = w.apply(hero, skillFire, slime)
	assert.False(t, r.Evaded, "magic is dodged by magic evasion only")
}

func TestApply_GuardHalvesDamage(t *testing.T) {
	w := newWorld(t, never)
	hero := w.combatant("Hero", battler.KindActor)
	slime := w.combatant("Slime", battler.KindEnemy)
	require.True(t, slime.AddState(stateGuard))

	r := w.apply(hero, skillAttack, slime)
	assert.Equal(t, 30, r.HPDamage)
}

func TestApply_CriticalTriplesDamage(t *testing.T) {
	w := newWorld(t, always)
	hero := w.combatant("Hero", battler.KindActor, trait.Trait{Code: trait.CodeXParam, DataID: int(trait.CRI), Value: 0.1})
	slime := w.combatant("Slime", battler.KindEnemy)

	r := w.apply(hero, skillSmash, slime)
	assert.True(t, r.Critical)
	assert.Equal(t, 180, r.HPDamage)

	r = w.apply(hero, skillAttack, slime)
	assert.False(t, r.Critical, "skills without the critical flag never crit")
}

func TestApply_ElementAndDamageRates(t *testing.T) {
	w := newWorld(t, never)
	mage := w.combatant("Mage", battler.KindActor)
	bat := w.combatant("Bat", battler.KindEnemy,
		trait.Trait{Code: trait.CodeElementRate, DataID: 2, Value: 1.5},
		trait.Trait{Code: trait.CodeSParam, DataID: int(trait.MDR), Value: 0.5},
	)

	r := w.apply(mage, skillFire, bat)
	assert.Equal(t, 75, r.HPDamage)
	assert.Equal(t, 10, mage.TP(), "the user gains the skill's TP")
}

func TestApply_NormalAttackUsesStrongestAttackElement(t *testing.T) {
	w := newWorld(t, never)
	hero := w.combatant("Hero", battler.KindActor,
		trait.Trait{Code: trait.CodeAttackElement, DataID: 2},
		trait.Trait{Code: trait.CodeAttackElement, DataID: 3},
	)
	slime := w.combatant("Slime", battler.KindEnemy,
		trait.Trait{Code: trait.CodeElementRate, DataID: 2, Value: 0.5},
		trait.Trait{Code: trait.CodeElementRate, DataID: 3, Value: 2},
	)

	r := w.apply(hero, skillAttack, slime)
	assert.Equal(t, 120, r.HPDamage)
}

func TestApply_Recovery(t *testing.T) {
	w := newWorld(t, never)
	cleric := w.combatant("Cleric", battler.KindActor)
	hero := w.combatant("Hero", battler.KindActor, trait.Trait{Code: trait.CodeSParam, DataID: int(trait.REC), Value: 1.2})
	hero.SetHP(100)

	r := w.apply(cleric, skillHeal, hero)
	assert.Equal(t, -60, r.HPDamage)
	assert.Equal(t, 160, hero.HP())
}

func TestApply_DrainIsCappedByTargetHP(t *testing.T) {
	w := newWorld(t, never)
	vampire := w.combatant("Vampire", battler.KindEnemy)
	vampire.SetHP(50)
	hero := w.combatant("Hero", battler.KindActor)
	hero.SetHP(80)

	r := w.apply(vampire, skillDrain, hero)
	assert.True(t, r.Drain)
	assert.Equal(t, 80, r.HPDamage)
	assert.True(t, hero.IsDead())
	assert.Equal(t, 130, vampire.HP())
}

func TestApply_DrainMP(t *testing.T) {
	w := newWorld(t, never)
	imp := w.combatant("Imp", battler.KindEnemy)
	imp.SetMP(0)
	mage := w.combatant("Mage", battler.KindActor)
	mage.SetMP(20)

	r := w.apply(imp, skillDrainMP, mage)
	assert.Equal(t, 20, r.MPDamage)
	assert.Zero(t, mage.MP())
	assert.Equal(t, 20, imp.MP())
}

func TestApply_FormulaErrorCountsAsZero(t *testing.T) {
	w := newWorld(t, never)
	hero := w.combatant("Hero", battler.KindActor)
	slime := w.combatant("Slime", battler.KindEnemy)

	r := w.apply(hero, skillBroken, slime)
	assert.True(t, r.IsHit())
	assert.Zero(t, r.HPDamage)
	assert.Equal(t, 200, slime.HP())
	assert.Equal(t, 1, w.logs.FilterMessage("damage formula failed").FilterLevelExact(zap.WarnLevel).Len())
}

func TestApply_DeadFriendSkillOnlyAffectsTheDead(t *testing.T) {
	w := newWorld(t, never)
	cleric := w.combatant("Cleric", battler.KindActor)
	hero := w.combatant("Hero", battler.KindActor)

	r := w.apply(cleric, skillRaise, hero)
	assert.False(t, r.Used)

	hero.SetHP(0)
	require.True(t, hero.IsDead())
	r = w.apply(cleric, skillRaise, hero)
	assert.True(t, r.Used)
	assert.True(t, r.Success)
	assert.True(t, hero.IsAlive())
	assert.Equal(t, 1, hero.HP())
}

func TestApply_GuardSkillAddsState(t *testing.T) {
	w := newWorld(t, never)
	hero := w.combatant("Hero", battler.KindActor)

	r := w.apply(hero, skillGuard, hero)
	assert.True(t, r.IsStateAdded(stateGuard))
	assert.True(t, hero.IsGuard())
}

func TestApply_StateRateScalesUncertainStates(t *testing.T) {
	w := newWorld(t, never)
	scorpion := w.combatant("Scorpion", battler.KindEnemy)
	hero := w.combatant("Hero", battler.KindActor)
	immune := w.combatant("Knight", battler.KindActor, trait.Trait{Code: trait.CodeStateRate, DataID: statePoison, Value: 0})

	r := w.apply(scorpion, skillPoison, hero)
	assert.True(t, r.IsStateAdded(statePoison))

	r = w.apply(scorpion, skillPoison, immune)
	assert.False(t, r.IsStateAdded(statePoison))
	assert.False(t, immune.IsStateAffected(statePoison))
}

func TestApply_AttackStates(t *testing.T) {
	w := newWorld(t, never)
	snake := w.combatant("Snake", battler.KindEnemy, trait.Trait{Code: trait.CodeAttackState, DataID: statePoison, Value: 1})
	hero := w.combatant("Hero", battler.KindActor)

	r := w.apply(snake, skillVenom, hero)
	assert.True(t, r.IsStateAdded(statePoison))
}

func TestApply_BuffsAndRecoveryEffects(t *testing.T) {
	w := newWorld(t, always)
	bard := w.combatant("Bard", battler.KindActor)
	hero := w.combatant("Hero", battler.KindActor)
	hero.SetMP(0)

	r := w.apply(bard, skillBuffs, hero)
	assert.True(t, r.Success)
	assert.Equal(t, 1, hero.BuffLevel(trait.ATK))
	assert.Equal(t, -1, hero.BuffLevel(trait.DEF))
	assert.Equal(t, 10, hero.MP(), "mmp * 0.1 + 5")
	assert.Equal(t, 12, hero.TP())
}

func TestProperty_DamageStaysWithinVitals(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := newWorld(t, rapid.IntRange(0, 999999).Draw(rt, "draw"))
		hero := w.combatant("Hero", battler.KindActor)
		slime := w.combatant("Slime", battler.KindEnemy)
		hero.AddParamPlus(trait.ATK, rapid.IntRange(0, 500).Draw(rt, "atk"))
		slime.SetHP(rapid.IntRange(1, 200).Draw(rt, "hp"))
		before := slime.HP()

		r := w.apply(hero, skillSmash, slime)
		if r.IsHit() {
			assert.GreaterOrEqual(rt, r.HPDamage, 0)
		}
		assert.GreaterOrEqual(rt, slime.HP(), 0)
		assert.LessOrEqual(rt, slime.HP(), before)
	})
}
