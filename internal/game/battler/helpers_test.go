package battler_test

import (
	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
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
	stateKnockout  = 1
	stateGuard     = 2
	statePoison    = 3
	stateSleep     = 4
	stateConfusion = 5
	stateRage      = 6
	stateAtkUp     = 7
	stateFireWeak  = 8
)

const (
	skillAttack = 1
	skillGuard  = 2
	skillFire   = 3
	skillHeal   = 4
)

func testConditions() *condition.Registry {
	reg := condition.NewRegistry()
	reg.Register(&condition.Def{ID: stateKnockout, Name: "Knockout", Priority: 100, Restriction: condition.RestrictCannotMove})
	reg.Register(&condition.Def{ID: stateGuard, Name: "Guard", Priority: 0, AutoRemovalTiming: condition.RemoveAtActionEnd,
		MinTurns: 1, MaxTurns: 1, RemoveAtBattleEnd: true,
		Traits: []trait.Trait{{Code: trait.CodeSpecialFlag, DataID: trait.FlagGuard}}})
	reg.Register(&condition.Def{ID: statePoison, Name: "Poison", Priority: 50, AutoRemovalTiming: condition.RemoveAtTurnEnd,
		MinTurns: 2, MaxTurns: 2, RemoveAtBattleEnd: true,
		Traits: []trait.Trait{{Code: trait.CodeXParam, DataID: int(trait.HRG), Value: -0.1}}})
	reg.Register(&condition.Def{ID: stateSleep, Name: "Sleep", Priority: 80, Restriction: condition.RestrictCannotMove,
		AutoRemovalTiming: condition.RemoveAtTurnEnd, MinTurns: 3, MaxTurns: 3, RemoveByDamage: true, ChanceByDamage: 100})
	reg.Register(&condition.Def{ID: stateConfusion, Name: "Confusion", Priority: 70, Restriction: condition.RestrictAttackAnyone})
	reg.Register(&condition.Def{ID: stateRage, Name: "Rage", Priority: 60, Restriction: condition.RestrictAttackEnemy})
	reg.Register(&condition.Def{ID: stateAtkUp, Name: "Power", Priority: 10, RemoveByRestriction: true,
		Traits: []trait.Trait{{Code: trait.CodeParam, DataID: int(trait.ATK), Value: 1.5}}})
	reg.Register(&condition.Def{ID: stateFireWeak, Name: "Frail", Priority: 10,
		Traits: []trait.Trait{
			{Code: trait.CodeElementRate, DataID: 2, Value: 2},
			{Code: trait.CodeSkillTypeSeal, DataID: 1},
		}})
	return reg
}

func testSkills() *skill.Registry {
	reg := skill.NewRegistry()
	reg.Register(&skill.Def{ID: skillAttack, Name: "Attack", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitPhysical, Damage: skill.Damage{Type: skill.DamageHP, ElementID: -1, Formula: "a.atk * 4 - b.def * 2"}})
	reg.Register(&skill.Def{ID: skillGuard, Name: "Guard", Scope: skill.ScopeUser, SuccessRate: 100, Repeats: 1, Speed: 2000,
		Effects: []skill.Effect{{Code: skill.EffectAddState, DataID: stateGuard, Value1: 1}}})
	reg.Register(&skill.Def{ID: skillFire, Name: "Fire", Scope: skill.ScopeEnemy, SuccessRate: 100, Repeats: 1,
		HitType: skill.HitMagical, MPCost: 10, SkillTypeID: 1,
		Damage: skill.Damage{Type: skill.DamageHP, ElementID: 2, Formula: "100"}})
	reg.Register(&skill.Def{ID: skillHeal, Name: "Heal", Scope: skill.ScopeAlly, SuccessRate: 100, Repeats: 1,
		TPCost: 20, SkillTypeID: 2, Damage: skill.Damage{Type: skill.RecoverHP, Formula: "50"}})
	return reg
}

type opt func(*battler.Config)

func withBase(p trait.Param, v int) opt { return func(c *battler.Config) { c.Base[p] = v } }

func withTraits(ts ...trait.Trait) opt {
	return func(c *battler.Config) { c.Traits = append(c.Traits, ts...) }
}

func withKind(k battler.Kind) opt { return func(c *battler.Config) { c.Kind = k } }

func withYield(y battler.Yield) opt { return func(c *battler.Config) { c.Yield = y } }

func newCombatant(val int, opts ...opt) *battler.Combatant {
	cfg := battler.Config{
		Name:       "Hero",
		Kind:       battler.KindActor,
		Level:      1,
		Base:       [trait.ParamCount]int{100, 50, 20, 10, 15, 10, 10, 10},
		SkillIDs:   []int{skillAttack, skillGuard, skillFire, skillHeal},
		Limits:     battler.DefaultActorLimits(),
		Conditions: testConditions(),
		Skills:     testSkills(),
		Roller:     dice.NewLoggedRoller(fixedSrc{val: val}, nil),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return battler.New(cfg)
}
