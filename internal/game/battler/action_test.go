package battler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

func TestNewAction_PanicsWithoutSubject(t *testing.T) {
	assert.Panics(t, func() { battler.NewAction(nil, false) })
}

func TestAction_PrepareConfusedBecomesAttack(t *testing.T) {
	c := newCombatant(0)
	a := battler.NewAction(c, false).SetSkill(skillFire).SetTarget(1)
	c.AddState(stateConfusion)
	a.Prepare()
	assert.True(t, a.IsPrepared())
	assert.True(t, a.IsAttack())
	assert.Equal(t, battler.RandomTarget, a.TargetIndex())
}

func TestAction_PrepareForcingIgnoresConfusion(t *testing.T) {
	c := newCombatant(0)
	c.AddState(stateConfusion)
	a := battler.NewAction(c, true).SetSkill(skillFire).SetTarget(1)
	a.Prepare()
	assert.Equal(t, skillFire, a.Skill().ID)
	assert.Equal(t, 1, a.TargetIndex())
}

func TestAction_IsValid(t *testing.T) {
	c := newCombatant(0)
	assert.False(t, battler.NewAction(c, false).IsValid(), "no skill chosen")

	fire := battler.NewAction(c, false).SetSkill(skillFire)
	assert.True(t, fire.IsValid())

	c.AddState(stateFireWeak) // seals skill type 1
	assert.False(t, fire.IsValid())
	assert.True(t, battler.NewAction(c, true).SetSkill(skillFire).IsValid(), "forcing ignores usability")

	c.SetMP(5)
	heal := battler.NewAction(c, false).SetSkill(skillHeal)
	c.SetTP(10)
	assert.False(t, heal.IsValid(), "tp cost 20 cannot be paid")
}

func TestAction_SpeedAndMakeSpeed(t *testing.T) {
	c := newCombatant(0, withBase(trait.AGI, 20))
	assert.Equal(t, 0, c.Speed())
	c.AddAction(battler.NewAction(c, false).SetAttack())
	c.AddAction(battler.NewAction(c, false).SetGuard())
	c.MakeSpeed()
	// attack: 20 + 0; guard: 20 + 0 + 2000; the slowest wins.
	assert.Equal(t, 20, c.Speed())

	fast := newCombatant(100, withBase(trait.AGI, 20))
	a := battler.NewAction(fast, false).SetAttack()
	// floor(5 + 20/4) = 10 so the draw tops out at 9.
	assert.Equal(t, 29, a.Speed())

	c.ClearActions()
	c.MakeSpeed()
	assert.Equal(t, 0, c.Speed())
}

func TestAction_AttackSpeedTrait(t *testing.T) {
	c := newCombatant(0, withBase(trait.AGI, 8), withTraits(trait.Trait{Code: trait.CodeAttackSpeed, Value: 5}))
	assert.Equal(t, 13, battler.NewAction(c, false).SetAttack().Speed())
	assert.Equal(t, 8, battler.NewAction(c, false).SetSkill(skillFire).Speed())
}

func TestAction_NumRepeats(t *testing.T) {
	c := newCombatant(0, withTraits(trait.Trait{Code: trait.CodeAttackTimes, Value: 1}))
	assert.Equal(t, 2, battler.NewAction(c, false).SetAttack().NumRepeats())
	assert.Equal(t, 1, battler.NewAction(c, false).SetSkill(skillFire).NumRepeats())
	assert.Equal(t, 0, battler.NewAction(c, false).NumRepeats())
}

func TestAction_Predicates(t *testing.T) {
	c := newCombatant(0)
	atk := battler.NewAction(c, false).SetAttack()
	assert.True(t, atk.IsForOpponent())
	assert.True(t, atk.IsPhysical())
	assert.False(t, atk.IsCertainHit())
	assert.Equal(t, "Attack", atk.Name())

	grd := battler.NewAction(c, false).SetGuard()
	assert.True(t, grd.IsGuard())
	assert.True(t, grd.IsForFriend())
	assert.True(t, grd.IsCertainHit())

	assert.True(t, battler.NewAction(c, false).SetSkill(skillFire).IsMagical())
	assert.Equal(t, "none", battler.NewAction(c, false).Name())
}

func TestQueue_CurrentAndRemove(t *testing.T) {
	c := newCombatant(0)
	assert.Nil(t, c.CurrentAction())
	a1 := battler.NewAction(c, false).SetAttack()
	a2 := battler.NewAction(c, false).SetGuard()
	c.SetActions([]*battler.Action{a1, a2})
	require.Equal(t, a1, c.CurrentAction())
	c.RemoveCurrentAction()
	assert.Equal(t, a2, c.CurrentAction())
	c.RemoveCurrentAction()
	c.RemoveCurrentAction()
	assert.Nil(t, c.CurrentAction())
}

func TestMakeActionTimes(t *testing.T) {
	c := newCombatant(0, withTraits(
		trait.Trait{Code: trait.CodeActionPlus, Value: 0.5},
		trait.Trait{Code: trait.CodeActionPlus, Value: 0.25},
	))
	assert.Equal(t, 3, c.MakeActionTimes())

	never := newCombatant(999_999, withTraits(trait.Trait{Code: trait.CodeActionPlus, Value: 0.5}))
	assert.Equal(t, 1, never.MakeActionTimes())
}

func TestSkillCosts(t *testing.T) {
	c := newCombatant(0, withTraits(trait.Trait{Code: trait.CodeSParam, DataID: int(trait.MCR), Value: 0.5}))
	fire := c.Skills().MustGet(skillFire)
	assert.Equal(t, 5, c.SkillMPCost(fire))
	c.PaySkillCost(fire)
	assert.Equal(t, 45, c.MP())
}

func TestPaySkillCost_StopsAtZero(t *testing.T) {
	c := newCombatant(0)
	c.SetMP(3)
	c.SetTP(5)
	c.PaySkillCost(c.Skills().MustGet(skillFire))
	c.PaySkillCost(c.Skills().MustGet(skillHeal))
	assert.Equal(t, 0, c.MP())
	assert.Equal(t, 0, c.TP())
}

func TestPropertyPaySkillCostKeepsVitalsInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newCombatant(0)
		c.SetMP(rapid.IntRange(0, c.MMP()).Draw(rt, "mp"))
		c.SetTP(rapid.IntRange(0, c.MaxTP()).Draw(rt, "tp"))
		ids := rapid.SliceOfN(rapid.SampledFrom([]int{skillAttack, skillFire, skillHeal}), 1, 10).Draw(rt, "skills")
		for _, id := range ids {
			c.PaySkillCost(c.Skills().MustGet(id))
			if c.MP() < 0 || c.MP() > c.MMP() || c.TP() < 0 || c.TP() > c.MaxTP() {
				rt.Fatalf("vitals out of range after paying for skill %d: mp=%d tp=%d", id, c.MP(), c.TP())
			}
		}
	})
}

func TestUsableSkills(t *testing.T) {
	c := newCombatant(0)
	c.SetTP(0)
	var ids []int
	for _, s := range c.UsableSkills() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{skillAttack, skillGuard, skillFire}, ids)
}

func TestDropItemsAndExp(t *testing.T) {
	c := newCombatant(0, withKind(battler.KindEnemy), withYield(battler.Yield{
		Exp: 10, Gold: 5,
		Drops: []battler.Drop{{ItemID: 7, Denominator: 2}, {ItemID: 0, Denominator: 1}},
	}))
	assert.Equal(t, []int{7}, c.DropItems(1))
	assert.Equal(t, 10, c.ExpYield())
	assert.Equal(t, 5, c.GoldYield())

	hero := newCombatant(0, withTraits(trait.Trait{Code: trait.CodeSParam, DataID: int(trait.EXR), Value: 1.5}))
	assert.Equal(t, 15, hero.GainExp(10))
	assert.Equal(t, 15, hero.Experience())
}
