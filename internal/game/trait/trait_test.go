package trait_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

func TestReductionFor_EveryCodeIsMapped(t *testing.T) {
	codes := []trait.Code{
		trait.CodeElementRate, trait.CodeDebuffRate, trait.CodeStateRate, trait.CodeStateResist,
		trait.CodeParam, trait.CodeXParam, trait.CodeSParam,
		trait.CodeAttackElement, trait.CodeAttackState, trait.CodeAttackSpeed, trait.CodeAttackTimes,
		trait.CodeSkillTypeAdd, trait.CodeSkillTypeSeal, trait.CodeSkillAdd, trait.CodeSkillSeal,
		trait.CodeEquipWeapon, trait.CodeEquipArmor, trait.CodeEquipLock, trait.CodeEquipSeal, trait.CodeSlotType,
		trait.CodeActionPlus, trait.CodeSpecialFlag, trait.CodeCollapseType, trait.CodePartyAbility,
	}
	for _, c := range codes {
		assert.NotEqual(t, "invalid", trait.ReductionFor(c).String(), "code %s", c)
	}
}

func TestReductionFor_PanicsOnUnmapped(t *testing.T) {
	assert.Panics(t, func() { trait.ReductionFor(trait.Code(99)) })
}

func TestFold_NeutralValues(t *testing.T) {
	assert.Equal(t, 1.0, trait.Fold(nil, trait.CodeParam, int(trait.ATK)))
	assert.Equal(t, 0.0, trait.Fold(nil, trait.CodeXParam, int(trait.HIT)))
	assert.Equal(t, 1.0, trait.Fold(nil, trait.CodeElementRate, 3))
	assert.Equal(t, 0, trait.MaxID(nil, trait.CodeCollapseType))
	assert.Empty(t, trait.Set(nil, trait.CodeSkillSeal))
}

func TestFold_ProductAndSum(t *testing.T) {
	ts := []trait.Trait{
		{Code: trait.CodeParam, DataID: int(trait.ATK), Value: 1.5},
		{Code: trait.CodeParam, DataID: int(trait.ATK), Value: 0.5},
		{Code: trait.CodeParam, DataID: int(trait.DEF), Value: 2},
		{Code: trait.CodeXParam, DataID: int(trait.HIT), Value: 0.95},
		{Code: trait.CodeXParam, DataID: int(trait.HIT), Value: 0.05},
	}
	assert.InDelta(t, 0.75, trait.Fold(ts, trait.CodeParam, int(trait.ATK)), 1e-9)
	assert.InDelta(t, 1.0, trait.Fold(ts, trait.CodeXParam, int(trait.HIT)), 1e-9)
}

func TestFold_PanicsOnSetCode(t *testing.T) {
	assert.Panics(t, func() { trait.Fold(nil, trait.CodeSkillSeal, 1) })
	assert.Panics(t, func() { trait.SumAll(nil, trait.CodeParam) })
	assert.Panics(t, func() { trait.Values(nil, trait.CodeSpecialFlag) })
	assert.Panics(t, func() { trait.MaxID(nil, trait.CodeSkillAdd) })
}

func TestSet_UnionSortedDistinct(t *testing.T) {
	ts := []trait.Trait{
		{Code: trait.CodeSkillTypeSeal, DataID: 3},
		{Code: trait.CodeSkillTypeSeal, DataID: 1},
		{Code: trait.CodeSkillTypeSeal, DataID: 3},
		{Code: trait.CodeSkillSeal, DataID: 7},
	}
	assert.Equal(t, []int{1, 3}, trait.Set(ts, trait.CodeSkillTypeSeal))
	assert.True(t, trait.Has(ts, trait.CodeSkillSeal, 7))
	assert.False(t, trait.Has(ts, trait.CodeSkillSeal, 3))
}

func TestMaxIDAndValues(t *testing.T) {
	ts := []trait.Trait{
		{Code: trait.CodeCollapseType, DataID: trait.CollapseBoss},
		{Code: trait.CodeCollapseType, DataID: trait.CollapseInstant},
		{Code: trait.CodeActionPlus, Value: 0.5},
		{Code: trait.CodeActionPlus, Value: 0.25},
		{Code: trait.CodeAttackSpeed, Value: 3},
		{Code: trait.CodeAttackSpeed, DataID: 9, Value: 2},
	}
	assert.Equal(t, trait.CollapseInstant, trait.MaxID(ts, trait.CodeCollapseType))
	assert.Equal(t, []float64{0.5, 0.25}, trait.Values(ts, trait.CodeActionPlus))
	assert.Equal(t, 5.0, trait.SumAll(ts, trait.CodeAttackSpeed))
}

func TestCode_UnmarshalYAML(t *testing.T) {
	var out []trait.Trait
	err := yaml.Unmarshal([]byte(`
- code: param
  data_id: 2
  value: 1.2
- code: 22
  data_id: 0
  value: 0.1
`), &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, trait.CodeParam, out[0].Code)
	assert.Equal(t, trait.CodeXParam, out[1].Code)

	err = yaml.Unmarshal([]byte(`- code: nonsense`), &out)
	assert.Error(t, err)
	err = yaml.Unmarshal([]byte(`- code: 99`), &out)
	assert.Error(t, err)
}

func TestParamString(t *testing.T) {
	assert.Equal(t, "agi", trait.AGI.String())
	assert.Equal(t, "param(9)", trait.Param(9).String())
}

func TestProperty_ProductIsOrderIndependent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		vals := rapid.SliceOfN(rapid.Float64Range(0, 2), 0, 6).Draw(rt, "rates")
		ts := make([]trait.Trait, len(vals))
		rev := make([]trait.Trait, len(vals))
		for i, v := range vals {
			ts[i] = trait.Trait{Code: trait.CodeElementRate, DataID: 2, Value: v}
			rev[len(vals)-1-i] = ts[i]
		}
		assert.InDelta(rt, trait.Fold(ts, trait.CodeElementRate, 2), trait.Fold(rev, trait.CodeElementRate, 2), 1e-9)
	})
}
