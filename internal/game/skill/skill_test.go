package skill_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/skill"
)

const fireYAML = `
- id: 10
  name: Fire
  message: "%s casts Fire!"
  scope: enemy
  success_rate: 100
  hit_type: magical
  mp_cost: 5
  skill_type_id: 1
  damage:
    type: hp_damage
    element_id: 2
    formula: "100 + a.mat * 2 - b.mdf * 2"
    variance: 20
    critical: false
  effects:
    - code: add_state
      data_id: 4
      value1: 0.5
- id: 11
  name: Double Attack
  scope: random_enemies
  random_targets: 2
  success_rate: 100
  hit_type: physical
  damage:
    type: hp_damage
    element_id: -1
    formula: "a.atk * 4 - b.def * 2"
    variance: 20
    critical: true
`

func TestLoadDirectory_ParsesList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "magic.yaml"), []byte(fireYAML), 0644))
	reg, err := skill.LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, reg.All(), 2)

	fire := reg.MustGet(10)
	assert.Equal(t, skill.ScopeEnemy, fire.Scope)
	assert.Equal(t, skill.HitMagical, fire.HitType)
	assert.Equal(t, skill.DamageHP, fire.Damage.Type)
	assert.Equal(t, 1, fire.Repeats, "repeats defaults to 1")
	require.Len(t, fire.Effects, 1)
	assert.Equal(t, skill.EffectAddState, fire.Effects[0].Code)

	dbl := reg.MustGet(11)
	assert.True(t, dbl.IsForRandom())
	assert.Equal(t, skill.ElementNormalAttack, dbl.Damage.ElementID)
}

func TestLoadDirectory_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown scope":   "- id: 1\n  name: X\n  scope: everyone\n",
		"unknown field":   "- id: 1\n  name: X\n  power: 9\n",
		"missing formula": "- id: 1\n  name: X\n  success_rate: 100\n  damage:\n    type: hp_damage\n",
		"bad rate":        "- id: 1\n  name: X\n  success_rate: 150\n",
		"random no count": "- id: 1\n  name: X\n  scope: random_enemies\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "s.yaml"), []byte(doc), 0644))
			_, err := skill.LoadDirectory(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadDirectory_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("- id: 1\n  name: A\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("- id: 1\n  name: B\n"), 0644))
	_, err := skill.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestScopePredicates(t *testing.T) {
	cases := []struct {
		scope                                     skill.Scope
		opponent, friend, dead, one, all, selects bool
	}{
		{skill.ScopeEnemy, true, false, false, true, false, true},
		{skill.ScopeEnemies, true, false, false, false, true, false},
		{skill.ScopeRandomEnemies, true, false, false, false, false, false},
		{skill.ScopeAlly, false, true, false, true, false, true},
		{skill.ScopeAllies, false, true, false, false, true, false},
		{skill.ScopeDeadAlly, false, true, true, true, false, true},
		{skill.ScopeDeadAllies, false, true, true, false, true, false},
		{skill.ScopeUser, false, true, false, true, false, false},
		{skill.ScopeNone, false, false, false, false, false, false},
	}
	for _, c := range cases {
		d := &skill.Def{Scope: c.scope}
		assert.Equal(t, c.opponent, d.IsForOpponent(), "%s opponent", c.scope)
		assert.Equal(t, c.friend, d.IsForFriend(), "%s friend", c.scope)
		assert.Equal(t, c.dead, d.IsForDeadFriend(), "%s dead", c.scope)
		assert.Equal(t, c.one, d.IsForOne(), "%s one", c.scope)
		assert.Equal(t, c.all, d.IsForAll(), "%s all", c.scope)
		assert.Equal(t, c.selects, d.NeedsSelection(), "%s selection", c.scope)
	}
}

func TestDamagePredicates(t *testing.T) {
	d := &skill.Def{Damage: skill.Damage{Type: skill.DrainMP}}
	assert.True(t, d.IsDrain())
	assert.True(t, d.AffectsMP())
	assert.False(t, d.AffectsHP())
	assert.False(t, d.IsDamage())

	d.Damage.Type = skill.RecoverHP
	assert.True(t, d.IsRecover())
	assert.True(t, d.AffectsHP())
}

func TestLoadDirectory_RealSkills(t *testing.T) {
	reg, err := skill.LoadDirectory("../../../content/skills")
	require.NoError(t, err)
	attack := reg.MustGet(1)
	assert.True(t, attack.IsPhysical())
	guard := reg.MustGet(2)
	assert.True(t, guard.IsForUser())
}
