package battler

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// buffStep is the parameter rate added per buff level.
const buffStep = 0.25

func roundHalfUp(v float64) float64 { return math.Floor(v + 0.5) }

// AllTraits returns the static traits followed by the traits of every active condition.
func (c *Combatant) AllTraits() []trait.Trait {
	out := make([]trait.Trait, 0, len(c.traits))
	out = append(out, c.traits...)
	return append(out, c.ledger.Traits()...)
}

// ParamBase returns the template value of p.
func (c *Combatant) ParamBase(p trait.Param) int { return c.base[p] }

// ParamPlus returns the additive bonus of p.
func (c *Combatant) ParamPlus(p trait.Param) int { return c.plus[p] }

// AddParamPlus adds v to the additive bonus of p and re-clamps vitals.
func (c *Combatant) AddParamPlus(p trait.Param, v int) {
	c.plus[p] += v
	c.Refresh()
}

// ParamMin returns the floor of p: 0 for MMP, 1 otherwise.
func (c *Combatant) ParamMin(p trait.Param) int {
	if p == trait.MMP {
		return 0
	}
	return 1
}

// ParamMax returns the cap of p.
func (c *Combatant) ParamMax(p trait.Param) int { return c.limits.ParamMax[p] }

// ParamRate returns the product of every param-rate trait tagged for p.
func (c *Combatant) ParamRate(p trait.Param) float64 {
	return trait.Fold(c.AllTraits(), trait.CodeParam, int(p))
}

// BuffRate returns 1 + 0.25 * buff level of p.
func (c *Combatant) BuffRate(p trait.Param) float64 {
	return 1 + buffStep*float64(c.ledger.BuffLevel(p))
}

// Param returns the final value of p:
// clamp(round((base + plus) * paramRate * buffRate), min, max).
func (c *Combatant) Param(p trait.Param) int {
	v := float64(c.base[p]+c.plus[p]) * c.ParamRate(p) * c.BuffRate(p)
	n := int(roundHalfUp(v))
	if lo := c.ParamMin(p); n < lo {
		n = lo
	}
	if hi := c.ParamMax(p); n > hi {
		n = hi
	}
	return n
}

func (c *Combatant) MHP() int { return c.Param(trait.MHP) }
func (c *Combatant) MMP() int { return c.Param(trait.MMP) }
func (c *Combatant) ATK() int { return c.Param(trait.ATK) }
func (c *Combatant) DEF() int { return c.Param(trait.DEF) }
func (c *Combatant) MAT() int { return c.Param(trait.MAT) }
func (c *Combatant) MDF() int { return c.Param(trait.MDF) }
func (c *Combatant) AGI() int { return c.Param(trait.AGI) }
func (c *Combatant) LUK() int { return c.Param(trait.LUK) }

// MaxTP is a rule constant, not derived from stats.
func (c *Combatant) MaxTP() int { return c.limits.MaxTP }

// XParam returns the sum of every ex-param trait tagged for x.
func (c *Combatant) XParam(x trait.XParam) float64 {
	return trait.Fold(c.AllTraits(), trait.CodeXParam, int(x))
}

// SParam returns the product of every sp-param trait tagged for s.
func (c *Combatant) SParam(s trait.SParam) float64 {
	return trait.Fold(c.AllTraits(), trait.CodeSParam, int(s))
}

// ElementRate returns the damage multiplier for element id.
func (c *Combatant) ElementRate(id int) float64 {
	return trait.Fold(c.AllTraits(), trait.CodeElementRate, id)
}

// DebuffRate returns the debuff success multiplier for p.
func (c *Combatant) DebuffRate(p trait.Param) float64 {
	return trait.Fold(c.AllTraits(), trait.CodeDebuffRate, int(p))
}

// StateRate returns the success multiplier for condition id.
func (c *Combatant) StateRate(id int) float64 {
	return trait.Fold(c.AllTraits(), trait.CodeStateRate, id)
}

// StateResistSet returns the condition ids the combatant is immune to.
func (c *Combatant) StateResistSet() []int { return trait.Set(c.AllTraits(), trait.CodeStateResist) }

// IsStateResist reports whether the combatant is immune to condition id.
func (c *Combatant) IsStateResist(id int) bool {
	return trait.Has(c.AllTraits(), trait.CodeStateResist, id)
}

// AttackElements returns the element ids of the combatant's normal attack.
func (c *Combatant) AttackElements() []int { return trait.Set(c.AllTraits(), trait.CodeAttackElement) }

// AttackStates returns the condition ids the normal attack may inflict.
func (c *Combatant) AttackStates() []int { return trait.Set(c.AllTraits(), trait.CodeAttackState) }

// AttackStatesRate returns the chance the normal attack inflicts condition id.
func (c *Combatant) AttackStatesRate(id int) float64 {
	return trait.Fold(c.AllTraits(), trait.CodeAttackState, id)
}

// AttackSpeed returns the speed bonus of the normal attack.
func (c *Combatant) AttackSpeed() int { return int(trait.SumAll(c.AllTraits(), trait.CodeAttackSpeed)) }

// AttackTimesAdd returns the extra hits of the normal attack, never negative.
func (c *Combatant) AttackTimesAdd() int {
	return int(math.Max(trait.SumAll(c.AllTraits(), trait.CodeAttackTimes), 0))
}

func (c *Combatant) AddedSkillTypes() []int { return trait.Set(c.AllTraits(), trait.CodeSkillTypeAdd) }

func (c *Combatant) IsSkillTypeSealed(id int) bool {
	return trait.Has(c.AllTraits(), trait.CodeSkillTypeSeal, id)
}

func (c *Combatant) AddedSkills() []int { return trait.Set(c.AllTraits(), trait.CodeSkillAdd) }

func (c *Combatant) IsSkillSealed(id int) bool {
	return trait.Has(c.AllTraits(), trait.CodeSkillSeal, id)
}

func (c *Combatant) IsEquipWeaponTypeOK(id int) bool {
	return trait.Has(c.AllTraits(), trait.CodeEquipWeapon, id)
}

func (c *Combatant) IsEquipArmorTypeOK(id int) bool {
	return trait.Has(c.AllTraits(), trait.CodeEquipArmor, id)
}

func (c *Combatant) IsEquipTypeLocked(id int) bool {
	return trait.Has(c.AllTraits(), trait.CodeEquipLock, id)
}

func (c *Combatant) IsEquipTypeSealed(id int) bool {
	return trait.Has(c.AllTraits(), trait.CodeEquipSeal, id)
}

// SlotType returns the equip slot layout: 0 normal, 1 dual wield.
func (c *Combatant) SlotType() int { return trait.MaxID(c.AllTraits(), trait.CodeSlotType) }

// ActionPlusSet returns the chance of each extra action.
func (c *Combatant) ActionPlusSet() []float64 { return trait.Values(c.AllTraits(), trait.CodeActionPlus) }

// SpecialFlag reports whether flag is granted by any trait.
func (c *Combatant) SpecialFlag(flag int) bool {
	return trait.Has(c.AllTraits(), trait.CodeSpecialFlag, flag)
}

// CollapseType returns the collapse effect id, the largest granted.
func (c *Combatant) CollapseType() int { return trait.MaxID(c.AllTraits(), trait.CodeCollapseType) }

// PartyAbility reports whether ability is granted by any trait.
func (c *Combatant) PartyAbility(ability int) bool {
	return trait.Has(c.AllTraits(), trait.CodePartyAbility, ability)
}

func (c *Combatant) IsAutoBattle() bool { return c.SpecialFlag(trait.FlagAutoBattle) }
func (c *Combatant) IsPreserveTP() bool {
	return c.limits.PreserveTP || c.SpecialFlag(trait.FlagPreserveTP)
}

// IsGuard reports whether the combatant is guarding and able to.
func (c *Combatant) IsGuard() bool { return c.SpecialFlag(trait.FlagGuard) && c.CanMove() }

// IsSubstitute reports whether the combatant covers dying allies and is able to.
func (c *Combatant) IsSubstitute() bool { return c.SpecialFlag(trait.FlagSubstitute) && c.CanMove() }
