package battler

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Regen is what one end-of-turn regeneration changed.
type Regen struct {
	HP int
	MP int
	TP int
}

// OnBattleStart draws a starting TP unless TP is preserved.
func (c *Combatant) OnBattleStart() {
	if !c.IsPreserveTP() {
		c.InitTP()
	}
}

// OnBattleEnd clears every battle-only effect and brings the combatant back into view.
func (c *Combatant) OnBattleEnd() {
	c.ClearResult()
	c.RemoveBattleStates()
	c.RemoveAllBuffs()
	c.ClearActions()
	if !c.IsPreserveTP() {
		c.ClearTP()
	}
	c.Appear()
}

// OnTurnEnd regenerates, counts down conditions and buffs, and sweeps
// the turn-end conditions and the buffs whose turns ran out.
func (c *Combatant) OnTurnEnd() Regen {
	c.ClearResult()
	regen := c.RegenerateAll()
	c.UpdateStateTurns()
	c.UpdateBuffTurns()
	c.RemoveStatesAuto(condition.RemoveAtTurnEnd)
	c.RemoveBuffsAuto()
	return regen
}

// OnAllActionsEnd sweeps the action-end conditions and expired buffs.
func (c *Combatant) OnAllActionsEnd() {
	c.ClearResult()
	c.RemoveStatesAuto(condition.RemoveAtActionEnd)
	c.RemoveBuffsAuto()
}

// OnDamage reacts to taking value HP damage: damage-sensitive conditions may
// drop and TP charges by floor(50 * value / mhp * tcr).
func (c *Combatant) OnDamage(value int) {
	c.RemoveStatesByDamage()
	rate := float64(value) / float64(c.MHP())
	c.GainSilentTP(int(math.Floor(50 * rate * c.SParam(trait.TCR))))
}

// RegenerateAll applies HP, MP, and TP regeneration to a living combatant.
// Slip damage never kills: HP loss is capped at HP-1.
func (c *Combatant) RegenerateAll() Regen {
	var r Regen
	if !c.IsAlive() {
		return r
	}
	hp := int(math.Floor(float64(c.MHP()) * c.XParam(trait.HRG)))
	if maxSlip := max(c.hp-1, 0); hp < -maxSlip {
		hp = -maxSlip
	}
	if hp != 0 {
		before := c.hp
		c.GainHP(hp)
		r.HP = c.hp - before
	}
	mp := int(math.Floor(float64(c.MMP()) * c.XParam(trait.MRG)))
	if mp != 0 {
		before := c.mp
		c.GainMP(mp)
		r.MP = c.mp - before
	}
	tp := int(math.Floor(float64(c.MaxTP()) * c.XParam(trait.TRG)))
	if tp != 0 {
		before := c.tp
		c.GainSilentTP(tp)
		r.TP = c.tp - before
	}
	return r
}
