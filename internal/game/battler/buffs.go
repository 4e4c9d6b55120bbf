package battler

import "github.com/cory-johannsen/battlecore/internal/game/trait"

// BuffLevel returns the buff level of p in [-2, 2].
func (c *Combatant) BuffLevel(p trait.Param) int { return c.ledger.BuffLevel(p) }

// IncreaseBuff raises the level of p one step; a no-op at +2.
func (c *Combatant) IncreaseBuff(p trait.Param) bool { return c.ledger.IncreaseBuff(p) }

// DecreaseBuff lowers the level of p one step; a no-op at -2.
func (c *Combatant) DecreaseBuff(p trait.Param) bool { return c.ledger.DecreaseBuff(p) }

// OverwriteBuffTurns extends the buff on p to turns; it never shortens.
func (c *Combatant) OverwriteBuffTurns(p trait.Param, turns int) {
	c.ledger.OverwriteBuffTurns(p, turns)
}

// AddBuff raises p one level for at least turns turns.
func (c *Combatant) AddBuff(p trait.Param, turns int) {
	if !c.IsAlive() {
		return
	}
	c.ledger.IncreaseBuff(p)
	if c.ledger.BuffLevel(p) > 0 {
		c.ledger.OverwriteBuffTurns(p, turns)
	}
	c.result.PushAddedBuff(p)
	c.Refresh()
}

// AddDebuff lowers p one level for at least turns turns.
func (c *Combatant) AddDebuff(p trait.Param, turns int) {
	if !c.IsAlive() {
		return
	}
	c.ledger.DecreaseBuff(p)
	if c.ledger.BuffLevel(p) < 0 {
		c.ledger.OverwriteBuffTurns(p, turns)
	}
	c.result.PushAddedDebuff(p)
	c.Refresh()
}

// RemoveBuff resets p to level 0 and records the removal.
func (c *Combatant) RemoveBuff(p trait.Param) {
	if c.IsAlive() && c.ledger.BuffLevel(p) != 0 {
		c.ledger.EraseBuff(p)
		c.result.PushRemovedBuff(p)
		c.Refresh()
	}
}

// RemoveBuffsAuto removes every buff whose turns ran out.
func (c *Combatant) RemoveBuffsAuto() {
	if !c.IsAlive() {
		return
	}
	for p := trait.Param(0); p < trait.ParamCount; p++ {
		if c.ledger.BuffExpired(p) {
			c.RemoveBuff(p)
		}
	}
}

// RemoveAllBuffs resets every buff, recording each removal.
func (c *Combatant) RemoveAllBuffs() {
	for p := trait.Param(0); p < trait.ParamCount; p++ {
		c.RemoveBuff(p)
	}
}

// ClearBuffs resets every buff without recording anything.
func (c *Combatant) ClearBuffs() { c.ledger.ClearBuffs() }

// UpdateBuffTurns counts down every buff's remaining turns.
func (c *Combatant) UpdateBuffTurns() { c.ledger.TickBuffs() }
