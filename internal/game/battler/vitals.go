package battler

func (c *Combatant) HP() int { return c.hp }
func (c *Combatant) MP() int { return c.mp }
func (c *Combatant) TP() int { return c.tp }

// HPRate returns current HP over max HP.
func (c *Combatant) HPRate() float64 { return float64(c.hp) / float64(c.MHP()) }

// SetHP sets HP and refreshes, so the result is clamped and death is applied or lifted.
//
// Postcondition: 0 <= HP() <= MHP().
func (c *Combatant) SetHP(v int) {
	c.hp = v
	c.Refresh()
}

// SetMP sets MP, clamped to [0, MMP()].
func (c *Combatant) SetMP(v int) {
	c.mp = v
	c.Refresh()
}

// SetTP sets TP, clamped to [0, MaxTP()].
func (c *Combatant) SetTP(v int) {
	c.tp = v
	c.Refresh()
}

// GainHP changes HP by v and records the change in the outcome record.
func (c *Combatant) GainHP(v int) {
	c.result.HPDamage = -v
	c.result.HPAffected = true
	c.SetHP(c.hp + v)
}

// GainMP changes MP by v and records the change in the outcome record.
func (c *Combatant) GainMP(v int) {
	c.result.MPDamage = -v
	c.SetMP(c.mp + v)
}

// GainTP changes TP by v and records the change in the outcome record.
func (c *Combatant) GainTP(v int) {
	c.result.TPDamage = -v
	c.SetTP(c.tp + v)
}

// GainSilentTP changes TP by v without touching the outcome record.
func (c *Combatant) GainSilentTP(v int) { c.SetTP(c.tp + v) }

// InitTP draws a starting TP in [0, 25).
func (c *Combatant) InitTP() { c.SetTP(c.roller.Intn("initial tp "+c.name, 25)) }

// ClearTP empties TP.
func (c *Combatant) ClearTP() { c.SetTP(0) }

// Refresh drops conditions the combatant resists, clamps every vital, and
// applies or lifts the death condition to match HP.
//
// Postcondition: 0 <= HP() <= MHP(), 0 <= MP() <= MMP(), 0 <= TP() <= MaxTP();
// the death condition is active iff HP() == 0.
func (c *Combatant) Refresh() {
	for _, id := range c.StateResistSet() {
		c.ledger.Remove(id)
	}
	c.hp = clamp(c.hp, 0, c.MHP())
	c.mp = clamp(c.mp, 0, c.MMP())
	c.tp = clamp(c.tp, 0, c.MaxTP())
	if c.hp == 0 {
		c.AddState(c.limits.DeathStateID)
	} else {
		c.RemoveState(c.limits.DeathStateID)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
