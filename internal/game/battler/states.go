package battler

import (
	"github.com/cory-johannsen/battlecore/internal/game/condition"
)

// IsStateAffected reports whether condition id is active.
func (c *Combatant) IsStateAffected(id int) bool { return c.ledger.Has(id) }

// States returns the active condition definitions, priority first.
func (c *Combatant) States() []*condition.Def { return c.ledger.Defs() }

// StateIDs returns the active condition ids, priority first.
func (c *Combatant) StateIDs() []int { return c.ledger.IDs() }

// Restriction returns the strongest active restriction.
func (c *Combatant) Restriction() condition.Restriction { return c.ledger.Restriction() }

// IsRestricted reports whether any restriction applies.
func (c *Combatant) IsRestricted() bool {
	return c.IsAppeared() && c.Restriction() > condition.RestrictNone
}

// CanMove reports whether the combatant may act at all.
func (c *Combatant) CanMove() bool {
	return c.IsAppeared() && c.Restriction() < condition.RestrictCannotMove
}

// CanInput reports whether the combatant's actions come from its controller.
func (c *Combatant) CanInput() bool {
	return c.IsAppeared() && !c.IsRestricted() && !c.IsAutoBattle()
}

// IsConfused reports whether a restriction forces random attack targets.
func (c *Combatant) IsConfused() bool {
	r := c.Restriction()
	return c.IsAppeared() && r >= condition.RestrictAttackEnemy && r <= condition.RestrictAttackAlly
}

// ConfusionLevel returns the active confusion restriction, or RestrictNone.
func (c *Combatant) ConfusionLevel() condition.Restriction {
	if !c.IsConfused() {
		return condition.RestrictNone
	}
	return c.Restriction()
}

func (c *Combatant) isStateRestrict(id int) bool {
	d, ok := c.conds.Get(id)
	return ok && d.RemoveByRestriction && c.IsRestricted()
}

// IsStateAddable reports whether condition id may be added now. A condition
// removed earlier in the same outcome record cannot come back, except death.
func (c *Combatant) IsStateAddable(id int) bool {
	_, known := c.conds.Get(id)
	return known && c.IsAlive() &&
		!c.IsStateResist(id) &&
		(id == c.limits.DeathStateID || !c.result.IsStateRemoved(id)) &&
		!c.isStateRestrict(id)
}

// AddState applies condition id. Applying the death condition first zeroes HP
// and clears every other condition and buff. Re-applying an active condition
// re-rolls its duration instead of stacking.
//
// Postcondition: Returns true when the condition was applied and recorded in the outcome record.
func (c *Combatant) AddState(id int) bool {
	if !c.IsStateAddable(id) {
		return false
	}
	if !c.ledger.Has(id) {
		if id == c.limits.DeathStateID {
			c.Die()
		}
		wasRestricted := c.IsRestricted()
		c.ledger.Insert(id)
		if !wasRestricted && c.IsRestricted() {
			c.onRestrict()
		}
	}
	c.Refresh()
	c.ledger.ResetTurns(id, c.roller)
	c.result.PushAddedState(id)
	return true
}

// RemoveState lifts condition id. Lifting the death condition revives with 1 HP.
// Absent ids are a no-op.
func (c *Combatant) RemoveState(id int) {
	if !c.ledger.Has(id) {
		return
	}
	if id == c.limits.DeathStateID {
		c.Revive()
	}
	c.ledger.Remove(id)
	c.Refresh()
	c.result.PushRemovedState(id)
}

// ClearStates lifts every condition without recording anything.
func (c *Combatant) ClearStates() { c.ledger.Clear() }

// Die zeroes HP and clears every condition and buff.
//
// Postcondition: HP() == 0 and no condition or buff remains.
func (c *Combatant) Die() {
	c.hp = 0
	c.ClearStates()
	c.ClearBuffs()
}

// Revive restores 1 HP to a combatant at 0 HP.
func (c *Combatant) Revive() {
	if c.hp == 0 {
		c.hp = 1
	}
}

func (c *Combatant) onRestrict() {
	c.ClearActions()
	for _, id := range c.ledger.RemovableByRestriction() {
		c.RemoveState(id)
	}
}

// RemoveBattleStates lifts every condition flagged to end with the battle.
func (c *Combatant) RemoveBattleStates() {
	for _, d := range c.States() {
		if d.RemoveAtBattleEnd {
			c.RemoveState(d.ID)
		}
	}
}

// RemoveStatesAuto lifts every expired condition swept at timing.
func (c *Combatant) RemoveStatesAuto(timing condition.RemovalTiming) {
	for _, d := range c.States() {
		if c.ledger.Expired(d.ID) && d.AutoRemovalTiming == timing {
			c.RemoveState(d.ID)
		}
	}
}

// RemoveStatesByDamage lifts damage-sensitive conditions on a successful draw.
func (c *Combatant) RemoveStatesByDamage() {
	for _, d := range c.States() {
		if d.RemoveByDamage && c.roller.Intn("remove by damage", 100) < d.ChanceByDamage {
			c.RemoveState(d.ID)
		}
	}
}

// UpdateStateTurns counts down every condition's remaining turns.
func (c *Combatant) UpdateStateTurns() { c.ledger.Tick() }
