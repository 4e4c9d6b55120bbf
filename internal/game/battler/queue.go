package battler

import (
	"math"
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// Actions returns the pending action queue.
func (c *Combatant) Actions() []*Action { return c.actions }

// NumActions returns the number of pending actions.
func (c *Combatant) NumActions() int { return len(c.actions) }

// SetActions replaces the pending queue.
func (c *Combatant) SetActions(actions []*Action) {
	c.actions = append([]*Action(nil), actions...)
}

// AddAction appends one action to the pending queue.
func (c *Combatant) AddAction(a *Action) { c.actions = append(c.actions, a) }

// CurrentAction returns the head of the queue, or nil.
func (c *Combatant) CurrentAction() *Action {
	if len(c.actions) == 0 {
		return nil
	}
	return c.actions[0]
}

// RemoveCurrentAction drops the head of the queue.
func (c *Combatant) RemoveCurrentAction() {
	if len(c.actions) > 0 {
		c.actions = c.actions[1:]
	}
}

// ClearActions empties the queue.
func (c *Combatant) ClearActions() { c.actions = nil }

// Speed returns the last value computed by MakeSpeed.
func (c *Combatant) Speed() int { return c.speed }

// MakeSpeed sets the ordering speed to the slowest pending action's speed, or 0.
func (c *Combatant) MakeSpeed() {
	if len(c.actions) == 0 {
		c.speed = 0
		return
	}
	lowest := math.MaxInt
	for _, a := range c.actions {
		if s := a.Speed(); s < lowest {
			lowest = s
		}
	}
	c.speed = lowest
}

// SetSpeed overrides the ordering speed.
func (c *Combatant) SetSpeed(s int) { c.speed = s }

// MakeActionTimes returns 1 plus one for every action-plus trait whose draw succeeds.
func (c *Combatant) MakeActionTimes() int {
	n := 1
	for _, p := range c.ActionPlusSet() {
		if c.roller.Chance("action plus "+c.name, p) {
			n++
		}
	}
	return n
}

// SkillIDs returns the combatant's own skills followed by trait-added skills.
func (c *Combatant) SkillIDs() []int {
	out := append([]int(nil), c.skillIDs...)
	for _, id := range c.AddedSkills() {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// SkillMPCost returns the MP cost of s scaled by the MP cost rate.
func (c *Combatant) SkillMPCost(s *skill.Def) int {
	return int(math.Floor(float64(s.MPCost) * c.SParam(trait.MCR)))
}

// SkillTPCost returns the TP cost of s.
func (c *Combatant) SkillTPCost(s *skill.Def) int { return s.TPCost }

// CanPaySkillCost reports whether MP and TP cover s.
func (c *Combatant) CanPaySkillCost(s *skill.Def) bool {
	return c.tp >= c.SkillTPCost(s) && c.mp >= c.SkillMPCost(s)
}

// PaySkillCost deducts the MP and TP cost of s. A forced action may cost more
// than the combatant has; the vitals then stop at zero.
//
// Postcondition: 0 <= MP() <= MMP() and 0 <= TP() <= MaxTP().
func (c *Combatant) PaySkillCost(s *skill.Def) {
	c.mp = clamp(c.mp-c.SkillMPCost(s), 0, c.MMP())
	c.tp = clamp(c.tp-c.SkillTPCost(s), 0, c.MaxTP())
}

// CanUse reports whether the combatant can use s now.
func (c *Combatant) CanUse(s *skill.Def) bool {
	if s == nil || !c.CanMove() {
		return false
	}
	return c.CanPaySkillCost(s) && !c.IsSkillSealed(s.ID) && !c.IsSkillTypeSealed(s.SkillTypeID)
}

// UsableSkills returns the skills the combatant can use now, in SkillIDs order.
func (c *Combatant) UsableSkills() []*skill.Def {
	var out []*skill.Def
	for _, id := range c.SkillIDs() {
		s, ok := c.skills.Get(id)
		if ok && c.CanUse(s) {
			out = append(out, s)
		}
	}
	return out
}
