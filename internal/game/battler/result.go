package battler

import (
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// ActionResult is the outcome record an action leaves on its target.
type ActionResult struct {
	Used       bool
	Missed     bool
	Evaded     bool
	Physical   bool
	Drain      bool
	Critical   bool
	Success    bool
	HPAffected bool
	HPDamage   int
	MPDamage   int
	TPDamage   int

	AddedStates   []int
	RemovedStates []int
	AddedBuffs    []trait.Param
	AddedDebuffs  []trait.Param
	RemovedBuffs  []trait.Param
}

// Clear resets the record.
func (r *ActionResult) Clear() { *r = ActionResult{} }

// IsHit reports whether the action connected.
func (r *ActionResult) IsHit() bool { return r.Used && !r.Missed && !r.Evaded }

// IsStatusAffected reports whether any condition or buff changed.
func (r *ActionResult) IsStatusAffected() bool {
	return len(r.AddedStates) > 0 || len(r.RemovedStates) > 0 ||
		len(r.AddedBuffs) > 0 || len(r.AddedDebuffs) > 0 || len(r.RemovedBuffs) > 0
}

// Noteworthy reports whether the record has anything worth presenting.
func (r *ActionResult) Noteworthy() bool {
	return r.Missed || r.Evaded || r.HPAffected || r.MPDamage != 0 || r.TPDamage != 0 || r.IsStatusAffected()
}

func (r *ActionResult) IsStateAdded(id int) bool   { return slices.Contains(r.AddedStates, id) }
func (r *ActionResult) IsStateRemoved(id int) bool { return slices.Contains(r.RemovedStates, id) }

// PushAddedState records condition id as added.
func (r *ActionResult) PushAddedState(id int) {
	if !r.IsStateAdded(id) {
		r.AddedStates = append(r.AddedStates, id)
	}
}

// PushRemovedState records condition id as removed.
func (r *ActionResult) PushRemovedState(id int) {
	if !r.IsStateRemoved(id) {
		r.RemovedStates = append(r.RemovedStates, id)
	}
}

func (r *ActionResult) PushAddedBuff(p trait.Param) {
	if !slices.Contains(r.AddedBuffs, p) {
		r.AddedBuffs = append(r.AddedBuffs, p)
	}
}

func (r *ActionResult) PushAddedDebuff(p trait.Param) {
	if !slices.Contains(r.AddedDebuffs, p) {
		r.AddedDebuffs = append(r.AddedDebuffs, p)
	}
}

func (r *ActionResult) PushRemovedBuff(p trait.Param) {
	if !slices.Contains(r.RemovedBuffs, p) {
		r.RemovedBuffs = append(r.RemovedBuffs, p)
	}
}
