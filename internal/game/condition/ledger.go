package condition

import (
	"sort"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// MaxBuffLevel bounds buff levels to [-MaxBuffLevel, MaxBuffLevel].
const MaxBuffLevel = 2

// Ledger owns one combatant's active conditions with their remaining turns,
// and its per-parameter buff levels with their remaining turns.
//
// Expiry is a query, not an action: Tick and TickBuffs only count down, and
// the holder removes expired entries in a separate sweep.
// It is not safe for concurrent use; the caller must serialise access.
type Ledger struct {
	reg       *Registry
	ids       []int
	turns     map[int]int
	buffs     [trait.ParamCount]int
	buffTurns [trait.ParamCount]int
}

// NewLedger creates an empty Ledger resolving condition ids against reg.
//
// Precondition: reg must be non-nil.
func NewLedger(reg *Registry) *Ledger {
	if reg == nil {
		panic("condition: NewLedger requires a non-nil Registry")
	}
	return &Ledger{reg: reg, turns: make(map[int]int)}
}

// Has reports whether condition id is active.
func (l *Ledger) Has(id int) bool {
	_, ok := l.turns[id]
	return ok
}

// IDs returns the active condition ids ordered by priority descending, then id ascending.
func (l *Ledger) IDs() []int {
	out := make([]int, len(l.ids))
	copy(out, l.ids)
	return out
}

// Defs returns the active condition definitions in IDs order.
func (l *Ledger) Defs() []*Def {
	out := make([]*Def, len(l.ids))
	for i, id := range l.ids {
		out[i] = l.reg.MustGet(id)
	}
	return out
}

// Turns returns the remaining turns of condition id.
func (l *Ledger) Turns(id int) (int, bool) {
	n, ok := l.turns[id]
	return n, ok
}

// Insert activates condition id with zero remaining turns. Re-inserting an
// active condition is a no-op.
//
// Precondition: id must be registered.
// Postcondition: Has(id) is true and IDs() remains sorted. Returns true if newly inserted.
func (l *Ledger) Insert(id int) bool {
	l.reg.MustGet(id)
	if l.Has(id) {
		return false
	}
	l.ids = append(l.ids, id)
	l.turns[id] = 0
	l.sortIDs()
	return true
}

// ResetTurns rolls the remaining turns of active condition id uniformly from
// [min, min+max(max-min, 0)]. Inactive ids are ignored.
func (l *Ledger) ResetTurns(id int, r *dice.Roller) {
	if !l.Has(id) {
		return
	}
	d := l.reg.MustGet(id)
	l.turns[id] = r.Range("condition turns", d.MinTurns, d.MaxTurns)
}

// Remove deactivates condition id. Absent ids are a no-op.
//
// Postcondition: Has(id) is false.
func (l *Ledger) Remove(id int) {
	if !l.Has(id) {
		return
	}
	delete(l.turns, id)
	for i, v := range l.ids {
		if v == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			break
		}
	}
}

// Clear deactivates every condition.
func (l *Ledger) Clear() {
	l.ids = nil
	l.turns = make(map[int]int)
}

// Tick decrements every remaining-turn count that is above zero.
func (l *Ledger) Tick() {
	for id, n := range l.turns {
		if n > 0 {
			l.turns[id] = n - 1
		}
	}
}

// Expired reports whether condition id is active with zero remaining turns.
func (l *Ledger) Expired(id int) bool {
	n, ok := l.turns[id]
	return ok && n == 0
}

// BuffLevel returns the buff level of p in [-MaxBuffLevel, MaxBuffLevel].
func (l *Ledger) BuffLevel(p trait.Param) int {
	return l.buffs[p]
}

// BuffTurns returns the remaining turns of the buff on p.
func (l *Ledger) BuffTurns(p trait.Param) int {
	return l.buffTurns[p]
}

// IncreaseBuff raises the level of p by one step. At MaxBuffLevel it is a no-op.
//
// Postcondition: Returns true if the level changed.
func (l *Ledger) IncreaseBuff(p trait.Param) bool {
	if l.buffs[p] >= MaxBuffLevel {
		return false
	}
	l.buffs[p]++
	if l.buffs[p] == 0 {
		l.buffTurns[p] = 0
	}
	return true
}

// DecreaseBuff lowers the level of p by one step. At -MaxBuffLevel it is a no-op.
//
// Postcondition: Returns true if the level changed.
func (l *Ledger) DecreaseBuff(p trait.Param) bool {
	if l.buffs[p] <= -MaxBuffLevel {
		return false
	}
	l.buffs[p]--
	if l.buffs[p] == 0 {
		l.buffTurns[p] = 0
	}
	return true
}

// OverwriteBuffTurns raises the remaining turns of p to turns. It never
// shortens a duration and does nothing while the level is zero.
func (l *Ledger) OverwriteBuffTurns(p trait.Param, turns int) {
	if l.buffs[p] == 0 {
		return
	}
	if turns > l.buffTurns[p] {
		l.buffTurns[p] = turns
	}
}

// TickBuffs decrements every nonzero buff counter. Levels are left in place.
func (l *Ledger) TickBuffs() {
	for p := range l.buffTurns {
		if l.buffs[p] != 0 && l.buffTurns[p] > 0 {
			l.buffTurns[p]--
		}
	}
}

// BuffExpired reports whether p carries a nonzero level whose turns ran out.
func (l *Ledger) BuffExpired(p trait.Param) bool {
	return l.buffs[p] != 0 && l.buffTurns[p] == 0
}

// EraseBuff resets the level and turns of p.
func (l *Ledger) EraseBuff(p trait.Param) {
	l.buffs[p] = 0
	l.buffTurns[p] = 0
}

// ClearBuffs resets every buff.
func (l *Ledger) ClearBuffs() {
	l.buffs = [trait.ParamCount]int{}
	l.buffTurns = [trait.ParamCount]int{}
}

func (l *Ledger) sortIDs() {
	sort.SliceStable(l.ids, func(i, j int) bool {
		a, b := l.reg.MustGet(l.ids[i]), l.reg.MustGet(l.ids[j])
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
}
