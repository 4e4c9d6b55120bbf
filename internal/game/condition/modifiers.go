package condition

import "github.com/cory-johannsen/battlecore/internal/game/trait"

// Traits returns the traits contributed by every active condition, in priority order.
func (l *Ledger) Traits() []trait.Trait {
	var out []trait.Trait
	for _, id := range l.ids {
		out = append(out, l.reg.MustGet(id).Traits...)
	}
	return out
}

// Restriction returns the strongest restriction among active conditions.
//
// Postcondition: Returns RestrictNone when no condition is active.
func (l *Ledger) Restriction() Restriction {
	r := RestrictNone
	for _, id := range l.ids {
		if d := l.reg.MustGet(id); d.Restriction > r {
			r = d.Restriction
		}
	}
	return r
}

// MostImportant returns the highest-priority active condition that has a
// persisting message, or (nil, false).
func (l *Ledger) MostImportant() (*Def, bool) {
	for _, id := range l.ids {
		if d := l.reg.MustGet(id); d.Messages.Stay != "" {
			return d, true
		}
	}
	return nil, false
}

// RemovableByRestriction returns the active ids flagged to drop when the
// holder becomes restricted.
func (l *Ledger) RemovableByRestriction() []int {
	var out []int
	for _, id := range l.ids {
		if l.reg.MustGet(id).RemoveByRestriction {
			out = append(out, id)
		}
	}
	return out
}
