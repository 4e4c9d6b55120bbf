package party

import (
	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// RandomTarget picks an alive member weighted by target rate, or nil.
func (p *Party) RandomTarget() *battler.Combatant {
	alive := p.AliveMembers()
	if len(alive) == 0 {
		return nil
	}
	r := p.roller.Float64("random target "+p.name) * p.TGRSum()
	for _, m := range alive {
		r -= m.SParam(trait.TGR)
		if r <= 0 {
			return m
		}
	}
	return alive[len(alive)-1]
}

// RandomDeadTarget picks a dead member uniformly, or nil.
func (p *Party) RandomDeadTarget() *battler.Combatant {
	dead := p.DeadMembers()
	if len(dead) == 0 {
		return nil
	}
	return dead[p.roller.Intn("random dead target "+p.name, len(dead))]
}

// SmoothTarget returns the alive member at index, falling back to the first
// alive member.
func (p *Party) SmoothTarget(index int) *battler.Combatant {
	if m := p.Member(max(index, 0)); m != nil && p.IsBattleMember(m) && m.IsAlive() {
		return m
	}
	if alive := p.AliveMembers(); len(alive) > 0 {
		return alive[0]
	}
	return nil
}

// SmoothDeadTarget returns the dead member at index, falling back to the
// first dead member.
func (p *Party) SmoothDeadTarget(index int) *battler.Combatant {
	if m := p.Member(max(index, 0)); m != nil && p.IsBattleMember(m) && m.IsDead() {
		return m
	}
	if dead := p.DeadMembers(); len(dead) > 0 {
		return dead[0]
	}
	return nil
}

// SubstituteBattler returns the first battle member able to cover a dying ally, or nil.
func (p *Party) SubstituteBattler() *battler.Combatant {
	for _, m := range p.BattleMembers() {
		if m.IsSubstitute() {
			return m
		}
	}
	return nil
}
