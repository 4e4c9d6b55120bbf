package party

import (
	"github.com/cory-johannsen/battlecore/internal/game/battler"
)

// ActionChooser fills a combatant's action queue. Player input and troop AI
// both live behind it.
type ActionChooser interface {
	// Choose returns up to times actions for subject. friends is subject's own
	// party and opponents the other side.
	Choose(subject *battler.Combatant, times int, friends, opponents *Party) []*battler.Action
}

// ChooserFunc adapts a plain function to ActionChooser.
type ChooserFunc func(subject *battler.Combatant, times int, friends, opponents *Party) []*battler.Action

func (f ChooserFunc) Choose(subject *battler.Combatant, times int, friends, opponents *Party) []*battler.Action {
	return f(subject, times, friends, opponents)
}

// TurnEndReport is what one member's end-of-turn hook produced.
type TurnEndReport struct {
	Member *battler.Combatant
	Regen  battler.Regen
}

// OnBattleStart resets the turn counter and runs every member's start hook.
func (p *Party) OnBattleStart() {
	p.turnCount = 0
	for _, m := range p.members {
		m.OnBattleStart()
	}
}

// OnBattleEnd runs every member's end hook.
func (p *Party) OnBattleEnd() {
	for _, m := range p.members {
		m.OnBattleEnd()
	}
}

// OnTurnEnd runs the end-of-turn hook of every battle member in order.
//
// Postcondition: Each member's Result holds the states removed by the sweep.
func (p *Party) OnTurnEnd() []TurnEndReport {
	var out []TurnEndReport
	for _, m := range p.BattleMembers() {
		out = append(out, TurnEndReport{Member: m, Regen: m.OnTurnEnd()})
	}
	return out
}

// MakeActions rebuilds the action queue of every battle member. Members that
// cannot move get none; restricted members attack; the rest ask chooser.
func (p *Party) MakeActions(chooser ActionChooser, opponents *Party) {
	for _, m := range p.BattleMembers() {
		p.MakeMemberActions(m, chooser, opponents)
	}
}

// MakeMemberActions rebuilds one member's action queue the way MakeActions does.
func (p *Party) MakeMemberActions(m *battler.Combatant, chooser ActionChooser, opponents *Party) {
	m.ClearActions()
	if !m.CanMove() {
		return
	}
	times := m.MakeActionTimes()
	if m.IsRestricted() || chooser == nil {
		actions := make([]*battler.Action, times)
		for i := range actions {
			actions[i] = battler.NewAction(m, false).SetAttack()
		}
		m.SetActions(actions)
		return
	}
	actions := chooser.Choose(m, times, p, opponents)
	if len(actions) > times {
		actions = actions[:times]
	}
	m.SetActions(actions)
}

// ClearActions empties every member's queue.
func (p *Party) ClearActions() {
	for _, m := range p.members {
		m.ClearActions()
	}
}

// ClearResults resets every member's outcome record.
func (p *Party) ClearResults() {
	for _, m := range p.members {
		m.ClearResult()
	}
}

// RemoveBattleStates drops battle-only conditions and buffs from every member.
func (p *Party) RemoveBattleStates() {
	for _, m := range p.members {
		m.RemoveBattleStates()
	}
}

// ReviveBattleMembers brings dead battle members back with 1 HP.
func (p *Party) ReviveBattleMembers() {
	for _, m := range p.DeadMembers() {
		m.Revive()
		m.SetHP(1)
	}
}

// ExpTotal returns the experience yield of the dead battle members.
func (p *Party) ExpTotal() int {
	n := 0
	for _, m := range p.DeadMembers() {
		n += m.ExpYield()
	}
	return n
}

// GoldTotal returns the gold yield of the dead battle members.
func (p *Party) GoldTotal() int {
	n := 0
	for _, m := range p.DeadMembers() {
		n += m.GoldYield()
	}
	return n
}

// MakeDropItems draws the drop tables of the dead battle members at rate.
func (p *Party) MakeDropItems(rate float64) []int {
	var out []int
	for _, m := range p.DeadMembers() {
		out = append(out, m.DropItems(rate)...)
	}
	return out
}
