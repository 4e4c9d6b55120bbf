package party

import (
	"github.com/cory-johannsen/battlecore/internal/game/battler"
)

// FirstUsable queues the first usable damaging skill aimed at opponents,
// falling back to the normal attack, always at a random target.
var FirstUsable ActionChooser = ChooserFunc(firstUsable)

func firstUsable(subject *battler.Combatant, times int, _, _ *Party) []*battler.Action {
	actions := make([]*battler.Action, 0, times)
	for range times {
		a := battler.NewAction(subject, false).SetAttack()
		for _, s := range subject.UsableSkills() {
			if s.IsForOpponent() && s.IsDamage() && s.ID != subject.Limits().AttackSkillID {
				a.SetSkill(s.ID)
				break
			}
		}
		actions = append(actions, a.SetTarget(battler.RandomTarget))
	}
	return actions
}
