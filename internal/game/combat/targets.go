package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/party"
)

// StandardTargets resolves targets from the skill's scope. Confused subjects
// pick random targets by their confusion level. Each target appears once per
// repeat of the action.
type StandardTargets struct {
	Roller *dice.Roller
}

// Targets implements TargetSelector.
//
// Postcondition: Returns an empty slice when nothing can be targeted.
func (st StandardTargets) Targets(a *battler.Action, friends, opponents *party.Party) []*battler.Combatant {
	if a.Skill() == nil {
		return nil
	}
	if a.Subject().IsConfused() && !a.IsForcing() {
		if t := st.confusionTarget(a.Subject(), friends, opponents); t != nil {
			return []*battler.Combatant{t}
		}
		return nil
	}
	var targets []*battler.Combatant
	if a.IsForOpponent() {
		targets = st.opponentTargets(a, opponents)
	} else if a.IsForFriend() {
		targets = st.friendTargets(a, friends)
	}
	return repeatTargets(targets, a.NumRepeats())
}

func (st StandardTargets) confusionTarget(subject *battler.Combatant, friends, opponents *party.Party) *battler.Combatant {
	switch subject.ConfusionLevel() {
	case condition.RestrictAttackEnemy:
		return opponents.RandomTarget()
	case condition.RestrictAttackAnyone:
		if st.Roller.Intn("confusion side "+subject.Name(), 2) == 0 {
			return opponents.RandomTarget()
		}
		return friends.RandomTarget()
	default:
		return friends.RandomTarget()
	}
}

func (st StandardTargets) opponentTargets(a *battler.Action, opponents *party.Party) []*battler.Combatant {
	s := a.Skill()
	switch {
	case s.IsForRandom():
		var out []*battler.Combatant
		for range s.RandomTargets {
			if t := opponents.RandomTarget(); t != nil {
				out = append(out, t)
			}
		}
		return out
	case s.IsForAll():
		return opponents.AliveMembers()
	case a.TargetIndex() < 0:
		return nonNil(opponents.RandomTarget())
	default:
		return nonNil(opponents.SmoothTarget(a.TargetIndex()))
	}
}

func (st StandardTargets) friendTargets(a *battler.Action, friends *party.Party) []*battler.Combatant {
	s := a.Skill()
	switch {
	case s.IsForUser():
		return []*battler.Combatant{a.Subject()}
	case s.IsForDeadFriend() && s.IsForAll():
		return friends.DeadMembers()
	case s.IsForDeadFriend():
		if a.TargetIndex() < 0 {
			return nonNil(friends.RandomDeadTarget())
		}
		return nonNil(friends.SmoothDeadTarget(a.TargetIndex()))
	case s.IsForAll():
		return friends.AliveMembers()
	case a.TargetIndex() < 0:
		return nonNil(friends.RandomTarget())
	default:
		return nonNil(friends.SmoothTarget(a.TargetIndex()))
	}
}

func repeatTargets(targets []*battler.Combatant, repeats int) []*battler.Combatant {
	if repeats <= 1 {
		return targets
	}
	out := make([]*battler.Combatant, 0, len(targets)*repeats)
	for _, t := range targets {
		for range repeats {
			out = append(out, t)
		}
	}
	return out
}

func nonNil(c *battler.Combatant) []*battler.Combatant {
	if c == nil {
		return nil
	}
	return []*battler.Combatant{c}
}
