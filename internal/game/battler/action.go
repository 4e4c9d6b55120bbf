package battler

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/skill"
)

// RandomTarget asks target selection to pick a target at random.
const RandomTarget = -1

// Action is one chosen skill plus its targeting choice. It is consumed
// exactly once by the scheduler.
type Action struct {
	subject     *Combatant
	skill       *skill.Def
	targetIndex int
	forcing     bool
	prepared    bool
}

// NewAction creates an empty action for subject. A forcing action ignores
// confusion and usability checks.
//
// Precondition: subject must be non-nil.
func NewAction(subject *Combatant, forcing bool) *Action {
	if subject == nil {
		panic("battler: NewAction requires a subject")
	}
	return &Action{subject: subject, targetIndex: RandomTarget, forcing: forcing}
}

func (a *Action) Subject() *Combatant { return a.subject }
func (a *Action) Skill() *skill.Def   { return a.skill }
func (a *Action) TargetIndex() int    { return a.targetIndex }
func (a *Action) IsForcing() bool     { return a.forcing }
func (a *Action) IsPrepared() bool    { return a.prepared }

// SetSkill chooses the skill by id.
//
// Precondition: id must be registered in the subject's skill registry.
func (a *Action) SetSkill(id int) *Action {
	a.skill = a.subject.skills.MustGet(id)
	return a
}

// SetAttack chooses the subject's normal attack.
func (a *Action) SetAttack() *Action { return a.SetSkill(a.subject.limits.AttackSkillID) }

// SetGuard chooses the subject's guard.
func (a *Action) SetGuard() *Action { return a.SetSkill(a.subject.limits.GuardSkillID) }

// SetTarget chooses the target index within the targeted collective.
func (a *Action) SetTarget(i int) *Action {
	a.targetIndex = i
	return a
}

// IsAttack reports whether the action is the normal attack.
func (a *Action) IsAttack() bool {
	return a.skill != nil && a.skill.ID == a.subject.limits.AttackSkillID
}

// IsGuard reports whether the action is the guard command.
func (a *Action) IsGuard() bool {
	return a.skill != nil && a.skill.ID == a.subject.limits.GuardSkillID
}

// Prepare finalises the action before execution. A confused subject's
// non-forcing action becomes a normal attack at a random target.
func (a *Action) Prepare() {
	if a.subject.IsConfused() && !a.forcing {
		a.SetAttack()
		a.targetIndex = RandomTarget
	}
	a.prepared = true
}

// IsValid reports whether the action may still execute: a forcing action
// needs only a skill, otherwise the subject must be able to use it.
func (a *Action) IsValid() bool {
	if a.skill == nil {
		return false
	}
	return a.forcing || a.subject.CanUse(a.skill)
}

// Speed draws this action's ordering speed:
// agi + rand[0, floor(5 + agi/4)) + skill speed (+ attack speed for the normal attack).
func (a *Action) Speed() int {
	agi := a.subject.AGI()
	speed := agi + a.subject.roller.Intn("action speed "+a.subject.name, int(math.Floor(5+float64(agi)/4)))
	if a.skill != nil {
		speed += a.skill.Speed
	}
	if a.IsAttack() {
		speed += a.subject.AttackSpeed()
	}
	return speed
}

// NumRepeats returns how many times each target is hit.
func (a *Action) NumRepeats() int {
	if a.skill == nil {
		return 0
	}
	n := a.skill.Repeats
	if a.IsAttack() {
		n += a.subject.AttackTimesAdd()
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (a *Action) IsForOpponent() bool { return a.skill != nil && a.skill.IsForOpponent() }
func (a *Action) IsForFriend() bool   { return a.skill != nil && a.skill.IsForFriend() }
func (a *Action) IsCertainHit() bool  { return a.skill != nil && a.skill.IsCertainHit() }
func (a *Action) IsPhysical() bool    { return a.skill != nil && a.skill.IsPhysical() }
func (a *Action) IsMagical() bool     { return a.skill != nil && a.skill.IsMagical() }

// Name returns the skill name, or "none".
func (a *Action) Name() string {
	if a.skill == nil {
		return "none"
	}
	return a.skill.Name
}
