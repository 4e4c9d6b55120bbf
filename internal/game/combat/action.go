package combat

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// startAction resolves a's targets and, when there are any, enters the action
// phase and pays the skill cost.
//
// Postcondition: Returns false and leaves the phase alone when no target resolves.
func (s *Session) startAction(subject *battler.Combatant, a *battler.Action, forced bool) bool {
	targets := s.targets.Targets(a, s.unitOf(subject), s.opponentsOf(subject))
	if len(targets) == 0 {
		return false
	}
	s.setPhase(PhaseAction)
	s.action = a
	s.pending = targets
	subject.PaySkillCost(a.Skill())
	s.emit(ActionStarted{
		Subject: subject,
		Skill:   a.Skill(),
		Targets: append([]*battler.Combatant(nil), targets...),
		Forced:  forced,
	})
	s.metrics.ActionExecuted(context.Background(), a.Skill().Name)
	s.logger.Debug("action started",
		zap.String("subject", subject.Name()),
		zap.String("skill", a.Skill().Name),
		zap.Int("targets", len(targets)),
		zap.Bool("forced", forced),
	)
	return true
}

// updateAction resolves the next pending target; with none left the action ends.
func (s *Session) updateAction() {
	if len(s.pending) == 0 {
		s.endAction()
		return
	}
	target := s.pending[0]
	s.pending = s.pending[1:]
	s.invokeAction(s.subject, target)
}

// invokeAction resolves one target. A counter attack is drawn first, then
// magic reflection; otherwise the action lands, possibly on a substitute.
func (s *Session) invokeAction(subject, target *battler.Combatant) {
	a := s.action
	s.pushScope()
	var affected *battler.Combatant
	var res battler.ActionResult
	switch {
	case s.countered(a, target):
		counter := battler.NewAction(target, false).SetAttack()
		s.emit(Countered{Counter: target, Subject: subject})
		res = s.effects.Apply(counter, subject)
		affected = subject
		s.emit(ActionResulted{Subject: target, Target: subject, Result: res})
	case s.reflected(a, target):
		s.emit(Reflected{Reflector: target})
		res = s.effects.Apply(a, subject)
		affected = subject
		s.emit(ActionResulted{Subject: subject, Target: subject, Result: res})
	default:
		hit := s.applySubstitute(a, target)
		res = s.effects.Apply(a, hit)
		affected = hit
		s.emit(ActionResulted{Subject: subject, Target: hit, Result: res})
	}
	if res.IsStateAdded(affected.Limits().DeathStateID) {
		s.emit(Collapsed{Target: affected, CollapseType: affected.CollapseType()})
	}
	s.popScope(res.Noteworthy(), affected)
}

func (s *Session) countered(a *battler.Action, target *battler.Combatant) bool {
	if !a.IsPhysical() || !a.IsForOpponent() || !target.CanMove() {
		return false
	}
	return s.roller.Chance("counter "+target.Name(), target.XParam(trait.CNT))
}

func (s *Session) reflected(a *battler.Action, target *battler.Combatant) bool {
	if !a.IsMagical() {
		return false
	}
	return s.roller.Chance("reflect "+target.Name(), target.XParam(trait.MRF))
}

// applySubstitute returns the combatant that takes a hit meant for target. A
// dying target is covered by a substitute of its party unless the action is
// a certain hit.
func (s *Session) applySubstitute(a *battler.Action, target *battler.Combatant) *battler.Combatant {
	if !target.IsDying() || a.IsCertainHit() {
		return target
	}
	u := s.unitOf(target)
	if u == nil {
		return target
	}
	sub := u.SubstituteBattler()
	if sub == nil || sub == target {
		return target
	}
	s.emit(Substituted{Substitute: sub, Target: target})
	return sub
}

// endAction closes the action phase. A forced action hands control back to
// the phase and subject it interrupted. The termination check runs in the
// same step so a decisive action ends the battle without another tick.
func (s *Session) endAction() {
	subject := s.subject
	s.emit(ActionEnded{Subject: subject})
	s.action = nil
	s.pending = nil
	if s.inForced {
		s.allActionsEnd(subject)
		s.restoreFromForced()
	} else {
		s.setPhase(PhaseTurn)
	}
	s.checkBattleEnd()
}

// processForcedAction runs the oldest queued forced action. A subject that
// died or lost its action in the meantime is skipped.
func (s *Session) processForcedAction() {
	subject := s.forced[0]
	s.forced = s.forced[1:]
	s.turnForced = true
	s.resume = s.phase
	s.resumeSubject = s.subject
	s.inForced = true
	s.subject = subject

	a := subject.CurrentAction()
	subject.RemoveCurrentAction()
	if a == nil || !subject.IsAlive() {
		s.logger.Debug("forced action dropped", zap.String("subject", subject.Name()))
		s.restoreFromForced()
		return
	}
	a.Prepare()
	if !a.IsValid() || !s.startAction(subject, a, true) {
		s.logger.Debug("forced action dropped",
			zap.String("subject", subject.Name()),
			zap.String("skill", a.Name()),
		)
		s.restoreFromForced()
	}
}

func (s *Session) restoreFromForced() {
	s.setPhase(s.resume)
	s.subject = s.resumeSubject
	s.resume = PhaseIdle
	s.resumeSubject = nil
	s.inForced = false
}
