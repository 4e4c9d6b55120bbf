package combat

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/party"
)

// Start opens the battle: both parties run their start hooks, the escape
// ratio is computed, and the preemptive and surprise draws are made.
// Preemptive is drawn first; surprise only counts when preemptive failed.
//
// Precondition: Phase() == PhaseIdle.
// Postcondition: Phase() == PhaseStart.
func (s *Session) Start() {
	s.mustPhase("Start", PhaseIdle)
	s.setPhase(PhaseStart)
	s.escapeRatio = initialEscapeRatio(s.party, s.troop)
	preRate, surRate := s.opts.OpeningRates(s.party, s.troop)
	s.preemptive = s.roller.Chance("preemptive", preRate)
	surprise := s.roller.Chance("surprise", surRate)
	s.surprise = surprise && !s.preemptive

	s.party.OnBattleStart()
	s.troop.OnBattleStart()
	s.emit(BattleStarted{SessionID: s.id, Party: s.party.BattleMembers(), Troop: s.troop.BattleMembers()})
	for _, m := range s.troop.BattleMembers() {
		s.emit(Emerged{Name: m.Name()})
	}
	switch {
	case s.preemptive:
		s.emit(Preemptive{Party: s.party.Name()})
	case s.surprise:
		s.emit(Surprised{Party: s.party.Name()})
	}
	s.metrics.BattleStarted(context.Background())
	s.logger.Info("battle started",
		zap.String("party", s.party.Name()),
		zap.String("troop", s.troop.Name()),
		zap.Bool("preemptive", s.preemptive),
		zap.Bool("surprise", s.surprise),
		zap.Float64("escape_ratio", s.escapeRatio),
	)
	s.runHooks(TriggerBattleStart)
}

// Update advances the battle by one step. It does nothing while the bridge or
// a battle event is busy, and nothing once the battle has been reported.
func (s *Session) Update() {
	if s.phase == PhaseIdle || s.reported {
		return
	}
	if s.isBusy() {
		return
	}
	if s.updateEvent() {
		return
	}
	switch s.phase {
	case PhaseStart:
		s.startInput()
	case PhaseTurn:
		s.updateTurn()
	case PhaseAction:
		s.updateAction()
	case PhaseTurnEnd:
		s.startInput()
	case PhaseAborting:
		s.processAbort()
	case PhaseBattleEnd:
		s.updateBattleEnd()
	}
}

func (s *Session) isBusy() bool {
	return s.bridge.Busy() || (s.hooks != nil && s.hooks.Running())
}

// updateEvent runs the checks that precede phase work: at phase boundaries a
// pending forced action runs first, then the termination check. In the other
// phases only an abort request is honoured.
//
// Postcondition: Returns true when the step was consumed.
func (s *Session) updateEvent() bool {
	switch s.phase {
	case PhaseStart, PhaseTurn, PhaseTurnEnd:
		if len(s.forced) > 0 {
			s.processForcedAction()
			return true
		}
		return s.checkBattleEnd()
	case PhaseInput:
		return s.checkAbort()
	default:
		return false
	}
}

func (s *Session) runHooks(t Trigger) {
	if s.hooks != nil {
		s.hooks.Run(t, s)
	}
}

// startInput opens the input phase. Both parties build their queues; the
// turn starts at once when the party is surprised, cannot input, or chooses
// automatically.
func (s *Session) startInput() {
	s.setPhase(PhaseInput)
	s.subject = nil
	s.party.MakeActions(s.pc, s.troop)
	s.troop.MakeActions(s.tc, s.party)
	if s.surprise || !s.party.CanInput() || s.pc != nil {
		s.startTurn()
		return
	}
	s.emit(InputStarted{Turn: s.troop.TurnCount() + 1})
}

// startTurn computes the turn order: every party battle member unless
// surprised, then every troop battle member unless preemptive, stably sorted
// by freshly drawn speed, highest first.
func (s *Session) startTurn() {
	s.setPhase(PhaseTurn)
	s.subject = nil
	s.troop.IncreaseTurn()
	s.order = s.makeActionOrder()
	s.emit(TurnStarted{Turn: s.troop.TurnCount(), Order: s.ActionOrder()})
	s.runHooks(TriggerTurnStart)
}

func (s *Session) makeActionOrder() []*battler.Combatant {
	var order []*battler.Combatant
	if !s.surprise {
		order = append(order, s.party.BattleMembers()...)
	}
	if !s.preemptive {
		order = append(order, s.troop.BattleMembers()...)
	}
	for _, c := range order {
		c.MakeSpeed()
	}
	slices.SortStableFunc(order, func(a, b *battler.Combatant) int {
		return b.Speed() - a.Speed()
	})
	return order
}

// nextSubject pops the order until a living battle member turns up.
func (s *Session) nextSubject() *battler.Combatant {
	for len(s.order) > 0 {
		c := s.order[0]
		s.order = s.order[1:]
		if u := s.unitOf(c); u != nil && u.IsBattleMember(c) && c.IsAlive() {
			return c
		}
	}
	return nil
}

func (s *Session) updateTurn() {
	if s.subject == nil {
		s.subject = s.nextSubject()
	}
	if s.subject == nil {
		s.endTurn()
		return
	}
	s.processTurn()
}

// processTurn consumes the subject's next action. An invalid action, or one
// whose targets cannot be resolved, is dropped. An exhausted queue runs the
// subject's end-of-actions hook and moves to the next subject.
func (s *Session) processTurn() {
	subject := s.subject
	a := subject.CurrentAction()
	if a == nil {
		s.allActionsEnd(subject)
		s.subject = s.nextSubject()
		return
	}
	a.Prepare()
	if !a.IsValid() || !s.startAction(subject, a, false) {
		s.logger.Debug("action dropped",
			zap.String("subject", subject.Name()),
			zap.String("skill", a.Name()),
		)
	}
	subject.RemoveCurrentAction()
}

func (s *Session) allActionsEnd(c *battler.Combatant) {
	c.OnAllActionsEnd()
	s.emitExpired(c)
}

func (s *Session) emitExpired(c *battler.Combatant) {
	r := c.Result()
	if len(r.RemovedStates) > 0 || len(r.RemovedBuffs) > 0 {
		s.emit(StatesExpired{
			Member:        c,
			RemovedStates: slices.Clone(r.RemovedStates),
			RemovedBuffs:  slices.Clone(r.RemovedBuffs),
		})
	}
}

// endTurn runs every battle member's end-of-turn hook and clears the opening
// advantage flags.
func (s *Session) endTurn() {
	s.setPhase(PhaseTurnEnd)
	s.preemptive = false
	s.surprise = false
	for _, u := range s.units() {
		for _, rep := range u.OnTurnEnd() {
			if rep.Regen != (battler.Regen{}) {
				s.emit(Regenerated{Member: rep.Member, Regen: rep.Regen})
			}
			s.emitExpired(rep.Member)
		}
	}
	turn := s.troop.TurnCount()
	s.emit(TurnEnded{Turn: turn})
	s.metrics.TurnCompleted(context.Background())
	s.logger.Debug("turn ended", zap.Int("turn", turn), zap.Bool("forced", s.turnForced))
	s.turnForced = false
	s.runHooks(TriggerTurnEnd)
}

func (s *Session) units() []*party.Party {
	return []*party.Party{s.party, s.troop}
}
