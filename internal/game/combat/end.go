package combat

import (
	"context"

	"go.uber.org/zap"
)

// checkAbort starts the escape sequence when the party has no battle members
// left or a script asked the battle to stop.
func (s *Session) checkAbort() bool {
	if s.party.IsEmpty() || s.abort {
		s.startAborting()
		return true
	}
	return false
}

// checkBattleEnd applies the termination rules in priority order: abort,
// then defeat, then victory. Defeat wins when both sides fall together.
//
// Postcondition: Returns true when the battle left its normal flow.
func (s *Session) checkBattleEnd() bool {
	if s.phase == PhaseAborting || s.phase == PhaseBattleEnd {
		return false
	}
	switch {
	case s.checkAbort():
		return true
	case s.party.IsAllDead():
		s.processDefeat()
		return true
	case s.troop.IsAllDead():
		s.processVictory()
		return true
	default:
		return false
	}
}

func (s *Session) startAborting() {
	s.escaped = true
	s.abort = false
	s.setPhase(PhaseAborting)
	s.emit(Aborting{Escaped: true})
}

func (s *Session) processAbort() {
	s.party.RemoveBattleStates()
	s.endBattle(ResultEscaped)
}

// processVictory computes the reward from the fallen troop and hands it to
// the reward sink.
func (s *Session) processVictory() {
	s.party.RemoveBattleStates()
	s.reward = makeReward(s.party, s.troop)
	s.emit(Victory{Reward: s.reward})
	if s.rewards != nil {
		s.rewards.Grant(s.reward)
	}
	s.endBattle(ResultVictory)
}

func (s *Session) processDefeat() {
	s.emit(Defeat{CanLose: s.opts.CanLose})
	s.endBattle(ResultDefeat)
}

func (s *Session) endBattle(r Result) {
	s.result = r
	s.order = nil
	s.forced = nil
	s.setPhase(PhaseBattleEnd)
}

// updateBattleEnd reports the battle exactly once. A lost battle that allows
// losing revives the party at 1 HP; otherwise it is a game over.
func (s *Session) updateBattleEnd() {
	switch {
	case s.result == ResultVictory:
		s.outcome = OutcomeVictory
	case !s.escaped && s.party.IsAllDead():
		if s.opts.CanLose {
			s.party.ReviveBattleMembers()
			s.outcome = OutcomeContinueAfterDefeat
		} else {
			s.outcome = OutcomeGameOver
		}
	default:
		s.outcome = OutcomeEscaped
	}
	s.party.OnBattleEnd()
	s.troop.OnBattleEnd()
	s.emit(BattleEnded{Result: s.result, Outcome: s.outcome})
	s.metrics.BattleEnded(context.Background(), s.result.String())
	s.logger.Info("battle ended",
		zap.Stringer("result", s.result),
		zap.Stringer("outcome", s.outcome),
		zap.Int("turns", s.troop.TurnCount()),
	)
	s.reported = true
}
