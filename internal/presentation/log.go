package presentation

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

// LogBridge writes every event as a structured log line. Per-action events are
// logged at Debug; battle boundaries and outcomes at Info. Lines after
// BattleStarted carry the session id. A LogBridge serves one session.
type LogBridge struct {
	base    *zap.Logger
	logger  *zap.Logger
	session uuid.UUID
}

// NewLogBridge returns a bridge logging to logger.
func NewLogBridge(logger *zap.Logger) *LogBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogBridge{base: logger, logger: logger}
}

// Session returns the id announced by BattleStarted, or uuid.Nil before it.
func (b *LogBridge) Session() uuid.UUID { return b.session }

// Busy implements combat.Bridge.
func (b *LogBridge) Busy() bool { return false }

// Emit implements combat.Bridge.
func (b *LogBridge) Emit(e combat.Event) {
	if bs, ok := e.(combat.BattleStarted); ok {
		b.session = bs.SessionID
		b.logger = b.base.With(zap.Stringer("session", bs.SessionID))
	}
	fields := append([]zap.Field{zap.String("event", e.EventType())}, eventFields(e)...)
	switch e.(type) {
	case combat.BattleStarted, combat.Victory, combat.Defeat, combat.EscapeAttempted,
		combat.Message, combat.BattleEnded:
		b.logger.Info("battle event", fields...)
	default:
		b.logger.Debug("battle event", fields...)
	}
}

func combatant(key string, c *battler.Combatant) zap.Field {
	if c == nil {
		return zap.Skip()
	}
	return zap.String(key, c.Name())
}

func eventFields(e combat.Event) []zap.Field {
	switch ev := e.(type) {
	case combat.BattleStarted:
		return []zap.Field{zap.Int("party", len(ev.Party)), zap.Int("troop", len(ev.Troop))}
	case combat.Emerged:
		return []zap.Field{zap.String("name", ev.Name)}
	case combat.Preemptive:
		return []zap.Field{zap.String("party", ev.Party)}
	case combat.Surprised:
		return []zap.Field{zap.String("party", ev.Party)}
	case combat.InputStarted:
		return []zap.Field{zap.Int("turn", ev.Turn)}
	case combat.TurnStarted:
		return []zap.Field{zap.Int("turn", ev.Turn), zap.Int("order", len(ev.Order))}
	case combat.ActionStarted:
		return []zap.Field{
			combatant("subject", ev.Subject),
			zap.String("skill", ev.Skill.Name),
			zap.Int("targets", len(ev.Targets)),
			zap.Bool("forced", ev.Forced),
		}
	case combat.Countered:
		return []zap.Field{combatant("counter", ev.Counter), combatant("subject", ev.Subject)}
	case combat.Reflected:
		return []zap.Field{combatant("reflector", ev.Reflector)}
	case combat.Substituted:
		return []zap.Field{combatant("substitute", ev.Substitute), combatant("target", ev.Target)}
	case combat.ActionResulted:
		return []zap.Field{
			combatant("subject", ev.Subject),
			combatant("target", ev.Target),
			zap.Bool("hit", ev.Result.IsHit()),
			zap.Bool("critical", ev.Result.Critical),
			zap.Int("hp_damage", ev.Result.HPDamage),
			zap.Int("mp_damage", ev.Result.MPDamage),
			zap.Ints("added_states", ev.Result.AddedStates),
		}
	case combat.NoEffect:
		return []zap.Field{combatant("target", ev.Target)}
	case combat.Collapsed:
		return []zap.Field{combatant("target", ev.Target), zap.Int("collapse_type", ev.CollapseType)}
	case combat.ActionEnded:
		return []zap.Field{combatant("subject", ev.Subject)}
	case combat.StatesExpired:
		return []zap.Field{combatant("member", ev.Member), zap.Ints("states", ev.RemovedStates), zap.Int("buffs", len(ev.RemovedBuffs))}
	case combat.Regenerated:
		return []zap.Field{combatant("member", ev.Member), zap.Int("hp", ev.Regen.HP), zap.Int("mp", ev.Regen.MP), zap.Int("tp", ev.Regen.TP)}
	case combat.TurnEnded:
		return []zap.Field{zap.Int("turn", ev.Turn)}
	case combat.EscapeAttempted:
		return []zap.Field{zap.Bool("success", ev.Success), zap.Float64("ratio", ev.Ratio)}
	case combat.Aborting:
		return []zap.Field{zap.Bool("escaped", ev.Escaped)}
	case combat.Victory:
		return []zap.Field{zap.Int("exp", ev.Reward.Exp), zap.Int("gold", ev.Reward.Gold), zap.Ints("items", ev.Reward.Items)}
	case combat.Defeat:
		return []zap.Field{zap.Bool("can_lose", ev.CanLose)}
	case combat.Message:
		return []zap.Field{zap.String("text", ev.Text)}
	case combat.BattleEnded:
		return []zap.Field{zap.Stringer("result", ev.Result), zap.Stringer("outcome", ev.Outcome)}
	default:
		return nil
	}
}
