package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/cory-johannsen/battlecore/internal/observability"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// BattleMetrics counts battle lifecycle events on the global OTel meter provider.
// When no provider is installed the counters are no-ops.
type BattleMetrics struct {
	started metric.Int64Counter
	actions metric.Int64Counter
	ended   metric.Int64Counter
	turns   metric.Int64Counter
}

// NewBattleMetrics registers the battle counters.
//
// Postcondition: Returns a usable BattleMetrics or a non-nil error.
func NewBattleMetrics() (*BattleMetrics, error) {
	m := meter()
	bm := &BattleMetrics{}

	var err error
	bm.started, err = m.Int64Counter(
		"battle.sessions.started",
		metric.WithDescription("Total battles started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}
	bm.actions, err = m.Int64Counter(
		"battle.actions.executed",
		metric.WithDescription("Total actions executed by any combatant"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating actions counter: %w", err)
	}
	bm.turns, err = m.Int64Counter(
		"battle.turns.completed",
		metric.WithDescription("Total battle turns completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	bm.ended, err = m.Int64Counter(
		"battle.sessions.ended",
		metric.WithDescription("Total battles ended, by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ended counter: %w", err)
	}
	return bm, nil
}

// BattleStarted records a battle start. A nil receiver is a no-op.
func (m *BattleMetrics) BattleStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.started.Add(ctx, 1)
}

// ActionExecuted records one executed action of the named skill.
func (m *BattleMetrics) ActionExecuted(ctx context.Context, skill string) {
	if m == nil {
		return
	}
	m.actions.Add(ctx, 1, metric.WithAttributes(attribute.String("skill", skill)))
}

// TurnCompleted records the end of one battle turn.
func (m *BattleMetrics) TurnCompleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.turns.Add(ctx, 1)
}

// BattleEnded records a battle end with its result label.
func (m *BattleMetrics) BattleEnded(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.ended.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
