package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/observability"
)

func TestBattleMetrics_NoProvider(t *testing.T) {
	m, err := observability.NewBattleMetrics()
	require.NoError(t, err)
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.BattleStarted(ctx)
		m.ActionExecuted(ctx, "Attack")
		m.TurnCompleted(ctx)
		m.BattleEnded(ctx, "victory")
	})
}

func TestBattleMetrics_NilReceiver(t *testing.T) {
	var m *observability.BattleMetrics
	assert.NotPanics(t, func() {
		m.BattleStarted(context.Background())
		m.BattleEnded(context.Background(), "abort")
	})
}
