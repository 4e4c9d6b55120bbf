package combat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

func TestNewDriver_Panics(t *testing.T) {
	f := newFixture(0, []member{{name: "Hero", agi: 10}}, []member{{name: "Slime", agi: 5}})
	s := f.session(combat.Options{}, combat.Deps{})
	assert.Panics(t, func() { combat.NewDriver(nil, time.Millisecond, nil) })
	assert.Panics(t, func() { combat.NewDriver(s, 0, nil) })
}

func TestDriver_RunsBattleToCompletion(t *testing.T) {
	f := newFixture(0, []member{{name: "Hero", agi: 10}}, []member{{name: "Slime", agi: 5}})
	s := f.session(combat.Options{}, combat.Deps{
		PartyChooser: attackChooser(),
		Effects:      flatDamage{dmg: 1000},
	})
	d := combat.NewDriver(s, time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, d.Run(ctx))
	assert.True(t, s.IsReported())
	assert.Equal(t, combat.OutcomeVictory, s.Outcome())
}

func TestDriver_StopsOnCancel(t *testing.T) {
	f := newFixture(0, []member{{name: "Hero", agi: 10}}, []member{{name: "Slime", agi: 5}})
	s := f.session(combat.Options{}, combat.Deps{PartyChooser: attackChooser()})
	f.bridge.setBusy(true)
	d := combat.NewDriver(s, time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.IsReported())
}

func TestDriver_SubmitRunsOnDriverGoroutine(t *testing.T) {
	f := newFixture(0, []member{{name: "Hero", agi: 10}}, []member{{name: "Slime", agi: 5}})
	s := f.session(combat.Options{}, combat.Deps{})
	d := combat.NewDriver(s, time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		_ = d.Submit(ctx, func(s *combat.Session) { s.Abort() })
	}()
	require.NoError(t, d.Run(ctx))
	assert.Equal(t, combat.ResultEscaped, s.Result())
	assert.Equal(t, combat.OutcomeEscaped, s.Outcome())
}
