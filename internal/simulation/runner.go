// Package simulation assembles complete battles from loaded content and runs
// them to completion, one at a time or as a concurrent batch.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/effect"
	"github.com/cory-johannsen/battlecore/internal/game/party"
	"github.com/cory-johannsen/battlecore/internal/game/roster"
	"github.com/cory-johannsen/battlecore/internal/game/troopevent"
	"github.com/cory-johannsen/battlecore/internal/presentation"
	"github.com/cory-johannsen/battlecore/internal/scripting"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
)

// MaxSteps bounds how many updates Resolve gives a session before giving up.
const MaxSteps = 1_000_000

// ErrStalled is returned when a session does not report within MaxSteps updates.
var ErrStalled = errors.New("simulation: battle did not finish")

// RecordStore persists finished battles. *postgres.BattleRecordRepository implements it.
type RecordStore interface {
	Create(ctx context.Context, rec postgres.BattleRecord) (*postgres.BattleRecord, error)
}

// Encounter describes the battles to run.
type Encounter struct {
	TroopID  string
	ActorIDs []string
	// Seed makes rolls reproducible: battle i of a batch uses Seed+i. Zero
	// draws from the crypto source.
	Seed int64
	// Realtime paces the session with a Driver at the configured tick
	// interval instead of updating it as fast as possible.
	Realtime bool
	// NewBridge returns the presentation bridge of one battle; nil logs events.
	NewBridge func() combat.Bridge
}

// Summary is the outcome of one battle.
type Summary struct {
	SessionID uuid.UUID
	TroopID   string
	Result    combat.Result
	Outcome   combat.Outcome
	Turns     int
	Reward    combat.Reward
}

// Runner builds and runs battles. It is safe for concurrent use.
type Runner struct {
	roster   *roster.Roster
	formulas *scripting.Formulas
	battle   config.BattleConfig
	scripts  string
	logger   *zap.Logger
	metrics  combat.Metrics
	store    RecordStore
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics reports battle counters to m.
func WithMetrics(m combat.Metrics) Option { return func(r *Runner) { r.metrics = m } }

// WithStore records every finished battle in s.
func WithStore(s RecordStore) Option { return func(r *Runner) { r.store = s } }

// WithScripts loads troop event scripts from dir/<troop id>. Troops without a
// directory there fight without events.
func WithScripts(dir string) Option { return func(r *Runner) { r.scripts = dir } }

// NewRunner returns a Runner over the given content.
//
// Precondition: ros and formulas must be non-nil.
func NewRunner(ros *roster.Roster, formulas *scripting.Formulas, battle config.BattleConfig, logger *zap.Logger, opts ...Option) *Runner {
	if ros == nil || formulas == nil {
		panic("simulation: NewRunner requires a roster and formulas")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{roster: ros, formulas: formulas, battle: battle, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Battle is one assembled session and the resources it owns.
type Battle struct {
	Session *combat.Session
	TroopID string
	scripts *scripting.Manager
}

// Close releases the battle's script VM.
func (b *Battle) Close() {
	if b.scripts != nil {
		b.scripts.Close()
	}
}

func (r *Runner) roller(seed int64) *dice.Roller {
	if seed == 0 {
		return dice.NewLoggedRoller(dice.NewCryptoSource(), r.logger)
	}
	return dice.NewLoggedRoller(dice.NewSeededSource(seed), r.logger)
}

// NewBattle assembles the session for enc using seed for every roll. Both
// sides choose their actions automatically.
//
// Postcondition: The caller must Close the returned Battle.
func (r *Runner) NewBattle(enc Encounter, seed int64) (*Battle, error) {
	roller := r.roller(seed)
	heroes, err := r.roster.NewParty("Party", enc.ActorIDs, roller)
	if err != nil {
		return nil, err
	}
	if heroes.IsEmpty() {
		return nil, fmt.Errorf("simulation: party has no battle members")
	}
	troop, err := r.roster.NewTroop(enc.TroopID, roller)
	if err != nil {
		return nil, err
	}

	b := &Battle{TroopID: enc.TroopID}
	var hooks combat.EventHooks
	if r.scripts != "" {
		dir := filepath.Join(r.scripts, enc.TroopID)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			b.scripts = scripting.NewManager(roller, r.logger)
			if err := b.scripts.LoadTroop(enc.TroopID, dir, 0); err != nil {
				b.Close()
				return nil, fmt.Errorf("loading troop scripts: %w", err)
			}
			hooks = troopevent.New(b.scripts, enc.TroopID, r.logger)
		}
	}

	var bridge combat.Bridge
	if enc.NewBridge != nil {
		bridge = enc.NewBridge()
	} else {
		bridge = presentation.NewLogBridge(r.logger)
	}
	b.Session = combat.NewSession(combat.OptionsFromConfig(r.battle), combat.Deps{
		Party:        heroes,
		Troop:        troop,
		PartyChooser: party.FirstUsable,
		TroopChooser: party.FirstUsable,
		Effects:      effect.New(roller, r.formulas, r.logger),
		Bridge:       bridge,
		Rewards:      combat.PartyRewards{Party: heroes},
		Hooks:        hooks,
		Roller:       roller,
		Logger:       r.logger,
		Metrics:      r.metrics,
	})
	return b, nil
}

// Resolve starts s if needed and updates it until it reports.
//
// Postcondition: Returns nil once s is reported, ctx.Err() on cancellation, or
// ErrStalled after MaxSteps updates.
func Resolve(ctx context.Context, s *combat.Session) error {
	if s.Phase() == combat.PhaseIdle {
		s.Start()
	}
	for range MaxSteps {
		if s.IsReported() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Update()
	}
	if s.IsReported() {
		return nil
	}
	return ErrStalled
}

// Run fights one battle of enc with the encounter's seed.
func (r *Runner) Run(ctx context.Context, enc Encounter) (Summary, error) {
	return r.run(ctx, enc, enc.Seed)
}

func (r *Runner) run(ctx context.Context, enc Encounter, seed int64) (Summary, error) {
	b, err := r.NewBattle(enc, seed)
	if err != nil {
		return Summary{}, err
	}
	defer b.Close()

	s := b.Session
	if enc.Realtime {
		err = combat.NewDriver(s, r.battle.TickInterval, r.logger).Run(ctx)
	} else {
		err = Resolve(ctx, s)
	}
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		SessionID: s.ID(),
		TroopID:   enc.TroopID,
		Result:    s.Result(),
		Outcome:   s.Outcome(),
		Turns:     s.Troop().TurnCount(),
		Reward:    s.Rewards(),
	}
	if r.store != nil {
		if _, err := r.store.Create(ctx, postgres.RecordFromSession(s, enc.TroopID)); err != nil {
			return sum, fmt.Errorf("recording battle %s: %w", s.ID(), err)
		}
	}
	r.logger.Info("battle finished",
		zap.Stringer("session", sum.SessionID),
		zap.String("troop", sum.TroopID),
		zap.Stringer("result", sum.Result),
		zap.Int("turns", sum.Turns),
	)
	return sum, nil
}

// RunBatch fights n battles of enc with at most workers running at once.
// Summaries are returned in battle order.
//
// Precondition: n >= 1 and workers >= 1.
// Postcondition: Returns the first battle error; the other battles are cancelled.
func (r *Runner) RunBatch(ctx context.Context, enc Encounter, n, workers int) ([]Summary, error) {
	if n < 1 || workers < 1 {
		panic("simulation: RunBatch requires n >= 1 and workers >= 1")
	}
	out := make([]Summary, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		seed := int64(0)
		if enc.Seed != 0 {
			seed = enc.Seed + int64(i)
		}
		g.Go(func() error {
			sum, err := r.run(gctx, enc, seed)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i+1, err)
			}
			out[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Tally counts summaries by result.
func Tally(sums []Summary) map[combat.Result]int {
	counts := make(map[combat.Result]int)
	for _, s := range sums {
		counts[s.Result]++
	}
	return counts
}
