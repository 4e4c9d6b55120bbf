// Package main runs battles between a party of actors and a troop from the
// content directories and prints the outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/roster"
	"github.com/cory-johannsen/battlecore/internal/observability"
	"github.com/cory-johannsen/battlecore/internal/presentation"
	"github.com/cory-johannsen/battlecore/internal/scripting"
	"github.com/cory-johannsen/battlecore/internal/server"
	"github.com/cory-johannsen/battlecore/internal/simulation"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	troopID := flag.String("troop", "slimes", "troop to fight")
	partyFlag := flag.String("party", "", "comma-separated actor ids; empty = every actor")
	battles := flag.Int("battles", 1, "number of battles to run")
	workers := flag.Int("workers", 4, "battles run at once")
	seed := flag.Int64("seed", 0, "dice seed; 0 = pick one and log it")
	realtime := flag.Bool("realtime", false, "pace battles at the configured tick interval")
	color := flag.Bool("color", true, "color the battle log")
	quiet := flag.Bool("quiet", false, "do not print the battle log")
	flag.Parse()

	if *battles < 1 || *workers < 1 {
		log.Fatalf("-battles and -workers must be >= 1")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	metrics, err := observability.NewBattleMetrics()
	if err != nil {
		logger.Fatal("registering metrics", zap.Error(err))
	}

	contentStart := time.Now()
	ros, err := roster.Load(cfg.Content, cfg.Battle)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("conditions", len(ros.Conditions().All())),
		zap.Int("actors", len(ros.ActorIDs())),
		zap.Int("troops", len(ros.TroopIDs())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	actorIDs := ros.ActorIDs()
	if *partyFlag != "" {
		actorIDs = strings.Split(*partyFlag, ",")
	}

	formulas := scripting.NewFormulas(0)
	defer formulas.Close()

	opts := []simulation.Option{simulation.WithMetrics(metrics), simulation.WithScripts(cfg.Content.Scripts)}
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(context.Background(), cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts = append(opts, simulation.WithStore(postgres.NewBattleRecordRepository(pool.DB())))
	}
	runner := simulation.NewRunner(ros, formulas, cfg.Battle, logger, opts...)

	if *seed == 0 {
		*seed = dice.Seed()
	}
	logger.Info("dice seeded", zap.Int64("seed", *seed))

	enc := simulation.Encounter{
		TroopID:  *troopID,
		ActorIDs: actorIDs,
		Seed:     *seed,
		Realtime: *realtime,
	}
	if *battles == 1 && !*quiet {
		enc.NewBridge = func() combat.Bridge {
			return presentation.Fanout{
				presentation.NewTextRenderer(os.Stdout, *color, ros.Conditions()),
				presentation.NewLogBridge(logger),
			}
		}
	}

	var sums []simulation.Summary
	lc := server.NewLifecycle(logger)
	lc.Add("battles", server.ServiceFunc(func(ctx context.Context) error {
		var err error
		sums, err = runner.RunBatch(ctx, enc, *battles, *workers)
		return err
	}))
	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("running battles", zap.Error(err))
	}
	if sums == nil {
		logger.Warn("battles interrupted")
		os.Exit(1)
	}

	printTally(sums, time.Since(start))
}

func printTally(sums []simulation.Summary, elapsed time.Duration) {
	tally := simulation.Tally(sums)
	results := make([]combat.Result, 0, len(tally))
	for r := range tally {
		results = append(results, r)
	}
	slices.Sort(results)

	turns := 0
	for _, s := range sums {
		turns += s.Turns
	}
	fmt.Fprintf(os.Stdout, "%d battle(s) against %s [%s]\n", len(sums), sums[0].TroopID, elapsed.Round(time.Millisecond))
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "  %-8s %d\n", r, tally[r])
	}
	fmt.Fprintf(os.Stdout, "  avg turns %.1f\n", float64(turns)/float64(len(sums)))
}
