// Package main applies the battle record schema migrations.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	source := flag.String("migrations", "migrations", "directory of migration files")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	status, err := postgres.Migrate(cfg.Database.DSN(), *source, postgres.Direction(*direction), *steps)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	elapsed := time.Since(start)
	if !status.Changed {
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", status.Version, status.Dirty, elapsed)
		return
	}
	fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, status.Version, status.Dirty, elapsed)
}
