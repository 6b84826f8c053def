package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voidbreak/hull/internal/config"
	"github.com/voidbreak/hull/internal/core/event"
	coresys "github.com/voidbreak/hull/internal/core/system"
	"github.com/voidbreak/hull/internal/data"
	"github.com/voidbreak/hull/internal/integrity"
	"github.com/voidbreak/hull/internal/persist"
	"github.com/voidbreak/hull/internal/scripting"
	"github.com/voidbreak/hull/internal/system"
	"github.com/voidbreak/hull/internal/world"
)

// settleTicks is how long the loop keeps running after the last scripted
// impact so pending integrity checks can drain.
const settleTicks = 10

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ───────────────────────────────────────────────

func printBanner(runID string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        hullsim · structural integrity     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mrun:\033[0m %s\n\n", runID)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	s := fmt.Sprint(value)
	dotsLen := max(42-len(label)-len(s), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), s)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Simulation ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/hullsim.toml"
	if p := os.Getenv("HULLSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	runID := time.Now().UTC().Format("20060102T150405Z")
	printBanner(runID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Load data
	printSection("data")
	ships, err := data.LoadShipTable(cfg.Data.Ships)
	if err != nil {
		return fmt.Errorf("load ships: %w", err)
	}
	printStat("block kinds", ships.KindCount())
	printStat("blueprints", ships.Count())

	sc, err := data.LoadScenario(cfg.Data.Scenario, ships)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	printStat("spawns", len(sc.Spawns))
	printStat("scripted impacts", len(sc.Impacts))

	lua, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	if lua.HasHook("calc_impact_damage") {
		printOK("lua damage hook loaded")
	}
	fmt.Println()

	// 4. Journal sinks
	printSection("journal")
	var sinks []system.SplitSink
	if cfg.Journal.EventDir != "" {
		splitLog, err := persist.NewSplitLog(cfg.Journal.EventDir, runID)
		if err != nil {
			return fmt.Errorf("split log: %w", err)
		}
		defer func() {
			if err := splitLog.Close(); err != nil {
				log.Error("close split log", zap.Error(err))
			}
		}()
		sinks = append(sinks, splitLog)
		printOK("split log " + splitLog.Path())
	}
	if cfg.Journal.DSN != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Journal, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		version, err := persist.RunMigrations(dbCtx, db.Pool, log)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		sinks = append(sinks, persist.NewSplitRepo(db))
		printOK(fmt.Sprintf("PostgreSQL journal ready (schema v%d)", version))
	}
	if len(sinks) == 0 {
		printOK("journal disabled")
	}
	fmt.Println()

	// 5. World and fleet
	printSection("fleet")
	ws := world.NewState(cfg.Topology.DefaultLayer)
	bus := event.NewBus()
	builder := integrity.NewBuilder(integrity.NewResolvProberFactory(cfg.Topology), log)
	engine := integrity.NewEngine(builder, ws, cfg.Integrity.FloodWorkers, cfg.Topology.DefaultLayer, log)

	fleet, err := system.SpawnScenario(ws, builder, ships, sc, cfg, log)
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	for _, sp := range sc.Spawns {
		st := fleet.Structures[sp.Name]
		printStat(sp.Name+" ("+sp.Ship+")", st.BlockCount())
	}
	fmt.Println()

	// 6. Systems, registered in phase order
	runner := coresys.NewRunner()
	clock := system.Clock(runner.Ticks)

	scenarioSys := system.NewScenarioSystem(bus, clock, fleet, sc, log)
	integritySys := system.NewIntegritySystem(ctx, ws, engine, bus, clock, log)
	journalSys := system.NewJournalSystem(bus, sinks, runID, log, cfg.Journal.FlushEvery)
	summary := system.NewSummary(bus)

	runner.Register(scenarioSys)                                      // Phase 0: Input
	runner.Register(system.NewEventDispatchSystem(bus))               // Phase 1: PreUpdate (first)
	runner.Register(system.NewImpactSystem(ws, bus, clock, lua, log)) // Phase 1: PreUpdate
	runner.Register(system.NewMotionSystem(ws))                       // Phase 2: Update
	runner.Register(integritySys)                                     // Phase 3: PostUpdate
	runner.Register(journalSys)                                       // Phase 4: Persist
	runner.Register(system.NewCleanupSystem(ws, log))                 // Phase 5: Cleanup

	// 7. Run
	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("simulation")
	printReady(fmt.Sprintf("loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	stopAt := sc.LastTick() + settleTicks
	for running := true; running; {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
			n := runner.Ticks()
			if cfg.Simulation.MaxTicks > 0 && n >= uint64(cfg.Simulation.MaxTicks) {
				log.Info("tick limit reached", zap.Uint64("ticks", n))
				running = false
			} else if scenarioSys.Done() && n > stopAt && settled(ws, bus) {
				log.Info("scenario complete", zap.Uint64("ticks", n))
				running = false
			}
		case <-ctx.Done():
			log.Info("shutdown signal received")
			running = false
		}
	}

	// Deliver what the last tick emitted before the final journal flush.
	runner.TickPhase(coresys.PhasePreUpdate, 0)
	journalSys.Flush()

	// 8. Report
	printSection("summary")
	printStat("ticks", runner.Ticks())
	printStat("impacts", summary.Impacts)
	printStat("damage dealt", fmt.Sprintf("%.1f", summary.DamageDealt))
	printStat("blocks destroyed", summary.BlocksDestroyed)
	printStat("integrity checks", integritySys.Checks())
	printStat("splits", summary.Splits)
	printStat("fragments", summary.Fragments)
	printStat("structures destroyed", summary.StructuresDestroyed)
	printStat("structures alive", ws.StructureCount())
	printStat("split records written", journalSys.Written())
	if n := journalSys.Dropped(); n > 0 {
		printStat("split records dropped", n)
	}
	fmt.Println()
	ws.AllStructures(func(st *world.Structure) {
		printStat(st.Name, fmt.Sprintf("%d blocks, %.0f/%.0f hp", st.BlockCount(), st.HP(), st.MaxHP()))
	})
	return nil
}

// settled reports whether no structure has destroyed blocks waiting for a
// check and no events are queued for dispatch.
func settled(ws *world.State, bus *event.Bus) bool {
	idle := event.Pending[event.StructureSplit](bus) == 0 &&
		event.Pending[event.BlockDestroyed](bus) == 0 &&
		event.Pending[event.Impact](bus) == 0 &&
		event.Pending[event.Detonation](bus) == 0
	ws.AllStructures(func(st *world.Structure) {
		if st.PendingLen() > 0 {
			idle = false
		}
	})
	return idle
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
