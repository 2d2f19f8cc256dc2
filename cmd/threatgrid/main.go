package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rtsgo/threatgrid/internal/config"
	"github.com/rtsgo/threatgrid/internal/core/event"
	coresys "github.com/rtsgo/threatgrid/internal/core/system"
	"github.com/rtsgo/threatgrid/internal/data"
	"github.com/rtsgo/threatgrid/internal/persist"
	"github.com/rtsgo/threatgrid/internal/scenario"
	"github.com/rtsgo/threatgrid/internal/scripting"
	"github.com/rtsgo/threatgrid/internal/system"
	"github.com/rtsgo/threatgrid/internal/threat"
	"github.com/rtsgo/threatgrid/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               threatgrid                  \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     occupancy grid · target acquisition   \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label, value string) {
	dotsLen := max(42-len(label)-len(value), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
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
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Static data and scripts
	printSection("data")
	catalog, err := data.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("type classes", humanize.Comma(int64(catalog.Count())))

	var engine *scripting.Engine
	if cfg.Scripting.Enabled {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		engine.SetConstants(scripting.ModeConstants)
		printOK("lua scripts loaded")
	}
	defaultMode, err := threat.ParseMode(cfg.Targeting.DefaultMode)
	if err != nil {
		return fmt.Errorf("targeting.default_mode: %w", err)
	}
	fmt.Println()

	// 4. World and scenario
	printSection("scenario")
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	houses, players, err := scenario.Houses(cfg.Scenario)
	if err != nil {
		return err
	}
	bus := event.NewBus()
	b := cfg.Map.Bounds
	ws := world.NewState(world.Options{
		Width:  cfg.Map.Width,
		Height: cfg.Map.Height,
		Bounds: world.Rect{X: b.X, Y: b.Y, W: b.W, H: b.H},
		Strict: cfg.Simulation.Strict,
	}, houses, bus, log)

	report, err := scenario.Generate(ws, cfg.Scenario, catalog, players, seed, log)
	if err != nil {
		return fmt.Errorf("generate scenario: %w", err)
	}
	printStat("seed", fmt.Sprintf("%d", seed))
	printStat("map", fmt.Sprintf("%dx%d", cfg.Map.Width, cfg.Map.Height))
	printStat("objects", humanize.Comma(int64(report.Objects())))
	printStat("trees", humanize.Comma(int64(report.Trees)))
	printStat("normal zones", humanize.Comma(int64(report.Zones[world.ZoneNormal])))
	fmt.Println()

	// 5. Telemetry
	printSection("telemetry")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	recorder, err := persist.Open(ctx, cfg.Telemetry, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer recorder.Close()

	runInfo := persist.NewRun(seed, cfg.Map.Width, cfg.Map.Height)
	if err := recorder.BeginRun(ctx, runInfo); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	printOK(fmt.Sprintf("run %s (%s)", runInfo.ID, cfg.Telemetry.Driver))

	var trace system.TraceSink
	var traceWriter *persist.TraceWriter
	if cfg.Telemetry.TraceDir != "" {
		traceWriter, err = persist.NewTraceWriter(cfg.Telemetry.TraceDir, runInfo.ID.String())
		if err != nil {
			return fmt.Errorf("scan trace: %w", err)
		}
		defer traceWriter.Close()
		trace = traceWriter
		printOK("scan trace " + traceWriter.Path())
	}
	fmt.Println()

	// 6. Systems
	valuer := scripting.NewValuer(engine)
	eval := threat.NewEvaluator(ws, threat.CatalogArsenal{}, valuer, cfg.Targeting.UnboundedScale)
	scanner := threat.NewScanner(ws, eval, rand.New(rand.NewSource(seed)),
		cfg.Targeting.MaxContenders, cfg.Targeting.AreaRangeCap)

	movement := system.NewMovementSystem(ws, rand.New(rand.NewSource(seed+1)),
		cfg.Scenario.MoveChance, cfg.Scenario.AircraftFlyAt, log)
	targeting := system.NewTargetingSystem(ws, scanner, system.ScriptedModes(engine, defaultMode),
		cfg.Targeting.RescanTicks, cfg.Targeting.ZoneFilter, trace, log)
	telemetry := system.NewTelemetrySystem(ws, bus, recorder, runInfo.ID, cfg.Telemetry.Batch, log)
	cleanup := system.NewCleanupSystem(ws, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewEventSystem(ws, bus))
	runner.Register(movement)
	runner.Register(system.NewSightSystem(ws, 2))
	runner.Register(targeting)
	runner.Register(telemetry)
	runner.Register(cleanup)

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	printSection("running")
	if cfg.Simulation.Ticks > 0 {
		printReady(fmt.Sprintf("%s ticks at %s", humanize.Comma(int64(cfg.Simulation.Ticks)), cfg.Simulation.TickRate))
	} else {
		printReady(fmt.Sprintf("until interrupted, tick %s", cfg.Simulation.TickRate))
	}
	fmt.Println()

	started := time.Now()
	loop(runner, cfg.Simulation, shutdownCh, log)
	elapsed := time.Since(started)

	// 8. Shutdown
	telemetry.Drain()
	acq, viol := telemetry.Stored()
	runInfo.FinishedAt = time.Now().UTC()
	runInfo.Ticks = runner.Ticks()
	runInfo.Objects = ws.ObjectCount()
	runInfo.Acquisitions = acq
	runInfo.Violations = viol
	finishCtx, finishCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finishCancel()
	if err := recorder.FinishRun(finishCtx, runInfo); err != nil {
		log.Error("finish run", zap.Error(err))
	}

	printSection("summary")
	printStat("ticks", humanize.Comma(int64(runner.Ticks())))
	printStat("elapsed", elapsed.Round(time.Millisecond).String())
	printStat("moves", humanize.Comma(int64(movement.Moves())))
	printStat("scans", humanize.Comma(int64(targeting.Scans())))
	printStat("target locks", humanize.Comma(int64(targeting.Acquired())))
	printStat("scan time", runner.Spent(coresys.PhaseTargeting).Round(time.Microsecond).String())
	printStat("move time", runner.Spent(coresys.PhaseMovement).Round(time.Microsecond).String())
	printStat("stored locks", humanize.Comma(acq))
	printStat("violations", humanize.Comma(viol))
	if traceWriter != nil {
		lines := traceWriter.Lines()
		if err := traceWriter.Close(); err != nil {
			log.Warn("close scan trace", zap.Error(err))
		}
		printStat("trace lines", humanize.Comma(lines))
		if st, err := os.Stat(traceWriter.Path()); err == nil {
			printStat("trace size", humanize.Bytes(uint64(st.Size())))
		}
	}
	fmt.Println()
	return nil
}

// loop ticks the runner at cfg.TickRate until cfg.Ticks ticks have run or a
// shutdown signal arrives. A zero tick rate runs ticks back to back.
func loop(runner *coresys.Runner, cfg config.SimulationConfig, shutdownCh <-chan os.Signal, log *zap.Logger) {
	done := func() bool {
		return cfg.Ticks > 0 && runner.Ticks() >= uint64(cfg.Ticks)
	}

	if cfg.TickRate <= 0 {
		for !done() {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				return
			default:
				runner.Tick(0)
			}
		}
		return
	}

	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()
	for !done() {
		select {
		case <-ticker.C:
			runner.Tick(cfg.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return
		}
	}
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
