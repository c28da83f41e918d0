// Command gardenworld runs one episode of the gardeners simulation with
// a mask-respecting random policy, exporting metrics and persisting the
// run to SQLite.
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talgya/gardenworld/internal/api"
	"github.com/talgya/gardenworld/internal/config"
	"github.com/talgya/gardenworld/internal/metrics"
	"github.com/talgya/gardenworld/internal/obs"
	"github.com/talgya/gardenworld/internal/persistence"
	"github.com/talgya/gardenworld/internal/render"
	"github.com/talgya/gardenworld/internal/sim"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; explicit environment wins either way.
	godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	renderOn := flag.Bool("render", false, "print the grid after every full turn")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if v := os.Getenv("GARDENWORLD_DB"); v != "" {
		cfg.DBPath = v
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	grid, err := config.BuildGrid(cfg, rng)
	if err != nil {
		slog.Error("failed to build grid", "error", err)
		os.Exit(1)
	}
	slog.Info("grid ready",
		"init", cfg.Grid.Init,
		"size", grid.Width*grid.Height,
		"agents", len(grid.Agents),
		"flower_types", grid.NumFlowerTypes(),
		"seed", seed,
	)

	var observer obs.Strategy
	if cfg.Observation.Type == "partial" {
		observer = obs.NewPartial(cfg.Observation.Range)
	} else {
		observer = obs.NewTotal()
	}

	env := sim.NewEnv(grid, observer, cfg.MaxSteps)
	collector := metrics.NewCollector(cfg.Metrics.OutDir, cfg.Metrics.Export)

	os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.CreateRun(collector.RunID(), seed, cfg); err != nil {
		slog.Error("failed to record run", "error", err)
		os.Exit(1)
	}
	slog.Info("run started", "run_id", collector.RunID(), "max_steps", cfg.MaxSteps)

	if cfg.API.Enabled {
		srv := &api.Server{Env: env, Port: cfg.API.Port}
		srv.Start()
	}

	console := render.NewConsole()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	for !env.Done() && !interrupted {
		select {
		case <-stop:
			slog.Info("interrupted, finishing up")
			interrupted = true
			continue
		default:
		}

		id := env.AgentSelection()
		observation := env.Observe(id)

		step := env.NumMoves()
		actionIndex := samplePolicy(observation.Mask, rng)
		action, _ := env.Space.Decode(actionIndex)

		if err := env.Step(actionIndex); err != nil {
			slog.Error("step failed", "agent", id, "error", err)
			break
		}

		collector.Record(step, id, action.String(), env.Rewards[id], grid, env.Agent(id))

		if *renderOn && (step+1)%len(env.AgentIDs) == 0 {
			os.Stdout.WriteString(console.Frame(grid) + "\n")
		}
	}

	if path, err := collector.ExportCSV(); err != nil {
		slog.Error("metrics export failed", "error", err)
	} else if path != "" {
		slog.Info("metrics exported", "path", path)
	}

	if err := db.SaveSteps(collector.RunID(), collector.Rows()); err != nil {
		slog.Error("failed to save steps", "error", err)
	}
	if err := db.SaveFinalState(collector.RunID(), grid); err != nil {
		slog.Error("failed to save final state", "error", err)
	}

	slog.Info("run finished",
		"run_id", collector.RunID(),
		"steps", env.NumMoves(),
		"mean_pollution", grid.MeanPollution(),
	)
	for _, id := range env.AgentIDs {
		a := env.Agent(id)
		slog.Info("agent summary", "agent", id, "money", a.Money, "pos", a.Position)
	}
}

// samplePolicy picks uniformly among enabled actions. Wait is always
// enabled, so the mask is never empty.
func samplePolicy(mask []bool, rng *rand.Rand) int {
	var enabled []int
	for i, ok := range mask {
		if ok {
			enabled = append(enabled, i)
		}
	}
	return enabled[rng.Intn(len(enabled))]
}
