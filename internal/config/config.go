// Package config loads simulation configuration from YAML and builds
// grids from it.
package config

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/gardenworld/internal/world"
)

// Grid initialization methods.
const (
	InitRandom   = "random"
	InitFromFile = "from_file"
	InitFromCode = "from_code"
)

// Config is the full simulation configuration.
type Config struct {
	Seed        int64          `yaml:"seed"`
	MaxSteps    int            `yaml:"max_steps"`
	DBPath      string         `yaml:"db_path"`
	Grid        GridSection    `yaml:"grid"`
	Observation ObsSection     `yaml:"observation"`
	Metrics     MetricsSection `yaml:"metrics"`
	API         APISection     `yaml:"api"`
}

// GridSection selects and parameterizes one of the three grid
// construction paths.
type GridSection struct {
	Init string `yaml:"init"` // random | from_file | from_code
	File string `yaml:"file"` // from_file only

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	MinPollution       float64 `yaml:"min_pollution"`
	MaxPollution       float64 `yaml:"max_pollution"`
	PollutionIncrement float64 `yaml:"pollution_increment"`

	// SeedReturn is a policy code: a fixed count, or -1 (disabled),
	// -2 (random once), -3 (random per harvest).
	SeedReturn   int  `yaml:"seed_return"`
	CollisionsOn bool `yaml:"collisions_on"`

	Flowers map[int]world.FlowerSpec `yaml:"flowers"`

	// random init
	ObstacleRatio  float64 `yaml:"obstacle_ratio"`
	NumAgents      int     `yaml:"num_agents"`
	NoisePollution bool    `yaml:"noise_pollution"`
	NoiseScale     float64 `yaml:"noise_scale"`

	// from_code init
	Cells         []CellEntry   `yaml:"cells"`
	Agents        []AgentEntry  `yaml:"agents"`
	PlacedFlowers []FlowerEntry `yaml:"placed_flowers"`
}

// CellEntry overrides one cell's type ("obstacle" or "wall").
type CellEntry struct {
	Row  int    `yaml:"row"`
	Col  int    `yaml:"col"`
	Type string `yaml:"type"`
}

// AgentEntry places one agent.
type AgentEntry struct {
	Row   int         `yaml:"row"`
	Col   int         `yaml:"col"`
	Money float64     `yaml:"money"`
	Seeds map[int]int `yaml:"seeds"`
}

// FlowerEntry places one flower, optionally part-grown.
type FlowerEntry struct {
	Row         int `yaml:"row"`
	Col         int `yaml:"col"`
	Type        int `yaml:"type"`
	GrowthStage int `yaml:"growth_stage"`
}

// ObsSection selects the observation strategy.
type ObsSection struct {
	Type  string `yaml:"type"`  // total | partial
	Range int    `yaml:"range"` // partial only
}

// MetricsSection controls CSV export.
type MetricsSection struct {
	OutDir string `yaml:"out_dir"`
	Export bool   `yaml:"export"`
}

// APISection controls the read-only HTTP view.
type APISection struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Default returns the standard configuration: a random 10x10 grid with
// two agents, total observation, metrics buffered but not exported.
func Default() Config {
	return Config{
		Seed:     0,
		MaxSteps: 1000,
		DBPath:   "data/gardenworld.db",
		Grid: GridSection{
			Init:               InitRandom,
			Width:              10,
			Height:             10,
			MinPollution:       0,
			MaxPollution:       100,
			PollutionIncrement: 1,
			SeedReturn:         1,
			CollisionsOn:       true,
			Flowers:            world.DefaultFlowerSpecs(),
			ObstacleRatio:      0.2,
			NumAgents:          2,
			NoiseScale:         0.15,
		},
		Observation: ObsSection{Type: "total", Range: 1},
		Metrics:     MetricsSection{OutDir: "metrics", Export: false},
		API:         APISection{Enabled: false, Port: 8080},
	}
}

// Load reads a YAML config file over the defaults, so missing fields
// keep their documented default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Grid.Init {
	case InitRandom, InitFromFile, InitFromCode:
	default:
		return fmt.Errorf("grid init %q: %w", c.Grid.Init, world.ErrConfiguration)
	}
	if c.Grid.Init == InitFromFile && c.Grid.File == "" {
		return fmt.Errorf("grid init from_file needs a file path: %w", world.ErrConfiguration)
	}
	switch c.Observation.Type {
	case "total", "partial":
	default:
		return fmt.Errorf("observation type %q: %w", c.Observation.Type, world.ErrConfiguration)
	}
	for t, spec := range c.Grid.Flowers {
		if len(spec.PollutionReduction) == 0 {
			return fmt.Errorf("flower type %d has no growth stages: %w", t, world.ErrConfiguration)
		}
	}
	return nil
}

// GridConfig maps the grid section onto the world-level parameters.
func (c Config) GridConfig() world.GridConfig {
	return world.GridConfig{
		Width:              c.Grid.Width,
		Height:             c.Grid.Height,
		MinPollution:       c.Grid.MinPollution,
		MaxPollution:       c.Grid.MaxPollution,
		PollutionIncrement: c.Grid.PollutionIncrement,
		SeedReturn:         c.Grid.SeedReturn,
		CollisionsOn:       c.Grid.CollisionsOn,
		FlowerSpecs:        c.Grid.Flowers,
	}
}

// BuildGrid constructs the grid along the configured init path.
func BuildGrid(c Config, rng *rand.Rand) (*world.Grid, error) {
	gridCfg := c.GridConfig()

	switch c.Grid.Init {
	case InitFromFile:
		return world.LoadFile(c.Grid.File, gridCfg, rng)

	case InitFromCode:
		layout := world.Layout{}
		for _, ce := range c.Grid.Cells {
			t, err := parseCellType(ce.Type)
			if err != nil {
				return nil, err
			}
			layout.Cells = append(layout.Cells, world.CellPlacement{
				Position: world.Position{Row: ce.Row, Col: ce.Col},
				Type:     t,
			})
		}
		for _, ae := range c.Grid.Agents {
			layout.Agents = append(layout.Agents, world.AgentPlacement{
				Position: world.Position{Row: ae.Row, Col: ae.Col},
				Money:    ae.Money,
				Seeds:    ae.Seeds,
			})
		}
		for _, fe := range c.Grid.PlacedFlowers {
			layout.Flowers = append(layout.Flowers, world.FlowerPlacement{
				Position:    world.Position{Row: fe.Row, Col: fe.Col},
				Type:        fe.Type,
				GrowthStage: fe.GrowthStage,
			})
		}
		return world.Build(gridCfg, layout, rng)

	default:
		gen := world.GenConfig{
			ObstacleRatio:  c.Grid.ObstacleRatio,
			NumAgents:      c.Grid.NumAgents,
			NoisePollution: c.Grid.NoisePollution,
			NoiseSeed:      c.Seed,
			NoiseScale:     c.Grid.NoiseScale,
		}
		return world.Generate(gridCfg, gen, rng)
	}
}

func parseCellType(s string) (world.CellType, error) {
	switch s {
	case "ground":
		return world.CellGround, nil
	case "obstacle":
		return world.CellObstacle, nil
	case "wall":
		return world.CellWall, nil
	}
	return 0, fmt.Errorf("cell type %q: %w", s, world.ErrConfiguration)
}
