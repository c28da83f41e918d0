// Package persistence provides SQLite-based storage for simulation runs:
// run metadata, per-step rewards, and final world state.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/gardenworld/internal/metrics"
	"github.com/talgya/gardenworld/internal/world"
)

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		agent TEXT NOT NULL,
		action TEXT NOT NULL,
		ecology REAL NOT NULL,
		wellbeing REAL NOT NULL,
		biodiversity REAL NOT NULL,
		total REAL NOT NULL,
		mean_pollution REAL NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE TABLE IF NOT EXISTS agents (
		run_id TEXT NOT NULL,
		agent TEXT NOT NULL,
		row INTEGER NOT NULL,
		col INTEGER NOT NULL,
		money REAL NOT NULL,
		turns_without_income INTEGER NOT NULL,
		seeds_json TEXT NOT NULL,
		planted_json TEXT NOT NULL,
		harvested_json TEXT NOT NULL,
		PRIMARY KEY (run_id, agent)
	);

	CREATE TABLE IF NOT EXISTS grid_cells (
		run_id TEXT NOT NULL,
		row INTEGER NOT NULL,
		col INTEGER NOT NULL,
		cell_type INTEGER NOT NULL,
		pollution REAL,
		flower_type INTEGER,
		growth_stage INTEGER,
		PRIMARY KEY (run_id, row, col)
	);

	CREATE INDEX IF NOT EXISTS idx_steps_run ON steps(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateRun records run metadata. config may be any JSON-marshalable
// configuration value.
func (db *DB) CreateRun(runID string, seed int64, config any) error {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal run config: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO runs (id, seed, started_at, config_json) VALUES (?, ?, ?, ?)`,
		runID, seed, time.Now().UTC().Format(time.RFC3339), string(configJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}
	return nil
}

// SaveSteps writes per-step metric rows for a run (full replace).
func (db *DB) SaveSteps(runID string, rows []metrics.Row) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM steps WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO steps
		(run_id, step, agent, action, ecology, wellbeing, biodiversity, total, mean_pollution)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.Exec(runID, r.Step, r.AgentID, r.Action,
			r.Ecology, r.Wellbeing, r.Biodiversity, r.Total, r.MeanPollution)
		if err != nil {
			return fmt.Errorf("insert step %d: %w", r.Step, err)
		}
	}
	return tx.Commit()
}

// SaveFinalState writes the agents and grid cells of a finished run
// (full replace for the run id).
func (db *DB) SaveFinalState(runID string, g *world.Grid) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents WHERE run_id = ?", runID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM grid_cells WHERE run_id = ?", runID); err != nil {
		return err
	}

	agentStmt, err := tx.Preparex(`INSERT INTO agents
		(run_id, agent, row, col, money, turns_without_income, seeds_json, planted_json, harvested_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer agentStmt.Close()

	for i, a := range g.Agents {
		seedsJSON, _ := json.Marshal(a.Seeds)
		plantedJSON, _ := json.Marshal(a.FlowersPlanted)
		harvestedJSON, _ := json.Marshal(a.FlowersHarvested)

		_, err := agentStmt.Exec(runID, fmt.Sprintf("agent_%d", i),
			a.Position.Row, a.Position.Col, a.Money, a.TurnsWithoutIncome,
			string(seedsJSON), string(plantedJSON), string(harvestedJSON))
		if err != nil {
			return fmt.Errorf("insert agent %d: %w", i, err)
		}
	}

	cellStmt, err := tx.Preparex(`INSERT INTO grid_cells
		(run_id, row, col, cell_type, pollution, flower_type, growth_stage)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer cellStmt.Close()

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			cell := g.Cells[row][col]

			var pollution *float64
			if cell.HasPollution() {
				p := cell.Pollution
				pollution = &p
			}
			var flowerType, growthStage *int
			if cell.HasFlower() {
				ft := cell.Flower.Type
				gs := cell.Flower.GrowthStage
				flowerType, growthStage = &ft, &gs
			}

			_, err := cellStmt.Exec(runID, row, col, int(cell.Type), pollution, flowerType, growthStage)
			if err != nil {
				return fmt.Errorf("insert cell (%d,%d): %w", row, col, err)
			}
		}
	}

	return tx.Commit()
}

// RunSummary is one stored run's metadata.
type RunSummary struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	StartedAt string `db:"started_at"`
	Steps     int    `db:"steps"`
}

// ListRuns returns stored runs with their step counts, newest first.
func (db *DB) ListRuns() ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs, `
		SELECT r.id, r.seed, r.started_at, COUNT(s.step) AS steps
		FROM runs r LEFT JOIN steps s ON s.run_id = r.id
		GROUP BY r.id ORDER BY r.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
