// Package metrics accumulates per-step simulation metrics and exports
// them as CSV.
package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/talgya/gardenworld/internal/sim"
	"github.com/talgya/gardenworld/internal/world"
)

// Row is one step's metrics: the acting agent's reward breakdown plus
// grid-wide aggregates at that moment.
type Row struct {
	RunID         string
	Step          int
	AgentID       string
	Action        string
	Ecology       float64
	Wellbeing     float64
	Biodiversity  float64
	Total         float64
	MeanPollution float64 // normalized by max pollution
	Planted       int     // total across agents and types
	Harvested     int
	Money         float64 // acting agent
}

// Collector buffers rows for one run. Not safe for concurrent use; the
// simulation is single-threaded.
type Collector struct {
	runID    string
	outDir   string
	exportOn bool
	rows     []Row
}

// NewCollector creates a collector with a fresh run id. Rows are only
// written to disk when exportOn is set.
func NewCollector(outDir string, exportOn bool) *Collector {
	return &Collector{
		runID:    uuid.NewString(),
		outDir:   outDir,
		exportOn: exportOn,
	}
}

// RunID returns the run identifier stamped on every row.
func (c *Collector) RunID() string {
	return c.runID
}

// Rows returns the buffered rows.
func (c *Collector) Rows() []Row {
	return c.rows
}

// Reset drops buffered rows, keeping the run id.
func (c *Collector) Reset() {
	c.rows = nil
}

// Record appends one step's metrics.
func (c *Collector) Record(step int, agentID string, action string, r sim.Breakdown, g *world.Grid, agent *world.Agent) {
	planted, harvested := 0, 0
	for _, a := range g.Agents {
		for _, n := range a.FlowersPlanted {
			planted += n
		}
		for _, n := range a.FlowersHarvested {
			harvested += n
		}
	}
	meanPollution := 0.0
	if g.MaxPollution != 0 {
		meanPollution = g.MeanPollution() / g.MaxPollution
	}
	c.rows = append(c.rows, Row{
		RunID:         c.runID,
		Step:          step,
		AgentID:       agentID,
		Action:        action,
		Ecology:       r.Ecology,
		Wellbeing:     r.Wellbeing,
		Biodiversity:  r.Biodiversity,
		Total:         r.Total,
		MeanPollution: meanPollution,
		Planted:       planted,
		Harvested:     harvested,
		Money:         agent.Money,
	})
}

// ExportCSV writes the buffered rows to <outDir>/metrics_<runID>.csv and
// returns the path. No-op (empty path, nil error) when export is off.
func (c *Collector) ExportCSV() (string, error) {
	if !c.exportOn {
		return "", nil
	}
	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create metrics dir: %w", err)
	}
	path := filepath.Join(c.outDir, "metrics_"+c.runID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create metrics file: %w", err)
	}

	w := csv.NewWriter(f)
	header := []string{
		"run_id", "step", "agent", "action",
		"ecology", "wellbeing", "biodiversity", "total",
		"mean_pollution", "planted", "harvested", "money",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return "", fmt.Errorf("write metrics header: %w", err)
	}
	for _, row := range c.rows {
		record := []string{
			row.RunID,
			strconv.Itoa(row.Step),
			row.AgentID,
			row.Action,
			formatFloat(row.Ecology),
			formatFloat(row.Wellbeing),
			formatFloat(row.Biodiversity),
			formatFloat(row.Total),
			formatFloat(row.MeanPollution),
			strconv.Itoa(row.Planted),
			strconv.Itoa(row.Harvested),
			formatFloat(row.Money),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return "", fmt.Errorf("write metrics row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("flush metrics: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close metrics file: %w", err)
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
