// Package api serves a read-only HTTP view of a running simulation.
// All endpoints are GET; there is no mutation surface.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/talgya/gardenworld/internal/sim"
	"github.com/talgya/gardenworld/internal/world"
)

// Server exposes the live env over HTTP. The simulation itself is
// single-threaded; handlers only read, and a stale read during a step
// is acceptable for an observation endpoint.
type Server struct {
	Env  *sim.Env
	Port int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("api server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"step":       s.Env.NumMoves(),
		"max_steps":  s.Env.MaxSteps,
		"selection":  s.Env.AgentSelection(),
		"num_agents": len(s.Env.AgentIDs),
		"done":       s.Env.Done(),
	})
}

type gridView struct {
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Pollution [][]*float64 `json:"pollution"`
	Flowers   []flowerView `json:"flowers"`
}

type flowerView struct {
	Row         int `json:"row"`
	Col         int `json:"col"`
	Type        int `json:"type"`
	GrowthStage int `json:"growth_stage"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g := s.Env.Grid
	view := gridView{Width: g.Width, Height: g.Height}

	view.Pollution = make([][]*float64, g.Height)
	for row := 0; row < g.Height; row++ {
		view.Pollution[row] = make([]*float64, g.Width)
		for col := 0; col < g.Width; col++ {
			cell := g.Cells[row][col]
			if cell.HasPollution() {
				p := cell.Pollution
				view.Pollution[row][col] = &p
			}
			if cell.HasFlower() {
				view.Flowers = append(view.Flowers, flowerView{
					Row:         row,
					Col:         col,
					Type:        cell.Flower.Type,
					GrowthStage: cell.Flower.GrowthStage,
				})
			}
		}
	}
	writeJSON(w, view)
}

type agentView struct {
	ID                 string         `json:"id"`
	Position           world.Position `json:"position"`
	Money              float64        `json:"money"`
	Seeds              map[int]int    `json:"seeds"`
	FlowersPlanted     map[int]int    `json:"flowers_planted"`
	FlowersHarvested   map[int]int    `json:"flowers_harvested"`
	TurnsWithoutIncome int            `json:"turns_without_income"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	views := make([]agentView, 0, len(s.Env.AgentIDs))
	for _, id := range s.Env.AgentIDs {
		a := s.Env.Agent(id)
		views = append(views, agentView{
			ID:                 id,
			Position:           a.Position,
			Money:              a.Money,
			Seeds:              a.Seeds,
			FlowersPlanted:     a.FlowersPlanted,
			FlowersHarvested:   a.FlowersHarvested,
			TurnsWithoutIncome: a.TurnsWithoutIncome,
		})
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
