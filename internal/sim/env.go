package sim

import (
	"fmt"
	"log/slog"

	"github.com/talgya/gardenworld/internal/obs"
	"github.com/talgya/gardenworld/internal/world"
)

// Observation bundles an agent's encoded view with its current action
// mask.
type Observation struct {
	Data []float32
	Mask []bool
}

// Env is the turn-based episode driver: agents act one at a time in a
// fixed cycle, the grid environment advances once per full turn, and
// every agent in a turn is scored against the same turn-start snapshot.
//
// The simulation is single-threaded and synchronous; Env methods must
// not be called concurrently.
type Env struct {
	Grid     *world.Grid
	Space    Space
	MaxSteps int

	handler  *Handler
	observer obs.Strategy

	// AgentIDs index the grid's agents in acting order.
	AgentIDs []string
	agents   map[string]*world.Agent

	prev          *world.Grid // turn-start snapshot for reward computation
	selection     int
	numMoves      int
	actionsInTurn int

	Rewards      map[string]Breakdown
	Terminations map[string]bool
	Truncations  map[string]bool
}

// NewEnv wraps a constructed grid in an episode driver. maxSteps bounds
// the total number of Step calls before every agent is truncated.
func NewEnv(g *world.Grid, observer obs.Strategy, maxSteps int) *Env {
	e := &Env{
		Grid:     g,
		Space:    NewSpace(g.NumFlowerTypes()),
		MaxSteps: maxSteps,
		handler:  NewHandler(g),
		observer: observer,
	}
	e.agents = make(map[string]*world.Agent, len(g.Agents))
	for i, a := range g.Agents {
		id := fmt.Sprintf("agent_%d", i)
		e.AgentIDs = append(e.AgentIDs, id)
		e.agents[id] = a
	}
	e.Reset()
	return e
}

// Reset clears episode bookkeeping and captures the initial turn-start
// snapshot. The grid itself is not rebuilt; construct a fresh grid for a
// fresh world.
func (e *Env) Reset() {
	e.selection = 0
	e.numMoves = 0
	e.actionsInTurn = 0
	e.prev = e.Grid.Copy()

	e.Rewards = make(map[string]Breakdown, len(e.AgentIDs))
	e.Terminations = make(map[string]bool, len(e.AgentIDs))
	e.Truncations = make(map[string]bool, len(e.AgentIDs))
	for _, id := range e.AgentIDs {
		e.Rewards[id] = Breakdown{}
		e.Terminations[id] = false
		e.Truncations[id] = false
	}
}

// AgentSelection returns the id of the agent whose turn it is.
func (e *Env) AgentSelection() string {
	return e.AgentIDs[e.selection]
}

// Agent returns the live agent for an id, or nil.
func (e *Env) Agent(id string) *world.Agent {
	return e.agents[id]
}

// NumMoves returns the number of steps taken this episode.
func (e *Env) NumMoves() int {
	return e.numMoves
}

// Done reports whether every agent is terminated or truncated.
func (e *Env) Done() bool {
	for _, id := range e.AgentIDs {
		if !e.Terminations[id] && !e.Truncations[id] {
			return false
		}
	}
	return true
}

// Step applies the flat action index for the currently selected agent,
// advances the environment once the whole turn has played out, records
// the agent's reward breakdown, and moves selection to the next agent.
//
// Handler failures (planting without a seed, harvesting an ungrown
// flower) are not fatal: the step is downgraded to a costed no-op and
// scored as a wait. An out-of-range index is a caller bug and returns an
// error without consuming the turn.
func (e *Env) Step(actionIndex int) error {
	id := e.AgentIDs[e.selection]
	if e.Terminations[id] || e.Truncations[id] {
		// Dead step: zero reward, pass the turn along.
		e.Rewards[id] = Breakdown{}
		e.advanceSelection()
		return nil
	}
	agent := e.agents[id]

	action, err := e.Space.Decode(actionIndex)
	if err != nil {
		return fmt.Errorf("step %s: %w", id, err)
	}

	applied := action
	if herr := e.handler.Handle(agent, action); herr != nil {
		slog.Warn("action rejected", "agent", id, "action", action.String(), "error", herr)
		agent.TurnsWithoutIncome++
		applied = Wait()
	}

	e.actionsInTurn++
	turnOver := e.actionsInTurn >= e.activeAgents()

	if turnOver {
		e.Grid.UpdateCells()
		e.actionsInTurn = 0
	}

	e.Rewards[id] = ComputeReward(e.prev, e.Grid, agent, applied)

	if turnOver {
		// Snapshot isolation: one copy per turn, captured before any
		// agent of the next turn acts.
		e.prev = e.Grid.Copy()
	}

	e.numMoves++
	if e.numMoves >= e.MaxSteps {
		for _, aid := range e.AgentIDs {
			e.Truncations[aid] = true
		}
	}

	e.advanceSelection()
	return nil
}

// Observe returns the current observation and freshly computed action
// mask for an agent. The mask depends on live grid state and is
// recomputed on every call.
func (e *Env) Observe(id string) Observation {
	idx := 0
	for i, aid := range e.AgentIDs {
		if aid == id {
			idx = i
			break
		}
	}
	return Observation{
		Data: e.observer.Observe(e.Grid, idx),
		Mask: e.Space.Mask(e.Grid, e.agents[id]),
	}
}

// Last returns the selected agent's observation, most recent reward
// breakdown, and termination/truncation flags.
func (e *Env) Last() (Observation, Breakdown, bool, bool) {
	id := e.AgentSelection()
	return e.Observe(id), e.Rewards[id], e.Terminations[id], e.Truncations[id]
}

func (e *Env) activeAgents() int {
	n := 0
	for _, id := range e.AgentIDs {
		if !e.Terminations[id] && !e.Truncations[id] {
			n++
		}
	}
	return n
}

func (e *Env) advanceSelection() {
	e.selection = (e.selection + 1) % len(e.AgentIDs)
}
