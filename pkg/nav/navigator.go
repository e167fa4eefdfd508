// Package nav is the façade the rest of the application uses to resolve
// player movement against the world graph. Moves that hit unexplored
// territory fall back to the generation engine; reads never generate.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/world-engine/pkg/state"
	"github.com/jwebster45206/world-engine/pkg/world"
	"github.com/jwebster45206/world-engine/pkg/worldgen"
)

// ErrNoPath is returned by Move when the direction cannot be followed and
// generation could not supply a new area either. It is the subsystem's
// worst user-visible outcome: "you cannot go that way right now."
var ErrNoPath = errors.New("no path in that direction")

// Navigator resolves movement for one session.
type Navigator struct {
	graph  *world.Graph
	engine *worldgen.Engine
	region string // player's coarse location, used for lazy bootstrap
	logger *slog.Logger
}

// New creates a navigator for a session anchored at the given region.
func New(graph *world.Graph, engine *worldgen.Engine, region string, logger *slog.Logger) *Navigator {
	return &Navigator{
		graph:  graph,
		engine: engine,
		region: region,
		logger: logger,
	}
}

// Current returns the player's current area, bootstrapping the session's
// region entrance on first use if no position is set yet.
func (n *Navigator) Current(ctx context.Context) (*world.Area, error) {
	if area := n.graph.CurrentArea(); area != nil {
		return area, nil
	}

	// prefer an existing entrance, then any area already in the region
	if entrance := n.graph.RegionEntrance(n.region); entrance != nil {
		if err := n.graph.SetCurrentArea(entrance.ID); err != nil {
			return nil, err
		}
		return entrance, nil
	}
	if areas := n.graph.AreasByRegion(n.region); len(areas) > 0 {
		if err := n.graph.SetCurrentArea(areas[0].ID); err != nil {
			return nil, err
		}
		return areas[0], nil
	}

	id, err := n.engine.GenerateRegionEntrance(ctx, n.region, n.engine.Depth())
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap region %q: %w", n.region, err)
	}
	if err := n.graph.SetCurrentArea(id); err != nil {
		return nil, err
	}
	n.logger.Info("session bootstrapped", "region", n.region, "area_id", id)
	return n.graph.GetArea(id), nil
}

// Move moves the player one step. An existing edge is followed directly; a
// missing or unresolved edge triggers exactly one generation attempt before
// the move is retried. When generation also fails, the graph is left
// untouched and ErrNoPath is returned.
func (n *Navigator) Move(ctx context.Context, direction string) (*world.Area, error) {
	if _, err := n.Current(ctx); err != nil {
		return nil, err
	}

	area, err := n.graph.Move(direction)
	if err == nil {
		return area, nil
	}
	if !errors.Is(err, world.ErrNoExit) {
		return nil, err
	}

	if _, genErr := n.engine.GenerateConnected(ctx, n.graph.CurrentAreaID(), direction); genErr != nil {
		n.logger.Warn("movement generation failed",
			"direction", direction,
			"from", n.graph.CurrentAreaID(),
			"error", genErr)
		return nil, fmt.Errorf("%w: %s", ErrNoPath, direction)
	}

	area, err = n.graph.Move(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPath, direction)
	}
	return area, nil
}

// Neighbors returns the current area under "here" plus each exit direction
// mapped to its resolved neighbor. Unresolved exits surface as nil entries;
// browsing never triggers generation.
func (n *Navigator) Neighbors(ctx context.Context) (map[string]*world.Area, error) {
	current, err := n.Current(ctx)
	if err != nil {
		return nil, err
	}

	surroundings := make(map[string]*world.Area, len(current.Exits)+1)
	surroundings["here"] = current
	for direction := range current.Exits {
		if id, ok := current.ExitTarget(direction); ok {
			surroundings[direction] = n.graph.GetArea(id)
		} else {
			surroundings[direction] = nil
		}
	}
	return surroundings, nil
}

// MergeSave copies the navigator's position into the session save payload.
// Area data itself is persisted separately as a whole graph.
func (n *Navigator) MergeSave(gs *state.GameState) {
	gs.CurrentAreaID = n.graph.CurrentAreaID()
}

// RestoreSave applies a loaded session payload: re-syncs the engine's
// generation history with the (already loaded) graph and restores the
// position pointer. A dangling current_area_id is dropped rather than
// failing the whole load; the next Current call re-bootstraps.
func (n *Navigator) RestoreSave(gs *state.GameState) {
	n.engine.SyncGeneratedRegions()
	if gs.CurrentAreaID == "" {
		return
	}
	if err := n.graph.SetCurrentArea(gs.CurrentAreaID); err != nil {
		n.logger.Warn("saved position no longer exists, will re-bootstrap",
			"current_area_id", gs.CurrentAreaID)
	}
}

// SaveWorld writes the session's whole graph to a file.
func (n *Navigator) SaveWorld(path string) error {
	return n.graph.SaveFile(path)
}

// LoadWorld replaces the session's graph from a file and re-syncs the
// engine. A failed load leaves both untouched.
func (n *Navigator) LoadWorld(path string) error {
	if err := n.graph.LoadFile(path); err != nil {
		return err
	}
	n.engine.SyncGeneratedRegions()
	return nil
}
