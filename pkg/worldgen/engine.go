// Package worldgen grows the world graph lazily. Areas are generated on
// demand by prompting an external narrative oracle, parsed defensively, and
// wired into the graph with bidirectional exits. Generation is idempotent at
// region and edge granularity, and recursive expansion is bounded by an
// explicit depth.
package worldgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jwebster45206/world-engine/pkg/knowledge"
	"github.com/jwebster45206/world-engine/pkg/world"
)

// Oracle is the external narrative-content generation service. Calls may be
// slow and may fail; output has no guaranteed schema.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrWorldFull is returned when generation would exceed the configured area
// limit for the session.
var ErrWorldFull = errors.New("world area limit reached")

const (
	// DefaultDepth is how many hops of connected areas are generated
	// around a new region entrance.
	DefaultDepth = 2

	// DefaultMaxAreas bounds the total number of areas one session's
	// engine will create.
	DefaultMaxAreas = 200
)

// Config bounds an engine's generation behavior. Depth zero is valid and
// means a region entrance is generated without any connected areas.
type Config struct {
	Depth    int // recursive expansion depth for region entrances
	MaxAreas int // hard cap on areas per session
}

func (c Config) withDefaults() Config {
	if c.MaxAreas <= 0 {
		c.MaxAreas = DefaultMaxAreas
	}
	return c
}

// Engine generates areas into one session's world graph. Each session owns
// its own engine; generation history is never shared across sessions.
type Engine struct {
	graph     *world.Graph
	oracle    Oracle
	knowledge *knowledge.Graph
	cfg       Config
	logger    *slog.Logger

	mu        sync.Mutex
	generated map[string]struct{} // lowercased region names already generated

	// flights guarantees at most one in-flight generation per region and
	// per (area id, direction) edge; concurrent duplicates share the
	// first attempt's result instead of issuing a second oracle call.
	flights singleflight.Group
}

// NewEngine creates a generation engine writing into the given graph.
func NewEngine(graph *world.Graph, oracle Oracle, kg *knowledge.Graph, cfg Config, logger *slog.Logger) *Engine {
	if kg == nil {
		kg = knowledge.NewEmptyGraph()
	}
	return &Engine{
		graph:     graph,
		oracle:    oracle,
		knowledge: kg,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		generated: make(map[string]struct{}),
	}
}

// Depth returns the engine's configured expansion depth.
func (e *Engine) Depth() int {
	return e.cfg.Depth
}

// SyncGeneratedRegions rebuilds the generated-regions set from the graph's
// current contents. Called after a load replaces the graph's state.
func (e *Engine) SyncGeneratedRegions() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generated = make(map[string]struct{})
	for _, id := range e.graph.AreaIDs() {
		if area := e.graph.GetArea(id); area != nil {
			e.generated[strings.ToLower(area.Region)] = struct{}{}
		}
	}
}

func (e *Engine) regionGenerated(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.generated[key]
	return ok
}

func (e *Engine) markRegionGenerated(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generated[key] = struct{}{}
}

// GenerateRegionEntrance produces the entrance area for a region, plus
// connected areas up to depth hops, and returns the entrance id. Generation
// is idempotent per region (case-insensitive): a region generated earlier
// returns its existing entrance without another oracle call. A failed
// oracle call or parse leaves the graph unmodified.
func (e *Engine) GenerateRegionEntrance(ctx context.Context, region string, depth int) (string, error) {
	key := strings.ToLower(strings.TrimSpace(region))
	if key == "" {
		return "", fmt.Errorf("region name is empty")
	}

	id, err, _ := e.flights.Do("region:"+key, func() (interface{}, error) {
		return e.generateRegionEntrance(ctx, region, key, depth)
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

func (e *Engine) generateRegionEntrance(ctx context.Context, region, key string, depth int) (string, error) {
	if e.regionGenerated(key) {
		if entrance := e.graph.RegionEntrance(region); entrance != nil {
			return entrance.ID, nil
		}
		// no entrance survived; fall back to any area in the region
		if areas := e.graph.AreasByRegion(region); len(areas) > 0 {
			return areas[0].ID, nil
		}
		return "", fmt.Errorf("region %q marked generated but holds no areas", region)
	}

	if e.graph.Len() >= e.cfg.MaxAreas {
		return "", ErrWorldFull
	}

	info := e.knowledge.LocationInfo(region)
	prompt := entrancePrompt(info)

	response, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("region entrance generation failed", "region", region, "error", err)
		return "", fmt.Errorf("oracle call for region %q failed: %w", region, err)
	}

	area, err := parseAreaResponse(response, region)
	if err != nil {
		e.logger.Warn("region entrance parse failed", "region", region, "error", err)
		return "", fmt.Errorf("parsing entrance for region %q: %w", region, err)
	}

	area.IsRegionEntrance = true
	e.ensureUniqueID(area)
	e.graph.AddArea(area)
	e.markRegionGenerated(key)

	e.logger.Info("generated region entrance",
		"region", region,
		"area_id", area.ID,
		"depth", depth)

	if depth > 0 {
		if err := e.Expand(ctx, area.ID, depth); err != nil {
			// the entrance itself is valid; expansion gaps stay
			// unresolved for later attempts
			e.logger.Warn("region expansion incomplete", "region", region, "error", err)
		}
	}

	return area.ID, nil
}

// Expand recursively fills in an area's unresolved exits up to depth hops.
// Concrete exits are not regenerated: their reverse edges are verified and
// repaired if missing, and expansion recurses into the existing neighbor.
// Re-running Expand on an already-expanded area performs only repairs.
func (e *Engine) Expand(ctx context.Context, areaID string, depth int) error {
	if depth <= 0 {
		return nil
	}

	area := e.graph.GetArea(areaID)
	if area == nil {
		return fmt.Errorf("expand %q: %w", areaID, world.ErrUnknownArea)
	}

	directions := make([]string, 0, len(area.Exits))
	for dir := range area.Exits {
		directions = append(directions, dir)
	}
	if len(directions) == 0 {
		directions = append(directions, world.StandardDirections...)
	}

	for _, direction := range directions {
		if err := ctx.Err(); err != nil {
			return err
		}

		if targetID, ok := area.ExitTarget(direction); ok {
			if neighbor := e.graph.GetArea(targetID); neighbor != nil {
				e.repairReverseExit(area, neighbor, direction)
				if depth > 1 {
					if err := e.Expand(ctx, targetID, depth-1); err != nil {
						return err
					}
				}
				continue
			}
			// concrete id pointing nowhere: treat as unresolved
			// and regenerate below
		}

		newID, err := e.GenerateConnected(ctx, areaID, direction)
		if err != nil {
			e.logger.Warn("connected area generation failed",
				"from", areaID,
				"direction", direction,
				"error", err)
			continue
		}
		if depth > 1 {
			if err := e.Expand(ctx, newID, depth-1); err != nil {
				return err
			}
		}
	}

	return nil
}

// repairReverseExit restores bidirectional consistency when an existing
// neighbor is missing its edge back to the area.
func (e *Engine) repairReverseExit(area, neighbor *world.Area, direction string) {
	reverse := world.Reverse(direction)
	if reverse == world.DirectionUnknown {
		return
	}
	if _, ok := neighbor.ExitTarget(reverse); ok {
		return
	}
	neighbor.AddExit(reverse, area.ID)
	e.logger.Debug("repaired missing reverse exit",
		"area", neighbor.ID,
		"direction", reverse,
		"target", area.ID)
}

// GenerateConnected produces one new area in the given direction from an
// existing area and links the two bidirectionally. If the exit is already
// concrete, the existing target id is returned with no oracle call. On
// failure the exit stays unresolved so a later attempt can retry.
func (e *Engine) GenerateConnected(ctx context.Context, fromID, direction string) (string, error) {
	direction = strings.ToLower(direction)

	id, err, _ := e.flights.Do(fromID+"|"+direction, func() (interface{}, error) {
		return e.generateConnected(ctx, fromID, direction)
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

func (e *Engine) generateConnected(ctx context.Context, fromID, direction string) (string, error) {
	from := e.graph.GetArea(fromID)
	if from == nil {
		return "", fmt.Errorf("generate from %q: %w", fromID, world.ErrUnknownArea)
	}

	// edge-granular idempotency
	if targetID, ok := from.ExitTarget(direction); ok {
		if e.graph.GetArea(targetID) != nil {
			return targetID, nil
		}
	}

	if e.graph.Len() >= e.cfg.MaxAreas {
		return "", ErrWorldFull
	}

	coords := from.Coordinates
	offset := world.Offset(direction)
	coords[0] += offset[0]
	coords[1] += offset[1]
	coords[2] += offset[2]

	reverse := world.Reverse(direction)
	prompt := connectedPrompt(from, direction, coords, reverse)

	response, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("connected area oracle call failed",
			"from", fromID, "direction", direction, "error", err)
		return "", fmt.Errorf("oracle call for %s of %q failed: %w", direction, fromID, err)
	}

	area, err := parseAreaResponse(response, from.Region)
	if err != nil {
		e.logger.Warn("connected area parse failed",
			"from", fromID, "direction", direction, "error", err)
		return "", fmt.Errorf("parsing area %s of %q: %w", direction, fromID, err)
	}

	// the source area's position is authoritative for the new coordinates
	area.Coordinates = coords
	if area.SubRegion == "" {
		area.SubRegion = from.SubRegion
	}

	e.ensureUniqueID(area)
	e.graph.AddArea(area)

	if reverse == world.DirectionUnknown {
		// outside the controlled vocabulary: forward edge only,
		// exempt from bidirectional consistency
		from.AddExit(direction, area.ID)
	} else if err := e.graph.CreateBidirectionalExit(fromID, area.ID, direction, reverse); err != nil {
		return "", fmt.Errorf("linking %q %s %q: %w", fromID, direction, area.ID, err)
	}

	e.logger.Info("generated connected area",
		"from", fromID,
		"direction", direction,
		"area_id", area.ID)

	return area.ID, nil
}

// ensureUniqueID rewrites an area's id when the oracle reused one that is
// already in the graph.
func (e *Engine) ensureUniqueID(area *world.Area) {
	if e.graph.GetArea(area.ID) == nil {
		return
	}
	base := area.ID
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if e.graph.GetArea(candidate) == nil {
			area.ID = candidate
			return
		}
	}
}
