package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCurrentArea is returned by Move when no current area is set.
	ErrNoCurrentArea = errors.New("no current area set")

	// ErrNoExit is returned by Move when the current area has no concrete
	// exit in the requested direction. This is the normal "not generated
	// yet" state, not a fault.
	ErrNoExit = errors.New("no exit in that direction")

	// ErrUnknownArea is returned when an operation references an area id
	// that is not in the graph.
	ErrUnknownArea = errors.New("unknown area id")
)

// Graph owns the collection of areas and the player's current position.
// One graph belongs to one play session; it is persisted and restored as a
// unit. Access is expected to be request-at-a-time within a session.
type Graph struct {
	areas         map[string]*Area
	currentAreaID string
}

// NewGraph creates an empty world graph.
func NewGraph() *Graph {
	return &Graph{
		areas: make(map[string]*Area),
	}
}

// AddArea inserts an area, replacing any area with the same id.
func (g *Graph) AddArea(area *Area) {
	g.areas[area.ID] = area
}

// GetArea returns the area with the given id, or nil if absent.
func (g *Graph) GetArea(id string) *Area {
	return g.areas[id]
}

// Len returns the number of areas in the graph.
func (g *Graph) Len() int {
	return len(g.areas)
}

// AreaIDs returns the ids of all areas, in no particular order.
func (g *Graph) AreaIDs() []string {
	ids := make([]string, 0, len(g.areas))
	for id := range g.areas {
		ids = append(ids, id)
	}
	return ids
}

// AreasByRegion returns all areas in the named region, case-insensitive.
func (g *Graph) AreasByRegion(region string) []*Area {
	var matches []*Area
	for _, area := range g.areas {
		if strings.EqualFold(area.Region, region) {
			matches = append(matches, area)
		}
	}
	return matches
}

// AreasWithAttribute returns all areas carrying the given attribute tag.
func (g *Graph) AreasWithAttribute(attribute string) []*Area {
	var matches []*Area
	for _, area := range g.areas {
		if area.HasAttribute(attribute) {
			matches = append(matches, area)
		}
	}
	return matches
}

// RegionEntrance returns the entrance area for a region, or nil if the
// region has none yet.
func (g *Graph) RegionEntrance(region string) *Area {
	for _, area := range g.areas {
		if area.IsRegionEntrance && strings.EqualFold(area.Region, region) {
			return area
		}
	}
	return nil
}

// CreateBidirectionalExit links two areas in both directions. Both writes
// happen together or not at all: if either id is absent, nothing is mutated
// and ErrUnknownArea is returned.
func (g *Graph) CreateBidirectionalExit(fromID, toID, direction, reverseDirection string) error {
	from := g.GetArea(fromID)
	to := g.GetArea(toID)
	if from == nil || to == nil {
		return fmt.Errorf("cannot link %q %s %q: %w", fromID, direction, toID, ErrUnknownArea)
	}
	from.AddExit(direction, toID)
	to.AddExit(reverseDirection, fromID)
	return nil
}

// CurrentArea returns the area the player occupies, or nil if unset.
func (g *Graph) CurrentArea() *Area {
	if g.currentAreaID == "" {
		return nil
	}
	return g.areas[g.currentAreaID]
}

// CurrentAreaID returns the id of the player's current area, or "".
func (g *Graph) CurrentAreaID() string {
	return g.currentAreaID
}

// SetCurrentArea moves the position pointer to a known area and marks it
// visited. Fails with ErrUnknownArea if the id is not in the graph.
func (g *Graph) SetCurrentArea(id string) error {
	area, ok := g.areas[id]
	if !ok {
		return fmt.Errorf("set current area %q: %w", id, ErrUnknownArea)
	}
	g.currentAreaID = id
	area.MarkVisited()
	return nil
}

// Move follows a concrete exit from the current area. On success the target
// becomes the current area and is marked visited. Unresolved exits and exits
// to missing areas fail with ErrNoExit, leaving the position unchanged.
func (g *Graph) Move(direction string) (*Area, error) {
	current := g.CurrentArea()
	if current == nil {
		return nil, ErrNoCurrentArea
	}
	targetID, ok := current.ExitTarget(direction)
	if !ok {
		return nil, fmt.Errorf("move %s from %q: %w", direction, current.ID, ErrNoExit)
	}
	target := g.areas[targetID]
	if target == nil {
		return nil, fmt.Errorf("move %s from %q: target %q: %w", direction, current.ID, targetID, ErrNoExit)
	}
	g.currentAreaID = targetID
	target.MarkVisited()
	return target, nil
}

// graphDoc is the persisted representation of a whole graph.
type graphDoc struct {
	Areas         map[string]*Area `json:"areas"`
	CurrentAreaID *string          `json:"current_area_id"`
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphDoc{Areas: g.areas}
	if g.currentAreaID != "" {
		doc.CurrentAreaID = &g.currentAreaID
	}
	return json.Marshal(doc)
}

func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	areas := make(map[string]*Area, len(doc.Areas))
	for id, area := range doc.Areas {
		if area == nil {
			return fmt.Errorf("area %q has no record", id)
		}
		// The map key is authoritative for the id.
		area.ID = id
		areas[id] = area
	}
	currentID := ""
	if doc.CurrentAreaID != nil {
		currentID = *doc.CurrentAreaID
	}
	if currentID != "" {
		if _, ok := areas[currentID]; !ok {
			return fmt.Errorf("current_area_id %q: %w", currentID, ErrUnknownArea)
		}
	}
	g.areas = areas
	g.currentAreaID = currentID
	return nil
}

// SaveFile writes the whole graph to a JSON file, creating parent
// directories as needed.
func (g *Graph) SaveFile(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal world graph: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create save directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write world graph: %w", err)
	}
	return nil
}

// LoadFile replaces the graph's state with the contents of a JSON file.
// The replacement is all-or-nothing: a missing or malformed file leaves the
// in-memory graph untouched.
func (g *Graph) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read world graph: %w", err)
	}
	var loaded Graph
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse world graph: %w", err)
	}
	g.areas = loaded.areas
	g.currentAreaID = loaded.currentAreaID
	return nil
}
