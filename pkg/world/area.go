package world

import (
	"encoding/json"
	"sort"
)

// AttributeSet holds an area's free-form tags ("dark", "underwater", ...).
// It behaves as a set in memory and serializes as a sorted JSON list.
type AttributeSet map[string]struct{}

func NewAttributeSet(attrs ...string) AttributeSet {
	s := make(AttributeSet, len(attrs))
	for _, a := range attrs {
		s[a] = struct{}{}
	}
	return s
}

func (s AttributeSet) MarshalJSON() ([]byte, error) {
	attrs := make([]string, 0, len(s))
	for a := range s {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	return json.Marshal(attrs)
}

func (s *AttributeSet) UnmarshalJSON(data []byte) error {
	var attrs []string
	if err := json.Unmarshal(data, &attrs); err != nil {
		return err
	}
	*s = NewAttributeSet(attrs...)
	return nil
}

// ExitMap maps a direction to the id of the connected area. An empty string
// marks an unresolved exit: a direction the area advertises but whose target
// has not been generated yet. Unresolved exits serialize as JSON null.
type ExitMap map[string]string

func (e ExitMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]*string, len(e))
	for dir, id := range e {
		if id == "" {
			out[dir] = nil
			continue
		}
		target := id
		out[dir] = &target
	}
	return json.Marshal(out)
}

func (e *ExitMap) UnmarshalJSON(data []byte) error {
	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m := make(ExitMap, len(raw))
	for dir, id := range raw {
		if id == nil {
			m[dir] = ""
		} else {
			m[dir] = *id
		}
	}
	*e = m
	return nil
}

// Area is one discrete, visitable point in the world graph. Its ID is stable
// for its lifetime and is the only cross-reference key; display names are
// never used as keys.
type Area struct {
	ID               string       `json:"location_id"`
	Name             string       `json:"name"`
	Region           string       `json:"location"`               // coarse location group (town, mountain, ...)
	SubRegion        string       `json:"sub_location,omitempty"` // finer grouping (district, floor)
	ParentAreaID     string       `json:"parent_area_id,omitempty"`
	IsRegionEntrance bool         `json:"is_region_entrance"`
	Coordinates      [3]int       `json:"coordinates"` // (x, y, level); metadata only
	Description      string       `json:"description"`
	Attributes       AttributeSet `json:"attributes"`
	Exits            ExitMap      `json:"exits"`
	Items            []string     `json:"items"`
	NPCs             []string     `json:"npcs"`
	Visited          bool         `json:"visited"`
	DangerLevel      int          `json:"danger_level"` // 0-10
	RequiresItem     string       `json:"requires_item,omitempty"`
}

// NewArea creates an area with initialized collections.
func NewArea(id, name, region string) *Area {
	return &Area{
		ID:         id,
		Name:       name,
		Region:     region,
		Attributes: make(AttributeSet),
		Exits:      make(ExitMap),
		Items:      make([]string, 0),
		NPCs:       make([]string, 0),
	}
}

// AddExit records an exit from this area. An empty targetID marks the exit
// as unresolved.
func (a *Area) AddExit(direction, targetID string) {
	if a.Exits == nil {
		a.Exits = make(ExitMap)
	}
	a.Exits[direction] = targetID
}

// RemoveExit deletes an exit. Returns false if no exit existed for the
// direction.
func (a *Area) RemoveExit(direction string) bool {
	if _, ok := a.Exits[direction]; !ok {
		return false
	}
	delete(a.Exits, direction)
	return true
}

// ExitTarget returns the target id for a direction and whether the exit is
// concrete. Unresolved and absent exits both report false.
func (a *Area) ExitTarget(direction string) (string, bool) {
	id, ok := a.Exits[direction]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// HasUnresolvedExit reports whether the area advertises an exit in the given
// direction whose target has not been generated yet.
func (a *Area) HasUnresolvedExit(direction string) bool {
	id, ok := a.Exits[direction]
	return ok && id == ""
}

func (a *Area) AddAttribute(attribute string) {
	if a.Attributes == nil {
		a.Attributes = make(AttributeSet)
	}
	a.Attributes[attribute] = struct{}{}
}

func (a *Area) HasAttribute(attribute string) bool {
	_, ok := a.Attributes[attribute]
	return ok
}

// AddItem appends an item if it is not already present.
func (a *Area) AddItem(item string) {
	for _, existing := range a.Items {
		if existing == item {
			return
		}
	}
	a.Items = append(a.Items, item)
}

// RemoveItem removes an item. Returns false if it was not present.
func (a *Area) RemoveItem(item string) bool {
	for i, existing := range a.Items {
		if existing == item {
			a.Items = append(a.Items[:i], a.Items[i+1:]...)
			return true
		}
	}
	return false
}

// AddNPC appends an NPC name if it is not already present.
func (a *Area) AddNPC(npc string) {
	for _, existing := range a.NPCs {
		if existing == npc {
			return
		}
	}
	a.NPCs = append(a.NPCs, npc)
}

// RemoveNPC removes an NPC. Returns false if they were not present.
func (a *Area) RemoveNPC(npc string) bool {
	for i, existing := range a.NPCs {
		if existing == npc {
			a.NPCs = append(a.NPCs[:i], a.NPCs[i+1:]...)
			return true
		}
	}
	return false
}

// MarkVisited flags the area as physically visited by the player.
func (a *Area) MarkVisited() {
	a.Visited = true
}
