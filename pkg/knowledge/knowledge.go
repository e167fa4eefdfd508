// Package knowledge provides read-only access to the upstream knowledge
// graph: entities and relations extracted from source documents. The world
// generation engine uses it to seed oracle prompts with region context; it
// is never written to.
package knowledge

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Entity is one node of the knowledge graph.
type Entity struct {
	ID    string
	Label string // display label
	Type  string // type tag, e.g. "location", "character", "item"
}

// Relation is one (subject, predicate, object) edge.
type Relation struct {
	Subject   string
	Predicate string
	Object    string
}

// LocationInfo is the region context assembled for an oracle prompt.
type LocationInfo struct {
	Name               string
	Description        string
	ConnectedLocations []string
	Characters         []string
	Items              []string
	Attributes         []string
}

var locationTypes = []string{"location", "place", "area", "region", "dungeon", "city", "town"}

// Graph is an in-memory snapshot of the knowledge graph.
type Graph struct {
	entities  map[string]Entity
	relations []Relation
}

// NewGraph builds a knowledge graph from entity and relation sets.
func NewGraph(entities []Entity, relations []Relation) *Graph {
	g := &Graph{
		entities:  make(map[string]Entity, len(entities)),
		relations: relations,
	}
	for _, e := range entities {
		g.entities[e.ID] = e
	}
	return g
}

// NewEmptyGraph returns a graph with no entities or relations. Generation
// still works against it; prompts just carry no seeded context.
func NewEmptyGraph() *Graph {
	return NewGraph(nil, nil)
}

// LoadDir reads entities.csv and relations.csv from a data directory.
// Either file may be absent; missing data degrades to an emptier graph
// rather than an error.
func LoadDir(dataDir string) (*Graph, error) {
	entities, err := loadEntities(filepath.Join(dataDir, "entities.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}
	relations, err := loadRelations(filepath.Join(dataDir, "relations.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	return NewGraph(entities, relations), nil
}

// Entity looks up one entity by id.
func (g *Graph) Entity(id string) (Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// subjectsOf collects subjects of relations matching an object and one of
// the given predicates.
func (g *Graph) subjectsOf(object string, predicates ...string) []string {
	var out []string
	for _, r := range g.relations {
		if !strings.EqualFold(r.Object, object) {
			continue
		}
		for _, p := range predicates {
			if strings.EqualFold(r.Predicate, p) {
				out = append(out, r.Subject)
				break
			}
		}
	}
	return out
}

func (g *Graph) objectsOf(subject string, predicates ...string) []string {
	var out []string
	for _, r := range g.relations {
		if !strings.EqualFold(r.Subject, subject) {
			continue
		}
		for _, p := range predicates {
			if strings.EqualFold(r.Predicate, p) {
				out = append(out, r.Object)
				break
			}
		}
	}
	return out
}

// LocationInfo assembles everything the graph knows about a named region:
// its description, neighboring locations, known occupants, known items, and
// known attributes. Unknown regions return an info block with only the name
// filled in.
func (g *Graph) LocationInfo(name string) LocationInfo {
	info := LocationInfo{Name: name}
	id := EntityID(name)

	if e, ok := g.entities[id]; ok && e.Label != "" && !strings.EqualFold(e.Label, name) {
		info.Description = e.Label
	}

	// neighbors that are themselves locations
	for _, other := range g.objectsOf(id, "connects_to", "adjacent_to", "leads_to") {
		if e, ok := g.entities[EntityID(other)]; ok && isLocationType(e.Type) {
			info.ConnectedLocations = append(info.ConnectedLocations, e.Label)
		}
	}

	lower := strings.ToLower(name)
	info.Characters = g.subjectsOf(lower, "located_in", "lives_in", "found_in")
	info.Items = g.subjectsOf(lower, "located_in", "found_in", "stored_in")
	info.Attributes = g.objectsOf(lower, "has_attribute", "is", "has_property")

	return info
}

// EntityID normalizes a display name into the graph's id form.
func EntityID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func isLocationType(entityType string) bool {
	et := strings.ToLower(entityType)
	for _, t := range locationTypes {
		if strings.Contains(et, t) {
			return true
		}
	}
	return false
}

// loadEntities reads an entities CSV with header id,text,label[,...].
func loadEntities(path string) ([]Entity, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var entities []Entity
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		entities = append(entities, Entity{
			ID:    row[0],
			Label: row[1],
			Type:  row[2],
		})
	}
	return entities, nil
}

// loadRelations reads a relations CSV with header subject,predicate,object[,...].
func loadRelations(path string) ([]Relation, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var relations []Relation
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		relations = append(relations, Relation{
			Subject:   row[0],
			Predicate: row[1],
			Object:    row[2],
		})
	}
	return relations, nil
}

// readCSV returns all data rows of a CSV file, skipping the header. A
// missing file yields no rows.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
