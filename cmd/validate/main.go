package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jwebster45206/world-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &WorldValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World file is valid!")
}

type WorldValidator struct {
	errors []string
}

func (v *WorldValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	g := world.NewGraph()
	if err := g.LoadFile(filename); err != nil {
		return fmt.Errorf("failed to load world file %s: %w", filename, err)
	}

	v.errors = nil
	v.validateGraph(g)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

var validIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

func (v *WorldValidator) addError(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf("  - "+format, args...))
}

func (v *WorldValidator) validateGraph(g *world.Graph) {
	entrances := make(map[string][]string)

	for _, id := range g.AreaIDs() {
		area := g.GetArea(id)
		v.validateArea(g, area)

		if area.IsRegionEntrance {
			key := strings.ToLower(area.Region)
			entrances[key] = append(entrances[key], area.ID)
		}
	}

	for region, ids := range entrances {
		if len(ids) > 1 {
			v.addError("region %q has %d entrances: %s", region, len(ids), strings.Join(ids, ", "))
		}
	}
}

func (v *WorldValidator) validateArea(g *world.Graph, area *world.Area) {
	if !validIDPattern.MatchString(area.ID) {
		v.addError("area %q: ID must be lowercase snake_case", area.ID)
	}
	if area.Name == "" {
		v.addError("area %q: missing name", area.ID)
	}
	if area.Region == "" {
		v.addError("area %q: missing location", area.ID)
	}
	if area.DangerLevel < 0 || area.DangerLevel > 10 {
		v.addError("area %q: danger_level %d out of range 0-10", area.ID, area.DangerLevel)
	}

	for direction, targetID := range area.Exits {
		if targetID == "" {
			continue // unresolved frontier, nothing to check
		}

		target := g.GetArea(targetID)
		if target == nil {
			v.addError("area %q: exit %q points to unknown area %q", area.ID, direction, targetID)
			continue
		}

		// a known direction must have a matching reverse edge
		reverse := world.Reverse(direction)
		if reverse == world.DirectionUnknown {
			continue
		}
		back, ok := target.ExitTarget(reverse)
		if !ok {
			v.addError("area %q: exit %q to %q has no %q edge back", area.ID, direction, targetID, reverse)
		} else if back != area.ID {
			v.addError("area %q: exit %q to %q returns to %q instead", area.ID, direction, targetID, back)
		}
	}
}
