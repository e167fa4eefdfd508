// Package prompts enriches narrative prompts with world context so the
// storytelling model knows where the player stands and what surrounds them.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/world-engine/pkg/world"
)

const taskHeading = "# Task"

const descriptionPreview = 50

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

// MapContext renders the current area and its surroundings as a prompt
// section. Surroundings is the navigator's Neighbors shape: "here" plus
// direction -> area, nil for unexplored directions.
func MapContext(current *world.Area, surroundings map[string]*world.Area) string {
	var b strings.Builder

	attrs := make([]string, 0, len(current.Attributes))
	for a := range current.Attributes {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)

	b.WriteString("\n# Map Area Information\n")
	fmt.Fprintf(&b, "You are currently in %s, a specific area within %s.\n\n", current.Name, current.Region)

	b.WriteString("## Current Area Details\n")
	fmt.Fprintf(&b, "- Description: %s\n", current.Description)
	fmt.Fprintf(&b, "- Coordinates: %v\n", current.Coordinates)
	fmt.Fprintf(&b, "- Special Attributes: %s\n", joinOrNone(attrs))
	fmt.Fprintf(&b, "- Items Present: %s\n", joinOrNone(current.Items))
	fmt.Fprintf(&b, "- NPCs Present: %s\n", joinOrNone(current.NPCs))
	fmt.Fprintf(&b, "- Danger Level: %d (0-10 scale)\n\n", current.DangerLevel)

	b.WriteString("## Exits and Connected Areas\n")
	directions := make([]string, 0, len(surroundings))
	for dir := range surroundings {
		if dir != "here" {
			directions = append(directions, dir)
		}
	}
	sort.Strings(directions)

	for _, dir := range directions {
		label := strings.ToUpper(dir[:1]) + dir[1:]
		area := surroundings[dir]
		if area == nil {
			fmt.Fprintf(&b, "- %s: Unknown area (not yet explored)\n", label)
			continue
		}
		preview := area.Description
		if len(preview) > descriptionPreview {
			preview = preview[:descriptionPreview] + "..."
		}
		fmt.Fprintf(&b, "- %s: %s (%s)\n", label, area.Name, preview)
	}

	return b.String()
}

// Enhance injects the map context into a narrative prompt, before its
// "# Task" section when one exists, appended otherwise.
func Enhance(prompt string, current *world.Area, surroundings map[string]*world.Area) string {
	if current == nil {
		return prompt
	}
	mapInfo := MapContext(current, surroundings)

	if idx := strings.Index(prompt, taskHeading); idx >= 0 {
		return prompt[:idx] + mapInfo + "\n" + prompt[idx:]
	}
	return prompt + "\n" + mapInfo
}
