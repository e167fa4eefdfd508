package worldgen

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/world-engine/pkg/knowledge"
	"github.com/jwebster45206/world-engine/pkg/world"
)

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none known"
	}
	return strings.Join(values, ", ")
}

// entrancePrompt asks the oracle for the entrance area of a region, seeded
// with whatever the knowledge graph knows about it.
func entrancePrompt(info knowledge.LocationInfo) string {
	var b strings.Builder

	b.WriteString("# Task: Generate a Detailed Map Area\n\n")
	fmt.Fprintf(&b, "You are creating a detailed map area record that represents the entrance or main area of %s for a text adventure game.\n\n", info.Name)

	b.WriteString("## Background Information\n")
	fmt.Fprintf(&b, "- Location Name: %s\n", info.Name)
	fmt.Fprintf(&b, "- Description: %s\n", info.Description)
	fmt.Fprintf(&b, "- Connected Locations: %s\n", joinOrNone(info.ConnectedLocations))
	fmt.Fprintf(&b, "- Characters: %s\n", joinOrNone(info.Characters))
	fmt.Fprintf(&b, "- Items: %s\n", joinOrNone(info.Items))
	fmt.Fprintf(&b, "- Known Attributes: %s\n\n", joinOrNone(info.Attributes))

	b.WriteString(`## Requirements
Create a detailed map area with the following information:
1. A unique location_id (use lowercase with underscores)
2. A name for this specific area (e.g., "Entrance", "Main Hall", "Central Square")
3. A sub_location name for a distinct district or section within the location
4. Coordinates as [x, y, level] (use [0, 0, 0] for this initial area)
5. A rich description of what the player sees in this area
6. Special attributes of this area (e.g., "dark", "underwater", "elevated", "magical")
7. Important items that can be found here (3-5 items)
8. NPCs present in this area (1-3 characters)
9. A danger level from 0-10 (0 being completely safe, 10 being extremely dangerous)

## Output Format
Return your answer as JSON with the following structure:
`)
	b.WriteString("```json\n")
	fmt.Fprintf(&b, `{
  "location_id": "unique_id_here",
  "name": "Name of this specific area",
  "location": %q,
  "sub_location": "Distinct area within the location",
  "coordinates": [0, 0, 0],
  "description": "Detailed description of what the player sees...",
  "attributes": ["attribute1", "attribute2"],
  "items": ["item1", "item2", "item3"],
  "npcs": ["character1", "character2"],
  "danger_level": 3,
  "exits": {"north": null, "south": null}
}
`, info.Name)
	b.WriteString("```\n\n")
	b.WriteString(`- The "exits" field should include at least 4-6 potential directions (north, south, east, west, up, down), with null values since those areas do not exist yet.
- Make the description vivid and atmospheric, about 3-4 sentences long.
- Be creative but consistent with the world information provided.

Return ONLY the JSON without any additional explanation.
`)

	return b.String()
}

// connectedPrompt asks the oracle for an area one step in a direction from
// an existing area.
func connectedPrompt(from *world.Area, direction string, coords [3]int, reverse string) string {
	var b strings.Builder

	attrs := make([]string, 0, len(from.Attributes))
	for a := range from.Attributes {
		attrs = append(attrs, a)
	}

	b.WriteString("# Task: Generate a Connected Map Area\n\n")
	b.WriteString("You are creating a detailed map area for a text adventure game. This area is connected to an existing area.\n\n")

	b.WriteString("## Current Area Information\n")
	fmt.Fprintf(&b, "- Location: %s\n", from.Region)
	fmt.Fprintf(&b, "- Area Name: %s\n", from.Name)
	fmt.Fprintf(&b, "- Sub-location: %s\n", from.SubRegion)
	fmt.Fprintf(&b, "- Description: %s\n", from.Description)
	fmt.Fprintf(&b, "- Coordinates: %v\n", from.Coordinates)
	fmt.Fprintf(&b, "- Attributes: %s\n\n", joinOrNone(attrs))

	b.WriteString("## Connection Information\n")
	fmt.Fprintf(&b, "- Direction from current area: %s\n", direction)
	fmt.Fprintf(&b, "- This new area is %s of the current area.\n", direction)
	fmt.Fprintf(&b, "- New coordinates: [%d, %d, %d]\n\n", coords[0], coords[1], coords[2])

	b.WriteString(`## Requirements
Create a detailed map area with the following information:
1. A unique location_id (use lowercase with underscores)
2. A name that makes sense given its direction from the current area
3. A sub_location that is either the same as the current area's or a new one if appropriate
4. Coordinates as provided above
5. A rich description of what the player sees in this area
6. Special attributes of this area
7. Important items that can be found here (2-4 items)
8. NPCs present in this area (0-2 characters)
9. A danger level from 0-10

## Output Format
Return your answer as JSON with the following structure:
`)
	b.WriteString("```json\n")
	fmt.Fprintf(&b, `{
  "location_id": "unique_id_here",
  "name": "Name of this specific area",
  "location": %q,
  "sub_location": "District or section name",
  "coordinates": [%d, %d, %d],
  "description": "Detailed description of what the player sees...",
  "attributes": ["attribute1", "attribute2"],
  "items": ["item1", "item2"],
  "npcs": ["character1"],
  "danger_level": 3,
  "exits": {%q: %q}
}
`, from.Region, coords[0], coords[1], coords[2], reverse, from.ID)
	b.WriteString("```\n\n")
	fmt.Fprintf(&b, "- The \"exits\" field must include the reverse direction (%s) pointing back to %q.\n", reverse, from.ID)
	b.WriteString(`- Add 3-4 additional exits in different directions with null values.
- Make the description vivid and atmospheric, about 3-4 sentences long.
- The new area should make logical sense given its direction from the current area.

Return ONLY the JSON without any additional explanation.
`)

	return b.String()
}
