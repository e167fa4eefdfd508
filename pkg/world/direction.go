package world

import "strings"

// DirectionUnknown is returned by Reverse for directions outside the
// controlled vocabulary. Edges in such directions are never linked back.
const DirectionUnknown = "unknown"

// StandardDirections is the default vocabulary used when an area was
// generated without any exits of its own.
var StandardDirections = []string{"north", "south", "east", "west", "up", "down"}

// reversePairs is the fixed reverse-direction table. It is total over the
// controlled vocabulary; anything else reverses to DirectionUnknown.
var reversePairs = map[string]string{
	"north":     "south",
	"south":     "north",
	"east":      "west",
	"west":      "east",
	"up":        "down",
	"down":      "up",
	"northeast": "southwest",
	"southwest": "northeast",
	"northwest": "southeast",
	"southeast": "northwest",
	"in":        "out",
	"out":       "in",
}

// directionOffsets maps directions to (x, y, level) deltas. Coordinates are
// descriptive metadata only; "in" and "out" do not move the cursor.
var directionOffsets = map[string][3]int{
	"north":     {0, 1, 0},
	"south":     {0, -1, 0},
	"east":      {1, 0, 0},
	"west":      {-1, 0, 0},
	"up":        {0, 0, 1},
	"down":      {0, 0, -1},
	"northeast": {1, 1, 0},
	"northwest": {-1, 1, 0},
	"southeast": {1, -1, 0},
	"southwest": {-1, -1, 0},
}

// Reverse returns the opposite of a direction, or DirectionUnknown if the
// direction is not part of the controlled vocabulary.
func Reverse(direction string) string {
	if rev, ok := reversePairs[strings.ToLower(direction)]; ok {
		return rev
	}
	return DirectionUnknown
}

// IsKnownDirection reports whether a direction belongs to the controlled
// vocabulary.
func IsKnownDirection(direction string) bool {
	_, ok := reversePairs[strings.ToLower(direction)]
	return ok
}

// Offset returns the coordinate delta for moving one step in a direction.
func Offset(direction string) [3]int {
	return directionOffsets[strings.ToLower(direction)]
}
