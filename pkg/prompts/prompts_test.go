package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/world-engine/pkg/world"
)

func testArea() *world.Area {
	a := world.NewArea("old_mill", "Old Mill", "Riverlands")
	a.Description = "A creaking mill beside a slow green river, its wheel long stopped."
	a.Items = []string{"rusty key"}
	a.NPCs = []string{"Miller"}
	a.DangerLevel = 3
	a.AddAttribute("abandoned")
	return a
}

func TestEnhanceInsertsBeforeTask(t *testing.T) {
	prompt := "You are a narrator.\n\n# Task\nDescribe the scene."
	current := testArea()
	pond := world.NewArea("mill_pond", "Mill Pond", "Riverlands")
	pond.Description = "Still water."

	out := Enhance(prompt, current, map[string]*world.Area{
		"here":  current,
		"east":  pond,
		"north": nil,
	})

	taskIdx := strings.Index(out, "# Task")
	mapIdx := strings.Index(out, "# Map Area Information")
	require.GreaterOrEqual(t, mapIdx, 0)
	require.GreaterOrEqual(t, taskIdx, 0)
	assert.Less(t, mapIdx, taskIdx, "map context should precede the task section")

	assert.Contains(t, out, "You are currently in Old Mill, a specific area within Riverlands.")
	assert.Contains(t, out, "- East: Mill Pond (Still water.)")
	assert.Contains(t, out, "- North: Unknown area (not yet explored)")
	assert.Contains(t, out, "- Items Present: rusty key")
	assert.Contains(t, out, "- NPCs Present: Miller")
	assert.Contains(t, out, "- Special Attributes: abandoned")
	assert.Contains(t, out, "- Danger Level: 3 (0-10 scale)")
	assert.Contains(t, out, "Describe the scene.")
}

func TestEnhanceAppendsWithoutTask(t *testing.T) {
	prompt := "You are a narrator."
	current := testArea()

	out := Enhance(prompt, current, map[string]*world.Area{"here": current})

	assert.True(t, strings.HasPrefix(out, prompt))
	assert.Contains(t, out, "# Map Area Information")
}

func TestEnhanceNilAreaReturnsPromptUnchanged(t *testing.T) {
	prompt := "You are a narrator.\n\n# Task\nGo."
	assert.Equal(t, prompt, Enhance(prompt, nil, nil))
}

func TestMapContextTruncatesLongDescriptions(t *testing.T) {
	current := testArea()
	far := world.NewArea("deep_wood", "Deep Wood", "Riverlands")
	far.Description = strings.Repeat("x", 80)

	out := MapContext(current, map[string]*world.Area{"west": far})

	assert.Contains(t, out, strings.Repeat("x", 50)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 51))
}

func TestMapContextEmptyCollections(t *testing.T) {
	a := world.NewArea("void", "Void", "Nowhere")
	out := MapContext(a, map[string]*world.Area{})

	assert.Contains(t, out, "- Items Present: None")
	assert.Contains(t, out, "- NPCs Present: None")
	assert.Contains(t, out, "- Special Attributes: None")
}
