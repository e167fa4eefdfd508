package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/world-engine/pkg/state"
	"github.com/jwebster45206/world-engine/pkg/world"
	"github.com/jwebster45206/world-engine/pkg/worldgen"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type scriptedOracle struct {
	mu           sync.Mutex
	calls        int
	generateFunc func(call int, prompt string) (string, error)
}

func (s *scriptedOracle) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	fn := s.generateFunc
	s.mu.Unlock()
	if fn != nil {
		return fn(call, prompt)
	}
	return "", errors.New("no response scripted")
}

func (s *scriptedOracle) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func areaResponse(id, name, exits string) string {
	return fmt.Sprintf(`{"location_id":%q,"name":%q,"description":"Somewhere.","exits":{%s}}`, id, name, exits)
}

func newTestNavigator(region string, oracle worldgen.Oracle, depth int) (*Navigator, *world.Graph) {
	graph := world.NewGraph()
	engine := worldgen.NewEngine(graph, oracle, nil, worldgen.Config{Depth: depth, MaxAreas: 50}, testLogger())
	return New(graph, engine, region, testLogger()), graph
}

func TestCurrent_LazyBootstrap(t *testing.T) {
	oracle := &scriptedOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaResponse("mill_entrance", "Mill Entrance", `"east": null`), nil
		},
	}
	n, graph := newTestNavigator("The Old Mill", oracle, 0)

	area, err := n.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mill_entrance", area.ID)
	assert.True(t, area.IsRegionEntrance)
	assert.True(t, area.Visited)
	assert.Equal(t, "mill_entrance", graph.CurrentAreaID())

	// steady state: no further generation
	again, err := n.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, area, again)
	assert.Equal(t, 1, oracle.callCount())
}

func TestCurrent_PrefersExistingEntrance(t *testing.T) {
	oracle := &scriptedOracle{}
	n, graph := newTestNavigator("Riverdale", oracle, 0)

	plain := world.NewArea("riverdale_alley", "Alley", "Riverdale")
	entrance := world.NewArea("riverdale_square", "Town Square", "Riverdale")
	entrance.IsRegionEntrance = true
	graph.AddArea(plain)
	graph.AddArea(entrance)

	area, err := n.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "riverdale_square", area.ID)
	assert.Equal(t, 0, oracle.callCount())
}

// First move into unexplored territory: one oracle call, bidirectional
// linking, position updated.
func TestMove_TriggersGeneration(t *testing.T) {
	oracle := &scriptedOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			switch call {
			case 1:
				return areaResponse("mill_entrance", "Mill Entrance", `"east": null`), nil
			default:
				return areaResponse("mill_pond", "Mill Pond", ""), nil
			}
		},
	}
	n, graph := newTestNavigator("Mill", oracle, 0)

	_, err := n.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, oracle.callCount())

	area, err := n.Move(context.Background(), "east")
	require.NoError(t, err)
	assert.Equal(t, "mill_pond", area.ID)
	assert.Equal(t, 2, oracle.callCount(), "the edge miss issues exactly one oracle call")
	assert.True(t, area.Visited)
	assert.Equal(t, "mill_pond", graph.CurrentAreaID())

	// linked both ways
	back, ok := graph.GetArea("mill_pond").ExitTarget("west")
	require.True(t, ok)
	assert.Equal(t, "mill_entrance", back)

	// moving back uses the existing edge: no oracle call
	area, err = n.Move(context.Background(), "west")
	require.NoError(t, err)
	assert.Equal(t, "mill_entrance", area.ID)
	assert.Equal(t, 2, oracle.callCount())
}

// Generation failure surfaces as ErrNoPath and leaves no dangling state.
func TestMove_GenerationFailure(t *testing.T) {
	oracle := &scriptedOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			if call == 1 {
				return areaResponse("mill_entrance", "Mill Entrance", `"east": null`), nil
			}
			return "", errors.New("oracle unavailable")
		},
	}
	n, graph := newTestNavigator("Mill", oracle, 0)

	_, err := n.Current(context.Background())
	require.NoError(t, err)

	area, err := n.Move(context.Background(), "east")
	assert.ErrorIs(t, err, ErrNoPath)
	assert.Nil(t, area)
	assert.Equal(t, "mill_entrance", graph.CurrentAreaID(), "position unchanged on failure")
	assert.Equal(t, 1, graph.Len(), "no partial area created")

	// east is still unresolved, not a dangling edge
	neighbors, err := n.Neighbors(context.Background())
	require.NoError(t, err)
	target, present := neighbors["east"]
	assert.True(t, present)
	assert.Nil(t, target)
}

func TestNeighbors_ReadOnly(t *testing.T) {
	oracle := &scriptedOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaResponse("mill_entrance", "Mill Entrance", `"east": null, "north": null`), nil
		},
	}
	n, graph := newTestNavigator("Mill", oracle, 0)

	pond := world.NewArea("mill_pond", "Mill Pond", "Mill")
	graph.AddArea(pond)

	_, err := n.Current(context.Background())
	require.NoError(t, err)
	require.NoError(t, graph.CreateBidirectionalExit("mill_entrance", "mill_pond", "north", "south"))

	neighbors, err := n.Neighbors(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mill_entrance", neighbors["here"].ID)
	assert.Equal(t, "mill_pond", neighbors["north"].ID)
	assert.Nil(t, neighbors["east"], "unresolved exits surface as nil")

	// browsing issued no generation
	assert.Equal(t, 1, oracle.callCount())
	assert.Equal(t, 2, graph.Len())
}

func TestMergeRestoreSave(t *testing.T) {
	oracle := &scriptedOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaResponse("mill_entrance", "Mill Entrance", ""), nil
		},
	}
	n, graph := newTestNavigator("Mill", oracle, 0)

	_, err := n.Current(context.Background())
	require.NoError(t, err)

	gs := state.NewGameState("Mill")
	n.MergeSave(gs)
	assert.Equal(t, "mill_entrance", gs.CurrentAreaID)

	// a fresh navigator over the same graph restores the position
	engine2 := worldgen.NewEngine(graph, oracle, nil, worldgen.Config{}, testLogger())
	n2 := New(graph, engine2, "Mill", testLogger())
	n2.RestoreSave(gs)
	assert.Equal(t, "mill_entrance", graph.CurrentAreaID())

	// restored generation history prevents re-generating the region
	id, err := engine2.GenerateRegionEntrance(context.Background(), "Mill", 1)
	require.NoError(t, err)
	assert.Equal(t, "mill_entrance", id)
	assert.Equal(t, 1, oracle.callCount())
}

func TestRestoreSave_DanglingAreaID(t *testing.T) {
	oracle := &scriptedOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaResponse("mill_entrance", "Mill Entrance", ""), nil
		},
	}
	n, graph := newTestNavigator("Mill", oracle, 0)

	gs := state.NewGameState("Mill")
	gs.CurrentAreaID = "vanished_area"
	n.RestoreSave(gs)
	assert.Equal(t, "", graph.CurrentAreaID())

	// next Current re-bootstraps cleanly
	area, err := n.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mill_entrance", area.ID)
}

func TestSaveLoadWorld(t *testing.T) {
	oracle := &scriptedOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaResponse("mill_entrance", "Mill Entrance", `"east": null`), nil
		},
	}
	n, graph := newTestNavigator("Mill", oracle, 0)

	_, err := n.Current(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, n.SaveWorld(path))

	// load into a fresh session
	oracle2 := &scriptedOracle{}
	n2, graph2 := newTestNavigator("Mill", oracle2, 0)
	require.NoError(t, n2.LoadWorld(path))

	assert.Equal(t, graph.Len(), graph2.Len())
	area, err := n2.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mill_entrance", area.ID)
	assert.Equal(t, 0, oracle2.callCount(), "loaded regions are not re-generated")
}
