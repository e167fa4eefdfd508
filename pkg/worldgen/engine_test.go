package worldgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/world-engine/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

// mockOracle returns scripted responses and counts calls.
type mockOracle struct {
	mu           sync.Mutex
	calls        int
	generateFunc func(call int, prompt string) (string, error)
}

func (m *mockOracle) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	fn := m.generateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(call, prompt)
	}
	return "", errors.New("no response scripted")
}

func (m *mockOracle) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func areaJSON(id, name string, exits string) string {
	return fmt.Sprintf(`{
		"location_id": %q,
		"name": %q,
		"location": "ignored",
		"sub_location": "Test District",
		"coordinates": [0, 0, 0],
		"description": "A quiet clearing.",
		"attributes": ["quiet"],
		"items": ["pebble"],
		"npcs": [],
		"danger_level": 1,
		"exits": {%s}
	}`, id, name, exits)
}

// requireBidirectional asserts invariant 2 over the whole graph: every
// concrete exit with a known reverse direction has a matching edge back.
func requireBidirectional(t *testing.T, g *world.Graph) {
	t.Helper()
	for _, id := range g.AreaIDs() {
		area := g.GetArea(id)
		for dir := range area.Exits {
			targetID, ok := area.ExitTarget(dir)
			if !ok {
				continue
			}
			reverse := world.Reverse(dir)
			if reverse == world.DirectionUnknown {
				continue
			}
			target := g.GetArea(targetID)
			require.NotNil(t, target, "exit %s of %s points to missing area %s", dir, id, targetID)
			back, ok := target.ExitTarget(reverse)
			require.True(t, ok, "missing reverse exit %s on %s", reverse, targetID)
			assert.Equal(t, id, back, "reverse exit %s of %s should point to %s", reverse, targetID, id)
		}
	}
}

func TestGenerateRegionEntrance_Idempotent(t *testing.T) {
	graph := world.NewGraph()
	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaJSON("riverdale_square", "Town Square", `"north": null`), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{Depth: 2, MaxAreas: 50}, testLogger())

	id1, err := engine.GenerateRegionEntrance(context.Background(), "Riverdale", 0)
	require.NoError(t, err)
	assert.Equal(t, "riverdale_square", id1)
	assert.Equal(t, 1, oracle.callCount())

	// second call: zero additional oracle calls, same entrance
	id2, err := engine.GenerateRegionEntrance(context.Background(), "riverdale", 0)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, oracle.callCount())

	// exactly one entrance for the region
	entrances := 0
	for _, aid := range graph.AreaIDs() {
		if a := graph.GetArea(aid); a.IsRegionEntrance {
			entrances++
		}
	}
	assert.Equal(t, 1, entrances)
}

func TestGenerateRegionEntrance_DepthBound(t *testing.T) {
	graph := world.NewGraph()
	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			if call == 1 {
				// entrance advertises a single unresolved exit
				return areaJSON("hop_0", "Entrance", `"north": null`), nil
			}
			// every generated area keeps pointing further north
			return areaJSON(fmt.Sprintf("hop_%d", call-1), fmt.Sprintf("Hop %d", call-1), `"north": null`), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{MaxAreas: 50}, testLogger())

	id, err := engine.GenerateRegionEntrance(context.Background(), "The Old Mill", 2)
	require.NoError(t, err)
	assert.Equal(t, "hop_0", id)

	// entrance + exactly 2 hops, nothing past depth 2
	assert.Equal(t, 3, graph.Len())
	assert.Equal(t, 3, oracle.callCount())
	assert.NotNil(t, graph.GetArea("hop_2"))
	assert.Nil(t, graph.GetArea("hop_3"))

	// deepest area still advertises its unresolved frontier
	assert.True(t, graph.GetArea("hop_2").HasUnresolvedExit("north"))

	requireBidirectional(t, graph)
}

func TestGenerateRegionEntrance_OracleFailure(t *testing.T) {
	graph := world.NewGraph()
	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	_, err := engine.GenerateRegionEntrance(context.Background(), "Riverdale", 2)
	require.Error(t, err)
	assert.Equal(t, 0, graph.Len(), "failed generation must not modify the graph")

	// the failed attempt does not poison the region: a later call retries
	oracle.generateFunc = func(call int, prompt string) (string, error) {
		return areaJSON("riverdale_square", "Town Square", ""), nil
	}
	id, err := engine.GenerateRegionEntrance(context.Background(), "Riverdale", 0)
	require.NoError(t, err)
	assert.Equal(t, "riverdale_square", id)
}

func TestGenerateRegionEntrance_ParseFailure(t *testing.T) {
	graph := world.NewGraph()
	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return "I would rather not.", nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	_, err := engine.GenerateRegionEntrance(context.Background(), "Riverdale", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, 0, graph.Len())
}

func TestGenerateConnected_Idempotent(t *testing.T) {
	graph := world.NewGraph()
	start := world.NewArea("start", "Start", "Riverdale")
	start.AddExit("east", "")
	graph.AddArea(start)

	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaJSON("east_meadow", "East Meadow", `"south": null`), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	id1, err := engine.GenerateConnected(context.Background(), "start", "east")
	require.NoError(t, err)
	assert.Equal(t, "east_meadow", id1)
	assert.Equal(t, 1, oracle.callCount())

	// both directions linked
	requireBidirectional(t, graph)
	back, ok := graph.GetArea("east_meadow").ExitTarget("west")
	require.True(t, ok)
	assert.Equal(t, "start", back)

	// second call reuses the concrete edge: zero additional oracle calls
	id2, err := engine.GenerateConnected(context.Background(), "start", "east")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, oracle.callCount())
}

func TestGenerateConnected_FailureLeavesExitUnresolved(t *testing.T) {
	graph := world.NewGraph()
	start := world.NewArea("start", "Start", "Riverdale")
	start.AddExit("east", "")
	graph.AddArea(start)

	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			if call == 1 {
				return "", errors.New("connection reset")
			}
			return areaJSON("east_meadow", "East Meadow", ""), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	_, err := engine.GenerateConnected(context.Background(), "start", "east")
	require.Error(t, err)
	assert.Equal(t, 1, graph.Len(), "no partial area on failure")
	assert.True(t, start.HasUnresolvedExit("east"), "failed edge stays unresolved for retry")

	// retry succeeds
	id, err := engine.GenerateConnected(context.Background(), "start", "east")
	require.NoError(t, err)
	assert.Equal(t, "east_meadow", id)
	requireBidirectional(t, graph)
}

func TestGenerateConnected_UnknownDirection(t *testing.T) {
	graph := world.NewGraph()
	start := world.NewArea("start", "Start", "Riverdale")
	graph.AddArea(start)

	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaJSON("beyond", "Beyond", ""), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	id, err := engine.GenerateConnected(context.Background(), "start", "through the mirror")
	require.NoError(t, err)
	assert.Equal(t, "beyond", id)

	// forward edge exists, but no reverse edge: unknown directions are
	// exempt from bidirectional consistency
	target, ok := start.ExitTarget("through the mirror")
	assert.True(t, ok)
	assert.Equal(t, "beyond", target)
	for dir := range graph.GetArea("beyond").Exits {
		target, ok := graph.GetArea("beyond").ExitTarget(dir)
		if ok {
			assert.NotEqual(t, "start", target)
		}
	}
}

func TestGenerateConnected_UnknownSourceArea(t *testing.T) {
	graph := world.NewGraph()
	oracle := &mockOracle{}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	_, err := engine.GenerateConnected(context.Background(), "ghost", "north")
	assert.ErrorIs(t, err, world.ErrUnknownArea)
	assert.Equal(t, 0, oracle.callCount())
}

func TestGenerateConnected_WorldFull(t *testing.T) {
	graph := world.NewGraph()
	start := world.NewArea("start", "Start", "Riverdale")
	graph.AddArea(start)

	oracle := &mockOracle{}
	engine := NewEngine(graph, oracle, nil, Config{MaxAreas: 1}, testLogger())

	_, err := engine.GenerateConnected(context.Background(), "start", "north")
	assert.ErrorIs(t, err, ErrWorldFull)
	assert.Equal(t, 0, oracle.callCount(), "the cap is enforced before any oracle call")
}

func TestGenerateConnected_SingleFlight(t *testing.T) {
	graph := world.NewGraph()
	start := world.NewArea("start", "Start", "Riverdale")
	start.AddExit("north", "")
	graph.AddArea(start)

	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			time.Sleep(50 * time.Millisecond) // hold the flight open
			return areaJSON("north_field", "North Field", ""), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	const concurrent = 8
	ids := make([]string, concurrent)
	errs := make([]error, concurrent)
	var wg sync.WaitGroup
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = engine.GenerateConnected(context.Background(), "start", "north")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, oracle.callCount(), "concurrent requests for one edge share a single oracle call")
	for i := 0; i < concurrent; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "north_field", ids[i])
	}
	assert.Equal(t, 2, graph.Len())
}

func TestExpand_RepairsReverseExit(t *testing.T) {
	graph := world.NewGraph()
	a := world.NewArea("a", "A", "Riverdale")
	b := world.NewArea("b", "B", "Riverdale")
	a.AddExit("north", "b") // forward edge only; reverse is missing
	graph.AddArea(a)
	graph.AddArea(b)

	oracle := &mockOracle{}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	require.NoError(t, engine.Expand(context.Background(), "a", 1))

	back, ok := b.ExitTarget("south")
	assert.True(t, ok, "expand should repair the missing reverse exit")
	assert.Equal(t, "a", back)
	assert.Equal(t, 0, oracle.callCount(), "repair-only expansion issues no oracle calls")
}

func TestExpand_IdempotentRerun(t *testing.T) {
	graph := world.NewGraph()
	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			if call == 1 {
				return areaJSON("hub", "Hub", `"north": null, "east": null`), nil
			}
			return areaJSON(fmt.Sprintf("area_%d", call), fmt.Sprintf("Area %d", call), ""), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	_, err := engine.GenerateRegionEntrance(context.Background(), "Riverdale", 1)
	require.NoError(t, err)
	created := graph.Len()
	calls := oracle.callCount()

	// re-running the expansion pass performs only repairs, never
	// duplicate creation
	require.NoError(t, engine.Expand(context.Background(), "hub", 1))
	assert.Equal(t, created, graph.Len())
	assert.Equal(t, calls, oracle.callCount())
	requireBidirectional(t, graph)
}

func TestExpand_UnknownArea(t *testing.T) {
	engine := NewEngine(world.NewGraph(), &mockOracle{}, nil, Config{}, testLogger())
	err := engine.Expand(context.Background(), "nowhere", 2)
	assert.ErrorIs(t, err, world.ErrUnknownArea)
}

func TestExpand_NoExits_UsesStandardDirections(t *testing.T) {
	graph := world.NewGraph()
	start := world.NewArea("start", "Start", "Riverdale")
	graph.AddArea(start)

	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaJSON(fmt.Sprintf("gen_%d", call), fmt.Sprintf("Gen %d", call), ""), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	require.NoError(t, engine.Expand(context.Background(), "start", 1))

	// one generated area per standard direction
	assert.Equal(t, 1+len(world.StandardDirections), graph.Len())
	requireBidirectional(t, graph)
}

func TestEnsureUniqueID(t *testing.T) {
	graph := world.NewGraph()
	start := world.NewArea("start", "Start", "Riverdale")
	start.AddExit("north", "")
	start.AddExit("south", "")
	graph.AddArea(start)

	// the oracle reuses the same id for both areas
	oracle := &mockOracle{
		generateFunc: func(call int, prompt string) (string, error) {
			return areaJSON("copy", "Copy", ""), nil
		},
	}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())

	id1, err := engine.GenerateConnected(context.Background(), "start", "north")
	require.NoError(t, err)
	id2, err := engine.GenerateConnected(context.Background(), "start", "south")
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2, "duplicate oracle ids must be made unique")
	assert.Equal(t, 3, graph.Len())
}

func TestSyncGeneratedRegions(t *testing.T) {
	graph := world.NewGraph()
	entrance := world.NewArea("riverdale_square", "Town Square", "Riverdale")
	entrance.IsRegionEntrance = true
	graph.AddArea(entrance)

	oracle := &mockOracle{}
	engine := NewEngine(graph, oracle, nil, Config{}, testLogger())
	engine.SyncGeneratedRegions()

	// region already present in the loaded graph: no oracle call
	id, err := engine.GenerateRegionEntrance(context.Background(), "Riverdale", 2)
	require.NoError(t, err)
	assert.Equal(t, "riverdale_square", id)
	assert.Equal(t, 0, oracle.callCount())
}
