package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/world-engine/pkg/state"
	"github.com/jwebster45206/world-engine/pkg/world"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := NewRedisStorage("redis://"+mr.Addr(), logger)
	if err != nil {
		t.Fatalf("Failed to create redis storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestRedisStorage_GameStateRoundtrip(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	gs := state.NewGameState("Riverlands")
	gs.CurrentAreaID = "old_mill"
	gs.Inventory = []string{"rusty key"}

	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, "Riverlands", loaded.Region)
	assert.Equal(t, "old_mill", loaded.CurrentAreaID)
	assert.Equal(t, []string{"rusty key"}, loaded.Inventory)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestRedisStorage_GameStateNotFound(t *testing.T) {
	s, _ := setupTestStorage(t)

	loaded, err := s.LoadGameState(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_DeleteGameState(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	gs := state.NewGameState("Riverlands")
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	require.NoError(t, s.DeleteGameState(ctx, gs.ID))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_WorldRoundtrip(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()
	id := uuid.New()

	g := world.NewGraph()
	mill := world.NewArea("old_mill", "Old Mill", "Riverlands")
	pond := world.NewArea("mill_pond", "Mill Pond", "Riverlands")
	g.AddArea(mill)
	g.AddArea(pond)
	require.NoError(t, g.CreateBidirectionalExit("old_mill", "mill_pond", "east", "west"))
	require.NoError(t, g.SetCurrentArea("old_mill"))

	require.NoError(t, s.SaveWorld(ctx, id, g))

	loaded, err := s.LoadWorld(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, "old_mill", loaded.CurrentAreaID())

	area := loaded.GetArea("mill_pond")
	require.NotNil(t, area)
	target, ok := area.ExitTarget("west")
	require.True(t, ok)
	assert.Equal(t, "old_mill", target)
}

func TestRedisStorage_WorldNotFound(t *testing.T) {
	s, _ := setupTestStorage(t)

	loaded, err := s.LoadWorld(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_DeleteWorld(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()
	id := uuid.New()

	g := world.NewGraph()
	g.AddArea(world.NewArea("old_mill", "Old Mill", "Riverlands"))

	require.NoError(t, s.SaveWorld(ctx, id, g))
	require.NoError(t, s.DeleteWorld(ctx, id))

	loaded, err := s.LoadWorld(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_PingAfterServerStops(t *testing.T) {
	s, mr := setupTestStorage(t)

	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}

func TestNewRedisStorage_BadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	_, err := NewRedisStorage("not a url", logger)
	assert.Error(t, err)
}
