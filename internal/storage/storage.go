package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/world-engine/pkg/state"
	"github.com/jwebster45206/world-engine/pkg/world"
)

// Storage persists game sessions and their world graphs. A session's world
// is saved as one unit keyed by the gamestate ID, so a load always yields a
// graph whose exits resolve within itself.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error
	WaitForConnection(ctx context.Context) error

	// GameState operations
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// World graph operations
	SaveWorld(ctx context.Context, id uuid.UUID, g *world.Graph) error
	LoadWorld(ctx context.Context, id uuid.UUID) (*world.Graph, error)
	DeleteWorld(ctx context.Context, id uuid.UUID) error
}
