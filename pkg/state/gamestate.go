package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/world-engine/pkg/actor"
	"github.com/jwebster45206/world-engine/pkg/chat"
)

// GameState is the per-session save payload. World areas are persisted
// separately as a unit (see the storage layer); the gamestate carries the
// session's position pointer and everything that is not world-graph data.
type GameState struct {
	ID            uuid.UUID          `json:"id"`
	Region        string             `json:"region,omitempty"`          // player's coarse location, seeds world bootstrap
	CurrentAreaID string             `json:"current_area_id,omitempty"` // merged in/out by the navigator on save/load
	PC            *actor.PCSpec      `json:"pc,omitempty"`
	Inventory     []string           `json:"inventory,omitempty"`
	ChatHistory   []chat.ChatMessage `json:"chat_history,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewGameState creates a session anchored at a coarse region.
func NewGameState(region string) *GameState {
	now := time.Now().UTC()
	return &GameState{
		ID:          uuid.New(),
		Region:      region,
		Inventory:   make([]string, 0),
		ChatHistory: make([]chat.ChatMessage, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasItem reports whether the named item is in the session inventory. Used
// by callers that enforce an area's requires_item gate.
func (gs *GameState) HasItem(item string) bool {
	for _, i := range gs.Inventory {
		if i == item {
			return true
		}
	}
	return false
}
