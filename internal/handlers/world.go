package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/world-engine/internal/storage"
	"github.com/jwebster45206/world-engine/pkg/knowledge"
	"github.com/jwebster45206/world-engine/pkg/nav"
	"github.com/jwebster45206/world-engine/pkg/state"
	"github.com/jwebster45206/world-engine/pkg/world"
	"github.com/jwebster45206/world-engine/pkg/worldgen"
)

// WorldHandler serves the exploration surface of a session: looking at the
// current area and moving between areas. Movement into unexplored directions
// generates the destination on demand.
type WorldHandler struct {
	storage   storage.Storage
	oracle    worldgen.Oracle
	knowledge *knowledge.Graph
	genCfg    worldgen.Config
	logger    *slog.Logger
}

func NewWorldHandler(storage storage.Storage, oracle worldgen.Oracle, kg *knowledge.Graph, genCfg worldgen.Config, logger *slog.Logger) *WorldHandler {
	return &WorldHandler{
		storage:   storage,
		oracle:    oracle,
		knowledge: kg,
		genCfg:    genCfg,
		logger:    logger,
	}
}

// AreaSummary is the shape neighbors are reported in. Frontier directions
// appear as null in the exits map.
type AreaSummary struct {
	ID      string `json:"location_id"`
	Name    string `json:"name"`
	Visited bool   `json:"visited"`
}

type LookResponse struct {
	Area  *world.Area             `json:"area"`
	Exits map[string]*AreaSummary `json:"exits"`
}

type MoveRequest struct {
	Direction string `json:"direction"`
}

type MoveResponse struct {
	Success bool        `json:"success"`
	Area    *world.Area `json:"area,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServeHTTP handles HTTP requests for world operations
// Routes:
// GET /v1/world/{id}        - Current area and its surroundings
// POST /v1/world/{id}/move  - Move in a direction, generating if needed
func (h *WorldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/world"), "/")
	parts := strings.Split(path, "/")
	if path == "" || len(parts) > 2 {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}

	gameStateID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game state ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleLook(w, r, gameStateID)
	case len(parts) == 2 && parts[1] == "move" && r.Method == http.MethodPost:
		h.handleMove(w, r, gameStateID)
	default:
		h.logger.Warn("Method not allowed for world endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// openSession loads the gamestate and its world graph and wires a navigator
// around them. The graph starts empty for a fresh session; the navigator
// bootstraps the region entrance on first use.
func (h *WorldHandler) openSession(ctx context.Context, id uuid.UUID) (*state.GameState, *world.Graph, *nav.Navigator, error) {
	gs, err := h.storage.LoadGameState(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if gs == nil {
		return nil, nil, nil, nil
	}

	graph, err := h.storage.LoadWorld(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if graph == nil {
		graph = world.NewGraph()
	}

	engine := worldgen.NewEngine(graph, h.oracle, h.knowledge, h.genCfg, h.logger)
	navigator := nav.New(graph, engine, gs.Region, h.logger)
	navigator.RestoreSave(gs)

	return gs, graph, navigator, nil
}

// persistSession writes the world graph and the updated position back.
func (h *WorldHandler) persistSession(ctx context.Context, gs *state.GameState, graph *world.Graph, navigator *nav.Navigator) error {
	navigator.MergeSave(gs)
	if err := h.storage.SaveWorld(ctx, gs.ID, graph); err != nil {
		return err
	}
	return h.storage.SaveGameState(ctx, gs.ID, gs)
}

func (h *WorldHandler) handleLook(w http.ResponseWriter, r *http.Request, gameStateID uuid.UUID) {
	gs, graph, navigator, err := h.openSession(r.Context(), gameStateID)
	if err != nil {
		h.logger.Error("Failed to open session", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}

	current, err := navigator.Current(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve current area", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusBadGateway, "Failed to generate starting area")
		return
	}

	neighbors, err := navigator.Neighbors(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve neighbors", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world")
		return
	}

	if err := h.persistSession(r.Context(), gs, graph, navigator); err != nil {
		h.logger.Error("Failed to persist session", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save world")
		return
	}

	exits := make(map[string]*AreaSummary, len(neighbors))
	for dir, area := range neighbors {
		if dir == "here" {
			continue
		}
		if area == nil {
			exits[dir] = nil
			continue
		}
		exits[dir] = &AreaSummary{ID: area.ID, Name: area.Name, Visited: area.Visited}
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(LookResponse{Area: current, Exits: exits}); err != nil {
		h.logger.Error("Failed to encode look response", "error", err)
	}
}

func (h *WorldHandler) handleMove(w http.ResponseWriter, r *http.Request, gameStateID uuid.UUID) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in move request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	direction := strings.ToLower(strings.TrimSpace(req.Direction))
	if direction == "" {
		writeError(w, h.logger, http.StatusBadRequest, "direction field is required")
		return
	}

	gs, graph, navigator, err := h.openSession(r.Context(), gameStateID)
	if err != nil {
		h.logger.Error("Failed to open session", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}

	area, moveErr := navigator.Move(r.Context(), direction)

	// Generation may have added areas even when the move itself failed, so
	// the session is persisted either way.
	if err := h.persistSession(r.Context(), gs, graph, navigator); err != nil {
		h.logger.Error("Failed to persist session", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save world")
		return
	}

	if moveErr != nil {
		if errors.Is(moveErr, nav.ErrNoPath) || errors.Is(moveErr, worldgen.ErrWorldFull) {
			h.logger.Info("Move failed", "id", gameStateID.String(), "direction", direction, "error", moveErr)
			w.WriteHeader(http.StatusOK)
			if err := json.NewEncoder(w).Encode(MoveResponse{Success: false, Error: moveErr.Error()}); err != nil {
				h.logger.Error("Failed to encode move response", "error", err)
			}
			return
		}
		h.logger.Error("Move failed unexpectedly", "error", moveErr, "id", gameStateID.String(), "direction", direction)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to move")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(MoveResponse{Success: true, Area: area}); err != nil {
		h.logger.Error("Failed to encode move response", "error", err)
	}
}
