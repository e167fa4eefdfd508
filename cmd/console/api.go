package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/world-engine/pkg/state"
	"github.com/jwebster45206/world-engine/pkg/world"
)

// AreaSummary matches the API's neighbor shape. A nil entry in the exits
// map is a direction the world has not generated yet.
type AreaSummary struct {
	ID      string `json:"location_id"`
	Name    string `json:"name"`
	Visited bool   `json:"visited"`
}

type LookResponse struct {
	Area  *world.Area             `json:"area"`
	Exits map[string]*AreaSummary `json:"exits"`
}

type MoveResponse struct {
	Success bool        `json:"success"`
	Area    *world.Area `json:"area,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// CreateGameStateRequest matches the API request structure
type CreateGameStateRequest struct {
	Region string `json:"region,omitempty"`
	PCName string `json:"pc_name,omitempty"`
}

func createGameState(client *http.Client, baseURL string, region string) (*state.GameState, error) {
	req := CreateGameStateRequest{
		Region: region,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/gamestate",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create game state: %s", errorResp.Error)
	}

	var createdGameState state.GameState
	if err := json.Unmarshal(body, &createdGameState); err != nil {
		return nil, fmt.Errorf("failed to parse game state response: %w", err)
	}

	return &createdGameState, nil
}

func look(client *http.Client, baseURL string, gs *state.GameState) (*LookResponse, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/world/%s", baseURL, gs.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to look around: %s", errorResp.Error)
	}

	var lookResp LookResponse
	if err := json.Unmarshal(body, &lookResp); err != nil {
		return nil, fmt.Errorf("failed to parse look response: %w", err)
	}
	return &lookResp, nil
}

func move(client *http.Client, baseURL string, gs *state.GameState, direction string) (*MoveResponse, error) {
	jsonData, err := json.Marshal(map[string]string{"direction": direction})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/world/%s/move", baseURL, gs.ID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to move: %s", errorResp.Error)
	}

	var moveResp MoveResponse
	if err := json.Unmarshal(body, &moveResp); err != nil {
		return nil, fmt.Errorf("failed to parse move response: %w", err)
	}
	return &moveResp, nil
}
