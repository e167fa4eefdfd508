package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jwebster45206/world-engine/pkg/chat"
)

const oracleSystemPrompt = "You are a world-building assistant for a text adventure game. " +
	"You respond to every request with a single JSON object describing a game area, " +
	"following the schema given in the request. Do not include commentary outside the JSON."

// WorldOracle adapts an LLMService to the single-prompt interface the
// generation engine consumes. Each call gets its own deadline so a slow
// provider cannot stall a navigation request indefinitely.
type WorldOracle struct {
	llm     LLMService
	timeout time.Duration
}

func NewWorldOracle(llm LLMService, timeout time.Duration) *WorldOracle {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WorldOracle{llm: llm, timeout: timeout}
}

// Generate sends the prompt to the LLM and returns the raw response text.
func (o *WorldOracle) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.llm.Chat(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: oracleSystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}

	return resp.Message, nil
}
