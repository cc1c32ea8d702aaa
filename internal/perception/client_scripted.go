package perception

import (
	"context"
	"sync"
)

// ScriptedClient replays canned responses in order. It backs the "mock"
// provider for offline runs and is the test double for every fan-out and
// turn-loop test in the engine.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	// Default is returned once the queue is exhausted.
	Default string
	// Calls records every prompt pair, in call order.
	Calls []ScriptedCall
}

// ScriptedCall is one recorded prompt.
type ScriptedCall struct {
	System string
	User   string
}

// NewScriptedClient returns a client that always answers with a PASS
// action until scripted otherwise.
func NewScriptedClient(responses ...string) *ScriptedClient {
	return &ScriptedClient{
		responses: responses,
		Default:   `{"action":"PASS","reason":"Nothing to add."}`,
	}
}

// Queue appends responses to the script.
func (c *ScriptedClient) Queue(responses ...string) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, responses...)
	return c
}

// CompleteText pops the next scripted response.
func (c *ScriptedClient) CompleteText(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, ScriptedCall{System: systemPrompt, User: userPrompt})
	if len(c.responses) == 0 {
		return c.Default, nil
	}
	next := c.responses[0]
	c.responses = c.responses[1:]
	return next, nil
}

// ClientFunc adapts a function to ModelClient.
type ClientFunc func(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error)

func (f ClientFunc) CompleteText(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error) {
	return f(ctx, systemPrompt, userPrompt, opts)
}
