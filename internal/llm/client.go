package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("llm returned empty response")

// Request is a single-turn generation request.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Client generates text from a prompt. Implementations must honour ctx
// cancellation and return ErrEmptyResponse rather than "".
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}
