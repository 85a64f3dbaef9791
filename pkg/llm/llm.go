package llm

import (
	"context"
	"fmt"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

// Request is a single completion request.
type Request struct {
	Model           string
	Messages        []models.Turn
	MaxOutputTokens int
}

// Result is the outcome of one completed call. FinishReason is one of the
// models.Finish* values; providers that classify differently are mapped.
type Result struct {
	Text         string
	FinishReason string
	Usage        models.Usage
	Provider     string
}

// Client issues completion requests against one provider.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (Result, error)
}

// StatusError is an HTTP-level rejection from a provider.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.Code, e.Message)
}
