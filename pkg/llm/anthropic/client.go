package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/guildbot-ai/guildbot/pkg/llm"
	"github.com/guildbot-ai/guildbot/pkg/models"
)

const apiVersion = "2023-06-01"

// Client calls an Anthropic-style messages endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates a Client. An empty baseURL targets the public API.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Name implements llm.Client.
func (c *Client) Name() string { return "anthropic" }

type errorResponse struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements llm.Client. The messages API takes the system turn as
// a top-level field, so a leading system turn is lifted out of the message
// list before sending.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	body := models.AnthropicRequest{
		Model:     req.Model,
		MaxTokens: req.MaxOutputTokens,
	}
	for _, turn := range req.Messages {
		if turn.Role == models.RoleSystem && body.System == "" && len(body.Messages) == 0 {
			body.System = turn.Content
			continue
		}
		body.Messages = append(body.Messages, turn)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return llm.Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return llm.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return llm.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Result{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(raw)
		var errResp errorResponse
		if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error != nil {
			msg = errResp.Error.Message
		}
		return llm.Result{}, &llm.StatusError{Provider: "anthropic", Code: resp.StatusCode, Message: msg}
	}

	var out models.AnthropicResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return llm.Result{}, fmt.Errorf("anthropic: decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	result := llm.Result{
		Text:         text.String(),
		FinishReason: models.FinishReasonFromStop(out.StopReason),
		Provider:     "anthropic",
	}
	if out.Usage != nil {
		result.Usage = out.Usage.ToUsage()
	}
	return result, nil
}
