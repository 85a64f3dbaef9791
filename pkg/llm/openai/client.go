package openai

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

// Client calls an OpenAI-style chat completions endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates a Client. An empty baseURL targets the public API.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
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
func (c *Client) Name() string { return "openai" }

// Complete implements llm.Client. Newer models take the output cap as
// max_completion_tokens; if the endpoint rejects that parameter the call is
// retried once with the legacy max_tokens field.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	res, apiErr, err := c.do(ctx, req, false)
	if err != nil {
		return llm.Result{}, err
	}
	if apiErr != nil {
		if strings.Contains(strings.ToLower(apiErr.Message), "max_completion_tokens") {
			res, apiErr, err = c.do(ctx, req, true)
			if err != nil {
				return llm.Result{}, err
			}
		}
		if apiErr != nil {
			return llm.Result{}, &llm.StatusError{Provider: "openai", Code: apiErr.Code, Message: apiErr.Message}
		}
	}
	return res, nil
}

type apiFailure struct {
	Code    int
	Message string
}

func (c *Client) do(ctx context.Context, req llm.Request, legacyCap bool) (llm.Result, *apiFailure, error) {
	body := models.ChatCompletionRequest{
		Model:    req.Model,
		Messages: req.Messages,
	}
	if legacyCap {
		body.MaxTokens = req.MaxOutputTokens
	} else {
		body.MaxCompletionTokens = req.MaxOutputTokens
	}

	b, err := json.Marshal(body)
	if err != nil {
		return llm.Result{}, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return llm.Result{}, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return llm.Result{}, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Result{}, nil, err
	}

	var out models.ChatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return llm.Result{}, nil, fmt.Errorf("openai: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(raw)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return llm.Result{}, &apiFailure{Code: resp.StatusCode, Message: msg}, nil
	}

	if len(out.Choices) == 0 {
		return llm.Result{}, nil, fmt.Errorf("openai: empty choices")
	}

	choice := out.Choices[0]
	result := llm.Result{
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
		Provider:     "openai",
	}
	if out.Usage != nil {
		result.Usage = *out.Usage
	}
	return result, nil, nil
}
