package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"taskplanner/internal/config"
	"taskplanner/internal/domain"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls a chat-completion style HTTP API and asks it to answer with
// a JSON document matching ParseResult.
type Client struct {
	client  httpDoer
	baseURL string
	apiKey  string
	model   string
}

// NewClient creates a Client from the AI section of the configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		client:  &http.Client{Timeout: cfg.AI.Timeout},
		baseURL: cfg.AI.BaseURL,
		apiKey:  cfg.AI.APIKey,
		model:   cfg.AI.Model,
	}
}

var _ Parser = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const parsePrompt = `Parse the following command and extract tasks:
%q

Respond with a JSON object:
- tasks: array of {title, description, priority, due_date, estimated_duration}
- message: explanation of what was understood
- confidence: score between 0 and 1

Priority is one of "low", "medium", "high". Due dates are RFC 3339.
Estimated duration is in minutes.`

// ParseCommand sends the command to the completion service and decodes the
// JSON it returns.
func (c *Client) ParseCommand(ctx context.Context, command string) (*ParseResult, error) {
	content, err := c.complete(ctx, fmt.Sprintf(parsePrompt, command), 500)
	if err != nil {
		return nil, err
	}

	var result ParseResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	for i := range result.Tasks {
		if !domain.ValidPriority(result.Tasks[i].Priority) {
			result.Tasks[i].Priority = domain.PriorityMedium
		}
	}
	return &result, nil
}

const suggestPrompt = `Based on this context: %q

Suggest 3-5 relevant tasks that would be helpful.
Respond with a JSON array of {title, description, priority}.`

// SuggestTasks asks the completion service for task proposals fitting the
// given context.
func (c *Client) SuggestTasks(ctx context.Context, contextText string) ([]ParsedTask, error) {
	content, err := c.complete(ctx, fmt.Sprintf(suggestPrompt, contextText), 400)
	if err != nil {
		return nil, err
	}

	var tasks []ParsedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	for i := range tasks {
		if !domain.ValidPriority(tasks[i].Priority) {
			tasks[i].Priority = domain.PriorityMedium
		}
	}
	return tasks, nil
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion service returned %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("decode completion envelope: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("completion service returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
