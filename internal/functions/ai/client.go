package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured indicates the AI client is not configured
	ErrNotConfigured = errors.New("AI client not configured")
	// ErrAPICallFailed indicates the AI API call failed
	ErrAPICallFailed = errors.New("AI API call failed")
	// ErrInvalidResponse indicates an invalid response from the AI API
	ErrInvalidResponse = errors.New("invalid AI API response")
)

// Provider represents an AI provider
type Provider string

const (
	// ProviderOpenAI represents OpenAI API
	ProviderOpenAI Provider = "openai"
	// ProviderClaude represents Anthropic Claude API
	ProviderClaude Provider = "claude"
	// ProviderCustom represents a custom OpenAI-compatible endpoint
	ProviderCustom Provider = "custom"
)

// Client handles AI API communication for email enrichment
type Client struct {
	provider   Provider
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	configured bool
}

// NewClient creates a new AI Client instance
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Configure configures the AI client with provider settings
func (c *Client) Configure(provider, apiKey, model, baseURL string) {
	c.provider = Provider(strings.ToLower(provider))
	c.apiKey = apiKey
	c.model = model
	c.configured = apiKey != ""

	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
		return
	}

	switch c.provider {
	case ProviderClaude:
		c.baseURL = "https://api.anthropic.com/v1"
		if c.model == "" {
			c.model = "claude-3-haiku-20240307"
		}
	default:
		c.provider = ProviderOpenAI
		c.baseURL = "https://api.openai.com/v1"
		if c.model == "" {
			c.model = "gpt-4o-mini"
		}
	}
}

// SetBaseURL sets a custom base URL for the API
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// IsConfigured returns whether the client is configured
func (c *Client) IsConfigured() bool {
	return c.configured && c.apiKey != ""
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Invoke sends one system+user prompt pair and returns the raw model
// output. Callers own parsing and validation of the response text.
func (c *Client) Invoke(systemPrompt, userPrompt string) (string, error) {
	return c.sendChatRequest([]ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}

// sendChatRequest sends a chat completion request to the AI API
func (c *Client) sendChatRequest(messages []ChatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   2000,
		Temperature: 0.3,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")

	switch c.provider {
	case ProviderClaude:
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(respBody))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAPICallFailed, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrInvalidResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}
