package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to an Ollama-compatible chat completion endpoint. When the
// primary model fails, the configured fallback model is tried once before
// the error is surfaced.
type Client struct {
	endpoint      string
	model         string
	fallbackModel string
	temperature   float64
	client        *http.Client
	log           *zap.Logger
	openaiShape   bool
}

// Config configures the chat client.
type Config struct {
	BaseURL       string
	Model         string
	FallbackModel string
	Temperature   float64
	Timeout       time.Duration
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:11434"
	}
	openaiShape := strings.HasSuffix(base, "/v1")
	endpoint := base + "/api/chat"
	if openaiShape {
		endpoint = base + "/chat/completions"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2:1b"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		endpoint:      endpoint,
		model:         model,
		fallbackModel: cfg.FallbackModel,
		temperature:   cfg.Temperature,
		client:        &http.Client{Timeout: timeout},
		log:           log,
		openaiShape:   openaiShape,
	}
}

// Complete sends the prompt as a single user message and returns the
// model's reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	answer, err := c.complete(ctx, c.model, prompt)
	if err == nil {
		return answer, nil
	}
	if c.fallbackModel == "" || c.fallbackModel == c.model {
		return "", err
	}
	c.log.Warn("chat model failed, trying fallback",
		zap.String("model", c.model),
		zap.String("fallback", c.fallbackModel),
		zap.Error(err))
	answer, ferr := c.complete(ctx, c.fallbackModel, prompt)
	if ferr != nil {
		// The primary failure is the interesting one.
		return "", err
	}
	return answer, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	var body any
	if c.openaiShape {
		body = map[string]any{
			"model":       model,
			"messages":    []message{{Role: "user", Content: prompt}},
			"temperature": c.temperature,
			"stream":      false,
		}
	} else {
		body = map[string]any{
			"model":    model,
			"messages": []message{{Role: "user", Content: prompt}},
			"stream":   false,
			"options":  map[string]any{"temperature": c.temperature},
		}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat request failed: %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	if answer, ok := parseCompletion(payload); ok {
		return answer, nil
	}
	return "", errors.New("no completion returned")
}

func parseCompletion(payload []byte) (string, bool) {
	// Ollama-native shape: { "message": { "content": "..." } }
	var native struct {
		Message message `json:"message"`
	}
	if err := json.Unmarshal(payload, &native); err == nil && native.Message.Content != "" {
		return native.Message.Content, true
	}
	// OpenAI-compatible shape: { "choices": [ { "message": { "content": "..." } } ] }
	var openai struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &openai); err == nil && len(openai.Choices) > 0 {
		return openai.Choices[0].Message.Content, true
	}
	return "", false
}
