package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doclens/internal/config"
	"doclens/internal/domain"
	"doclens/internal/port"
)

const maxLineBytes = 1 << 20

// Client talks to the Groq cloud API, which exposes OpenAI-compatible chat
// completions. Implements port.CompletionProvider.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Groq client from config.
func NewClient(cfg config.GroqConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete calls /chat/completions. Streaming responses arrive as SSE
// "data: {json}" lines terminated by "data: [DONE]"; each data payload
// becomes one Fragment.
func (c *Client) Complete(ctx context.Context, req port.CompletionRequest, fn port.FragmentFunc) error {
	payload := chatRequest{
		Model:  req.Model,
		Stream: req.Stream,
		Messages: []chatMessage{
			{Role: "system", Content: req.Prompt.System},
			{Role: "user", Content: req.Prompt.User},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: calling groq: %v", domain.ErrCompletion, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: groq returned status %d: %s", domain.ErrCompletion, resp.StatusCode, string(detail))
	}

	if !req.Stream {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading groq response: %v", domain.ErrCompletion, err)
		}
		var out chatResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("%w: decoding groq response: %v", domain.ErrCompletion, err)
		}
		if len(out.Choices) == 0 {
			return fmt.Errorf("%w: groq returned no choices", domain.ErrCompletion)
		}
		return fn(domain.Fragment{
			Response: out.Choices[0].Message.Content,
			Raw:      json.RawMessage(raw),
		})
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("%w: decoding groq fragment: %v", domain.ErrCompletion, err)
		}
		var content string
		if len(chunk.Choices) > 0 {
			content = chunk.Choices[0].Delta.Content
		}
		if err := fn(domain.Fragment{Response: content, Raw: json.RawMessage(data)}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading groq stream: %v", domain.ErrCompletion, err)
	}
	return nil
}
