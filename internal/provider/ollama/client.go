package ollama

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

// Client talks to a local Ollama instance. It implements both
// port.CompletionProvider (/api/generate) and port.Embedder (/api/embed).
type Client struct {
	baseURL    string
	embedModel string
	client     *http.Client
}

// NewClient creates an Ollama client from config.
func NewClient(cfg config.OllamaConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 600 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		embedModel: cfg.EmbedModel,
		client:     &http.Client{Timeout: timeout},
	}
}

// generateRequest is the /api/generate payload.
type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateChunk is one /api/generate response object.
type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete calls /api/generate. With stream=true Ollama emits one JSON object
// per line; each becomes a Fragment carrying both the textual payload and the
// verbatim chunk. With stream=false the single response object is delivered
// as one fragment.
func (c *Client) Complete(ctx context.Context, req port.CompletionRequest, fn port.FragmentFunc) error {
	payload := generateRequest{
		Model:  req.Model,
		System: req.Prompt.System,
		Prompt: req.Prompt.User,
		Stream: req.Stream,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: calling ollama: %v", domain.ErrCompletion, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: ollama returned status %d: %s", domain.ErrCompletion, resp.StatusCode, string(detail))
	}

	if !req.Stream {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading ollama response: %v", domain.ErrCompletion, err)
		}
		return emit(raw, fn)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := emit(line, fn); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading ollama stream: %v", domain.ErrCompletion, err)
	}
	return nil
}

func emit(raw []byte, fn port.FragmentFunc) error {
	var chunk generateChunk
	if err := json.Unmarshal(raw, &chunk); err != nil {
		return fmt.Errorf("%w: decoding ollama fragment: %v", domain.ErrCompletion, err)
	}
	frag := domain.Fragment{
		Response: chunk.Response,
		Raw:      json.RawMessage(append([]byte(nil), raw...)),
	}
	return fn(frag)
}

// embedRequest is the /api/embed payload.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the /api/embed response.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed maps texts into vectors using the configured embedding model.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.embedModel, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling ollama embed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embed returned status %d: %s", resp.StatusCode, string(raw))
	}

	var out embedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed returned %d vectors for %d inputs", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}
