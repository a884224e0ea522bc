package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// errBudget stops the stream once the caller has accepted enough tokens.
var errBudget = errors.New("token budget reached")

// Ollama streams completions from a local Ollama server.
type Ollama struct {
	URL    string
	Model  string
	Client *http.Client
}

// NewOllama creates an Ollama backend
func NewOllama(url, model string) *Ollama {
	if url == "" {
		url = "http://localhost:11434"
	}
	return &Ollama{
		URL:    strings.TrimRight(url, "/"),
		Model:  model,
		Client: http.DefaultClient,
	}
}

func (o *Ollama) Name() string {
	return "ollama"
}

type ollamaChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Stream posts to /api/generate and relays each streamed chunk. A reader
// goroutine decodes the NDJSON body while the caller's goroutine consumes
// tokens; both are joined before Stream returns.
func (o *Ollama) Stream(ctx context.Context, req Request, emit func(string) bool) error {
	model := req.Model
	if model == "" {
		model = o.Model
	}
	payload := map[string]interface{}{
		"model":  model,
		"prompt": req.Prompt,
		"stream": true,
	}
	if req.System != "" {
		payload["system"] = req.System
	}
	if req.MaxTokens > 0 {
		payload["options"] = map[string]interface{}{"num_predict": req.MaxTokens}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ollama request: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	httpReq, err := http.NewRequestWithContext(gctx, http.MethodPost, o.URL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(httpReq)
	if err != nil {
		return fmt.Errorf("ollama is unreachable at %s: %w", o.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ollama generate failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	tokens := make(chan string)

	g.Go(func() error {
		defer close(tokens)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var chunk ollamaChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				return fmt.Errorf("decode ollama chunk: %w", err)
			}
			if chunk.Error != "" {
				return fmt.Errorf("ollama: %s", chunk.Error)
			}
			if chunk.Response != "" {
				select {
				case tokens <- chunk.Response:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if chunk.Done {
				return nil
			}
		}
		return scanner.Err()
	})

	g.Go(func() error {
		for tok := range tokens {
			if !emit(tok) {
				return errBudget
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errBudget) {
		return err
	}
	return nil
}

func (o *Ollama) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}
