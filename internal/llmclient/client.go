// File: internal/llmclient/client.go
package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

const maxAttempts = 3

// Client wraps the genai SDK with per-request timeouts and retry. The
// planner and proposer share one client and differ only in model and prompt.
type Client struct {
	cli    *genai.Client
	cfg    config.LLMConfig
	logger *zap.Logger
}

// NewClient connects to the Gemini API. The key comes from config, which
// binds the GEMINI_API_KEY environment variable.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY)")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{
		cli:    cli,
		cfg:    cfg,
		logger: logger.Named("llmclient"),
	}, nil
}

// generate sends one request and returns the concatenated text of the first
// candidate. Transient failures are retried with exponential backoff.
func (c *Client) generate(ctx context.Context, model string, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{{Parts: parts}}
	genCfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(300*(1<<uint(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		resp, err := c.cli.Models.GenerateContent(reqCtx, model, contents, genCfg)
		cancel()

		if err != nil {
			lastErr = err
			c.logger.Warn("Model call failed.",
				zap.String("model", model), zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		text := flattenResponse(resp)
		if text == "" {
			lastErr = fmt.Errorf("model returned no text candidates")
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("model %s failed after %d attempts: %w", model, maxAttempts, lastErr)
}

// flattenResponse joins the text parts of the first candidate.
func flattenResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
