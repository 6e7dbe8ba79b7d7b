package openai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/procurement-tracker/internal/llm"
)

const Name = "openai"

// Client implements llm.Provider on the chat/completions endpoint in JSON mode.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("provider", Name),
	}
}

func (c *Client) Name() string { return Name }

// Configured reports whether an API key was found.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

func (c *Client) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	start := time.Now()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        p.Messages(),
	}
	content, err := llm.SendChat(ctx, c.httpClient, llm.ChatRequest{
		URL:    strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions",
		APIKey: c.cfg.APIKey,
		Body:   body,
	}, c.log)
	if err != nil {
		c.log.Error("llm.openai.error", "model", c.cfg.Model, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	c.log.Info("llm.openai.ok", "model", c.cfg.Model, "content_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}
