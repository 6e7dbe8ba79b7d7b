package openrouter

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/procurement-tracker/internal/llm"
)

const Name = "openrouter"

type Config struct {
	APIKey      string // if empty, falls back to env OPENROUTER_API_KEY
	BaseURL     string // default https://openrouter.ai/api/v1
	Model       string
	Temperature float32
	Timeout     time.Duration
	Referer     string // sent as HTTP-Referer for OpenRouter attribution
}

// Client implements llm.Provider against OpenRouter. The API is chat-completions
// compatible but JSON mode is not honoured by every routed model, so the instruction
// alone asks for JSON and the extractor strips fences.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "google/gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
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
	headers := map[string]string{}
	if c.cfg.Referer != "" {
		headers["HTTP-Referer"] = c.cfg.Referer
	}
	content, err := llm.SendChat(ctx, c.httpClient, llm.ChatRequest{
		URL:    strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions",
		APIKey: c.cfg.APIKey,
		Body: map[string]any{
			"model":       c.cfg.Model,
			"temperature": c.cfg.Temperature,
			"messages":    p.Messages(),
		},
		Headers: headers,
	}, c.log)
	if err != nil {
		c.log.Error("llm.openrouter.error", "model", c.cfg.Model, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	c.log.Info("llm.openrouter.ok", "model", c.cfg.Model, "content_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}
