package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

var (
	ErrMissingAPIKey = errors.New("missing api key")
	ErrNoChoices     = errors.New("no choices in response")
)

// ChatRequest is an OpenAI-compatible chat-completions call.
type ChatRequest struct {
	URL     string
	APIKey  string
	Body    map[string]any
	Headers map[string]string
}

// SendChat posts req and returns the first choice's content. Non-2xx statuses, API-level
// error objects and empty choice lists are errors; the caller wraps them as provider failures.
func SendChat(ctx context.Context, client *http.Client, req ChatRequest, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	headers := map[string]string{"Authorization": "Bearer " + req.APIKey}
	for k, v := range req.Headers {
		headers[k] = v
	}

	raw, status, err := SendJSON(ctx, client, req.URL, req.Body, headers, logger)
	if err != nil {
		if status != 0 {
			return "", fmt.Errorf("status %d: %s: %w", status, utils.Truncate(string(raw), 300), err)
		}
		return "", err
	}

	var cc ChatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if cc.Error != nil {
		return "", fmt.Errorf("api error: %s", cc.Error.Message)
	}
	if len(cc.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

// SendJSON sends a JSON request to a full URL with optional headers and returns the raw response body.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		logger.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("llm.http.request", "req_id", reqID, "url", url, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
