// Package gemini calls the Google generative language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/vivabem/vivabem-server/internal/config"
	"github.com/vivabem/vivabem-server/internal/errors"
	"github.com/vivabem/vivabem-server/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// placeholderKey is the value shipped in sample configs; treated as unset.
const placeholderKey = "SUA_KEY_AQUI"

// Client provides access to the generateContent endpoint
type Client struct {
	cfg     config.GeminiConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new Gemini client
func NewClient(cfg config.GeminiConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1.0
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "gemini",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger.Named("gemini"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the first candidate's text.
// A missing or placeholder API key fails before any network I/O.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" || c.cfg.APIKey == placeholderKey {
		return "", errors.ErrKeyMissing
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, errors.ErrRateLimited.Code, "rate limiter wait aborted")
	}

	text, err := c.breaker.Execute(func() (string, error) {
		return c.doGenerate(ctx, prompt)
	})
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues("error").Inc()
		if errors.IsAppError(err) {
			return "", err
		}
		return "", errors.Wrap(err, errors.ErrUpstream.Code, "generate call failed")
	}

	metrics.UpstreamCalls.WithLabelValues("success").Inc()
	return text, nil
}

func (c *Client) doGenerate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.ErrEmptyCompletion
	}

	c.logger.Debug("Generate completed",
		zap.String("model", c.cfg.Model),
		zap.Duration("latency", time.Since(start)),
	)
	return result.Candidates[0].Content.Parts[0].Text, nil
}
