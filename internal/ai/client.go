// Package ai is a thin HTTP client for the Stratus AI sidecar, which hosts
// the webcam-frame classifier and the assistant chat model behind an
// OpenAI-compatible API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stratushr/stratus-backend/internal/config"
)

// Client talks to the AI sidecar. Every request carries the configured
// timeout so a stalled sidecar can never hang a proctoring tick or an
// assistant reply.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient builds a client from the application configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.AIBaseURL, "/"),
		apiKey:  cfg.AIAPIKey,
		model:   cfg.AIModel,
		http:    &http.Client{Timeout: cfg.AITimeout},
	}
}

type analyzeFrameRequest struct {
	Model string `json:"model"`
	Frame string `json:"frame"`
}

type analyzeFrameResponse struct {
	IsViolation bool   `json:"is_violation"`
	Reason      string `json:"reason"`
}

// AnalyzeFrame classifies a single base64-encoded webcam frame. It returns
// whether the frame shows a proctoring violation and a short reason when it
// does. Implements the session controller's FrameAnalyzer contract.
func (c *Client) AnalyzeFrame(ctx context.Context, frameBase64 string) (bool, string, error) {
	body, err := json.Marshal(analyzeFrameRequest{Model: c.model, Frame: frameBase64})
	if err != nil {
		return false, "", fmt.Errorf("encode frame request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/frames/analyze", bytes.NewReader(body))
	if err != nil {
		return false, "", fmt.Errorf("build frame request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("frame analysis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, "", fmt.Errorf("frame analysis returned %d: %s", resp.StatusCode, payload)
	}

	var out analyzeFrameResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, "", fmt.Errorf("decode frame response: %w", err)
	}

	return out.IsViolation, out.Reason, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
