// Package client provides a Go client for the voice-service HTTP API.
//
// It covers the full request surface of the service: health probing,
// speaker inventory, and synthesis, returning raw audio bytes the caller
// writes to disk or streams onward.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// API paths.
const (
	pathHealth   = "/health"
	pathSpeakers = "/speakers"
	pathTTS      = "/tts"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
)

var (
	// ErrEmptyText is returned when a synthesis request carries no text.
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyAudio is returned when the service responds with no audio data.
	ErrEmptyAudio = errors.New("received empty audio data")
)

// Client talks to a running voice-service instance over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// SynthesisRequest is the JSON payload for POST /tts.
type SynthesisRequest struct {
	// Text is the input to synthesize. Must be non-empty.
	Text string `json:"text"`

	// Speaker names a reference voice registered on the server.
	Speaker string `json:"speaker"`

	// Language is the ISO language code. The server defaults to "en"
	// when empty.
	Language string `json:"language,omitempty"`

	// Format selects the artifact encoding, "wav" or "mp3". The server
	// defaults to "wav" when empty.
	Format string `json:"format,omitempty"`
}

// Health is the GET /health payload.
type Health struct {
	Status string `json:"status"`
	Device string `json:"device"`
}

// errorResponse mirrors the service's error envelope.
type errorResponse struct {
	Detail string `json:"detail"`
}

// speakersResponse mirrors the GET /speakers payload.
type speakersResponse struct {
	Speakers []string `json:"speakers"`
	Count    int      `json:"count"`
}

// New creates a Client. The baseURL includes protocol and port, e.g.
// "http://localhost:8000". The timeout applies to every request; size it
// for synthesis, which can run for minutes on long texts.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize sends a synthesis request and returns the audio bytes and the
// media type reported by the service (audio/wav or audio/mpeg).
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, string, error) {
	if req.Text == "" {
		return nil, "", ErrEmptyText
	}

	requestBody, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", marshalErr)
	}

	httpReq, reqErr := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+pathTTS,
		bytes.NewReader(requestBody),
	)
	if reqErr != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", reqErr)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, "audio/*")

	resp, doErr := c.httpClient.Do(httpReq)
	if doErr != nil {
		return nil, "", fmt.Errorf(
			"failed to reach voice service at %s: %w", c.baseURL, doErr)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", c.parseErrorResponse(resp)
	}

	audioData, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, "", fmt.Errorf("failed to read audio data: %w", readErr)
	}

	if len(audioData) == 0 {
		return nil, "", ErrEmptyAudio
	}

	return audioData, resp.Header.Get(headerContentType), nil
}

// Speakers lists the reference voices registered on the server.
func (c *Client) Speakers(ctx context.Context) ([]string, error) {
	resp, getErr := c.get(ctx, pathSpeakers)
	if getErr != nil {
		return nil, getErr
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var payload speakersResponse

	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode speakers response: %w", decodeErr)
	}

	return payload.Speakers, nil
}

// HealthCheck verifies the service is up and returns its reported status
// and device. Probe before submitting large workloads to fail fast.
func (c *Client) HealthCheck(ctx context.Context) (Health, error) {
	resp, getErr := c.get(ctx, pathHealth)
	if getErr != nil {
		return Health{}, getErr
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	var payload Health

	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)
	if decodeErr != nil {
		return Health{}, fmt.Errorf("failed to decode health response: %w", decodeErr)
	}

	return payload, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, reqErr := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if reqErr != nil {
		return nil, fmt.Errorf("failed to create request: %w", reqErr)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf(
			"failed to reach voice service at %s: %w", c.baseURL, doErr)
	}

	return resp, nil
}

// parseErrorResponse decodes the service's JSON error envelope, falling
// back to the raw body so diagnostics survive non-JSON failures. The body
// is read once up front: a failed decode would otherwise consume it and
// leave nothing for the fallback.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("voice service returned non-OK status %s, "+
			"and reading its body failed: %w", resp.Status, readErr)
	}

	var payload errorResponse

	unmarshalErr := json.Unmarshal(body, &payload)
	if unmarshalErr == nil && payload.Detail != "" {
		return fmt.Errorf("voice service error (%s): %s", resp.Status, payload.Detail)
	}

	return fmt.Errorf("voice service returned non-OK status: %s, body: %s",
		resp.Status, string(body))
}
