package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient implementa Synthesizer usando una API OpenAI-compatible de audio.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	voice   string
	client  *http.Client
	logger  logger
}

type logger interface {
	Printf(format string, v ...interface{})
}

// NewHTTPClient construye un cliente apuntando al endpoint de síntesis de voz.
func NewHTTPClient(baseURL, apiKey, model, voice string, log any) *HTTPClient {
	l, _ := log.(logger)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		voice:   voice,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  l,
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Synthesize nunca devuelve error al caller: cualquier fallo se reduce a
// Failed y la conversación de texto sigue su curso.
func (c *HTTPClient) Synthesize(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Skipped()
	}

	bodyBytes, err := json.Marshal(speechRequest{
		Model: c.model,
		Voice: c.voice,
		Input: text,
	})
	if err != nil {
		return Failed(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(bodyBytes))
	if err != nil {
		return Failed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Printf("tts error status %d: %s", resp.StatusCode, string(audio))
		}
		return Failed(fmt.Errorf("tts http error: status=%d", resp.StatusCode))
	}

	if len(audio) == 0 {
		return Failed(fmt.Errorf("tts empty audio"))
	}

	return Synthesized(base64.StdEncoding.EncodeToString(audio))
}
