package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrProviderFailure covers any transport or provider-side failure. Callers
// see a generic error; details stay in the wrapped message.
var ErrProviderFailure = errors.New("speech provider failure")

const (
	transcribeModel = "whisper-1"
	synthesizeModel = "tts-1"

	// DefaultVoice is used when the caller does not name one.
	DefaultVoice = "nova"
)

// Client talks to an OpenAI-compatible speech API. It streams bytes through
// unmodified: no retries, no caching, no format negotiation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a speech client for the given provider endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Transcribe uploads audio and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("model", transcribeModel); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if err := form.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrProviderFailure, resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return out.Text, nil
}

// Synthesize renders text to mp3 audio with the given voice.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = DefaultVoice
	}

	payload, err := json.Marshal(map[string]string{
		"model":           synthesizeModel,
		"input":           text,
		"voice":           voice,
		"response_format": "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderFailure, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return audio, nil
}
