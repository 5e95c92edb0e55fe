package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://api.elevenlabs.io"

var ErrVoiceNotFound = errors.New("voice not found")

type Voice struct {
	ID   string `json:"voice_id"`
	Name string `json:"name"`
}

// FindVoice returns the first voice whose name matches case-insensitively.
func FindVoice(voices []Voice, name string) (Voice, error) {
	for _, v := range voices {
		if strings.EqualFold(v.Name, name) {
			return v, nil
		}
	}
	return Voice{}, ErrVoiceNotFound
}

type ElevenLabs struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewElevenLabs(apiKey string, httpClient *http.Client) *ElevenLabs {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    httpClient,
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func (c *ElevenLabs) WithBaseURL(u string) *ElevenLabs {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Voices fetches the full voice catalog.
func (c *ElevenLabs) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	var parsed struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	return parsed.Voices, nil
}

// Synthesize returns MP3 audio for text.
func (c *ElevenLabs) Synthesize(ctx context.Context, voiceID, modelID, text string) ([]byte, error) {
	payload, err := json.Marshal(struct {
		Text    string `json:"text"`
		ModelID string `json:"model_id"`
	}{Text: text, ModelID: modelID})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := c.baseURL + "/v1/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	audio, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("synthesize: empty audio")
	}
	return audio, nil
}

func (c *ElevenLabs) do(req *http.Request) ([]byte, error) {
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bad status %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return body, nil
}
