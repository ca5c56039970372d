package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	elevenLabsURL  = "https://api.elevenlabs.io"
	defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
)

type TTSService struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
}

func NewTTSService(apiKey, voiceID string) *TTSService {
	if voiceID == "" {
		voiceID = defaultVoiceID
	}

	return &TTSService{
		apiKey:     apiKey,
		voiceID:    voiceID,
		baseURL:    elevenLabsURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (tts *TTSService) GenerateAudio(ctx context.Context, text string) ([]byte, error) {
	url := tts.baseURL + "/v1/text-to-speech/" + tts.voiceID

	requestBody := map[string]interface{}{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]interface{}{
			"stability":         0.5,
			"similarity_boost":  0.8,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}

	jsonData, err := jsoniter.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", tts.apiKey)

	resp, err := tts.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ElevenLabs API error: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// SynthesizeAlarm writes a spoken alarm clip next to soundPath and returns
// its path. An existing clip is reused.
func (tts *TTSService) SynthesizeAlarm(ctx context.Context, soundPath, text string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(soundPath), filepath.Ext(soundPath))
	target := filepath.Join(filepath.Dir(soundPath), base+"-tts.mp3")

	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	clip, err := tts.GenerateAudio(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize alarm: %w", err)
	}
	if len(clip) == 0 {
		return "", fmt.Errorf("failed to synthesize alarm: empty clip")
	}

	if err := os.WriteFile(target, clip, 0o644); err != nil {
		return "", fmt.Errorf("failed to write alarm clip: %w", err)
	}
	return target, nil
}
