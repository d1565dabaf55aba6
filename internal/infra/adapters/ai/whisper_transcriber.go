// File: internal/infra/adapters/ai/whisper_transcriber.go
package ai

import (
	"bytes"
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"wellness-companion/internal/domain/ports/adapter"
)

var _ adapter.Transcriber = (*WhisperTranscriber)(nil)

// WhisperTranscriber converts captured audio to text with the OpenAI
// transcription endpoint.
type WhisperTranscriber struct {
	client openai.Client
}

func NewWhisperTranscriber(apiKey, baseURL string) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &WhisperTranscriber{client: openai.NewClient(opts...)}, nil
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, format, language string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio")
	}
	filename := "audio." + format
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, "audio/"+format),
		Model: openai.AudioModelWhisper1,
	}
	if language != "" {
		params.Language = openai.String(language)
	}
	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
