// Package voice turns recorded audio into composer text.
//
// A Recognizer runs at most one capture session at a time. Stopping a session
// delivers exactly one final transcript to the sink; cancelling delivers
// nothing. Transcription errors go to the error callback, never to the sink,
// so a failed capture can never send a message.
package voice

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Engine converts one audio file into text.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperEngine transcribes audio through the OpenAI audio endpoint.
type WhisperEngine struct {
	client   *openai.Client
	model    string
	language string
}

var _ Engine = (*WhisperEngine)(nil)

// NewWhisperEngine builds an engine using model (e.g. "whisper-1").
// language is an optional ISO-639-1 hint; empty lets the model detect it.
func NewWhisperEngine(apiKey, model, language string) *WhisperEngine {
	return &WhisperEngine{
		client:   openai.NewClient(apiKey),
		model:    model,
		language: language,
	}
}

func (e *WhisperEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	req := openai.AudioRequest{
		Model:    e.model,
		FilePath: audioPath,
		Language: e.language,
	}

	resp, err := e.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}
