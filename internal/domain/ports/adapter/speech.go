package adapter

import "context"

// Transcriber converts captured audio into text. Implementations map their
// provider failures onto the capture error taxonomy in internal/infra/speech.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format, language string) (string, error)
}
