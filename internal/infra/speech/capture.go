// File: internal/infra/speech/capture.go
package speech

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wellness-companion/internal/domain/ports/adapter"
	"wellness-companion/internal/infra/metrics"
)

// Capture failure taxonomy. Each maps to an assistant-voiced message via
// UserMessage; ErrAborted is swallowed entirely.
var (
	ErrPermissionDenied   = errors.New("speech: microphone access denied")
	ErrServiceUnavailable = errors.New("speech: recognition service unavailable")
	ErrNetwork            = errors.New("speech: network failure")
	ErrNoSpeech           = errors.New("speech: no speech detected")
	ErrAborted            = errors.New("speech: capture aborted")
)

// UserMessage renders a capture failure as an assistant chat message. Aborts
// return "" so callers drop them silently.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrAborted):
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Microphone access was denied. Please enable microphone access in your browser settings."
	case errors.Is(err, ErrServiceUnavailable):
		return "Speech recognition service is not available in your browser."
	case errors.Is(err, ErrNetwork):
		return "Network error occurred. Please check your internet connection."
	case errors.Is(err, ErrNoSpeech):
		return "No speech was detected. Please try again."
	default:
		return "An error occurred with speech recognition. Please try again."
	}
}

// Service runs bounded speech captures. One capture per chat session at a
// time; starting a new one aborts the previous.
type Service struct {
	transcriber adapter.Transcriber
	timeout     time.Duration
	log         *zerolog.Logger

	mu     sync.Mutex
	active map[string]*Capture // by session id
}

func NewService(transcriber adapter.Transcriber, timeout time.Duration, logger *zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		transcriber: transcriber,
		timeout:     timeout,
		log:         logger,
		active:      make(map[string]*Capture),
	}
}

// Start begins a capture for the session, aborting an in-flight one first.
func (s *Service) Start(sessionID, format, language string) *Capture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.active[sessionID]; ok {
		prev.abort()
	}
	c := &Capture{
		svc:       s,
		sessionID: sessionID,
		format:    format,
		language:  language,
		deadline:  time.Now().Add(s.timeout),
	}
	s.active[sessionID] = c
	return c
}

func (s *Service) release(c *Capture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[c.sessionID] == c {
		delete(s.active, c.sessionID)
	}
}

// Capture accumulates audio chunks for one recognition attempt.
type Capture struct {
	svc       *Service
	sessionID string
	format    string
	language  string
	deadline  time.Time

	mu      sync.Mutex
	buf     bytes.Buffer
	aborted bool
	done    bool
}

// Push appends an audio chunk. Chunks after abort or finish are dropped.
func (c *Capture) Push(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aborted {
		return ErrAborted
	}
	if c.done {
		return errors.New("speech: capture already finished")
	}
	if time.Now().After(c.deadline) {
		return ErrNoSpeech
	}
	_, err := c.buf.Write(chunk)
	return err
}

// Finish transcribes the buffered audio. Empty audio or an expired deadline
// count as no-speech.
func (c *Capture) Finish(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.aborted {
		c.mu.Unlock()
		metrics.IncSpeechCapture("aborted")
		return "", ErrAborted
	}
	c.done = true
	audio := c.buf.Bytes()
	expired := time.Now().After(c.deadline)
	c.mu.Unlock()
	defer c.svc.release(c)

	if c.svc.transcriber == nil {
		metrics.IncSpeechCapture("error")
		return "", ErrServiceUnavailable
	}
	if len(audio) == 0 || expired {
		if expired {
			metrics.IncSpeechCapture("timeout")
		} else {
			metrics.IncSpeechCapture("error")
		}
		return "", ErrNoSpeech
	}

	ctx, cancel := context.WithDeadline(ctx, c.deadline.Add(c.svc.timeout))
	defer cancel()

	text, err := c.svc.transcriber.Transcribe(ctx, audio, c.format, c.language)
	if err != nil {
		c.svc.log.Warn().Err(err).Str("session_id", c.sessionID).Msg("transcription failed")
		metrics.IncSpeechCapture("error")
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrNetwork
		}
		return "", err
	}
	if text == "" {
		metrics.IncSpeechCapture("error")
		return "", ErrNoSpeech
	}
	metrics.IncSpeechCapture("ok")
	return text, nil
}

// Abort cancels the capture; the result is discarded without a user-visible
// error.
func (c *Capture) Abort() {
	c.abort()
	c.svc.release(c)
	metrics.IncSpeechCapture("aborted")
}

func (c *Capture) abort() {
	c.mu.Lock()
	c.aborted = true
	c.mu.Unlock()
}
