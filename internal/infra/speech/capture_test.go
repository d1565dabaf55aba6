//go:build !integration

package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeTranscriber struct {
	text string
	err  error
	got  []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, format, language string) (string, error) {
	f.got = audio
	return f.text, f.err
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestCaptureTranscribesBufferedAudio(t *testing.T) {
	ft := &fakeTranscriber{text: "I had a rough day"}
	svc := NewService(ft, time.Minute, nopLogger())

	c := svc.Start("sess-1", "webm", "en-US")
	if err := c.Push([]byte("chunk1")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := c.Push([]byte("chunk2")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	text, err := c.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if text != "I had a rough day" {
		t.Errorf("text = %q", text)
	}
	if string(ft.got) != "chunk1chunk2" {
		t.Errorf("audio = %q", ft.got)
	}
}

func TestCaptureEmptyAudioIsNoSpeech(t *testing.T) {
	svc := NewService(&fakeTranscriber{}, time.Minute, nopLogger())
	c := svc.Start("sess-1", "webm", "en-US")

	if _, err := c.Finish(context.Background()); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestCaptureAbortSwallowsResult(t *testing.T) {
	svc := NewService(&fakeTranscriber{text: "hello"}, time.Minute, nopLogger())
	c := svc.Start("sess-1", "webm", "en-US")
	_ = c.Push([]byte("audio"))
	c.Abort()

	if _, err := c.Finish(context.Background()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if msg := UserMessage(ErrAborted); msg != "" {
		t.Errorf("aborted capture must not surface a message, got %q", msg)
	}
}

func TestStartAbortsPreviousCapture(t *testing.T) {
	svc := NewService(&fakeTranscriber{text: "x"}, time.Minute, nopLogger())
	first := svc.Start("sess-1", "webm", "en-US")
	_ = svc.Start("sess-1", "webm", "en-US")

	if err := first.Push([]byte("late")); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted on stale capture, got %v", err)
	}
}

func TestCaptureTimeoutIsNoSpeech(t *testing.T) {
	svc := NewService(&fakeTranscriber{text: "x"}, time.Nanosecond, nopLogger())
	c := svc.Start("sess-1", "webm", "en-US")
	time.Sleep(time.Millisecond)

	if err := c.Push([]byte("audio")); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech after deadline, got %v", err)
	}
	if _, err := c.Finish(context.Background()); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestUserMessageTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrPermissionDenied, "Microphone access was denied. Please enable microphone access in your browser settings."},
		{ErrServiceUnavailable, "Speech recognition service is not available in your browser."},
		{ErrNetwork, "Network error occurred. Please check your internet connection."},
		{ErrNoSpeech, "No speech was detected. Please try again."},
		{errors.New("boom"), "An error occurred with speech recognition. Please try again."},
	}
	for _, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
