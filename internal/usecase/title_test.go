//go:build !integration

package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"wellness-companion/internal/domain/model"
)

func msgs(pairs ...model.Message) []model.Message { return pairs }

func user(text string) model.Message      { return model.NewMessage(model.SenderUser, text) }
func assistant(text string) model.Message { return model.NewMessage(model.SenderAssistant, text) }

func TestSynthesizeTitle(t *testing.T) {
	cases := []struct {
		name     string
		messages []model.Message
		want     string
	}{
		{"empty log", nil, DefaultTitle},
		{"greeting only", msgs(assistant(GreetingText)), DefaultTitle},
		{
			"mood rating",
			msgs(assistant(GreetingText), user("7")),
			"Mood Check: 7/10",
		},
		{
			"mood rating with whitespace",
			msgs(assistant(GreetingText), user("  10 ")),
			"Mood Check: 10/10",
		},
		{
			"number out of mood range is plain text",
			msgs(assistant(GreetingText), user("42")),
			"42",
		},
		{
			"short text verbatim",
			msgs(assistant(GreetingText), user("Feeling stuck at work")),
			"Feeling stuck at work",
		},
		{
			"first sentence wins",
			msgs(assistant(GreetingText), user("Bad day. It started with the commute and got worse")),
			"Bad day",
		},
		{
			"long first sentence is truncated",
			msgs(assistant(GreetingText), user("I have been thinking a lot about how things have been going lately and I cannot quite put it into words")),
			"I have been thinking a lot abo...",
		},
		{
			"first user message fixes the title",
			msgs(assistant(GreetingText), user("3"), assistant("Thanks"), user("everything feels heavy today")),
			"Mood Check: 3/10",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SynthesizeTitle(tc.messages); got != tc.want {
				t.Fatalf("SynthesizeTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSynthesizeTitleTruncationBound(t *testing.T) {
	long := strings.Repeat("a", 120)
	got := SynthesizeTitle(msgs(assistant(GreetingText), user(long)))
	if len(got) != titleLimit+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("got %q (len %d)", got, len(got))
	}
}

func TestSynthesizeTitleTruncatesOnRunes(t *testing.T) {
	long := strings.Repeat("é", 40)
	got := SynthesizeTitle(msgs(assistant(GreetingText), user(long)))
	if !utf8.ValidString(got) {
		t.Fatalf("title is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("é", titleLimit) + "..."; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
