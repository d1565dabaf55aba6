package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"wellness-companion/internal/domain/model"
)

const (
	// DefaultTitle labels a session that has nothing beyond the seed greeting.
	DefaultTitle = "New Chat"

	titleLimit = 30
)

// SynthesizeTitle derives a short human-readable label for a conversation
// from its message log. It depends only on the first user message, so the
// title is stable no matter how the transcript grows afterwards:
//
//   - at most one message (the seed greeting): "New Chat"
//   - first user message is a mood rating 1-10: "Mood Check: N/10"
//   - short text (<=30 chars): the text verbatim
//   - otherwise: the first sentence, hard-truncated to 30 chars + "..."
//     when the sentence itself is still too long.
func SynthesizeTitle(messages []model.Message) string {
	if len(messages) <= 1 {
		return DefaultTitle
	}

	var userText string
	for _, m := range messages {
		if m.Sender == model.SenderUser {
			userText = m.Text
			break
		}
	}

	if v, err := strconv.Atoi(strings.TrimSpace(userText)); err == nil && v >= model.MoodMin && v <= model.MoodMax {
		return fmt.Sprintf("Mood Check: %d/10", v)
	}

	if utf8.RuneCountInString(userText) <= titleLimit {
		return userText
	}

	title := firstSentence(userText)
	// Cut on runes, not bytes, so multi-byte text stays valid UTF-8.
	if r := []rune(title); len(r) > titleLimit {
		title = string(r[:titleLimit]) + "..."
	}
	return title
}

func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		return s[:i]
	}
	return s
}
