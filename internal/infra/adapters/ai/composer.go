// File: internal/infra/adapters/ai/composer.go
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/adapter"
	"wellness-companion/internal/domain/ports/repository"
	"wellness-companion/internal/usecase"
)

// Compile-time check
var _ usecase.AssistantService = (*Composer)(nil)

// Composer turns a raw user message plus session history into a context-aware
// prompt before handing it to the provider. It enriches the system message
// with the user's profile and trims old history turns to stay inside the
// token budget.
type Composer struct {
	adapter     adapter.AssistantAdapter
	users       repository.UserRepository
	model       string
	window      int // recent messages forwarded to the provider
	tokenBudget int
	log         *zerolog.Logger
}

func NewComposer(a adapter.AssistantAdapter, users repository.UserRepository, model string, window, tokenBudget int, logger *zerolog.Logger) *Composer {
	if window <= 0 {
		window = 5
	}
	if tokenBudget <= 0 {
		tokenBudget = 4000
	}
	return &Composer{adapter: a, users: users, model: model, window: window, tokenBudget: tokenBudget, log: logger}
}

func (c *Composer) Reply(ctx context.Context, userID, message string, history []model.Message) (string, error) {
	msgs := c.compose(ctx, userID, message, history)

	// Drop oldest history turns until the prompt fits the budget. The system
	// message and the current user message always survive.
	for len(msgs) > 2 {
		n, err := c.adapter.CountTokens(ctx, c.model, msgs)
		if err != nil || n <= c.tokenBudget {
			break
		}
		msgs = append(msgs[:1], msgs[2:]...)
	}

	return c.adapter.Chat(ctx, c.model, msgs)
}

func (c *Composer) compose(ctx context.Context, userID, message string, history []model.Message) []adapter.Message {
	msgs := []adapter.Message{{Role: "system", Content: c.systemPrompt(ctx, userID)}}

	start := 0
	if len(history) > c.window {
		start = len(history) - c.window
	}
	for _, m := range history[start:] {
		role := "user"
		if m.Sender == model.SenderAssistant {
			role = "assistant"
		}
		msgs = append(msgs, adapter.Message{Role: role, Content: m.Text})
	}

	return append(msgs, adapter.Message{Role: "user", Content: message})
}

func (c *Composer) systemPrompt(ctx context.Context, userID string) string {
	var b strings.Builder
	b.WriteString("You are an empathetic AI companion helping users process emotions. ")
	b.WriteString("Acknowledge the user's context and history, keep replies warm and concise.")

	if c.users != nil {
		if u, err := c.users.FindByEmail(ctx, nil, userID); err == nil {
			b.WriteString("\n\nUser Context:")
			fmt.Fprintf(&b, "\n- Name: %s", u.FullName)
			if u.Gender != "" {
				fmt.Fprintf(&b, "\n- Gender: %s", u.Gender)
			}
			if age := u.Age(time.Now()); age > 0 {
				fmt.Fprintf(&b, "\n- Age: %d", age)
			}
			fmt.Fprintf(&b, "\n- User since: %s", u.JoinDate.Format("January 2006"))
		} else {
			c.log.Debug().Err(err).Str("user_id", userID).Msg("profile lookup for prompt failed")
		}
	}
	return b.String()
}
