package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one immutable turn of a conversation. Ordering is insertion
// order; a message belongs to exactly one conversation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage mints a message with a lexically time-ordered id.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        ulid.Make().String(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// Conversation is the aggregate root for one chat session. ID is stable
// once assigned and Messages is never empty for a persisted conversation.
type Conversation struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Date     time.Time `json:"date"`
	Topic    string    `json:"topic"`
	Messages []Message `json:"messages"`
}

func NewConversation(id, userID, topic string, messages []Message) *Conversation {
	return &Conversation{
		ID:       id,
		UserID:   userID,
		Date:     time.Now(),
		Topic:    topic,
		Messages: messages,
	}
}

// Clone returns a deep copy so callers can hold a snapshot while the live
// message log keeps growing.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

// LastBySender returns the most recent message from the given sender.
func (c *Conversation) LastBySender(sender Sender) (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Sender == sender {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

const previewLimit = 50

// Preview summarizes the latest user and assistant turns for history lists.
type Preview struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

func (c *Conversation) Preview() Preview {
	var p Preview
	if m, ok := c.LastBySender(SenderUser); ok {
		p.User = truncate(m.Text, previewLimit)
	}
	if m, ok := c.LastBySender(SenderAssistant); ok {
		p.Assistant = truncate(m.Text, previewLimit)
	}
	return p
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
