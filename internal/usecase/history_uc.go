package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
)

// Compile-time check
var _ HistoryUseCase = (*historyUC)(nil)

// DayGroup is one calendar-day bucket of the history list.
type DayGroup struct {
	Label         string                `json:"label"`
	Conversations []*model.Conversation `json:"conversations"`
}

// HistoryUseCase loads, deduplicates and groups past conversations, and
// removes them one at a time or in bulk.
type HistoryUseCase interface {
	// Load returns one conversation per id, newest first. Duplicate ids are
	// resolved by keeping the copy with the latest date; missing ids are
	// normalized to generated ones.
	Load(ctx context.Context, userID string) ([]*model.Conversation, error)
	// Delete removes exactly one conversation from the store.
	Delete(ctx context.Context, id string) error
	// DeleteAll issues one delete per id concurrently and waits for all of
	// them. Any failure is reported as a single error and the caller must
	// keep its local list unchanged.
	DeleteAll(ctx context.Context, ids []string) error
	// Resume places a stored conversation into the hand-off slot so the next
	// opened chat session picks it up.
	Resume(ctx context.Context, userID, conversationID string) error
}

type historyUC struct {
	convs   repository.ConversationRepository
	handoff repository.HandoffSlot
	log     *zerolog.Logger
}

func NewHistoryUseCase(convs repository.ConversationRepository, handoff repository.HandoffSlot, logger *zerolog.Logger) *historyUC {
	return &historyUC{convs: convs, handoff: handoff, log: logger}
}

func (h *historyUC) Load(ctx context.Context, userID string) ([]*model.Conversation, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	convs, err := h.convs.FindAllByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}

	unique := Deduplicate(convs)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Date.After(unique[j].Date)
	})
	return unique, nil
}

// Deduplicate reduces the list to one conversation per id. A retried write
// can leave the store with several copies of the same conversation; the copy
// with the latest date wins regardless of list position.
func Deduplicate(convs []*model.Conversation) []*model.Conversation {
	byID := make(map[string]*model.Conversation, len(convs))
	order := make([]string, 0, len(convs))
	for _, c := range convs {
		if c == nil {
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		prev, seen := byID[c.ID]
		if !seen {
			byID[c.ID] = c
			order = append(order, c.ID)
			continue
		}
		if c.Date.After(prev.Date) {
			byID[c.ID] = c
		}
	}
	out := make([]*model.Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

// DayLabel buckets a timestamp for the history list: "Today", "Yesterday",
// or a long date such as "January 2, 2006". Boundaries are calendar days in
// the timestamp's location, not 24-hour windows.
func DayLabel(t, now time.Time) string {
	if sameDay(t, now) {
		return "Today"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return t.Format("January 2, 2006")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GroupByDay splits an already-sorted conversation list into day buckets,
// preserving order within and across buckets.
func GroupByDay(convs []*model.Conversation, now time.Time) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)
	for _, c := range convs {
		label := DayLabel(c.Date, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DayGroup{Label: label})
		}
		groups[i].Conversations = append(groups[i].Conversations, c)
	}
	return groups
}

// FilterByDay keeps only conversations on the given calendar day. A zero day
// keeps everything.
func FilterByDay(convs []*model.Conversation, day time.Time) []*model.Conversation {
	if day.IsZero() {
		return convs
	}
	out := make([]*model.Conversation, 0, len(convs))
	for _, c := range convs {
		if sameDay(c.Date, day) {
			out = append(out, c)
		}
	}
	return out
}

func (h *historyUC) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if err := h.convs.Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

func (h *historyUC) DeleteAll(ctx context.Context, ids []string) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := h.convs.Delete(ctx, nil, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	if firstErr != nil {
		return fmt.Errorf("clear history: %w", firstErr)
	}
	return nil
}

func (h *historyUC) Resume(ctx context.Context, userID, conversationID string) error {
	conv, err := h.convs.FindByID(ctx, nil, conversationID)
	if err != nil {
		return fmt.Errorf("resume conversation %s: %w", conversationID, err)
	}
	if conv.UserID != userID {
		return domain.ErrNotFound
	}
	return h.handoff.Put(ctx, userID, conv)
}
