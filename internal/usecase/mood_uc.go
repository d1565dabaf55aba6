package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
)

// Compile-time check
var _ MoodUseCase = (*moodUC)(nil)

// MoodUseCase exposes the mood journal: entries written by the chat session
// plus an assistant-generated trend insight for the tracker view.
type MoodUseCase interface {
	History(ctx context.Context, userID string) ([]*model.MoodEntry, string, error)
}

type moodUC struct {
	moods     repository.MoodRepository
	assistant AssistantService
	log       *zerolog.Logger
}

func NewMoodUseCase(moods repository.MoodRepository, assistant AssistantService, logger *zerolog.Logger) *moodUC {
	return &moodUC{moods: moods, assistant: assistant, log: logger}
}

func (m *moodUC) History(ctx context.Context, userID string) ([]*model.MoodEntry, string, error) {
	if userID == "" {
		return nil, "", domain.ErrInvalidArgument
	}
	entries, err := m.moods.FindAllByUser(ctx, nil, userID)
	if err != nil {
		return nil, "", fmt.Errorf("load mood history: %w", err)
	}
	return entries, m.insight(ctx, userID, entries), nil
}

// insight asks the assistant for a short empathetic read of the trend. The
// call is best-effort: on failure a statistics-only fallback is returned so
// the tracker never blocks on the assistant.
func (m *moodUC) insight(ctx context.Context, userID string, entries []*model.MoodEntry) string {
	if len(entries) == 0 {
		return "No mood data available for analysis."
	}

	sorted := make([]*model.MoodEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	sum := 0
	for _, e := range sorted {
		sum += e.Mood
	}
	avg := float64(sum) / float64(len(sorted))
	latest := sorted[len(sorted)-1].Mood

	trend := "stable"
	if len(sorted) > 1 {
		switch delta := latest - sorted[0].Mood; {
		case delta > 0:
			trend = "improving"
		case delta < 0:
			trend = "declining"
		}
	}

	prompt := fmt.Sprintf(
		"You are analyzing mood data for a wellness user. Create a brief, empathetic insight based on these statistics:\n"+
			"- Average mood: %.1f/10\n- Latest mood: %d/10\n- Overall trend: %s\n"+
			"Reply with 2-3 sentences of empathetic insight.",
		avg, latest, trend,
	)

	insight, err := m.assistant.Reply(ctx, userID, prompt, nil)
	if err != nil {
		m.log.Warn().Err(err).Str("user_id", userID).Msg("mood insight generation failed")
		return fmt.Sprintf("Your average mood has been %.1f/10, and I notice a %s trend. Keep tracking your moods to better understand your emotional patterns.", avg, trend)
	}
	return insight
}
