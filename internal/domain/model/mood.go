package model

import (
	"time"

	"wellness-companion/internal/domain"
)

const (
	MoodMin = 1
	MoodMax = 10
)

// MoodThreshold splits ratings into the concern-oriented (<) and
// sharing-oriented (>=) follow-up branches.
const MoodThreshold = 5

// MoodEntry records one mood rating. Written once per chat session, never
// mutated afterwards.
type MoodEntry struct {
	UserID string    `json:"userId"`
	Mood   int       `json:"mood"`
	Date   time.Time `json:"date"`
	Note   string    `json:"note"`
}

func NewMoodEntry(userID string, mood int, note string) (*MoodEntry, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if mood < MoodMin || mood > MoodMax {
		return nil, domain.ErrMoodOutOfRange
	}
	return &MoodEntry{
		UserID: userID,
		Mood:   mood,
		Date:   time.Now(),
		Note:   note,
	}, nil
}
