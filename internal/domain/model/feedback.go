package model

import (
	"time"

	"github.com/google/uuid"

	"wellness-companion/internal/domain"
)

// Feedback is a free-form note a user leaves about the service.
type Feedback struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

func NewFeedback(userID string, rating int, comment string) (*Feedback, error) {
	if userID == "" || comment == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Feedback{
		ID:      uuid.NewString(),
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
		Date:    time.Now(),
	}, nil
}
