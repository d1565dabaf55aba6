package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
)

// Compile-time check
var _ FeedbackUseCase = (*feedbackUC)(nil)

type FeedbackUseCase interface {
	Submit(ctx context.Context, userID string, rating int, comment string) (*model.Feedback, error)
	List(ctx context.Context) ([]*model.Feedback, error)
}

type feedbackUC struct {
	feedback repository.FeedbackRepository
	log      *zerolog.Logger
}

func NewFeedbackUseCase(feedback repository.FeedbackRepository, logger *zerolog.Logger) *feedbackUC {
	return &feedbackUC{feedback: feedback, log: logger}
}

func (f *feedbackUC) Submit(ctx context.Context, userID string, rating int, comment string) (*model.Feedback, error) {
	entry, err := model.NewFeedback(userID, rating, comment)
	if err != nil {
		return nil, err
	}
	if err := f.feedback.Save(ctx, nil, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (f *feedbackUC) List(ctx context.Context) ([]*model.Feedback, error) {
	return f.feedback.FindAll(ctx, nil)
}
