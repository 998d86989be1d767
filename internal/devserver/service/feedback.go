package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

// SubmitFeedback сохраняет оценку ответа и возвращает её идентификатор.
func (s *Service) SubmitFeedback(ctx context.Context, userID int64, answerID string, rating *int, feedbackType, comment string) (string, error) {
	const op = "service.feedback.SubmitFeedback"

	fb := &storage.Feedback{
		FeedbackID:   uuid.NewString(),
		UserID:       userID,
		AnswerID:     answerID,
		Rating:       rating,
		FeedbackType: feedbackType,
		Comment:      comment,
	}
	if err := s.st.SaveFeedback(ctx, fb); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return fb.FeedbackID, nil
}

// FeedbackStats возвращает агрегаты и последние оценки пользователя.
func (s *Service) FeedbackStats(ctx context.Context, userID int64) (storage.FeedbackAggregate, []storage.Feedback, error) {
	const op = "service.feedback.FeedbackStats"

	agg, recent, err := s.st.FeedbackStats(ctx, userID)
	if err != nil {
		return storage.FeedbackAggregate{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	return agg, recent, nil
}

// DeleteFeedback удаляет оценку; разрешено только её автору.
func (s *Service) DeleteFeedback(ctx context.Context, userID int64, feedbackID string) error {
	const op = "service.feedback.DeleteFeedback"

	fb, err := s.st.FeedbackByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}
	if fb.UserID != userID {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.st.DeleteFeedback(ctx, feedbackID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
