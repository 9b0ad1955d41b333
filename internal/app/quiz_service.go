package app

import (
	"context"
	"fmt"

	"trivia-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizService adds loading-by-id on top of the session engine. Transports talk to this type only.
type QuizService struct {
	*Engine
	quizzes QuizRepository
}

func NewQuizService(engine *Engine, quizzes QuizRepository) *QuizService {
	return &QuizService{Engine: engine, quizzes: quizzes}
}

// LoadQuiz fetches quizID from the question source and starts a new session with its valid questions.
func (s *QuizService) LoadQuiz(ctx context.Context, quizID string) (domain.Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Session{}, err
	}
	valid, _ := domain.FilterValid(quiz.Questions)
	if len(valid) == 0 {
		return domain.Session{}, fmt.Errorf("%w: %s has no valid questions", domain.ErrQuizNotFound, quizID)
	}
	return s.LoadGame(ctx, quizID, valid)
}
