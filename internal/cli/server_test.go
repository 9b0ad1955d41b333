package cli

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"trivia-service/internal/config"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

func TestSampleQuizzesAreValid(t *testing.T) {
	for id, quiz := range sampleQuizzes() {
		_, rejected := domain.FilterValid(quiz.Questions)
		if len(rejected) != 0 {
			t.Fatalf("sample quiz %s has invalid questions: %+v", id, rejected)
		}
	}
}

func TestNewQuizLoaderFallsBackToSample(t *testing.T) {
	loader, err := newQuizLoader(context.Background(), config.Config{}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	if _, ok := loader.(*memory.StaticQuizLoader); !ok {
		t.Fatalf("expected static loader, got %T", loader)
	}
	if _, err := loader.LoadQuiz(context.Background(), "sample"); err != nil {
		t.Fatalf("load sample: %v", err)
	}
}

func TestNewQuizLoaderReadsQuizFile(t *testing.T) {
	cfg := config.Config{}
	cfg.Quiz.File = "../../config/quizzes.yaml"

	loader, err := newQuizLoader(context.Background(), cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	quiz, err := loader.LoadQuiz(context.Background(), "1")
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if _, rejected := domain.FilterValid(quiz.Questions); len(rejected) != 0 || len(quiz.Questions) == 0 {
		t.Fatalf("expected a fully valid quiz, got %d questions and %+v rejected", len(quiz.Questions), rejected)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := newLogger("chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := newLogger("debug"); err != nil {
		t.Fatalf("debug level: %v", err)
	}
}
