package memory

import (
	"context"
	"testing"
	"time"

	"trivia-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Hour)

	if _, ok, _ := store.Get(ctx); ok {
		t.Fatalf("expected no session before first set")
	}

	if err := store.Set(ctx, sampleSession()); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := store.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("expected session present, ok=%v err=%v", ok, err)
	}
	if got.QuizID != "quiz-1" {
		t.Fatalf("unexpected quiz id %q", got.QuizID)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Get(ctx); ok {
		t.Fatalf("expected session removed after clear")
	}
}

func TestSessionStoreExpiresAfterLastWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithClock(2*time.Hour, func() time.Time { return now })

	_ = store.Set(ctx, sampleSession())

	now = now.Add(90 * time.Minute)
	if _, ok, _ := store.Get(ctx); !ok {
		t.Fatalf("expected session alive before ttl")
	}
	// A write refreshes the ttl.
	_ = store.Set(ctx, sampleSession())

	now = now.Add(90 * time.Minute)
	if _, ok, _ := store.Get(ctx); !ok {
		t.Fatalf("expected session alive after refresh")
	}

	now = now.Add(31 * time.Minute)
	if _, ok, _ := store.Get(ctx); ok {
		t.Fatalf("expected session expired")
	}
}

func TestSessionStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(0)
	_ = store.Set(ctx, sampleSession())

	got, _, _ := store.Get(ctx)
	got.CurrentQuestionIndex = 5
	got.UserScores["u1"] = domain.UserScore{CurrentGameScore: 3}

	again, _, _ := store.Get(ctx)
	if again.CurrentQuestionIndex != 0 || len(again.UserScores) != 0 {
		t.Fatalf("stored session was mutated through a returned copy: %+v", again)
	}
}

func sampleSession() domain.Session {
	return domain.Session{
		QuizID:     "quiz-1",
		Questions:  sampleQuiz().Questions,
		Status:     domain.StatusActive,
		UserScores: map[string]domain.UserScore{},
	}
}
