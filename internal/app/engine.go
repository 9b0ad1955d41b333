package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"trivia-service/internal/domain"
)

// SessionStore abstracts where the single active session lives (in-memory, Redis, etc).
// Implementations treat an expired session as absent and never hand out shared state.
type SessionStore interface {
	Get(ctx context.Context) (domain.Session, bool, error)
	Set(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

// Engine owns the quiz state machine. Every mutation is a read-modify-write of the stored
// session under one mutex, so answers and advances never interleave.
type Engine struct {
	mu    sync.Mutex
	store SessionStore
	now   func() time.Time
}

func NewEngine(store SessionStore) *Engine {
	return NewEngineWithClock(store, time.Now)
}

// NewEngineWithClock is used by tests for deterministic timestamps.
func NewEngineWithClock(store SessionStore, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// LoadGame replaces any existing session with a fresh one for quizID.
func (e *Engine) LoadGame(ctx context.Context, quizID string, questions []domain.Question) (domain.Session, error) {
	if len(questions) == 0 {
		return domain.Session{}, fmt.Errorf("%w: no questions", domain.ErrInvalidInput)
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return domain.Session{}, fmt.Errorf("%w: question %d: %v", domain.ErrInvalidInput, i, err)
		}
	}

	session := domain.Session{
		QuizID:               quizID,
		Questions:            questions,
		CurrentQuestionIndex: 0,
		Status:               domain.StatusActive,
	}.Clone()
	session.UpdatedAt = e.now()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Set(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// ActiveSession returns the stored session, finished or not.
func (e *Engine) ActiveSession(ctx context.Context) (domain.Session, bool, error) {
	session, ok, err := e.store.Get(ctx)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return session, ok, nil
}

// CurrentQuestion returns the question under the pointer while a session is active.
// The result still carries the correct index; redaction is up to the caller.
func (e *Engine) CurrentQuestion(ctx context.Context) (domain.Question, bool, error) {
	session, ok, err := e.ActiveSession(ctx)
	if err != nil || !ok {
		return domain.Question{}, false, err
	}
	q, ok := session.CurrentQuestion()
	return q, ok, nil
}

// SubmitAnswer records userID's answer to the current question.
// On ErrAlreadyAnswered the returned result reflects the earlier answer and the unchanged score.
func (e *Engine) SubmitAnswer(ctx context.Context, userID string, questionIndex, selectedAnswerIndex int) (domain.AnswerResult, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.AnswerResult{}, fmt.Errorf("%w: empty user id", domain.ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok, err := e.store.Get(ctx)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("load session: %w", err)
	}
	if !ok || session.Status != domain.StatusActive {
		return domain.AnswerResult{}, domain.ErrNoActiveSession
	}
	if questionIndex != session.CurrentQuestionIndex {
		return domain.AnswerResult{}, domain.ErrQuestionMismatch
	}
	question := session.Questions[questionIndex]

	if session.UserScores == nil {
		session.UserScores = make(map[string]domain.UserScore)
	}
	user, known := session.UserScores[userID]
	if prev, answered := user.Answer(questionIndex); answered {
		return domain.AnswerResult{
			IsCorrect:         prev.IsCorrect,
			Score:             user.CurrentGameScore,
			CorrectAnswerText: prev.CorrectAnswerText,
			Explanation:       prev.Explanation,
		}, domain.ErrAlreadyAnswered
	}
	if !known {
		user = domain.UserScore{Seq: len(session.UserScores)}
	}

	isCorrect := selectedAnswerIndex == question.CorrectAnswerIndex
	if isCorrect {
		user.CurrentGameScore++
	}
	user.Answers = append(user.Answers, domain.AnswerRecord{
		QuestionIndex:      questionIndex,
		QuestionText:       question.Text,
		SelectedAnswerText: question.OptionText(selectedAnswerIndex),
		CorrectAnswerText:  question.CorrectAnswerText(),
		IsCorrect:          isCorrect,
		Explanation:        question.Explanation,
		MoreInfoLink:       question.MoreInfoLink,
	})
	session.UserScores[userID] = user
	session.UpdatedAt = e.now()

	if err := e.store.Set(ctx, session); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("store session: %w", err)
	}

	return domain.AnswerResult{
		IsCorrect:         isCorrect,
		Score:             user.CurrentGameScore,
		CorrectAnswerText: question.CorrectAnswerText(),
		Explanation:       question.Explanation,
	}, nil
}

// AdvanceQuestion moves the pointer forward, finishing the quiz after the last question.
// With no session at all the quiz is reported as finished with no leaderboard.
func (e *Engine) AdvanceQuestion(ctx context.Context) (domain.AdvanceResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok, err := e.store.Get(ctx)
	if err != nil {
		return domain.AdvanceResult{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.AdvanceResult{Finished: true}, nil
	}
	if session.Status == domain.StatusFinished {
		return domain.AdvanceResult{Finished: true, Leaderboard: ComputeLeaderboard(session.UserScores)}, nil
	}

	next := session.CurrentQuestionIndex + 1
	session.CurrentQuestionIndex = next
	session.UpdatedAt = e.now()

	var result domain.AdvanceResult
	if next < len(session.Questions) {
		view := domain.NewQuestionView(session.Questions[next], next, len(session.Questions))
		result = domain.AdvanceResult{Finished: false, Question: &view}
	} else {
		session.Status = domain.StatusFinished
		result = domain.AdvanceResult{Finished: true, Leaderboard: ComputeLeaderboard(session.UserScores)}
	}

	if err := e.store.Set(ctx, session); err != nil {
		return domain.AdvanceResult{}, fmt.Errorf("store session: %w", err)
	}
	return result, nil
}

// UserAnswers returns userID's answer history in answer order.
func (e *Engine) UserAnswers(ctx context.Context, userID string) ([]domain.AnswerRecord, bool, error) {
	session, ok, err := e.ActiveSession(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	user, ok := session.UserScores[userID]
	if !ok {
		return nil, false, nil
	}
	return user.Answers, true, nil
}
