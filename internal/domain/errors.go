package domain

import "errors"

var (
	// ErrInvalidInput is returned when a game is loaded with an empty or malformed question set.
	ErrInvalidInput = errors.New("invalid question set")
	// ErrNoActiveSession is returned when an operation needs a live quiz and none is running.
	ErrNoActiveSession = errors.New("no active quiz session")
	// ErrQuestionMismatch is returned when an answer targets a question other than the current one.
	ErrQuestionMismatch = errors.New("question index mismatch")
	// ErrAlreadyAnswered is returned when a user answers the same question twice.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrQuizNotFound indicates the question source yielded no usable questions for a quiz id.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuestion wraps every per-question validation failure.
	ErrInvalidQuestion = errors.New("invalid question")
)

// Message returns the participant-facing text for an engine error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoActiveSession):
		return "No active quiz is running."
	case errors.Is(err, ErrQuestionMismatch):
		return "Question index mismatch or question not found. Try starting a new quiz."
	case errors.Is(err, ErrAlreadyAnswered):
		return "You have already answered this question."
	case errors.Is(err, ErrQuizNotFound):
		return "Quiz not found or empty."
	case errors.Is(err, ErrInvalidInput):
		return "Invalid question set."
	default:
		return "Something went wrong."
	}
}
