package domain

import (
	"fmt"
	"strings"
)

// Validate reports whether q may enter a session.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty question text", ErrInvalidQuestion)
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: want %d options, got %d", ErrInvalidQuestion, OptionCount, len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidQuestion, i+1)
		}
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= OptionCount {
		return fmt.Errorf("%w: correct answer index %d out of range", ErrInvalidQuestion, q.CorrectAnswerIndex)
	}
	return nil
}

// InvalidQuestion pairs a rejected question with its position in the source set.
type InvalidQuestion struct {
	Position int
	Err      error
}

// FilterValid splits questions into the ones that pass Validate and the rejected ones.
func FilterValid(questions []Question) ([]Question, []InvalidQuestion) {
	valid := make([]Question, 0, len(questions))
	var rejected []InvalidQuestion
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			rejected = append(rejected, InvalidQuestion{Position: i, Err: err})
			continue
		}
		valid = append(valid, q)
	}
	return valid, rejected
}
