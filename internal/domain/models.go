package domain

import "time"

// OptionCount is the number of options every question must carry.
const OptionCount = 4

// NotAvailable is the answer text used when an option index does not resolve.
const NotAvailable = "N/A"

// Status is the lifecycle state of a quiz session.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Question models a trivia prompt with four options and exactly one correct option.
type Question struct {
	Text               string   `json:"question" yaml:"question"`
	Options            []string `json:"options" yaml:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex" yaml:"correctAnswerIndex"`
	Explanation        string   `json:"explanation,omitempty" yaml:"explanation"`
	MoreInfoLink       string   `json:"moreInfoLink,omitempty" yaml:"moreInfoLink"`
}

// OptionText returns the option at i, or NotAvailable when i is out of range.
func (q Question) OptionText(i int) string {
	if i < 0 || i >= len(q.Options) {
		return NotAvailable
	}
	return q.Options[i]
}

// CorrectAnswerText returns the text of the correct option.
func (q Question) CorrectAnswerText() string {
	return q.OptionText(q.CorrectAnswerIndex)
}

// Quiz is a named collection of questions as produced by a question source.
type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// AnswerRecord is a snapshot of one user's answer to one question.
type AnswerRecord struct {
	QuestionIndex      int    `json:"questionIndex"`
	QuestionText       string `json:"questionText"`
	SelectedAnswerText string `json:"selectedAnswer"`
	CorrectAnswerText  string `json:"correctAnswer"`
	IsCorrect          bool   `json:"isCorrect"`
	Explanation        string `json:"explanation,omitempty"`
	MoreInfoLink       string `json:"moreInfoLink,omitempty"`
}

// UserScore is the per-user ledger inside a session.
// Seq is the order in which the user first answered, starting at 0.
type UserScore struct {
	CurrentGameScore int            `json:"currentGameScore"`
	Answers          []AnswerRecord `json:"answers"`
	Seq              int            `json:"seq"`
}

// Answer returns the user's record for questionIndex, if any.
func (u UserScore) Answer(questionIndex int) (AnswerRecord, bool) {
	for _, a := range u.Answers {
		if a.QuestionIndex == questionIndex {
			return a, true
		}
	}
	return AnswerRecord{}, false
}

// Session is the single live quiz.
type Session struct {
	QuizID               string               `json:"quizId"`
	Questions            []Question           `json:"questions"`
	CurrentQuestionIndex int                  `json:"currentQuestionIndex"`
	Status               Status               `json:"status"`
	UserScores           map[string]UserScore `json:"userScores"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// TotalQuestions is the length of the question list.
func (s Session) TotalQuestions() int {
	return len(s.Questions)
}

// CurrentQuestion returns the question under the pointer while the session is active.
func (s Session) CurrentQuestion() (Question, bool) {
	if s.Status != StatusActive || s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// Clone returns a deep copy so stored sessions are never shared with callers.
func (s Session) Clone() Session {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	out.UserScores = make(map[string]UserScore, len(s.UserScores))
	for id, score := range s.UserScores {
		score.Answers = append([]AnswerRecord(nil), score.Answers...)
		out.UserScores[id] = score
	}
	return out
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	UserID           string `json:"userId"`
	CurrentGameScore int    `json:"currentGameScore"`
}

// AnswerResult summarizes the outcome of a submission for a single user.
type AnswerResult struct {
	IsCorrect         bool   `json:"isCorrect"`
	Score             int    `json:"score"`
	CorrectAnswerText string `json:"correct_answer_text"`
	Explanation       string `json:"explanation,omitempty"`
}

// AdvanceResult is returned when the moderator moves to the next question.
// Question is set only while the quiz is still running.
type AdvanceResult struct {
	Finished    bool               `json:"finished"`
	Question    *QuestionView      `json:"question,omitempty"`
	Leaderboard []LeaderboardEntry `json:"leaderboard,omitempty"`
}

// QuestionView is the public rendering of a question: no correct index.
// Index is 1-based.
type QuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Index    int      `json:"index"`
	Total    int      `json:"total"`
}

// NewQuestionView redacts q for end users. position is the 0-based pointer.
func NewQuestionView(q Question, position, total int) QuestionView {
	return QuestionView{
		Question: q.Text,
		Options:  append([]string(nil), q.Options...),
		Index:    position + 1,
		Total:    total,
	}
}
