// Package sheets loads quiz questions from a Google spreadsheet where each row is one question
// and the first row names the columns.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	sheetsapi "google.golang.org/api/sheets/v4"
	"trivia-service/internal/domain"
)

// DefaultRange covers the question columns of the first sheet.
const DefaultRange = "Sheet1!A:J"

// Column headers expected in the first row.
const (
	colQuestionnaireID    = "QuestionnaireID"
	colQuestion           = "Question"
	colCorrectAnswerIndex = "CorrectAnswerIndex"
	colExplanation        = "Explanation"
	colMoreInfoLink       = "MoreInfoLink"
)

func optionColumn(i int) string {
	return "Option" + strconv.Itoa(i+1)
}

// Row is one spreadsheet row mapped onto named columns. Cells are kept as raw text until ToQuestion.
type Row struct {
	Line               int
	QuestionnaireID    string
	Question           string
	Options            [domain.OptionCount]string
	CorrectAnswerIndex string
	Explanation        string
	MoreInfoLink       string
}

// ToQuestion validates the row into a domain question. Nothing is coerced: a
// non-numeric index or a blank option is an error.
func (r Row) ToQuestion() (domain.Question, error) {
	raw := strings.TrimSpace(r.CorrectAnswerIndex)
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return domain.Question{}, fmt.Errorf("%w: correct answer index %q is not a number", domain.ErrInvalidQuestion, raw)
	}
	q := domain.Question{
		Text:               strings.TrimSpace(r.Question),
		Options:            make([]string, 0, domain.OptionCount),
		CorrectAnswerIndex: idx,
		Explanation:        strings.TrimSpace(r.Explanation),
		MoreInfoLink:       strings.TrimSpace(r.MoreInfoLink),
	}
	for _, opt := range r.Options {
		q.Options = append(q.Options, strings.TrimSpace(opt))
	}
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// ParseRows maps raw sheet values onto Rows using the header row.
// The header must name QuestionnaireID, Question, Option1..Option4 and CorrectAnswerIndex.
func ParseRows(values [][]interface{}) ([]Row, error) {
	if len(values) == 0 {
		return nil, nil
	}
	columns := make(map[string]int, len(values[0]))
	for i, cell := range values[0] {
		columns[strings.TrimSpace(cellText(cell))] = i
	}
	required := []string{colQuestionnaireID, colQuestion, colCorrectAnswerIndex}
	for i := 0; i < domain.OptionCount; i++ {
		required = append(required, optionColumn(i))
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("sheet header is missing column %q", name)
		}
	}

	cell := func(row []interface{}, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return cellText(row[i])
	}

	rows := make([]Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		r := Row{
			Line:               i + 2,
			QuestionnaireID:    cell(raw, colQuestionnaireID),
			Question:           cell(raw, colQuestion),
			CorrectAnswerIndex: cell(raw, colCorrectAnswerIndex),
			Explanation:        cell(raw, colExplanation),
			MoreInfoLink:       cell(raw, colMoreInfoLink),
		}
		for o := 0; o < domain.OptionCount; o++ {
			r.Options[o] = cell(raw, optionColumn(o))
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func cellText(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// QuizLoader reads every question from the spreadsheet and keeps the rows of the requested quiz.
type QuizLoader struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	readRange     string
	logger        *zap.Logger
}

func NewQuizLoader(service *sheetsapi.Service, spreadsheetID, readRange string, logger *zap.Logger) *QuizLoader {
	if readRange == "" {
		readRange = DefaultRange
	}
	return &QuizLoader{
		values:        sheetsapi.NewSpreadsheetsValuesService(service),
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		logger:        logger,
	}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	resp, err := l.values.Get(l.spreadsheetID, l.readRange).Context(ctx).Do()
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("read sheet: %w", err)
	}
	rows, err := ParseRows(resp.Values)
	if err != nil {
		return domain.Quiz{}, err
	}

	wanted := strings.TrimSpace(quizID)
	quiz := domain.Quiz{ID: quizID}
	for _, row := range rows {
		if strings.TrimSpace(row.QuestionnaireID) != wanted || strings.TrimSpace(row.Question) == "" {
			continue
		}
		q, err := row.ToQuestion()
		if err != nil {
			l.logger.Warn("skipping invalid sheet row",
				zap.String("quiz_id", quizID),
				zap.Int("line", row.Line),
				zap.Error(err),
			)
			continue
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	if len(quiz.Questions) == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	l.logger.Info("loaded questions from sheet",
		zap.String("quiz_id", quizID),
		zap.Int("count", len(quiz.Questions)),
	)
	return quiz, nil
}
