package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
	"trivia-service/internal/domain"
)

// QuizLoader loads question rows for a quiz from the questions table.
type QuizLoader struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewQuizLoader(pool *pgxpool.Pool, logger *zap.Logger) *QuizLoader {
	return &QuizLoader{pool: pool, logger: logger}
}

const selectQuestions = `SELECT position, question, option1, option2, option3, option4, correct_index, explanation, more_info_link
FROM questions WHERE quiz_id=$1 ORDER BY position`

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, selectQuestions, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	defer rows.Close()

	quiz := domain.Quiz{ID: quizID}
	for rows.Next() {
		var (
			position int
			q        domain.Question
			opts     [domain.OptionCount]string
		)
		if err := rows.Scan(&position, &q.Text, &opts[0], &opts[1], &opts[2], &opts[3], &q.CorrectAnswerIndex, &q.Explanation, &q.MoreInfoLink); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.Options = opts[:]
		if err := q.Validate(); err != nil {
			l.logger.Warn("skipping invalid question",
				zap.String("quiz_id", quizID),
				zap.Int("position", position),
				zap.Error(err),
			)
			continue
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("read questions: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}
