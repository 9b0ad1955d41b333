package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

// Callback data sent by inline buttons.
const (
	callbackStart  = "start_trivia"
	callbackNext   = "next"
	callbackAnswer = "answer"
)

// BotAPI is the part of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot translates chat commands and button presses into quiz service calls.
// It keeps no quiz state: every reply is rendered from a fresh read of the service.
type Bot struct {
	api     BotAPI
	service *app.QuizService
	logger  *zap.Logger
}

func NewBot(api BotAPI, service *app.QuizService, logger *zap.Logger) *Bot {
	return &Bot{api: api, service: service, logger: logger}
}

// Run long-polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "load":
		b.load(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "trivia", "start":
		b.invite(ctx, chatID)
	case "question":
		b.sendCurrentQuestion(ctx, chatID)
	case "next":
		b.advance(ctx, chatID)
	case "results":
		if msg.From == nil {
			return
		}
		b.results(ctx, chatID, userID(msg.From))
	default:
		b.sendText(chatID, "Unknown command. Try /trivia, /question, /next or /load <quiz id>.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	ack := ""
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, ack)); err != nil {
			b.logger.Warn("answer callback", zap.Error(err))
		}
	}()
	if cb.Message == nil || cb.From == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == callbackStart:
		b.sendCurrentQuestion(ctx, chatID)
	case cb.Data == callbackNext:
		b.advance(ctx, chatID)
	case strings.HasPrefix(cb.Data, callbackAnswer+":"):
		questionIndex, optionIndex, err := parseAnswerData(cb.Data)
		if err != nil {
			b.logger.Warn("bad answer callback", zap.String("data", cb.Data), zap.Error(err))
			return
		}
		ack = b.answer(ctx, chatID, cb.From, questionIndex, optionIndex)
	}
}

func (b *Bot) load(ctx context.Context, chatID int64, quizID string) {
	if quizID == "" {
		b.sendText(chatID, "Please give a quiz id, for example: /load 1")
		return
	}
	session, err := b.service.LoadQuiz(ctx, quizID)
	if err != nil {
		b.logError("load quiz", err)
		b.sendText(chatID, fmt.Sprintf("❌ Could not load quiz %s: %s", quizID, domain.Message(err)))
		return
	}
	b.sendText(chatID, fmt.Sprintf("✅ Quiz %s loaded with %d questions.", session.QuizID, session.TotalQuestions()))
}

func (b *Bot) invite(ctx context.Context, chatID int64) {
	session, ok, err := b.service.ActiveSession(ctx)
	if err != nil {
		b.logError("read session", err)
		return
	}
	if !ok || session.Status == domain.StatusFinished {
		b.sendText(chatID, "❌ No quiz is running right now. Load one with /load <quiz id>.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🧠 Trivia challenge is ready! 🎯\nThis quiz has %d questions.", session.TotalQuestions()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Start trivia", callbackStart),
		),
	)
	b.send(msg)
}

func (b *Bot) sendCurrentQuestion(ctx context.Context, chatID int64) {
	session, ok, err := b.service.ActiveSession(ctx)
	if err != nil {
		b.logError("read session", err)
		return
	}
	if !ok {
		b.sendText(chatID, domain.Message(domain.ErrNoActiveSession))
		return
	}
	if session.Status == domain.StatusFinished {
		b.sendLeaderboard(chatID, app.ComputeLeaderboard(session.UserScores))
		return
	}
	question, ok := session.CurrentQuestion()
	if !ok {
		b.sendText(chatID, domain.Message(domain.ErrNoActiveSession))
		return
	}
	b.send(questionMessage(chatID, domain.NewQuestionView(question, session.CurrentQuestionIndex, session.TotalQuestions())))
}

func (b *Bot) answer(ctx context.Context, chatID int64, from *tgbotapi.User, questionIndex, optionIndex int) string {
	res, err := b.service.SubmitAnswer(ctx, userID(from), questionIndex, optionIndex)
	switch {
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return domain.Message(err)
	case err != nil:
		b.logError("submit answer", err)
		return domain.Message(err)
	}

	var text string
	if res.IsCorrect {
		text = fmt.Sprintf("✅ %s got it right! Score: %d", displayName(from), res.Score)
	} else {
		text = fmt.Sprintf("❌ %s, not quite. The answer is: %s\nScore: %d", displayName(from), res.CorrectAnswerText, res.Score)
	}
	if res.Explanation != "" {
		text += "\n💡 " + res.Explanation
	}
	b.sendText(chatID, text)
	if res.IsCorrect {
		return "Correct!"
	}
	return "Wrong answer"
}

func (b *Bot) advance(ctx context.Context, chatID int64) {
	res, err := b.service.AdvanceQuestion(ctx)
	if err != nil {
		b.logError("advance question", err)
		return
	}
	if res.Finished {
		b.sendLeaderboard(chatID, res.Leaderboard)
		return
	}
	b.send(questionMessage(chatID, *res.Question))
}

func (b *Bot) results(ctx context.Context, chatID int64, user string) {
	answers, ok, err := b.service.UserAnswers(ctx, user)
	if err != nil {
		b.logError("read answers", err)
		return
	}
	if !ok {
		b.sendText(chatID, "No current game or user data found.")
		return
	}
	var sb strings.Builder
	sb.WriteString("📋 Your answers:\n")
	for _, a := range answers {
		mark := "❌"
		if a.IsCorrect {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s Q%d: %s → %s", mark, a.QuestionIndex+1, a.QuestionText, a.SelectedAnswerText)
		if !a.IsCorrect {
			fmt.Fprintf(&sb, " (correct: %s)", a.CorrectAnswerText)
		}
		if a.MoreInfoLink != "" {
			fmt.Fprintf(&sb, "\n   🔗 %s", a.MoreInfoLink)
		}
		sb.WriteString("\n")
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) sendLeaderboard(chatID int64, leaderboard []domain.LeaderboardEntry) {
	if len(leaderboard) == 0 {
		b.sendText(chatID, "🏁 The quiz is over. Nobody answered this time.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🏆 Final leaderboard\n\n")
	for i, entry := range leaderboard {
		medal := "🔸"
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		fmt.Fprintf(&sb, "%s %d. %s: %d\n", medal, i+1, entry.UserID, entry.CurrentGameScore)
	}
	b.sendText(chatID, sb.String())
}

func questionMessage(chatID int64, view domain.QuestionView) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("❓ Question %d/%d\n\n%s", view.Index, view.Total, view.Question))
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Options)+1)
	for i, option := range view.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, answerData(view.Index-1, i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏭ Next question", callbackNext),
	))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return msg
}

func answerData(questionIndex, optionIndex int) string {
	return fmt.Sprintf("%s:%d:%d", callbackAnswer, questionIndex, optionIndex)
}

func parseAnswerData(data string) (int, int, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != callbackAnswer {
		return 0, 0, fmt.Errorf("unexpected callback %q", data)
	}
	questionIndex, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("question index: %w", err)
	}
	optionIndex, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("option index: %w", err)
	}
	return questionIndex, optionIndex, nil
}

func userID(u *tgbotapi.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return u.FirstName
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send message", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

func (b *Bot) logError(op string, err error) {
	if errors.Is(err, domain.ErrQuizNotFound) || errors.Is(err, domain.ErrNoActiveSession) ||
		errors.Is(err, domain.ErrQuestionMismatch) {
		b.logger.Info(op, zap.Error(err))
		return
	}
	b.logger.Error(op, zap.Error(err))
}
