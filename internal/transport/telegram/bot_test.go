package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

const chatID int64 = 1001

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.MessageConfig
	callbacks []tgbotapi.CallbackConfig
	updates   chan tgbotapi.Update
	stopped   bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks = append(f.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastCallback() tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callbacks[len(f.callbacks)-1]
}

func TestLoadInviteAnswerAndFinish(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	bot, service := newTestBot(api)

	bot.HandleUpdate(ctx, command("/load 1"))
	assert.Contains(t, api.last().Text, "Quiz 1 loaded with 2 questions")

	bot.HandleUpdate(ctx, command("/trivia"))
	invite := api.last()
	assert.Contains(t, invite.Text, "2 questions")
	markup, ok := invite.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, callbackStart, *markup.InlineKeyboard[0][0].CallbackData)

	bot.HandleUpdate(ctx, callback(42, callbackStart))
	question := api.last()
	assert.Contains(t, question.Text, "Question 1/2")
	assert.Contains(t, question.Text, "Capital of France?")
	markup = question.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, markup.InlineKeyboard, 5)
	assert.Equal(t, "answer:0:0", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, callbackNext, *markup.InlineKeyboard[4][0].CallbackData)

	bot.HandleUpdate(ctx, callback(42, "answer:0:0"))
	assert.Contains(t, api.last().Text, "got it right")
	assert.Equal(t, "Correct!", api.lastCallback().Text)

	bot.HandleUpdate(ctx, callback(42, "answer:0:1"))
	assert.Equal(t, "You have already answered this question.", api.lastCallback().Text)

	bot.HandleUpdate(ctx, callback(7, "answer:0:3"))
	assert.Contains(t, api.last().Text, "The answer is: Paris")

	bot.HandleUpdate(ctx, command("/next"))
	assert.Contains(t, api.last().Text, "Question 2/2")

	bot.HandleUpdate(ctx, callback(7, callbackNext))
	board := api.last().Text
	assert.Contains(t, board, "Final leaderboard")
	assert.Contains(t, board, "1. 42: 1")
	assert.Contains(t, board, "2. 7: 0")

	session, ok, err := service.ActiveSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusFinished, session.Status)
}

func TestStaleButtonIsRejected(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	bot, _ := newTestBot(api)

	bot.HandleUpdate(ctx, command("/load 1"))
	bot.HandleUpdate(ctx, command("/next"))
	bot.HandleUpdate(ctx, callback(42, "answer:0:0"))

	assert.Equal(t, domain.Message(domain.ErrQuestionMismatch), api.lastCallback().Text)
}

func TestCommandsWithoutQuiz(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	bot, _ := newTestBot(api)

	bot.HandleUpdate(ctx, command("/trivia"))
	assert.Contains(t, api.last().Text, "No quiz is running")

	bot.HandleUpdate(ctx, command("/load"))
	assert.Contains(t, api.last().Text, "Please give a quiz id")

	bot.HandleUpdate(ctx, command("/load 99"))
	assert.Contains(t, api.last().Text, "Could not load quiz 99")

	bot.HandleUpdate(ctx, command("/results"))
	assert.Contains(t, api.last().Text, "No current game")
}

func TestResultsListsAnswers(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	bot, _ := newTestBot(api)

	bot.HandleUpdate(ctx, command("/load 1"))
	bot.HandleUpdate(ctx, callback(42, "answer:0:2"))

	msg := command("/results")
	msg.Message.From = &tgbotapi.User{ID: 42}
	bot.HandleUpdate(ctx, msg)
	text := api.last().Text
	assert.Contains(t, text, "Q1: Capital of France? → Berlin (correct: Paris)")
	assert.Contains(t, text, "https://en.wikipedia.org/wiki/Paris")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	api := newFakeAPI()
	bot, _ := newTestBot(api)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		bot.Run(ctx)
		close(done)
	}()
	api.updates <- command("/load 1")
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("bot did not stop")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
}

func TestParseAnswerData(t *testing.T) {
	q, o, err := parseAnswerData(answerData(3, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, q)
	assert.Equal(t, 2, o)

	for _, bad := range []string{"answer:1", "answer:x:1", "answer:1:y", "other:1:1"} {
		_, _, err := parseAnswerData(bad)
		assert.Error(t, err, bad)
	}
}

func newTestBot(api BotAPI) (*Bot, *app.QuizService) {
	engine := app.NewEngine(memory.NewSessionStore(time.Hour))
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"1": {
			ID: "1",
			Questions: []domain.Question{
				{
					Text:               "Capital of France?",
					Options:            []string{"Paris", "Rome", "Berlin", "Madrid"},
					CorrectAnswerIndex: 0,
					MoreInfoLink:       "https://en.wikipedia.org/wiki/Paris",
				},
				{
					Text:               "2 + 2?",
					Options:            []string{"3", "4", "5", "6"},
					CorrectAnswerIndex: 1,
				},
			},
		},
	}), time.Minute)
	service := app.NewQuizService(engine, quizzes)
	return NewBot(api, service, zap.NewNop()), service
}

func command(text string) tgbotapi.Update {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text:     text,
			Chat:     &tgbotapi.Chat{ID: chatID},
			From:     &tgbotapi.User{ID: 1, FirstName: "Mod"},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
		},
	}
}

func callback(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: userID, FirstName: "Player"},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
			Data:    data,
		},
	}
}
