package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

// APIHandler exposes the quiz service as the JSON API polled by the browser client.
type APIHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewAPIHandler(service *app.QuizService, logger *zap.Logger) *APIHandler {
	return &APIHandler{service: service, logger: logger}
}

// Register mounts the API routes on r (normally the /api group).
func (h *APIHandler) Register(r gin.IRouter) {
	r.GET("/status", h.Status)
	r.POST("/quiz/load", h.LoadInline)
	r.POST("/quiz/load/:quizId", h.LoadByID)
	r.GET("/quiz/current", h.Current)
	r.POST("/quiz/next", h.Next)
	r.POST("/answer", h.Answer)
	r.GET("/results/:userId", h.Results)
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type loadResponse struct {
	Message        string `json:"message"`
	QuizID         string `json:"quizId"`
	TotalQuestions int    `json:"totalQuestions"`
}

type inlineLoadRequest struct {
	QuizID    string            `json:"quizId" binding:"required"`
	Questions []domain.Question `json:"questions" binding:"required,min=1"`
}

type currentResponse struct {
	Status      domain.Status             `json:"status"`
	Question    *domain.QuestionView      `json:"question,omitempty"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard,omitempty"`
}

type answerRequest struct {
	UserID              string `json:"userId" binding:"required"`
	QuestionIndex       *int   `json:"questionIndex" binding:"required"`
	SelectedAnswerIndex *int   `json:"selectedAnswerIndex" binding:"required"`
}

type answerResponse struct {
	Success           bool   `json:"success"`
	IsCorrect         bool   `json:"isCorrect"`
	Score             int    `json:"score"`
	CorrectAnswerText string `json:"correct_answer_text"`
	Explanation       string `json:"explanation,omitempty"`
}

type answerFailure struct {
	Message   string `json:"message"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
	Score     *int   `json:"score,omitempty"`
}

type resultsResponse struct {
	UserID         string                `json:"userId"`
	QuizID         string                `json:"quizId"`
	TotalQuestions int                   `json:"totalQuestions"`
	CurrentScore   int                   `json:"currentScore"`
	Answers        []domain.AnswerRecord `json:"answers"`
}

func (h *APIHandler) Status(c *gin.Context) {
	_, active, err := h.service.ActiveSession(c.Request.Context())
	if err != nil {
		h.internalError(c, "read session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "API is operational", "quizLoaded": active})
}

// LoadByID loads the quiz named in the path from the configured question source.
func (h *APIHandler) LoadByID(c *gin.Context) {
	quizID := c.Param("quizId")
	session, err := h.service.LoadQuiz(c.Request.Context(), quizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		c.JSON(http.StatusNotFound, messageResponse{Message: domain.Message(err)})
		return
	}
	if err != nil {
		h.logger.Error("load quiz", zap.String("quiz_id", quizID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to load quiz data.", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, loaded(session))
}

// LoadInline starts a quiz from questions carried in the request body.
func (h *APIHandler) LoadInline(c *gin.Context) {
	var req inlineLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: "Malformed quiz payload.", Error: err.Error()})
		return
	}
	session, err := h.service.LoadGame(c.Request.Context(), req.QuizID, req.Questions)
	if errors.Is(err, domain.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, messageResponse{Message: domain.Message(err), Error: err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, "load inline quiz", err)
		return
	}
	c.JSON(http.StatusOK, loaded(session))
}

func (h *APIHandler) Current(c *gin.Context) {
	session, ok, err := h.service.ActiveSession(c.Request.Context())
	if err != nil {
		h.internalError(c, "read session", err)
		return
	}
	if !ok || session.Status == domain.StatusFinished {
		leaderboard := []domain.LeaderboardEntry{}
		if ok {
			leaderboard = app.ComputeLeaderboard(session.UserScores)
		}
		c.JSON(http.StatusOK, gin.H{"status": domain.StatusFinished, "leaderboard": leaderboard})
		return
	}

	question, ok := session.CurrentQuestion()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "No active question found."})
		return
	}
	view := domain.NewQuestionView(question, session.CurrentQuestionIndex, session.TotalQuestions())
	c.JSON(http.StatusOK, currentResponse{Status: session.Status, Question: &view})
}

func (h *APIHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: "Missing user ID, question index, or selected answer index."})
		return
	}

	res, err := h.service.SubmitAnswer(c.Request.Context(), req.UserID, *req.QuestionIndex, *req.SelectedAnswerIndex)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, answerResponse{
			Success:           true,
			IsCorrect:         res.IsCorrect,
			Score:             res.Score,
			CorrectAnswerText: res.CorrectAnswerText,
			Explanation:       res.Explanation,
		})
	case errors.Is(err, domain.ErrAlreadyAnswered):
		c.JSON(http.StatusBadRequest, answerFailure{Message: domain.Message(err), IsCorrect: &res.IsCorrect, Score: &res.Score})
	case errors.Is(err, domain.ErrNoActiveSession), errors.Is(err, domain.ErrQuestionMismatch), errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, answerFailure{Message: domain.Message(err)})
	default:
		h.internalError(c, "submit answer", err)
	}
}

func (h *APIHandler) Next(c *gin.Context) {
	res, err := h.service.AdvanceQuestion(c.Request.Context())
	if err != nil {
		h.internalError(c, "advance question", err)
		return
	}
	if res.Finished {
		leaderboard := res.Leaderboard
		if leaderboard == nil {
			leaderboard = []domain.LeaderboardEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"finished": true, "leaderboard": leaderboard})
		return
	}
	c.JSON(http.StatusOK, gin.H{"finished": false, "question": res.Question})
}

func (h *APIHandler) Results(c *gin.Context) {
	userID := c.Param("userId")
	ctx := c.Request.Context()

	session, ok, err := h.service.ActiveSession(ctx)
	if err != nil {
		h.internalError(c, "read session", err)
		return
	}
	score, answered := session.UserScores[userID]
	if !ok || !answered {
		c.JSON(http.StatusNotFound, messageResponse{Message: "No current game or user data found."})
		return
	}
	c.JSON(http.StatusOK, resultsResponse{
		UserID:         userID,
		QuizID:         session.QuizID,
		TotalQuestions: session.TotalQuestions(),
		CurrentScore:   score.CurrentGameScore,
		Answers:        score.Answers,
	})
}

func (h *APIHandler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, messageResponse{Message: domain.Message(err), Error: fmt.Sprintf("%s failed", op)})
}

func loaded(session domain.Session) loadResponse {
	return loadResponse{
		Message:        fmt.Sprintf("Quiz %q loaded successfully with %d questions.", session.QuizID, session.TotalQuestions()),
		QuizID:         session.QuizID,
		TotalQuestions: session.TotalQuestions(),
	}
}
