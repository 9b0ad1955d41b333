package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
	pgloader "trivia-service/internal/infra/postgres"
	redisinfra "trivia-service/internal/infra/redis"
	"trivia-service/internal/infra/sheets"
	transport "trivia-service/internal/transport/http"
	"trivia-service/internal/transport/telegram"
)

const (
	defaultSessionTTL = 2 * time.Hour
	defaultQuizTTL    = 10 * time.Minute
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server (HTTP API and, when configured, the Telegram bot)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := newQuizLoader(ctx, cfg, pool, logger)
	if err != nil {
		return err
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, defaultQuizTTL)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, defaultSessionTTL)
	var store app.SessionStore
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore(sessionTTL)
	}
	service := app.NewQuizService(app.NewEngine(store), quizRepo)

	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(transport.NewAPIHandler(service, logger), transport.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		StaticDir:   cfg.Server.StaticDir,
	}, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		logger.Info("telegram bot authorised", zap.String("account", api.Self.UserName))
		go telegram.NewBot(api, service, logger).Run(runCtx)
	}

	go func() {
		logger.Info("starting trivia service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-runCtx.Done():
		logger.Info("context canceled, shutting down server")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// newQuizLoader picks the question source: spreadsheet, then Postgres, then a YAML file,
// then the built-in sample.
func newQuizLoader(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (memory.QuizLoader, error) {
	switch {
	case cfg.Sheets.SpreadsheetID != "":
		opts := []option.ClientOption{}
		if cfg.Sheets.APIKey != "" {
			opts = append(opts, option.WithAPIKey(cfg.Sheets.APIKey))
		}
		svc, err := sheetsapi.NewService(ctx, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("questions from spreadsheet", zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
		return sheets.NewQuizLoader(svc, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range, logger), nil
	case pool != nil:
		logger.Info("questions from postgres")
		return pgloader.NewQuizLoader(pool, logger), nil
	case cfg.Quiz.File != "":
		logger.Info("questions from file", zap.String("path", cfg.Quiz.File))
		return memory.NewStaticQuizLoaderFromFile(cfg.Quiz.File)
	default:
		logger.Info("questions from built-in sample")
		return memory.NewStaticQuizLoader(sampleQuizzes()), nil
	}
}

// sampleQuizzes lets the service run with no question source configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"sample": {
			ID: "sample",
			Questions: []domain.Question{
				{
					Text:               "What is 2 + 2?",
					Options:            []string{"3", "4", "5", "22"},
					CorrectAnswerIndex: 1,
				},
				{
					Text:               "What is the capital of France?",
					Options:            []string{"Paris", "Rome", "Berlin", "Madrid"},
					CorrectAnswerIndex: 0,
					MoreInfoLink:       "https://en.wikipedia.org/wiki/Paris",
				},
			},
		},
	}
}
