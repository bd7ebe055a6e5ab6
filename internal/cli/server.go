package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"edututor-service/internal/app"
	"edututor-service/internal/classroom"
	"edututor-service/internal/config"
	"edututor-service/internal/generator"
	"edututor-service/internal/infra/memory"
	"edututor-service/internal/infra/pinecone"
	pgbank "edututor-service/internal/infra/postgres"
	rediscache "edututor-service/internal/infra/redis"
	transport "edututor-service/internal/transport/http"
	"edututor-service/pkg/logger"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the service",
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

	log := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() {
		_ = log.Sync()
	}()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	// Quiz bank: postgres when configured, in-memory otherwise.
	var bank interface {
		app.QuizBank
		memory.QuizLoader
	} = memory.NewQuizBank()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		bank = pgbank.NewQuizBank(pool)
		log.Info("quiz bank: postgres")
	} else {
		log.Info("quiz bank: in-memory")
	}

	// Quiz content cache in front of the bank.
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes app.QuizSource
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizzes = rediscache.NewQuizCache(client, bank, quizTTL)
		log.Info("quiz cache: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		quizzes = memory.NewQuizCache(bank, quizTTL)
		log.Info("quiz cache: in-memory")
	}

	// Attempt and profile storage: vector index when configured, in-memory
	// otherwise. Both sides must come from the same backend.
	var attempts app.AttemptStore
	var profiles app.ProfileStore
	if cfg.Pinecone.Host != "" {
		index := pinecone.NewIndex(cfg.Pinecone.Host, cfg.Pinecone.APIKey, cfg.Pinecone.Namespace, cfg.Pinecone.Dimension)
		attempts, profiles = index, index
		log.Info("result store: pinecone", zap.String("namespace", cfg.Pinecone.Namespace))
	} else {
		store := memory.NewStore()
		attempts, profiles = store, store
		log.Info("result store: in-memory")
	}

	var gen app.Generator = generator.Template{}
	if cfg.HuggingFace.APIKey != "" && cfg.HuggingFace.Model != "" {
		gen = generator.NewClient(cfg.HuggingFace.BaseURL, cfg.HuggingFace.APIKey, cfg.HuggingFace.Model, log)
		log.Info("generator: inference api", zap.String("model", cfg.HuggingFace.Model))
	} else {
		log.Info("generator: templates")
	}

	service := app.NewStudyService(quizzes, bank, gen, attempts, profiles, log)
	if cfg.Classroom.Enabled {
		service.SetCourseProvider(classroom.NewClient(cfg.Classroom.BaseURL))
		log.Info("classroom sync enabled")
	}

	mux := http.NewServeMux()
	transport.NewHandler(service, log).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
