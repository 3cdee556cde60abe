package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"github.com/fadilmartias/cv-assessor/internal/domain/fiber/handler"
	"github.com/fadilmartias/cv-assessor/internal/domain/job"
	"github.com/fadilmartias/cv-assessor/internal/domain/quiz"
	"github.com/fadilmartias/cv-assessor/internal/middleware"
	"github.com/fadilmartias/cv-assessor/internal/repository"
	"github.com/fadilmartias/cv-assessor/internal/service"
	"github.com/fadilmartias/cv-assessor/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default command)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	appConfig := config.LoadAppConfig()
	quizConfig := config.LoadQuizConfig()
	if err := quizConfig.Validate(); err != nil {
		return err
	}

	catalog, err := job.LoadCatalogFile(quizConfig.JobCatalogFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	if config.LoadDBConfig().Enabled() {
		if db, err = ConnectDB(log); err != nil {
			return err
		}
	}

	agent, err := service.NewAgent(ctx, log)
	if err != nil {
		return fmt.Errorf("llm agent: %w", err)
	}
	embedder, err := service.NewEmbedder(ctx, agent, log)
	if err != nil {
		log.Warn("embeddings disabled", zap.Error(err))
		embedder = nil
	}

	var jobStore usecase.JobStore
	if db != nil {
		jobStore = repository.NewJobRepository(db)
	}

	var sessions quiz.Store
	switch quizConfig.Store {
	case config.QuizStorePostgres:
		if db == nil {
			return errors.New("QUIZ_STORE=postgres needs DB_HOST and DB_NAME")
		}
		sessions = repository.NewQuizSessionRepository(db, log)
	default:
		sessions = quiz.NewMemoryStore()
	}

	jobs := usecase.NewJobUsecase(catalog, jobStore, embedder, log)
	cvUC := usecase.NewCVUsecase(agent, jobs, log)
	quizUC := usecase.NewQuizUsecase(agent, sessions, usecase.QuizOptions{
		SessionTTL:    quizConfig.SessionTTL,
		PassThreshold: quizConfig.PassThreshold,
		HideAnswers:   quizConfig.HideAnswers,
	}, log)

	go quizUC.RunJanitor(ctx, janitorInterval)
	go monitorGoroutines(ctx, log)

	app := newApp(appConfig, log)
	handler.NewCVHandler(cvUC, jobs, appConfig.UploadMaxBytes).RegisterRoutes(app)
	handler.NewQuizHandler(quizUC).RegisterRoutes(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("server running",
		zap.String("port", appConfig.Port),
		zap.String("env", appConfig.Env),
		zap.String("quiz_store", quizConfig.Store),
		zap.Int("catalog_jobs", catalog.Len()),
		zap.Bool("vector_search", jobStore != nil && embedder != nil),
	)
	return app.Listen(appConfig.Port)
}

func newApp(appConfig *config.AppConfig, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: appConfig.UploadMaxBytes + 1<<20,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("request failed",
					zap.String("path", ctx.Path()),
					zap.Int("status", code),
					zap.Error(err),
				)
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))
	return app
}

func monitorGoroutines(ctx context.Context, log *zap.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Debug("runtime", zap.Int("goroutines", runtime.NumGoroutine()))
		}
	}
}
