package main

import (
	"fmt"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"github.com/fadilmartias/cv-assessor/internal/logger"
	"github.com/fadilmartias/cv-assessor/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const app = "cv-assessor"

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "cv-assessor parses CVs, matches them to jobs and runs screening quizzes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd)
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	settings := config.Settings()
	_ = settings.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = settings.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// newLogger builds the process logger and installs it as zap's global.
func newLogger() (*zap.Logger, error) {
	settings := config.Settings()
	l, err := logger.New(settings.GetBool("json"), settings.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

func ConnectDB(log *zap.Logger) (*gorm.DB, error) {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	gormConfig := &gorm.Config{}
	if !appConfig.Debug {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not get database instance: %w", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("database connected",
		zap.String("host", dbConfig.Host),
		zap.String("database", dbConfig.Name),
	)
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	if err := db.AutoMigrate(&model.QuizSession{}, &model.Job{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
