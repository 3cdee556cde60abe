package main

import (
	"fmt"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"github.com/fadilmartias/cv-assessor/internal/domain/job"
	"github.com/fadilmartias/cv-assessor/internal/repository"
	"github.com/fadilmartias/cv-assessor/internal/service"
	"github.com/fadilmartias/cv-assessor/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed-jobs",
	Short: "Upsert the job catalog into the jobs table with embeddings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !config.LoadDBConfig().Enabled() {
			return errNoDatabase
		}

		path, _ := cmd.Flags().GetString("catalog")
		if path == "" {
			path = config.LoadQuizConfig().JobCatalogFile
		}
		catalog, err := job.LoadCatalogFile(path)
		if err != nil {
			return err
		}

		db, err := ConnectDB(log)
		if err != nil {
			return err
		}
		if err := migrate(db); err != nil {
			return err
		}

		ctx := cmd.Context()
		var embedder service.Embedder
		if skip, _ := cmd.Flags().GetBool("skip-embeddings"); !skip {
			agent, err := service.NewAgent(ctx, log)
			if err != nil {
				return fmt.Errorf("llm agent: %w", err)
			}
			if embedder, err = service.NewEmbedder(ctx, agent, log); err != nil {
				return err
			}
			if embedder == nil {
				log.Warn("GEMINI_API_KEY not set, seeding jobs without embeddings")
			}
		}

		jobs := usecase.NewJobUsecase(catalog, repository.NewJobRepository(db), embedder, log)
		seeded, err := jobs.Seed(ctx)
		if err != nil {
			return err
		}
		log.Info("jobs seeded", zap.Int("count", seeded))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringP("catalog", "c", "", "YAML job catalog (default JOB_CATALOG_FILE or the built-in jobs)")
	seedCmd.Flags().Bool("skip-embeddings", false, "store jobs without computing embeddings")
}
