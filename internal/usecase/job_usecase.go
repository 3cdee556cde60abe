package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/cv-assessor/internal/domain/job"
	"github.com/fadilmartias/cv-assessor/internal/model"
	"github.com/fadilmartias/cv-assessor/internal/repository"
	"github.com/fadilmartias/cv-assessor/internal/response"
	"github.com/fadilmartias/cv-assessor/internal/service"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const defaultCandidateJobs = 10

// JobStore is the persisted, embedded copy of the job catalog.
type JobStore interface {
	SearchJobs(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.Job, error)
	UpsertJob(ctx context.Context, j *model.Job) error
}

var ErrNoJobStore = errors.New("job store is not configured")

type JobUsecase struct {
	catalog  *job.Catalog
	store    JobStore
	embedder service.Embedder
	logger   *zap.Logger
	topK     int
}

// NewJobUsecase wires the catalog. store and embedder may be nil, in which
// case candidates always come from the in-memory catalog.
func NewJobUsecase(catalog *job.Catalog, store JobStore, embedder service.Embedder, logger *zap.Logger) *JobUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobUsecase{
		catalog:  catalog,
		store:    store,
		embedder: embedder,
		logger:   logger.Named("jobs"),
		topK:     defaultCandidateJobs,
	}
}

func (uc *JobUsecase) List(page, pageSize int) ([]job.Posting, *response.Pagination) {
	pagination := response.NewPagination(page, pageSize, int64(uc.catalog.Len()))
	return uc.catalog.Page(pagination.Page, pagination.PageSize), pagination
}

// Candidates returns the jobs to match a CV against. With a job store and an
// embedder the catalog is pre-ranked by vector distance to the CV.
func (uc *JobUsecase) Candidates(ctx context.Context, parsedCV map[string]any) []map[string]any {
	if uc.store == nil || uc.embedder == nil {
		return uc.catalog.Maps()
	}

	embedding, err := uc.embedder.GenerateEmbedding(ctx, promptJSON(parsedCV))
	if err != nil {
		uc.logger.Warn("cv embedding failed, using full catalog", zap.Error(err))
		return uc.catalog.Maps()
	}

	rows, err := uc.store.SearchJobs(ctx, pgvector.NewVector(embedding), uc.topK)
	if err != nil {
		uc.logger.Warn("job search failed, using full catalog", zap.Error(err))
		return uc.catalog.Maps()
	}
	if len(rows) == 0 {
		return uc.catalog.Maps()
	}

	jobs := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, repository.JobToPosting(row).Map())
	}
	uc.logger.Debug("catalog pre-ranked", zap.Int("candidates", len(jobs)))
	return jobs
}

// Seed upserts every catalog posting into the job store, with an embedding
// when an embedder is configured.
func (uc *JobUsecase) Seed(ctx context.Context) (int, error) {
	if uc.store == nil {
		return 0, ErrNoJobStore
	}

	seeded := 0
	for _, p := range uc.catalog.All() {
		var embedding []float32
		if uc.embedder != nil {
			e, err := uc.embedder.GenerateEmbedding(ctx, p.EmbeddingText())
			if err != nil {
				return seeded, fmt.Errorf("embed job %s: %w", p.ID, err)
			}
			embedding = e
		}

		row := repository.PostingToJob(p, embedding)
		if err := uc.store.UpsertJob(ctx, &row); err != nil {
			return seeded, fmt.Errorf("upsert job %s: %w", p.ID, err)
		}
		seeded++
		uc.logger.Info("job seeded",
			zap.String("job_id", p.ID),
			zap.String("job_title", p.Title),
			zap.Bool("embedded", embedding != nil),
		)
	}
	return seeded, nil
}
