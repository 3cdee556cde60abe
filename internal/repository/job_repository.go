package repository

import (
	"context"
	"fmt"

	"github.com/fadilmartias/cv-assessor/internal/domain/job"
	"github.com/fadilmartias/cv-assessor/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// SearchJobs returns the topK embedded jobs closest to embedding.
func (r *JobRepository) SearchJobs(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.Job, error) {
	var jobs []model.Job

	err := r.db.WithContext(ctx).Raw(`
        SELECT *
        FROM jobs
        WHERE embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, topK).Scan(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	return jobs, nil
}

// UpsertJob inserts the job or refreshes the row holding the same job_id.
func (r *JobRepository) UpsertJob(ctx context.Context, j *model.Job) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "company", "job_type", "description", "requirements",
				"experience_level", "location", "embedding", "updated_at",
			}),
		}).
		Create(j).Error
}

func (r *JobRepository) FindJobByJobID(ctx context.Context, jobID string) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).First(&j, "job_id = ?", jobID).Error
	return &j, err
}

func (r *JobRepository) CountJobs(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Job{}).Count(&total).Error
	return total, err
}

func (r *JobRepository) GetJobs(ctx context.Context, offset, limit int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Order("job_id").
		Offset(offset).
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func JobToPosting(j model.Job) job.Posting {
	return job.Posting{
		ID:              j.JobID,
		Title:           j.Title,
		Company:         j.Company,
		Type:            j.JobType,
		Description:     j.Description,
		Requirements:    j.Requirements,
		ExperienceLevel: j.ExperienceLevel,
		Location:        j.Location,
	}
}

func PostingToJob(p job.Posting, embedding []float32) model.Job {
	j := model.Job{
		JobID:           p.ID,
		Title:           p.Title,
		Company:         p.Company,
		JobType:         p.Type,
		Description:     p.Description,
		Requirements:    p.Requirements,
		ExperienceLevel: p.ExperienceLevel,
		Location:        p.Location,
	}
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		j.Embedding = &v
	}
	return j
}
