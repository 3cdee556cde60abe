package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Job struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID           string           `gorm:"type:varchar(100);uniqueIndex" json:"job_id"`
	Title           string           `json:"job_title"`
	Company         string           `json:"company"`
	JobType         string           `gorm:"type:varchar(100)" json:"job_type"`
	Description     string           `gorm:"type:text" json:"description"`
	Requirements    string           `gorm:"type:text" json:"requirements"`
	ExperienceLevel string           `gorm:"type:varchar(100)" json:"experience_level"`
	Location        string           `json:"location"`
	Embedding       *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}
