package repository

import (
	"testing"

	"github.com/fadilmartias/cv-assessor/internal/domain/job"
)

func TestPostingJobConversion(t *testing.T) {
	p := job.DefaultPostings()[2]

	j := PostingToJob(p, []float32{0.1, 0.2})
	if j.JobID != "3" || j.Title != "DevOps Engineer" || j.Location != "Sfax, Tunisia" {
		t.Fatalf("unexpected job row: %+v", j)
	}
	if j.Embedding == nil || len(j.Embedding.Slice()) != 2 {
		t.Fatalf("expected embedding to be set")
	}
	if got := JobToPosting(j); got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}

	if PostingToJob(p, nil).Embedding != nil {
		t.Fatalf("expected nil embedding when none was generated")
	}
}
