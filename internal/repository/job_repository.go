package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

// JobRepository reads job postings for interview scheduling and templates.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetSummary loads the fields of a job posting used by the interview pipeline.
func (r *JobRepository) GetSummary(ctx context.Context, id string) (*models.JobSummary, error) {
	const query = `SELECT id, title, COALESCE(company, '') AS company, recruiter_id FROM jobs WHERE id = $1`
	var job models.JobSummary
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}
