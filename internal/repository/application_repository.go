package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ApplicationRepository reads the applications owned by the job-application module.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// FindApplicants returns the subset of candidateIDs holding an application for jobID.
func (r *ApplicationRepository) FindApplicants(ctx context.Context, jobID string, candidateIDs []string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT DISTINCT student_id FROM applications
	WHERE job_id = $1 AND student_id = ANY($2)`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, jobID, pq.Array(candidateIDs)); err != nil {
		return nil, fmt.Errorf("find applicants for job %s: %w", jobID, err)
	}
	return ids, nil
}
