package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

const interviewColumns = `id, job_id, recruiter_id, applicant_ids, date_time, status, coordinator_id,
       meeting_reference, notified_imminent, created_at, updated_at, approved_at`

// InterviewRepository persists interview records. Every state change is a conditional
// write keyed on the field being transitioned; a lost race surfaces as sql.ErrNoRows.
type InterviewRepository struct {
	db *sqlx.DB
}

// NewInterviewRepository constructs the repository.
func NewInterviewRepository(db *sqlx.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

// Create inserts a new interview row.
func (r *InterviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	if interview.ID == "" {
		interview.ID = uuid.NewString()
	}
	if interview.Status == "" {
		interview.Status = models.InterviewStatusPending
	}
	now := time.Now().UTC()
	if interview.CreatedAt.IsZero() {
		interview.CreatedAt = now
	}
	interview.UpdatedAt = interview.CreatedAt
	const query = `INSERT INTO interviews
	(id, job_id, recruiter_id, applicant_ids, date_time, status, coordinator_id, meeting_reference, notified_imminent, created_at, updated_at, approved_at)
	VALUES (:id, :job_id, :recruiter_id, :applicant_ids, :date_time, :status, :coordinator_id, :meeting_reference, :notified_imminent, :created_at, :updated_at, :approved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, interview); err != nil {
		return fmt.Errorf("create interview: %w", err)
	}
	return nil
}

// GetByID fetches an interview by identifier.
func (r *InterviewRepository) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`
	var interview models.Interview
	if err := r.db.GetContext(ctx, &interview, query, id); err != nil {
		return nil, err
	}
	return &interview, nil
}

// ListPending returns recruiter-originated requests that no coordinator has acted on yet.
func (r *InterviewRepository) ListPending(ctx context.Context, limit int) ([]models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews
	WHERE status = $1 AND coordinator_id IS NULL
	ORDER BY date_time ASC LIMIT $2`
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, models.InterviewStatusPending, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("list pending interviews: %w", err)
	}
	return interviews, nil
}

// ListByParticipant returns interviews with the given status where userID is the recruiter or an applicant.
func (r *InterviewRepository) ListByParticipant(ctx context.Context, userID string, status models.InterviewStatus) ([]models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews
	WHERE status = $1 AND (recruiter_id = $2 OR applicant_ids @> ARRAY[$2]::text[])
	ORDER BY date_time ASC`
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, status, userID); err != nil {
		return nil, fmt.Errorf("list participant interviews: %w", err)
	}
	return interviews, nil
}

// ListDueForReminder returns approved, not yet reminded interviews with a meeting reference
// whose date_time lies inside window.
func (r *InterviewRepository) ListDueForReminder(ctx context.Context, window models.ReminderWindow) ([]models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews
	WHERE status = $1 AND notified_imminent = FALSE
	  AND meeting_reference IS NOT NULL AND meeting_reference <> ''
	  AND date_time >= $2 AND date_time < $3
	ORDER BY date_time ASC`
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, models.InterviewStatusApproved, window.From, window.To); err != nil {
		return nil, fmt.Errorf("list interviews due for reminder: %w", err)
	}
	return interviews, nil
}

// ListMissingReference returns approved, not yet reminded interviews inside window that still
// have no meeting reference and will therefore miss their reminder.
func (r *InterviewRepository) ListMissingReference(ctx context.Context, window models.ReminderWindow) ([]models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews
	WHERE status = $1 AND notified_imminent = FALSE
	  AND (meeting_reference IS NULL OR meeting_reference = '')
	  AND date_time >= $2 AND date_time < $3
	ORDER BY date_time ASC`
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, models.InterviewStatusApproved, window.From, window.To); err != nil {
		return nil, fmt.Errorf("list interviews missing reference: %w", err)
	}
	return interviews, nil
}

// ListApprovedBetween returns approved interviews scheduled within the filter range.
func (r *InterviewRepository) ListApprovedBetween(ctx context.Context, filter models.InterviewRangeFilter) ([]models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews
	WHERE status = $1 AND date_time >= $2 AND date_time < $3
	ORDER BY date_time ASC LIMIT $4`
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, models.InterviewStatusApproved, filter.From, filter.To, clampLimit(filter.Limit)); err != nil {
		return nil, fmt.Errorf("list approved interviews: %w", err)
	}
	return interviews, nil
}

// Approve moves a pending interview to approved and stamps the coordinator.
// It returns sql.ErrNoRows when the interview is missing or no longer pending.
func (r *InterviewRepository) Approve(ctx context.Context, id, coordinatorID string, at time.Time) (*models.Interview, error) {
	query := `UPDATE interviews
	SET status = $2, coordinator_id = $3, approved_at = $4, updated_at = $4
	WHERE id = $1 AND status = $5
	RETURNING ` + interviewColumns
	var interview models.Interview
	if err := r.db.GetContext(ctx, &interview, query, id, models.InterviewStatusApproved, coordinatorID, at, models.InterviewStatusPending); err != nil {
		return nil, err
	}
	return &interview, nil
}

// AssignMeetingReference overwrites the meeting reference of an approved interview.
// It returns sql.ErrNoRows when the interview is missing or not approved.
func (r *InterviewRepository) AssignMeetingReference(ctx context.Context, id, reference string, at time.Time) (*models.Interview, error) {
	query := `UPDATE interviews
	SET meeting_reference = $2, updated_at = $3
	WHERE id = $1 AND status = $4
	RETURNING ` + interviewColumns
	var interview models.Interview
	if err := r.db.GetContext(ctx, &interview, query, id, reference, at, models.InterviewStatusApproved); err != nil {
		return nil, err
	}
	return &interview, nil
}

// MarkImminentNotified flips notified_imminent once for an approved interview with a meeting
// reference. It returns sql.ErrNoRows when the flag was already set or the interview does not
// qualify, so only one caller ever wins.
func (r *InterviewRepository) MarkImminentNotified(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE interviews
	SET notified_imminent = TRUE, updated_at = $2
	WHERE id = $1 AND notified_imminent = FALSE AND status = $3
	  AND meeting_reference IS NOT NULL AND meeting_reference <> ''`
	result, err := r.db.ExecContext(ctx, query, id, at, models.InterviewStatusApproved)
	if err != nil {
		return fmt.Errorf("mark interview notified: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check interview notified rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 200
	}
	return limit
}
