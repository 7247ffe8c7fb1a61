package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
)

var interviewRowColumns = []string{"id", "job_id", "recruiter_id", "applicant_ids", "date_time", "status", "coordinator_id",
	"meeting_reference", "notified_imminent", "created_at", "updated_at", "approved_at"}

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestInterviewRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInterviewRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO interviews")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	interview := &models.Interview{
		JobID:        "job-1",
		RecruiterID:  "rec-1",
		ApplicantIDs: []string{"s1", "s2"},
		DateTime:     when,
	}
	require.NoError(t, repo.Create(context.Background(), interview))
	require.NotEmpty(t, interview.ID)
	assert.Equal(t, models.InterviewStatusPending, interview.Status)

	rows := sqlmock.NewRows(interviewRowColumns).
		AddRow(interview.ID, "job-1", "rec-1", "{s1,s2}", when, "PENDING", nil, nil, false, when, when, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, job_id, recruiter_id")).
		WithArgs(interview.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), interview.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, []string(found.ApplicantIDs))
	assert.Nil(t, found.CoordinatorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryGetByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, job_id")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := NewInterviewRepository(db).GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInterviewRepositoryListPendingExcludesCoordinatorTouched(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	when := time.Now().UTC()
	rows := sqlmock.NewRows(interviewRowColumns).
		AddRow("iv-1", "job-1", "rec-1", "{s1}", when, "PENDING", nil, nil, false, when, when, nil)
	mock.ExpectQuery(`status = \$1 AND coordinator_id IS NULL`).
		WithArgs("PENDING", int64(200)).
		WillReturnRows(rows)

	list, err := NewInterviewRepository(db).ListPending(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "iv-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryListDueForReminder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	target := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	window := models.ReminderWindow{From: target.Add(-time.Minute), To: target.Add(time.Minute)}
	ref := "Room 101"
	rows := sqlmock.NewRows(interviewRowColumns).
		AddRow("iv-1", "job-1", "rec-1", "{s1}", target, "APPROVED", "coord-1", ref, false, target, target, target)
	mock.ExpectQuery(`notified_imminent = FALSE\s+AND meeting_reference IS NOT NULL.*date_time >= \$2 AND date_time < \$3`).
		WithArgs("APPROVED", window.From, window.To).
		WillReturnRows(rows)

	list, err := NewInterviewRepository(db).ListDueForReminder(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].MeetingReference)
	assert.Equal(t, ref, *list[0].MeetingReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryListMissingReference(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	target := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	window := models.ReminderWindow{From: target.Add(-time.Minute), To: target.Add(time.Minute)}
	mock.ExpectQuery(`meeting_reference IS NULL OR meeting_reference = ''`).
		WithArgs("APPROVED", window.From, window.To).
		WillReturnRows(sqlmock.NewRows(interviewRowColumns))

	list, err := NewInterviewRepository(db).ListMissingReference(context.Background(), window)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryApproveIsConditional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInterviewRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(interviewRowColumns).
		AddRow("iv-1", "job-1", "rec-1", "{s1}", now, "APPROVED", "coord-1", nil, false, now, now, now)
	mock.ExpectQuery(`UPDATE interviews\s+SET status = \$2, coordinator_id = \$3.*WHERE id = \$1 AND status = \$5`).
		WithArgs("iv-1", "APPROVED", "coord-1", now, "PENDING").
		WillReturnRows(rows)

	approved, err := repo.Approve(context.Background(), "iv-1", "coord-1", now)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusApproved, approved.Status)
	require.NotNil(t, approved.CoordinatorID)
	assert.Equal(t, "coord-1", *approved.CoordinatorID)

	mock.ExpectQuery(`UPDATE interviews`).
		WithArgs("iv-1", "APPROVED", "coord-2", now, "PENDING").
		WillReturnRows(sqlmock.NewRows(interviewRowColumns))

	_, err = repo.Approve(context.Background(), "iv-1", "coord-2", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryAssignMeetingReference(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(interviewRowColumns).
		AddRow("iv-1", "job-1", "rec-1", "{s1}", now, "APPROVED", "coord-1", "Room 7", false, now, now, now)
	mock.ExpectQuery(`SET meeting_reference = \$2`).
		WithArgs("iv-1", "Room 7", now, "APPROVED").
		WillReturnRows(rows)

	updated, err := NewInterviewRepository(db).AssignMeetingReference(context.Background(), "iv-1", "Room 7", now)
	require.NoError(t, err)
	assert.True(t, updated.HasMeetingReference())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryMarkImminentNotifiedOnce(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInterviewRepository(db)
	now := time.Now().UTC()
	mock.ExpectExec(`SET notified_imminent = TRUE`).
		WithArgs("iv-1", now, "APPROVED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkImminentNotified(context.Background(), "iv-1", now))

	mock.ExpectExec(`SET notified_imminent = TRUE`).
		WithArgs("iv-1", now, "APPROVED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.MarkImminentNotified(context.Background(), "iv-1", now), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryMarkImminentNotifiedRequiresReference(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("AND meeting_reference IS NOT NULL AND meeting_reference <> ''")).
		WithArgs("iv-2", now, "APPROVED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, NewInterviewRepository(db).MarkImminentNotified(context.Background(), "iv-2", now), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryListByParticipant(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(interviewRowColumns).
		AddRow("iv-1", "job-1", "rec-1", "{s1,s2}", now, "APPROVED", "coord-1", nil, false, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("recruiter_id = $2 OR applicant_ids @> ARRAY[$2]::text[]")).
		WithArgs("APPROVED", "s2").
		WillReturnRows(rows)

	list, err := NewInterviewRepository(db).ListByParticipant(context.Background(), "s2", models.InterviewStatusApproved)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
