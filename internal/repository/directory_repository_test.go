package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationRepositoryFindApplicants(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT student_id FROM applications")).
		WithArgs("job-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("s1"))

	ids, err := NewApplicationRepository(db).FindApplicants(context.Background(), "job-1", []string{"s1", "s9"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindApplicantsEmptyInput(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	ids, err := NewApplicationRepository(db).FindApplicants(context.Background(), "job-1", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryGetSummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title")).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "company", "recruiter_id"}).
			AddRow("job-1", "Backend Intern", "Acme", "rec-1"))

	job, err := NewJobRepository(db).GetSummary(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, "rec-1", job.RecruiterID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryListContacts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, full_name FROM users")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name"}).
			AddRow("s1", "s1@example.edu", "Student One").
			AddRow("rec-1", "rec@acme.test", "Recruiter"))

	contacts, err := NewDirectoryRepository(db).ListContacts(context.Background(), []string{"s1", "rec-1"})
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "s1@example.edu", contacts[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositorySenderIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDirectoryRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM coordinator_mail_identities")).
		WithArgs("coord-1").
		WillReturnRows(sqlmock.NewRows([]string{"sender_address", "sender_name", "smtp_username", "smtp_password"}).
			AddRow("tpo@college.edu", "Placement Office", "tpo", "secret"))

	identity, err := repo.SenderIdentity(context.Background(), "coord-1")
	require.NoError(t, err)
	assert.True(t, identity.HasCredentials())

	mock.ExpectQuery(regexp.QuoteMeta("FROM coordinator_mail_identities")).
		WithArgs("coord-2").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.SenderIdentity(context.Background(), "coord-2")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
