package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
)

type stubJobs struct {
	jobs  map[string]*models.JobSummary
	fresh map[string]*models.JobSummary
	err   error
}

// GetFresh serves fresh[id] when set, modelling a cached entry that went stale.
func (s *stubJobs) GetFresh(ctx context.Context, id string) (*models.JobSummary, error) {
	if job, ok := s.fresh[id]; ok {
		clone := *job
		return &clone, nil
	}
	return s.Get(ctx, id)
}

func (s *stubJobs) Get(ctx context.Context, id string) (*models.JobSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

type stubDirectory struct {
	mu        sync.Mutex
	contacts  map[string]models.Contact
	senders   map[string]models.SenderIdentity
	listErr   error
	listCalls int
}

func (s *stubDirectory) ListContacts(ctx context.Context, ids []string) ([]models.Contact, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Contact, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.contacts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubDirectory) SenderIdentity(ctx context.Context, coordinatorID string) (*models.SenderIdentity, error) {
	identity, ok := s.senders[coordinatorID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &identity, nil
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		contacts: map[string]models.Contact{
			"s1":    {ID: "s1", Email: "s1@example.edu", FullName: "Student One"},
			"s2":    {ID: "s2", Email: "s2@example.edu", FullName: "Student Two"},
			"s3":    {ID: "s3", Email: "s3@example.edu", FullName: "Student Three"},
			"rec-1": {ID: "rec-1", Email: "rec-1@example.edu", FullName: "Recruiter One"},
		},
		senders: map[string]models.SenderIdentity{
			"coord-1": {Address: "coord-1@example.edu", Name: "Coordinator One"},
		},
	}
}

func newStubJobs() *stubJobs {
	return &stubJobs{jobs: map[string]*models.JobSummary{
		"job-1": {ID: "job-1", Title: "Backend Intern", Company: "Acme", RecruiterID: "rec-1"},
		"job-2": {ID: "job-2", Title: "Data Analyst", Company: "Globex", RecruiterID: "rec-2"},
	}}
}

var testDefaultSender = models.SenderIdentity{Address: "placements@example.edu", Name: "Placement Cell"}

func newTestNotifier(t *testing.T, mailer Mailer, dir *stubDirectory, jobs *stubJobs) *InterviewNotifier {
	t.Helper()
	dispatcher := NewNotificationDispatcher(mailer, DispatcherConfig{SendTimeout: time.Second, MaxParallel: 4}, nil, nil)
	return NewInterviewNotifier(jobs, dir, newTestComposer(t), dispatcher, testDefaultSender, NewMetricsService(), nil)
}

func notifierInterview() *models.Interview {
	coord := "coord-1"
	ref := "https://meet.example.com/x"
	return &models.Interview{
		ID:               "iv-1",
		JobID:            "job-1",
		RecruiterID:      "rec-1",
		ApplicantIDs:     []string{"s1", "s2"},
		DateTime:         time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC),
		Status:           models.InterviewStatusApproved,
		CoordinatorID:    &coord,
		MeetingReference: &ref,
	}
}

func TestNotifyApplicantsAndRecruiter(t *testing.T) {
	mailer := newStubMailer()
	n := newTestNotifier(t, mailer, newStubDirectory(), newStubJobs())

	summary, err := n.Notify(context.Background(), models.StageScheduled, notifierInterview(), models.RecipientApplicant, models.RecipientRecruiter)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Sent)
	assert.ElementsMatch(t, []string{"s1@example.edu", "s2@example.edu", "rec-1@example.edu"}, mailer.sentTo())
	assert.Equal(t, models.RecipientRecruiter, summary.Results[2].Role)
	for _, msg := range mailer.sent {
		assert.Equal(t, "coord-1@example.edu", msg.From.Address)
	}
}

func TestNotifyReportsUnknownRecipientAsFailed(t *testing.T) {
	mailer := newStubMailer()
	iv := notifierInterview()
	iv.ApplicantIDs = append(iv.ApplicantIDs, "ghost")
	n := newTestNotifier(t, mailer, newStubDirectory(), newStubJobs())

	summary, err := n.Notify(context.Background(), models.StageScheduled, iv, models.RecipientApplicant)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "ghost", summary.Results[2].RecipientID)
	assert.Contains(t, summary.Results[2].Error, "no email address on file")
}

func TestNotifyFallsBackToDefaultSenderAndJob(t *testing.T) {
	mailer := newStubMailer()
	jobs := newStubJobs()
	jobs.err = errors.New("db down")
	iv := notifierInterview()
	other := "coord-unknown"
	iv.CoordinatorID = &other
	n := newTestNotifier(t, mailer, newStubDirectory(), jobs)

	summary, err := n.Notify(context.Background(), models.StageImminent, iv, models.RecipientRecruiter)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, testDefaultSender, mailer.sent[0].From)
	assert.Contains(t, mailer.sent[0].Subject, "the position")
}

func TestNotifyFailsWhenDirectoryUnavailable(t *testing.T) {
	dir := newStubDirectory()
	dir.listErr = errors.New("connection refused")
	n := newTestNotifier(t, newStubMailer(), dir, newStubJobs())

	_, err := n.Notify(context.Background(), models.StageImminent, notifierInterview(), models.RecipientApplicant)
	assert.Error(t, err)
}

func TestNotifyWithoutRecipientsSkipsLookup(t *testing.T) {
	dir := newStubDirectory()
	n := newTestNotifier(t, newStubMailer(), dir, newStubJobs())
	iv := notifierInterview()
	iv.ApplicantIDs = nil

	summary, err := n.Notify(context.Background(), models.StageScheduled, iv, models.RecipientApplicant)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Attempted)
	assert.Equal(t, 0, dir.listCalls)
}
