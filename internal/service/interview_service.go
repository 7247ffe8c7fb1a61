package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/export"
	"github.com/noah-isme/placement-api/pkg/logger"
)

type interviewStore interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	ListPending(ctx context.Context, limit int) ([]models.Interview, error)
	ListByParticipant(ctx context.Context, userID string, status models.InterviewStatus) ([]models.Interview, error)
	ListApprovedBetween(ctx context.Context, filter models.InterviewRangeFilter) ([]models.Interview, error)
	Approve(ctx context.Context, id, coordinatorID string, at time.Time) (*models.Interview, error)
	AssignMeetingReference(ctx context.Context, id, reference string, at time.Time) (*models.Interview, error)
}

type applicationStore interface {
	FindApplicants(ctx context.Context, jobID string, candidateIDs []string) ([]string, error)
}

type interviewNotifier interface {
	Notify(ctx context.Context, stage models.NotificationStage, interview *models.Interview, roles ...models.RecipientRole) (models.DeliverySummary, error)
}

// jobSource serves cached job summaries for display and uncached ones for ownership checks.
type jobSource interface {
	jobLookup
	GetFresh(ctx context.Context, id string) (*models.JobSummary, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
	ContentType() string
}

// InterviewServiceOption customises an InterviewService.
type InterviewServiceOption func(*InterviewService)

// WithInterviewClock overrides the wall clock.
func WithInterviewClock(clock func() time.Time) InterviewServiceOption {
	return func(s *InterviewService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithScheduleExporters overrides the CSV and PDF renderers used by Export.
func WithScheduleExporters(csv csvRenderer, pdf pdfRenderer) InterviewServiceOption {
	return func(s *InterviewService) {
		if csv != nil {
			s.csv = csv
		}
		if pdf != nil {
			s.pdf = pdf
		}
	}
}

// WithDisplayLocation sets the zone used for export timestamps.
func WithDisplayLocation(loc *time.Location) InterviewServiceOption {
	return func(s *InterviewService) {
		if loc != nil {
			s.location = loc
		}
	}
}

const (
	defaultExportRange = 30 * 24 * time.Hour
	maxExportRange     = 366 * 24 * time.Hour
	exportRowLimit     = 500
	pendingListLimit   = 200
)

// InterviewService orchestrates scheduling, approval and meeting reference assignment.
type InterviewService struct {
	repo         interviewStore
	applications applicationStore
	jobs         jobSource
	notifier     interviewNotifier
	machine      InterviewStateMachine
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
	csv          csvRenderer
	pdf          pdfRenderer
	location     *time.Location
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(repo interviewStore, applications applicationStore, jobs jobSource, notifier interviewNotifier, validate *validator.Validate, logger *zap.Logger, opts ...InterviewServiceOption) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	svc := &InterviewService{
		repo:         repo,
		applications: applications,
		jobs:         jobs,
		notifier:     notifier,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		location:     time.UTC,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Schedule creates an interview. Coordinators create it approved and applicants are notified at once;
// recruiters create it pending and nobody is notified until a coordinator approves.
func (s *InterviewService) Schedule(ctx context.Context, req dto.ScheduleInterviewRequest, actor models.Actor) (*dto.ScheduleInterviewResponse, error) {
	log := logger.WithContext(ctx, s.logger)
	status, err := s.machine.InitialStatus(actor.Role)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid interview payload")
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DateTime))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dateTime must be an RFC3339 timestamp")
	}
	now := s.now()
	if !at.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dateTime must be in the future")
	}

	job, err := s.jobs.GetFresh(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	if actor.Role == models.RoleRecruiter && job.RecruiterID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "recruiters can only schedule interviews for their own jobs")
	}

	requested := uniqueIDs(req.ApplicantIDs)
	applied, err := s.applications.FindApplicants(ctx, job.ID, requested)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check applications")
	}
	valid := keepOrder(requested, applied)
	if len(valid) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoValidApplicants, "")
	}
	if dropped := len(requested) - len(valid); dropped > 0 {
		log.Info("ignored applicants without an application", zap.String("job_id", job.ID), zap.Int("dropped", dropped))
	}

	interview := &models.Interview{
		JobID:        job.ID,
		RecruiterID:  job.RecruiterID,
		ApplicantIDs: valid,
		DateTime:     at.UTC(),
		Status:       status,
	}
	if actor.IsCoordinator() {
		coordinatorID := actor.UserID
		approvedAt := now.UTC()
		interview.CoordinatorID = &coordinatorID
		interview.ApprovedAt = &approvedAt
	}
	if err := s.repo.Create(ctx, interview); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create interview")
	}
	log.Info("interview scheduled",
		zap.String("interview_id", interview.ID),
		zap.String("job_id", interview.JobID),
		zap.String("status", string(interview.Status)),
		zap.Int("applicants", len(valid)),
	)

	resp := &dto.ScheduleInterviewResponse{Interview: interview, AwaitingApproval: status == models.InterviewStatusPending}
	if status != models.InterviewStatusApproved {
		return resp, nil
	}

	summary, err := s.notifier.Notify(ctx, models.StageScheduled, interview, models.RecipientApplicant)
	if err != nil {
		log.Error("scheduled notifications not sent", zap.String("interview_id", interview.ID), zap.Error(err))
		return resp, nil
	}
	resp.NotificationsSent = true
	resp.Delivery = &summary
	return resp, nil
}

// ListPending returns pending interviews awaiting a coordinator, soonest first.
func (s *InterviewService) ListPending(ctx context.Context, actor models.Actor) ([]models.Interview, error) {
	if !actor.IsCoordinator() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators can review pending interviews")
	}
	items, err := s.repo.ListPending(ctx, pendingListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending interviews")
	}
	return nonNil(items), nil
}

// Approve moves a pending interview to approved and notifies every applicant and the recruiter.
// Only the caller whose conditional write succeeds sends notifications.
func (s *InterviewService) Approve(ctx context.Context, id string, actor models.Actor) (*dto.ApproveInterviewResponse, error) {
	log := logger.WithContext(ctx, s.logger)
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.machine.Approve(current.Status, actor.Role); err != nil {
		return nil, err
	}

	approved, err := s.repo.Approve(ctx, id, actor.UserID, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "interview was already processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve interview")
	}
	log.Info("interview approved", zap.String("interview_id", id), zap.String("coordinator_id", actor.UserID))

	resp := &dto.ApproveInterviewResponse{Interview: approved}
	summary, err := s.notifier.Notify(ctx, models.StageScheduled, approved, models.RecipientApplicant, models.RecipientRecruiter)
	if err != nil {
		log.Error("approval notifications not sent", zap.String("interview_id", id), zap.Error(err))
		return resp, nil
	}
	resp.Delivery = &summary
	return resp, nil
}

// AssignMeetingReference records the meeting link or location of an approved interview.
func (s *InterviewService) AssignMeetingReference(ctx context.Context, id string, req dto.AssignMeetingReferenceRequest, actor models.Actor) (*models.Interview, error) {
	if !actor.IsCoordinator() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators can assign meeting references")
	}
	req.Reference = strings.TrimSpace(req.Reference)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "meeting reference is required")
	}

	updated, err := s.repo.AssignMeetingReference(ctx, id, req.Reference, s.now().UTC())
	if err == nil {
		s.logger.Info("meeting reference assigned", zap.String("interview_id", id))
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign meeting reference")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("meeting reference requires an approved interview, this one is %s", current.Status))
}

// ListMine returns approved interviews where the actor is an applicant or the recruiter, soonest first.
func (s *InterviewService) ListMine(ctx context.Context, actor models.Actor) ([]models.Interview, error) {
	if actor.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing user")
	}
	items, err := s.repo.ListByParticipant(ctx, actor.UserID, models.InterviewStatusApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interviews")
	}
	return nonNil(items), nil
}

// Export renders approved interviews in [From, To) as CSV or PDF.
func (s *InterviewService) Export(ctx context.Context, query dto.InterviewExportQuery, actor models.Actor) (*dto.ExportFile, error) {
	if !actor.IsCoordinator() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators can export interview schedules")
	}
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	from, to := query.From, query.To
	if from.IsZero() {
		from = s.now()
	}
	if to.IsZero() {
		to = from.Add(defaultExportRange)
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	if to.Sub(from) > maxExportRange {
		return nil, appErrors.Clone(appErrors.ErrValidation, "export range cannot exceed one year")
	}

	items, err := s.repo.ListApprovedBetween(ctx, models.InterviewRangeFilter{From: from.UTC(), To: to.UTC(), Limit: exportRowLimit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interviews")
	}
	dataset := s.scheduleDataset(ctx, items)

	stamp := from.In(s.location).Format("20060102") + "-" + to.In(s.location).Format("20060102")
	file := &dto.ExportFile{Filename: "interviews-" + stamp + "." + format}
	switch format {
	case "pdf":
		subtitle := fmt.Sprintf("%s to %s (%d interviews)", from.In(s.location).Format("02 Jan 2006"), to.In(s.location).Format("02 Jan 2006"), len(items))
		file.Body, err = s.pdf.Render(dataset, "Interview Schedule", subtitle)
		file.ContentType = s.pdf.ContentType()
	default:
		file.Body, err = s.csv.Render(dataset)
		file.ContentType = s.csv.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

var scheduleHeaders = []string{"Interview", "Date/Time", "Job", "Company", "Recruiter", "Applicants", "Meeting Reference", "Reminder Sent"}

func (s *InterviewService) scheduleDataset(ctx context.Context, items []models.Interview) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	jobs := make(map[string]*models.JobSummary)
	for _, iv := range items {
		job, seen := jobs[iv.JobID]
		if !seen {
			loaded, err := s.jobs.Get(ctx, iv.JobID)
			if err != nil {
				s.logger.Warn("job summary unavailable for export", zap.String("job_id", iv.JobID), zap.Error(err))
			}
			jobs[iv.JobID] = loaded
			job = loaded
		}
		row := map[string]string{
			"Interview":         iv.ID,
			"Date/Time":         iv.DateTime.In(s.location).Format("2006-01-02 15:04 MST"),
			"Job":               iv.JobID,
			"Recruiter":         iv.RecruiterID,
			"Applicants":        strings.Join(iv.ApplicantIDs, ", "),
			"Meeting Reference": "",
			"Reminder Sent":     "no",
		}
		if job != nil {
			row["Job"] = job.Title
			row["Company"] = job.Company
		}
		if iv.HasMeetingReference() {
			row["Meeting Reference"] = *iv.MeetingReference
		}
		if iv.NotifiedImminent {
			row["Reminder Sent"] = "yes"
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: scheduleHeaders, Rows: rows}
}

func (s *InterviewService) load(ctx context.Context, id string) (*models.Interview, error) {
	interview, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "interview not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview")
	}
	return interview, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// keepOrder returns the members of requested that appear in allowed, in requested order.
func keepOrder(requested, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, id := range requested {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func nonNil(items []models.Interview) []models.Interview {
	if items == nil {
		return []models.Interview{}
	}
	return items
}
