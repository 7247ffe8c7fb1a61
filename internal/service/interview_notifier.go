package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type jobLookup interface {
	Get(ctx context.Context, id string) (*models.JobSummary, error)
}

type contactDirectory interface {
	ListContacts(ctx context.Context, ids []string) ([]models.Contact, error)
	SenderIdentity(ctx context.Context, coordinatorID string) (*models.SenderIdentity, error)
}

type notificationDispatcher interface {
	Dispatch(ctx context.Context, stage models.NotificationStage, envelopes []Envelope) models.DeliverySummary
}

// InterviewNotifier resolves the recipients of an interview, renders their emails and hands them to the dispatcher.
type InterviewNotifier struct {
	jobs          jobLookup
	directory     contactDirectory
	composer      *NotificationComposer
	dispatcher    notificationDispatcher
	defaultSender models.SenderIdentity
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewInterviewNotifier constructs an InterviewNotifier.
func NewInterviewNotifier(jobs jobLookup, directory contactDirectory, composer *NotificationComposer, dispatcher notificationDispatcher, defaultSender models.SenderIdentity, metrics *MetricsService, logger *zap.Logger) *InterviewNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewNotifier{
		jobs:          jobs,
		directory:     directory,
		composer:      composer,
		dispatcher:    dispatcher,
		defaultSender: defaultSender,
		metrics:       metrics,
		logger:        logger,
	}
}

type addressee struct {
	id   string
	role models.RecipientRole
}

// Notify emails every participant of interview holding one of roles. Individual delivery failures
// are reported in the summary; an error means nothing could be attempted.
func (n *InterviewNotifier) Notify(ctx context.Context, stage models.NotificationStage, interview *models.Interview, roles ...models.RecipientRole) (models.DeliverySummary, error) {
	addressees := collectAddressees(interview, roles)
	if len(addressees) == 0 {
		return models.Summarize(stage, nil), nil
	}

	ids := make([]string, 0, len(addressees))
	for _, a := range addressees {
		ids = append(ids, a.id)
	}
	contacts, err := n.directory.ListContacts(ctx, ids)
	if err != nil {
		return models.DeliverySummary{Stage: stage}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve notification recipients")
	}
	byID := make(map[string]models.Contact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}

	job, err := n.jobs.Get(ctx, interview.JobID)
	if err != nil {
		n.logger.Warn("job summary unavailable for notification", zap.String("interview_id", interview.ID), zap.String("job_id", interview.JobID), zap.Error(err))
		job = nil
	}
	sender := n.sender(ctx, interview.CoordinatorID)

	envelopes := make([]Envelope, 0, len(addressees))
	for _, a := range addressees {
		env := Envelope{RecipientID: a.id, Role: a.role}
		contact, ok := byID[a.id]
		if !ok || contact.Email == "" {
			env.Err = appErrors.Clone(appErrors.ErrDelivery, "no email address on file")
			envelopes = append(envelopes, env)
			continue
		}
		msg, err := n.composer.Compose(stage, a.role, interview, job, contact)
		if err != nil {
			env.Err = err
			envelopes = append(envelopes, env)
			continue
		}
		env.Mail = OutboundMail{To: contact.Email, ToName: contact.FullName, Subject: msg.Subject, HTML: msg.HTML, From: sender}
		envelopes = append(envelopes, env)
	}

	summary := n.dispatcher.Dispatch(ctx, stage, envelopes)
	if summary.PartialFailure() {
		n.metrics.RecordPartialFailure(stage)
		n.logger.Warn("interview notifications partially failed",
			zap.String("interview_id", interview.ID),
			zap.String("stage", string(stage)),
			zap.Int("attempted", summary.Attempted),
			zap.Int("failed", summary.Failed),
			zap.Error(appErrors.ErrNotificationPartialFailure),
		)
	}
	return summary, nil
}

func (n *InterviewNotifier) sender(ctx context.Context, coordinatorID *string) models.SenderIdentity {
	if coordinatorID == nil || *coordinatorID == "" {
		return n.defaultSender
	}
	identity, err := n.directory.SenderIdentity(ctx, *coordinatorID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			n.logger.Warn("sender identity lookup failed", zap.String("coordinator_id", *coordinatorID), zap.Error(err))
		}
		return n.defaultSender
	}
	if identity == nil || identity.Address == "" {
		return n.defaultSender
	}
	if identity.Name == "" {
		identity.Name = n.defaultSender.Name
	}
	return *identity
}

func collectAddressees(interview *models.Interview, roles []models.RecipientRole) []addressee {
	if interview == nil {
		return nil
	}
	var out []addressee
	for _, role := range roles {
		switch role {
		case models.RecipientApplicant:
			for _, id := range interview.ApplicantIDs {
				out = append(out, addressee{id: id, role: role})
			}
		case models.RecipientRecruiter:
			if interview.RecruiterID != "" {
				out = append(out, addressee{id: interview.RecruiterID, role: role})
			}
		}
	}
	return out
}
