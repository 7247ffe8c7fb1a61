package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type reminderStore interface {
	ListDueForReminder(ctx context.Context, window models.ReminderWindow) ([]models.Interview, error)
	ListMissingReference(ctx context.Context, window models.ReminderWindow) ([]models.Interview, error)
	MarkImminentNotified(ctx context.Context, id string, at time.Time) error
}

// ReminderConfig positions the reminder window relative to the tick time.
type ReminderConfig struct {
	Lead      time.Duration
	Tolerance time.Duration
}

// ReminderService sends the "starting soon" notification for approved interviews.
type ReminderService struct {
	repo     reminderStore
	notifier interviewNotifier
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ReminderConfig
	clock    func() time.Time

	mu sync.Mutex
}

// NewReminderService constructs a ReminderService.
func NewReminderService(repo reminderStore, notifier interviewNotifier, metrics *MetricsService, logger *zap.Logger, cfg ReminderConfig) *ReminderService {
	if cfg.Lead <= 0 {
		cfg.Lead = 30 * time.Minute
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{repo: repo, notifier: notifier, metrics: metrics, logger: logger, cfg: cfg, clock: time.Now}
}

// Window returns the interview times a tick at now is responsible for.
func (s *ReminderService) Window(now time.Time) models.ReminderWindow {
	target := now.Add(s.cfg.Lead)
	return models.ReminderWindow{From: target.Add(-s.cfg.Tolerance), To: target.Add(s.cfg.Tolerance)}
}

// Run adapts Tick to the periodic runner.
func (s *ReminderService) Run(ctx context.Context, now time.Time) error {
	_, err := s.Tick(ctx, now)
	return err
}

// Tick notifies every due interview once. Ticks are serialised; a failure on one interview
// does not stop the others, and an interview whose notifications could not be attempted stays
// eligible for the next tick. A started tick runs to completion even if ctx is cancelled,
// so sends and their notified flag are never split.
func (s *ReminderService) Tick(ctx context.Context, now time.Time) (*dto.ReminderRunResponse, error) {
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.clock()
	defer func() { s.metrics.ObserveReminderTick(s.clock().Sub(start)) }()

	window := s.Window(now)
	report := &dto.ReminderRunResponse{RanAt: now.UTC()}

	candidates, err := s.repo.ListDueForReminder(ctx, window)
	if err != nil {
		return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reminder candidates")
	}

	for i := range candidates {
		interview := candidates[i]
		if !eligibleForReminder(&interview, window) {
			continue
		}
		report.Candidates++
		outcome := s.process(ctx, &interview)
		s.metrics.RecordReminderOutcome(outcome)
		switch outcome {
		case ReminderOutcomeNotified:
			report.Notified++
		case ReminderOutcomeFailed, ReminderOutcomePanicked:
			report.Failed++
		}
	}

	report.MissingReference = s.reportMissingReferences(ctx, window)
	if report.Candidates > 0 || report.MissingReference > 0 {
		s.logger.Info("reminder tick complete",
			zap.Time("window_from", window.From),
			zap.Time("window_to", window.To),
			zap.Int("candidates", report.Candidates),
			zap.Int("notified", report.Notified),
			zap.Int("failed", report.Failed),
			zap.Int("missing_reference", report.MissingReference),
		)
	}
	return report, nil
}

func (s *ReminderService) process(ctx context.Context, interview *models.Interview) (outcome string) {
	log := s.logger.With(zap.String("interview_id", interview.ID))
	defer func() {
		if r := recover(); r != nil {
			log.Error("reminder processing panicked", zap.Error(fmt.Errorf("%v", r)), zap.Stack("stack"))
			outcome = ReminderOutcomePanicked
		}
	}()

	summary, err := s.notifier.Notify(ctx, models.StageImminent, interview, models.RecipientApplicant, models.RecipientRecruiter)
	if err != nil {
		log.Error("imminent notifications not attempted", zap.Error(err))
		return ReminderOutcomeFailed
	}

	if err := s.repo.MarkImminentNotified(ctx, interview.ID, s.clock().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("interview already flagged by a concurrent tick")
			return ReminderOutcomeRaced
		}
		log.Error("failed to flag interview as notified", zap.Error(err))
		return ReminderOutcomeFailed
	}

	log.Info("imminent notifications sent", zap.Int("sent", summary.Sent), zap.Int("failed", summary.Failed))
	return ReminderOutcomeNotified
}

func (s *ReminderService) reportMissingReferences(ctx context.Context, window models.ReminderWindow) int {
	missing, err := s.repo.ListMissingReference(ctx, window)
	if err != nil {
		s.logger.Warn("missing reference check failed", zap.Error(err))
		return 0
	}
	for _, interview := range missing {
		s.metrics.RecordMissingReference()
		s.logger.Warn("approved interview is about to start without a meeting reference",
			zap.String("interview_id", interview.ID),
			zap.Time("date_time", interview.DateTime),
		)
	}
	return len(missing)
}

func eligibleForReminder(interview *models.Interview, window models.ReminderWindow) bool {
	return interview.Status == models.InterviewStatusApproved &&
		!interview.NotifiedImminent &&
		interview.HasMeetingReference() &&
		window.Contains(interview.DateTime)
}
