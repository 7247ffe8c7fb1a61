package service

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// Envelope is one addressed message. Envelopes with a preset Err are reported as failed without sending.
type Envelope struct {
	RecipientID string
	Role        models.RecipientRole
	Mail        OutboundMail
	Err         error
}

// DispatcherConfig bounds how the dispatcher talks to the mailer.
type DispatcherConfig struct {
	SendTimeout time.Duration
	MaxParallel int
}

// NotificationDispatcher fans envelopes out to the mailer with a per-send deadline.
type NotificationDispatcher struct {
	mailer  Mailer
	cfg     DispatcherConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationDispatcher constructs a dispatcher.
func NewNotificationDispatcher(mailer Mailer, cfg DispatcherConfig, metrics *MetricsService, logger *zap.Logger) *NotificationDispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{mailer: mailer, cfg: cfg, metrics: metrics, logger: logger}
}

// Dispatch sends every envelope and returns one result per envelope, in input order.
// A failed or timed-out send affects only its own recipient.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, stage models.NotificationStage, envelopes []Envelope) models.DeliverySummary {
	results := make([]models.DeliveryResult, len(envelopes))

	p := pool.New().WithMaxGoroutines(d.cfg.MaxParallel)
	for i := range envelopes {
		i := i
		p.Go(func() {
			results[i] = d.deliver(ctx, stage, envelopes[i])
		})
	}
	p.Wait()

	return models.Summarize(stage, results)
}

func (d *NotificationDispatcher) deliver(ctx context.Context, stage models.NotificationStage, env Envelope) models.DeliveryResult {
	result := models.DeliveryResult{RecipientID: env.RecipientID, Email: env.Mail.To, Role: env.Role}

	err := env.Err
	if err == nil {
		err = d.send(ctx, env.Mail)
	}
	if err != nil {
		result.Err = appErrors.Wrap(err, appErrors.ErrDelivery.Code, appErrors.ErrDelivery.Status, appErrors.ErrDelivery.Message)
		d.logger.Warn("interview notification failed",
			zap.String("stage", string(stage)),
			zap.String("recipient", env.RecipientID),
			zap.String("role", string(env.Role)),
			zap.Error(err),
		)
	}
	d.metrics.RecordNotification(stage, env.Role, err == nil)
	return result
}

// send bounds a single mailer call by SendTimeout even when the mailer ignores its context.
func (d *NotificationDispatcher) send(ctx context.Context, msg OutboundMail) (err error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- appErrors.New(appErrors.ErrDelivery.Code, appErrors.ErrDelivery.Status, "mailer panicked")
			}
		}()
		done <- d.mailer.Send(sendCtx, msg)
	}()

	select {
	case err = <-done:
		return err
	case <-sendCtx.Done():
		return sendCtx.Err()
	}
}
