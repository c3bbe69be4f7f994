// Package sink consumes match events and turns each into at most one durable
// notification plus a best-effort real-time push.
package sink

import (
	"context"
	"encoding/json"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/errors"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobmanager/notifier/sink")

// NotificationStore is the persistence contract. UpsertIfAbsent must be
// atomic under concurrent delivery of the same (companyID, applicantID) pair.
type NotificationStore interface {
	UpsertIfAbsent(ctx context.Context, companyID, applicantID, applicantName string) (bool, *models.Notification, error)
}

// Pusher is the real-time delivery contract.
type Pusher interface {
	PushToCompany(ctx context.Context, companyID string, notification *models.Notification) error
	Broadcast(ctx context.Context, notification *models.Notification) error
}

// MatchArchiver records processed match events for analytics.
type MatchArchiver interface {
	RecordMatch(ctx context.Context, event models.MatchEvent, firstDelivery bool) error
}

type Sink struct {
	store    NotificationStore
	pusher   Pusher
	archiver MatchArchiver
	logger   *zap.Logger
}

// NewSink builds a sink. archiver may be nil when archiving is disabled.
func NewSink(store NotificationStore, pusher Pusher, archiver MatchArchiver, logger *zap.Logger) *Sink {
	return &Sink{
		store:    store,
		pusher:   pusher,
		archiver: archiver,
		logger:   logger,
	}
}

// HandleMatchEvent processes one raw match event. Duplicate deliveries are
// expected and resolve to a no-op: no second row, no second push. Push and
// archive failures never fail the event; persistence alone decides the
// outcome.
func (s *Sink) HandleMatchEvent(ctx context.Context, rawData []byte) error {
	ctx, span := tracer.Start(ctx, "HandleMatchEvent")
	defer span.End()

	var event models.MatchEvent
	if err := json.Unmarshal(rawData, &event); err != nil {
		span.RecordError(err)
		return errors.InvalidInput("decoding match event", err)
	}
	if event.CompanyID == "" || event.ApplicantID == "" {
		return errors.InvalidInput("match event missing companyId or applicantId", nil)
	}

	span.SetAttributes(
		telemetry.String("match.company_id", event.CompanyID),
		telemetry.String("match.applicant_id", event.ApplicantID),
	)

	created, notification, err := s.store.UpsertIfAbsent(ctx, event.CompanyID, event.ApplicantID, event.ApplicantName)
	if err != nil {
		span.RecordError(err)
		return errors.Unavailable("persisting notification", err)
	}
	span.SetAttributes(telemetry.Bool("notification.created", created))

	if created {
		s.deliver(ctx, event.CompanyID, notification)
	} else {
		s.logger.Debug("duplicate match event, notification already exists",
			zap.String("company_id", event.CompanyID),
			zap.String("applicant_id", event.ApplicantID),
			zap.String("notification_id", notification.ID))
	}

	if s.archiver != nil {
		if err := s.archiver.RecordMatch(ctx, event, created); err != nil {
			s.logger.Warn("failed to archive match event",
				zap.String("company_id", event.CompanyID),
				zap.String("applicant_id", event.ApplicantID),
				zap.Error(err))
		}
	}

	return nil
}

// deliver pushes the new notification out. The row is already durable, so
// every failure here is log-and-continue.
func (s *Sink) deliver(ctx context.Context, companyID string, notification *models.Notification) {
	if err := s.pusher.PushToCompany(ctx, companyID, notification); err != nil {
		s.logger.Warn("failed to push notification to company",
			zap.String("company_id", companyID),
			zap.String("notification_id", notification.ID),
			zap.Error(err))
	}

	if err := s.pusher.Broadcast(ctx, notification); err != nil {
		s.logger.Warn("failed to broadcast notification",
			zap.String("notification_id", notification.ID),
			zap.Error(err))
	}

	s.logger.Info("notification created",
		zap.String("company_id", companyID),
		zap.String("applicant_id", notification.ApplicantID),
		zap.String("notification_id", notification.ID))
}
