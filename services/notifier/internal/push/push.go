// Package push delivers freshly persisted notifications to connected company
// clients over plain NATS subjects. Delivery is best-effort: the persisted
// row, not the push, is the source of truth.
package push

import (
	"context"
	"encoding/json"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobmanager/notifier/push")

const (
	companySubjectPrefix = "notifications.company."
	broadcastSubject     = "notifications.broadcast"
)

type Pusher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func NewPusher(nc *nats.Conn, logger *zap.Logger) *Pusher {
	return &Pusher{
		nc:     nc,
		logger: logger,
	}
}

// PushToCompany publishes the notification on the company's private subject.
func (p *Pusher) PushToCompany(ctx context.Context, companyID string, notification *models.Notification) error {
	_, span := tracer.Start(ctx, "PushToCompany")
	defer span.End()

	data, err := json.Marshal(notification)
	if err != nil {
		span.RecordError(err)
		return err
	}

	subject := companySubjectPrefix + companyID
	span.SetAttributes(telemetry.String("nats.subject", subject))

	if err := p.nc.Publish(subject, data); err != nil {
		span.RecordError(err)
		return err
	}

	p.logger.Debug("pushed notification to company",
		zap.String("company_id", companyID),
		zap.String("notification_id", notification.ID))
	return nil
}

// Broadcast publishes the notification to every connected client. Secondary,
// non-authoritative delivery path.
func (p *Pusher) Broadcast(ctx context.Context, notification *models.Notification) error {
	_, span := tracer.Start(ctx, "Broadcast")
	defer span.End()

	data, err := json.Marshal(notification)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := p.nc.Publish(broadcastSubject, data); err != nil {
		span.RecordError(err)
		return err
	}

	return nil
}
