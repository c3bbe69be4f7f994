package messaging

import (
	"context"
	"encoding/json"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/errors"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobmanager/matcher/messaging")

const (
	// MatchedSubject carries one event per (company, applicant) match.
	MatchedSubject = "applicants.matched"
)

// Publisher emits match events. Publishing the same event twice is safe: the
// notification sink deduplicates on (companyId, applicantId).
type Publisher interface {
	PublishMatch(ctx context.Context, event models.MatchEvent) error
	Close()
}

type jetStreamPublisher struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

func NewPublisher(nc *nats.Conn, logger *zap.Logger) (Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, errors.Internal("creating JetStream context", err)
	}

	return &jetStreamPublisher{
		js:     js,
		logger: logger,
	}, nil
}

func (p *jetStreamPublisher) PublishMatch(ctx context.Context, event models.MatchEvent) error {
	_, span := tracer.Start(ctx, "PublishMatch")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling match event", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", MatchedSubject),
		telemetry.String("match.company_id", event.CompanyID),
		telemetry.String("match.applicant_id", event.ApplicantID),
	)

	if _, err := p.js.Publish(MatchedSubject, data, nats.Context(ctx)); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish match event",
			zap.String("company_id", event.CompanyID),
			zap.String("applicant_id", event.ApplicantID),
			zap.Error(err))
		return errors.Unavailable("publishing match event", err)
	}

	p.logger.Debug("published match event",
		zap.String("company_id", event.CompanyID),
		zap.String("applicant_id", event.ApplicantID))
	return nil
}

func (p *jetStreamPublisher) Close() {}
