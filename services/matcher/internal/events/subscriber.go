package events

import (
	"context"
	"fmt"
	"time"

	commonerrors "github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/errors"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/consumer"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/messaging"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// CreatedSubject is the inbound applicant-created stream.
	CreatedSubject = "applicants.created"

	StreamName = "APPLICANTS"
	queueGroup = "matcher-service"
)

type Handler struct {
	logger     *zap.Logger
	nc         *nats.Conn
	js         nats.JetStreamContext
	tracer     trace.Tracer
	consumer   *consumer.Consumer
	deadLetter *messaging.DeadLetter
	config     *config.Config
	sub        *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, applicantConsumer *consumer.Consumer, cfg *config.Config) (*Handler, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &Handler{
		logger:     logger,
		nc:         nc,
		js:         js,
		tracer:     telemetry.GetTracer("jobmanager/matcher/events"),
		consumer:   applicantConsumer,
		deadLetter: messaging.NewDeadLetter(js, logger),
		config:     cfg,
	}, nil
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	if err := h.ensureStream(); err != nil {
		return err
	}

	sub, err := h.js.QueueSubscribe(CreatedSubject, queueGroup, h.handleApplicantCreated,
		nats.ManualAck(),
		nats.AckWait(h.config.AckWait),
		nats.MaxDeliver(h.config.MaxRetries+1),
	)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", CreatedSubject, err)
	}

	h.sub = sub
	h.logger.Info("registered applicant event subscription",
		zap.String("subject", CreatedSubject),
		zap.String("queue", queueGroup))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Drain lets in-flight handlers finish before the process exits.
			return h.sub.Drain()
		},
	})

	return nil
}

// ensureStream creates the applicant stream if this is the first service to
// come up against an empty JetStream.
func (h *Handler) ensureStream() error {
	_, err := h.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if err != nats.ErrStreamNotFound {
		return fmt.Errorf("lookup stream %s: %w", StreamName, err)
	}

	_, err = h.js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"applicants.>"},
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}

	h.logger.Info("created JetStream stream", zap.String("stream", StreamName))
	return nil
}

func (h *Handler) handleApplicantCreated(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleApplicantCreated")
	defer span.End()

	err := h.consumer.ProcessApplicantCreated(ctx, msg.Data)
	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			h.logger.Warn("failed to ack applicant created event", zap.Error(ackErr))
		}
		return
	}

	span.RecordError(err)

	if commonerrors.IsInvalidInput(err) {
		// Broken payloads never become processable; drop them where an
		// operator can still find them.
		h.deadLetter.Send(ctx, CreatedSubject, msg.Data, "malformed payload", err)
		if termErr := msg.Term(); termErr != nil {
			h.logger.Warn("failed to terminate malformed event", zap.Error(termErr))
		}
		return
	}

	delivered := uint64(1)
	if meta, metaErr := msg.Metadata(); metaErr == nil {
		delivered = meta.NumDelivered
	}

	if delivered >= uint64(h.config.MaxRetries+1) {
		h.deadLetter.Send(ctx, CreatedSubject, msg.Data, "retry budget exhausted", err)
		if termErr := msg.Term(); termErr != nil {
			h.logger.Warn("failed to terminate exhausted event", zap.Error(termErr))
		}
		return
	}

	delay := h.config.RetryDelay * time.Duration(delivered)
	h.logger.Warn("retrying applicant created event",
		zap.Uint64("delivered", delivered),
		zap.Duration("delay", delay),
		zap.Error(err))
	if nakErr := msg.NakWithDelay(delay); nakErr != nil {
		h.logger.Warn("failed to nak applicant created event", zap.Error(nakErr))
	}
}
