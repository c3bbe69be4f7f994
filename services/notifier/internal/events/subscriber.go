package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonerrors "github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/errors"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/sink"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// MatchedSubject is the inbound applicant-matched stream.
	MatchedSubject = "applicants.matched"

	StreamName = "APPLICANTS"
	queueGroup = "notifier-service"
)

type Handler struct {
	logger *zap.Logger
	nc     *nats.Conn
	js     nats.JetStreamContext
	tracer trace.Tracer
	sink   *sink.Sink
	config *config.Config
	sub    *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, matchSink *sink.Sink, cfg *config.Config) (*Handler, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &Handler{
		logger: logger,
		nc:     nc,
		js:     js,
		tracer: telemetry.GetTracer("jobmanager/notifier/events"),
		sink:   matchSink,
		config: cfg,
	}, nil
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	if err := h.ensureStream(); err != nil {
		return err
	}

	sub, err := h.js.QueueSubscribe(MatchedSubject, queueGroup, h.handleMatchEvent,
		nats.ManualAck(),
		nats.AckWait(h.config.AckWait),
		nats.MaxDeliver(h.config.MaxRetries+1),
	)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", MatchedSubject, err)
	}

	h.sub = sub
	h.logger.Info("registered match event subscription",
		zap.String("subject", MatchedSubject),
		zap.String("queue", queueGroup))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Drain()
		},
	})

	return nil
}

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

func (h *Handler) handleMatchEvent(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleMatchEvent")
	defer span.End()

	err := h.sink.HandleMatchEvent(ctx, msg.Data)
	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			h.logger.Warn("failed to ack match event", zap.Error(ackErr))
		}
		return
	}

	span.RecordError(err)

	if commonerrors.IsInvalidInput(err) {
		h.deadLetter(ctx, msg.Data, "malformed payload", err)
		if termErr := msg.Term(); termErr != nil {
			h.logger.Warn("failed to terminate malformed match event", zap.Error(termErr))
		}
		return
	}

	delivered := uint64(1)
	if meta, metaErr := msg.Metadata(); metaErr == nil {
		delivered = meta.NumDelivered
	}

	if delivered >= uint64(h.config.MaxRetries+1) {
		h.deadLetter(ctx, msg.Data, "retry budget exhausted", err)
		if termErr := msg.Term(); termErr != nil {
			h.logger.Warn("failed to terminate exhausted match event", zap.Error(termErr))
		}
		return
	}

	delay := h.config.RetryDelay * time.Duration(delivered)
	h.logger.Warn("retrying match event",
		zap.Uint64("delivered", delivered),
		zap.Duration("delay", delay),
		zap.Error(err))
	if nakErr := msg.NakWithDelay(delay); nakErr != nil {
		h.logger.Warn("failed to nak match event", zap.Error(nakErr))
	}
}

func (h *Handler) deadLetter(ctx context.Context, original []byte, reason string, cause error) {
	envelope := map[string]interface{}{
		"original_subject": MatchedSubject,
		"original_data":    string(original),
		"reason":           reason,
		"failed_at":        time.Now().UTC(),
	}
	if cause != nil {
		envelope["error"] = cause.Error()
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to marshal dead letter envelope", zap.Error(err))
		return
	}

	if _, err := h.js.Publish(MatchedSubject+".dlq", data, nats.Context(ctx)); err != nil {
		h.logger.Error("failed to publish dead letter",
			zap.String("reason", reason),
			zap.Error(err))
		return
	}

	h.logger.Warn("match event dead-lettered", zap.String("reason", reason))
}
