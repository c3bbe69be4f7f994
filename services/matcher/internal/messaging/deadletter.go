package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// DeadLetterEnvelope wraps a message that exhausted its processing budget so
// the original payload and the failure reason stay inspectable.
type DeadLetterEnvelope struct {
	OriginalSubject string    `json:"original_subject"`
	OriginalData    string    `json:"original_data"`
	Reason          string    `json:"reason"`
	Error           string    `json:"error,omitempty"`
	FailedAt        time.Time `json:"failed_at"`
}

// DeadLetter forwards unprocessable messages to a companion ".dlq" subject.
type DeadLetter struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

func NewDeadLetter(js nats.JetStreamContext, logger *zap.Logger) *DeadLetter {
	return &DeadLetter{
		js:     js,
		logger: logger,
	}
}

func (d *DeadLetter) Send(ctx context.Context, subject string, original []byte, reason string, cause error) {
	envelope := DeadLetterEnvelope{
		OriginalSubject: subject,
		OriginalData:    string(original),
		Reason:          reason,
		FailedAt:        time.Now().UTC(),
	}
	if cause != nil {
		envelope.Error = cause.Error()
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		d.logger.Error("failed to marshal dead letter envelope", zap.Error(err))
		return
	}

	if _, err := d.js.Publish(subject+".dlq", data, nats.Context(ctx)); err != nil {
		d.logger.Error("failed to publish dead letter",
			zap.String("subject", subject),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}

	d.logger.Warn("message dead-lettered",
		zap.String("subject", subject),
		zap.String("reason", reason))
}
