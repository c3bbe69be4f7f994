// Package consumer turns one applicant-created event into zero or more match
// events: decode, fetch the profile directory, run the matching engine, fan
// out one emission per matching company.
package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/errors"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/directory"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/engine"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/messaging"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobmanager/matcher/consumer")

type Consumer struct {
	directory directory.Client
	publisher messaging.Publisher
	logger    *zap.Logger
	config    *config.Config
}

func NewConsumer(directoryClient directory.Client, publisher messaging.Publisher, logger *zap.Logger, cfg *config.Config) *Consumer {
	return &Consumer{
		directory: directoryClient,
		publisher: publisher,
		logger:    logger,
		config:    cfg,
	}
}

// ProcessApplicantCreated runs the full pipeline for one raw event.
//
// The error class tells the subscriber what to do with the message:
// INVALID_INPUT means the payload is beyond repair and must be dead-lettered;
// UNAVAILABLE means the directory could not be read and the message must be
// redelivered. A nil return means every emission was attempted and the
// message can be acknowledged, even if some individual emissions failed.
func (c *Consumer) ProcessApplicantCreated(ctx context.Context, rawData []byte) error {
	ctx, span := tracer.Start(ctx, "ProcessApplicantCreated")
	defer span.End()

	var event models.ApplicantCreatedEvent
	if err := json.Unmarshal(rawData, &event); err != nil {
		span.RecordError(err)
		return errors.InvalidInput("decoding applicant created event", err)
	}
	if event.ApplicantID == "" {
		return errors.InvalidInput("applicant created event missing applicantId", nil)
	}

	snapshot := event.ToSnapshot()
	span.SetAttributes(telemetry.String("applicant.id", snapshot.ApplicantID))

	profiles, err := c.directory.GetAllSearchProfiles(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(telemetry.Int("profiles.count", len(profiles)))

	companyIDs := engine.FindMatchingCompanies(snapshot, profiles)
	span.SetAttributes(telemetry.Int("matches.count", len(companyIDs)))

	if len(companyIDs) == 0 {
		c.logger.Info("no matching companies for applicant",
			zap.String("applicant_id", snapshot.ApplicantID),
			zap.Int("profiles", len(profiles)))
		return nil
	}

	emitted, failed := c.emitMatches(ctx, snapshot, companyIDs)

	c.logger.Info("finished processing applicant created event",
		zap.String("applicant_id", snapshot.ApplicantID),
		zap.Int("matches", len(companyIDs)),
		zap.Int("emitted", emitted),
		zap.Int("failed", failed))

	return nil
}

// emitMatches publishes one match event per company through a bounded worker
// pool. A failed emission for one company never blocks or fails the others.
func (c *Consumer) emitMatches(ctx context.Context, snapshot models.ApplicantSnapshot, companyIDs []string) (int, int) {
	var emitted, failed int32

	workers := c.config.EmitWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(companyIDs) {
		workers = len(companyIDs)
	}

	companyChan := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for companyID := range companyChan {
				event := models.MatchEvent{
					CompanyID:     companyID,
					ApplicantID:   snapshot.ApplicantID,
					ApplicantName: snapshot.DisplayName,
				}
				if err := c.emitWithRetry(ctx, event); err != nil {
					atomic.AddInt32(&failed, 1)
					c.logger.Error("failed to emit match event",
						zap.String("company_id", companyID),
						zap.String("applicant_id", snapshot.ApplicantID),
						zap.Error(err))
					continue
				}
				atomic.AddInt32(&emitted, 1)
			}
		}()
	}

	for _, companyID := range companyIDs {
		companyChan <- companyID
	}
	close(companyChan)
	wg.Wait()

	return int(emitted), int(failed)
}

func (c *Consumer) emitWithRetry(ctx context.Context, event models.MatchEvent) error {
	var lastErr error

	attempts := c.config.EmitRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		if lastErr = c.publisher.PublishMatch(ctx, event); lastErr == nil {
			return nil
		}
	}

	return lastErr
}
