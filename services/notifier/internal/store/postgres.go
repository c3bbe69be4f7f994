// Package store persists notifications in PostgreSQL. The unique index on
// (company_id, applicant_id) is what makes duplicate match events harmless
// under concurrent delivery; no read-then-write happens in application code.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const createSchema = `
	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		company_id TEXT NOT NULL,
		applicant_id TEXT NOT NULL,
		applicant_name TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS notifications_company_applicant_key
		ON notifications (company_id, applicant_id);
	CREATE INDEX IF NOT EXISTS notifications_company_created_idx
		ON notifications (company_id, created_at DESC);
`

type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New creates a verified connection pool and bootstraps the schema.
func New(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, createSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap notifications schema: %w", err)
	}

	logger.Info("connected to postgres notification store")

	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// UpsertIfAbsent inserts a notification for the (companyID, applicantID) pair
// unless one already exists. The returned flag reports whether a new row was
// created; on a duplicate the original row comes back untouched, so its
// created_at stays the time of the first processed event.
func (s *Store) UpsertIfAbsent(ctx context.Context, companyID, applicantID, applicantName string) (bool, *models.Notification, error) {
	notification := models.Notification{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		ApplicantID:   applicantID,
		ApplicantName: applicantName,
		Message:       models.MatchMessage(applicantName),
	}

	const insert = `
		INSERT INTO notifications (id, company_id, applicant_id, applicant_name, message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, applicant_id) DO NOTHING
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, insert,
		notification.ID, companyID, applicantID, applicantName, notification.Message,
	).Scan(&notification.CreatedAt)
	if err == nil {
		return true, &notification, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, nil, fmt.Errorf("insert notification: %w", err)
	}

	// Conflict path: someone else won the race, possibly long ago.
	existing, err := s.getByPair(ctx, companyID, applicantID)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (s *Store) getByPair(ctx context.Context, companyID, applicantID string) (*models.Notification, error) {
	const query = `
		SELECT id, company_id, applicant_id, applicant_name, message, read, created_at
		FROM notifications
		WHERE company_id = $1 AND applicant_id = $2`

	var n models.Notification
	err := s.pool.QueryRow(ctx, query, companyID, applicantID).Scan(
		&n.ID, &n.CompanyID, &n.ApplicantID, &n.ApplicantName, &n.Message, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select notification by pair: %w", err)
	}
	return &n, nil
}

// ListByCompany returns every notification for the company, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID string) ([]models.Notification, error) {
	const query = `
		SELECT id, company_id, applicant_id, applicant_name, message, read, created_at
		FROM notifications
		WHERE company_id = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list notifications query: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.ApplicantID, &n.ApplicantName, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}

// MarkRead flips the read flag. It reports false when no such notification
// exists.
func (s *Store) MarkRead(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
