// Package archive keeps an append-only ClickHouse log of processed match
// events for offline analytics. It is optional and never on the critical
// path: archive failures are logged and swallowed.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type Archiver struct {
	conn clickhouse.Conn
}

func NewArchiver(conn clickhouse.Conn) *Archiver {
	return &Archiver{conn: conn}
}

// RecordMatch appends one row per processed match event, duplicates included;
// firstDelivery distinguishes the event that actually created a notification.
func (a *Archiver) RecordMatch(ctx context.Context, event models.MatchEvent, firstDelivery bool) error {
	query := `
		INSERT INTO match_archive (
			company_id, applicant_id, applicant_name, first_delivery, processed_at
		) VALUES (?, ?, ?, ?, ?)
	`

	first := uint8(0)
	if firstDelivery {
		first = 1
	}

	if err := a.conn.Exec(ctx, query,
		event.CompanyID,
		event.ApplicantID,
		event.ApplicantName,
		first,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert match archive row: %w", err)
	}

	return nil
}
