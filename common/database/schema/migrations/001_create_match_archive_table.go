package migrations

import "github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/database/schema"

var CreateMatchArchiveTable = schema.Migration{
	Version:     1,
	Description: "Create match_archive table",
	Up: `
		CREATE TABLE IF NOT EXISTS match_archive (
			company_id String,
			applicant_id String,
			applicant_name String,
			first_delivery UInt8,
			processed_at DateTime,
			PRIMARY KEY (company_id)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(processed_at)
		ORDER BY (company_id, applicant_id, processed_at)
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS match_archive`,
}

// All lists every known migration in version order.
var All = []schema.Migration{
	CreateMatchArchiveTable,
}
