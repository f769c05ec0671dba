package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_agenda_events",
		SQL: `CREATE TABLE IF NOT EXISTS agenda_events (
  id               UUID        PRIMARY KEY,
  sei_number       TEXT,
  submission_date  TIMESTAMPTZ,
  title            TEXT        NOT NULL,
  requester        TEXT        NOT NULL DEFAULT '',
  location         TEXT        NOT NULL DEFAULT '',
  focal_point      TEXT        NOT NULL DEFAULT '',
  start_time       TIMESTAMPTZ,
  end_time         TIMESTAMPTZ,
  situation        TEXT,
  daily_sei_number TEXT,
  description      TEXT,
  participants     TEXT,
  type             TEXT        NOT NULL DEFAULT 'OUTRO',
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK (end_time IS NULL OR start_time IS NULL OR end_time >= start_time)
);`,
	},
	{
		Name: "create_index_agenda_events_start_time",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agenda_events_start_time ON agenda_events (start_time);`,
	},
	{
		Name: "create_index_agenda_events_submission_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agenda_events_submission_date ON agenda_events (submission_date);`,
	},
	{
		Name: "create_index_agenda_events_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agenda_events_type ON agenda_events (lower(type));`,
	},
	{
		Name: "create_table_event_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS event_attachments (
  id           UUID        PRIMARY KEY,
  event_id     UUID        NOT NULL REFERENCES agenda_events (id) ON DELETE CASCADE,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_event_attachments_event_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_event_attachments_event_id ON event_attachments (event_id);`,
	},
}

// EnsureMigrated checks if the sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check")

	var exists bool
	query := "SELECT to_regclass('public.event_attachments') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("msg_detail", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success", zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
