package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yt-channel-report/infrastructure/logger"
)

// EnsureReportSchema creates the report_runs table and adds columns introduced after
// the first release. Safe to call at startup.
func EnsureReportSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS report_runs (
        run_id TEXT PRIMARY KEY,
        channel_url TEXT NOT NULL,
        handle TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        format TEXT NOT NULL,
        location TEXT NOT NULL,
        video_count INTEGER NOT NULL,
        comment_count INTEGER NOT NULL,
        result JSONB NOT NULL,
        payload JSONB NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create report_runs table: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_report_runs_created_at ON report_runs(created_at DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_report_runs_created_at")
	}

	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"report_runs", "degraded_videos", "ALTER TABLE report_runs ADD COLUMN degraded_videos BOOLEAN NOT NULL DEFAULT FALSE"},
		{"report_runs", "degraded_comments", "ALTER TABLE report_runs ADD COLUMN degraded_comments BOOLEAN NOT NULL DEFAULT FALSE"},
	}
	for _, c := range checks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
