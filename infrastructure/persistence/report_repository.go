package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
)

var _ repository.IReportArchive = (*ReportRepository)(nil)

// ReportRepository archives finished runs. The result summary and the exported
// records are stored as JSONB next to a few queryable columns.
type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts the run, replacing an earlier row with the same run id
func (r *ReportRepository) Save(ctx context.Context, result *dto.ReportResult, report *model.Report) error {
	if r.db == nil {
		return nil
	}
	if result == nil || result.RunID == "" {
		return fmt.Errorf("%w: run id is required", model.ErrInvalidArgument)
	}
	if report == nil {
		report = &model.Report{}
	}
	rawResult, err := json.Marshal(result)
	if err != nil {
		return err
	}
	rawPayload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	q := `INSERT INTO report_runs(run_id, channel_url, handle, channel_id, format, location, video_count, comment_count, degraded_videos, degraded_comments, result, payload, created_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
          ON CONFLICT (run_id) DO UPDATE SET location=EXCLUDED.location, video_count=EXCLUDED.video_count, comment_count=EXCLUDED.comment_count, degraded_videos=EXCLUDED.degraded_videos, degraded_comments=EXCLUDED.degraded_comments, result=EXCLUDED.result, payload=EXCLUDED.payload`
	_, err = r.db.ExecContext(ctx, q,
		result.RunID, result.ChannelURL, result.Handle, result.ChannelID, result.Format, result.Location,
		result.VideoCount, result.CommentCount, result.Degraded.Videos, result.Degraded.Comments,
		rawResult, rawPayload, result.CreatedAt)
	return err
}

// Get returns the summary of one run or model.ErrNotFound
func (r *ReportRepository) Get(ctx context.Context, runID string) (*dto.ReportResult, error) {
	if r.db == nil {
		return nil, model.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT result FROM report_runs WHERE run_id=$1`, runID)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: report %s", model.ErrNotFound, runID)
		}
		return nil, err
	}
	var res dto.ReportResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns run summaries ordered by created_at desc with pagination
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]dto.ReportResult, int64, error) {
	if r.db == nil {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	countRow := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM report_runs`)
	var total int64
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT result FROM report_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]dto.ReportResult, 0, limit)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, err
		}
		var res dto.ReportResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
