package repository

import (
	"context"
	"time"

	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/model"
)

// IReportWriter writes a report to a sink and returns where it landed
type IReportWriter interface {
	Write(ctx context.Context, report *model.Report, target string) (string, error)
}

// IReportArchive stores finished runs
type IReportArchive interface {
	Save(ctx context.Context, result *dto.ReportResult, report *model.Report) error
	Get(ctx context.Context, runID string) (*dto.ReportResult, error)
	List(ctx context.Context, limit, offset int) ([]dto.ReportResult, int64, error)
}

// IChannelCache caches handle to channel id lookups
type IChannelCache interface {
	// GetChannelID returns "" on a miss.
	GetChannelID(ctx context.Context, handle string) (string, error)
	SetChannelID(ctx context.Context, handle, channelID string, ttl time.Duration) error
}

// IReportNotifier announces finished runs
type IReportNotifier interface {
	NotifyReportCompleted(ctx context.Context, result *dto.ReportResult) (string, error)
}
