package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"
	"yt-channel-report/infrastructure/utils"

	"github.com/google/uuid"
)

// ErrArchiveNotConfigured is returned by read operations when no archive is wired
var ErrArchiveNotConfigured = errors.New("report archive not configured")

// DefaultMaxVideosLimit caps MaxVideos when no limit is configured
const DefaultMaxVideosLimit = 500

// Report formats accepted by Generate
const (
	FormatXLSX   = "xlsx"
	FormatCSV    = "csv"
	FormatGSheet = "gsheet"
)

// IReportUseCase runs the channel report pipeline and exposes archived runs
type IReportUseCase interface {
	Generate(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResult, error)
	GetReport(ctx context.Context, runID string) (*dto.ReportResult, error)
	ListReports(ctx context.Context, req *dto.ReportListRequest) (*dto.ReportListResponse, error)
}

// ReportDefaults fills request fields the caller left empty
type ReportDefaults struct {
	FileName  string
	Format    string
	MaxVideos int64
	// MaxVideosLimit is the largest MaxVideos a request may ask for.
	MaxVideosLimit int64
	WebHost        string
	// OutputDir holds confined reports; "" means the working directory.
	OutputDir string
}

type ReportUseCase struct {
	channels  IChannelUseCase
	videos    IVideoUseCase
	comments  ICommentUseCase
	writers   map[string]repository.IReportWriter
	archive   repository.IReportArchive // optional
	notifiers []repository.IReportNotifier
	defaults  ReportDefaults
}

func NewReportUseCase(
	channels IChannelUseCase,
	videos IVideoUseCase,
	comments ICommentUseCase,
	writers map[string]repository.IReportWriter,
	defaults ReportDefaults,
) *ReportUseCase {
	if defaults.FileName == "" {
		defaults.FileName = "youtube_data.xlsx"
	}
	if defaults.Format == "" {
		defaults.Format = FormatXLSX
	}
	if defaults.MaxVideosLimit <= 0 {
		defaults.MaxVideosLimit = DefaultMaxVideosLimit
	}
	if defaults.MaxVideos <= 0 {
		defaults.MaxVideos = 50
	}
	defaults.MaxVideos = min(defaults.MaxVideos, defaults.MaxVideosLimit)
	if defaults.WebHost == "" {
		defaults.WebHost = DefaultWebHost
	}
	return &ReportUseCase{
		channels: channels,
		videos:   videos,
		comments: comments,
		writers:  writers,
		defaults: defaults,
	}
}

// WithArchive stores every finished run (fluent)
func (u *ReportUseCase) WithArchive(archive repository.IReportArchive) *ReportUseCase {
	u.archive = archive
	return u
}

// WithNotifier announces every finished run; each call adds a notifier (fluent)
func (u *ReportUseCase) WithNotifier(notifier repository.IReportNotifier) *ReportUseCase {
	u.notifiers = append(u.notifiers, notifier)
	return u
}

func (u *ReportUseCase) normalize(req *dto.ReportRequest) (dto.ReportRequest, error) {
	out := *req
	if out.MaxVideos <= 0 {
		out.MaxVideos = u.defaults.MaxVideos
	}
	if out.MaxVideos > u.defaults.MaxVideosLimit {
		return out, fmt.Errorf("%w: max videos %d exceeds the limit of %d", model.ErrInvalidArgument, out.MaxVideos, u.defaults.MaxVideosLimit)
	}
	if out.Format == "" {
		out.Format = u.defaults.Format
	}
	out.Format = strings.ToLower(out.Format)
	// the sheets sink addresses a spreadsheet id, not a file
	if out.Format == FormatGSheet {
		if out.ConfineOutput && out.FileName != "" {
			return out, fmt.Errorf("%w: the spreadsheet is configured server-side", model.ErrInvalidArgument)
		}
		return out, nil
	}

	if out.ConfineOutput {
		name, err := confinedFileName(out.FileName, u.defaults.FileName)
		if err != nil {
			return out, err
		}
		dir := u.defaults.OutputDir
		if dir == "" {
			dir = "."
		}
		out.FileName = filepath.Join(dir, name)
		return out, nil
	}

	if out.FileName == "" {
		out.FileName = u.defaults.FileName
	}
	if u.defaults.OutputDir != "" && !filepath.IsAbs(out.FileName) {
		out.FileName = filepath.Join(u.defaults.OutputDir, filepath.Base(out.FileName))
	}
	return out, nil
}

// confinedFileName accepts a bare file name only, so the report cannot leave the output directory
func confinedFileName(name, fallback string) (string, error) {
	if name == "" {
		return filepath.Base(fallback), nil
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: file name %q must not contain a directory", model.ErrInvalidArgument, name)
	}
	return name, nil
}

// Generate runs handle extraction, channel resolution, video listing, detail and
// comment fetch, and export. It stops before export when the URL is invalid, the
// channel cannot be resolved or it has no videos. Detail and comment failures
// only mark the result as degraded.
func (u *ReportUseCase) Generate(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResult, error) {
	if req == nil || req.ChannelURL == "" {
		return nil, fmt.Errorf("%w: channel url is required", model.ErrInvalidArgument)
	}
	r, err := u.normalize(req)
	if err != nil {
		return nil, err
	}
	writer, ok := u.writers[r.Format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported report format %q", model.ErrInvalidArgument, r.Format)
	}

	handle, err := ExtractChannelHandle(r.ChannelURL, u.defaults.WebHost)
	if err != nil {
		logger.GetLogger().WithField("url", r.ChannelURL).WithField("error", err).Warn("Invalid channel URL")
		return nil, err
	}
	logger.GetLogger().WithField("handle", handle).Info("Extracted channel handle")

	channelID, err := u.channels.ResolveChannelID(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("could not fetch channel id: %w", err)
	}
	logger.GetLogger().WithField("channelId", channelID).Info("Fetched channel ID")

	videoIDs, err := u.channels.ListVideoIDs(ctx, channelID, r.MaxVideos)
	if err != nil {
		return nil, fmt.Errorf("could not list videos: %w", err)
	}
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("%w: no videos found for channel %s", model.ErrNotFound, channelID)
	}

	result := &dto.ReportResult{
		RunID:      uuid.NewString(),
		ChannelURL: r.ChannelURL,
		Handle:     handle,
		ChannelID:  channelID,
		VideoIDs:   videoIDs,
		Format:     r.Format,
	}

	videos, err := u.videos.FetchVideoDetails(ctx, videoIDs)
	if err != nil {
		result.Degraded.Videos = true
	}
	comments, err := u.comments.FetchComments(ctx, videoIDs)
	if err != nil {
		result.Degraded.Comments = true
	}
	if videos == nil {
		videos = []model.VideoRecord{}
	}
	if comments == nil {
		comments = []model.CommentRecord{}
	}
	report := &model.Report{Videos: videos, Comments: comments}

	location, err := writer.Write(ctx, report, r.FileName)
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	result.Location = location
	result.VideoCount = len(videos)
	result.CommentCount = len(comments)
	result.CreatedAt = utils.GetCurrentTime()

	logger.GetLogger().WithFields(map[string]interface{}{
		"runId":    result.RunID,
		"location": location,
		"videos":   result.VideoCount,
		"comments": result.CommentCount,
		"degraded": result.Degraded,
	}).Info("Report exported")

	if u.archive != nil {
		if err := u.archive.Save(ctx, result, report); err != nil {
			logger.GetLogger().WithField("runId", result.RunID).WithField("error", err).Error("Failed to archive report")
		}
	}
	for _, notifier := range u.notifiers {
		if _, err := notifier.NotifyReportCompleted(ctx, result); err != nil {
			logger.GetLogger().WithField("runId", result.RunID).WithField("error", err).Error("Failed to publish report notification")
		}
	}
	return result, nil
}

// GetReport returns an archived run
func (u *ReportUseCase) GetReport(ctx context.Context, runID string) (*dto.ReportResult, error) {
	if u.archive == nil {
		return nil, ErrArchiveNotConfigured
	}
	if runID == "" {
		return nil, fmt.Errorf("%w: run id is required", model.ErrInvalidArgument)
	}
	return u.archive.Get(ctx, runID)
}

// ListReports returns archived runs, newest first
func (u *ReportUseCase) ListReports(ctx context.Context, req *dto.ReportListRequest) (*dto.ReportListResponse, error) {
	if u.archive == nil {
		return nil, ErrArchiveNotConfigured
	}
	limit, offset := 25, 0
	if req != nil {
		if req.Limit > 0 {
			limit = req.Limit
		}
		if req.Offset > 0 {
			offset = req.Offset
		}
	}
	if limit > 100 {
		limit = 100
	}
	items, total, err := u.archive.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.ReportListResponse{Items: items, Total: total}, nil
}
