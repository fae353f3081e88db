package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
)

type MockYouTube struct {
	mock.Mock
}

func (m *MockYouTube) SearchChannelIDs(ctx context.Context, query string) ([]string, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockYouTube) GetUploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.Error(1)
}

func (m *MockYouTube) ListPlaylistVideoIDs(ctx context.Context, playlistID string, maxResults int64, pageToken string) (*repository.VideoPage, error) {
	args := m.Called(ctx, playlistID, maxResults, pageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.VideoPage), args.Error(1)
}

func (m *MockYouTube) ListVideos(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error) {
	args := m.Called(ctx, videoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoRecord), args.Error(1)
}

func (m *MockYouTube) ListCommentThreads(ctx context.Context, videoID string, maxResults int64) ([]model.CommentThread, error) {
	args := m.Called(ctx, videoID, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CommentThread), args.Error(1)
}

type MockChannelCache struct {
	mock.Mock
}

func (m *MockChannelCache) GetChannelID(ctx context.Context, handle string) (string, error) {
	args := m.Called(ctx, handle)
	return args.String(0), args.Error(1)
}

func (m *MockChannelCache) SetChannelID(ctx context.Context, handle, channelID string, ttl time.Duration) error {
	args := m.Called(ctx, handle, channelID, ttl)
	return args.Error(0)
}

type MockReportWriter struct {
	mock.Mock
}

func (m *MockReportWriter) Write(ctx context.Context, report *model.Report, target string) (string, error) {
	args := m.Called(ctx, report, target)
	return args.String(0), args.Error(1)
}

type MockReportArchive struct {
	mock.Mock
}

func (m *MockReportArchive) Save(ctx context.Context, result *dto.ReportResult, report *model.Report) error {
	args := m.Called(ctx, result, report)
	return args.Error(0)
}

func (m *MockReportArchive) Get(ctx context.Context, runID string) (*dto.ReportResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReportResult), args.Error(1)
}

func (m *MockReportArchive) List(ctx context.Context, limit, offset int) ([]dto.ReportResult, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.ReportResult), args.Get(1).(int64), args.Error(2)
}

type MockReportNotifier struct {
	mock.Mock
}

func (m *MockReportNotifier) NotifyReportCompleted(ctx context.Context, result *dto.ReportResult) (string, error) {
	args := m.Called(ctx, result)
	return args.String(0), args.Error(1)
}

// threads builds n comment threads for a video, each with the given number of replies
func threads(videoID string, n, replies int) []model.CommentThread {
	out := make([]model.CommentThread, 0, n)
	for i := 0; i < n; i++ {
		id := videoID + "-t" + itoa(i)
		thread := model.CommentThread{
			ID:       id,
			TopLevel: model.CommentRecord{VideoID: videoID, CommentID: id, Text: "top"},
		}
		for j := 0; j < replies; j++ {
			thread.Replies = append(thread.Replies, model.CommentRecord{
				VideoID:   videoID,
				CommentID: id + ".r" + itoa(j),
				Text:      "reply",
			})
		}
		out = append(out, thread)
	}
	return out
}

func itoa(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return digits[i : i+1]
	}
	return itoa(i/10) + digits[i%10:i%10+1]
}
