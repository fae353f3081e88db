package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	httpHandler "yt-channel-report/interfaces/http"
	"yt-channel-report/usecase"
)

type MockReportUseCase struct {
	mock.Mock
}

func (m *MockReportUseCase) Generate(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReportResult), args.Error(1)
}

func (m *MockReportUseCase) GetReport(ctx context.Context, runID string) (*dto.ReportResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReportResult), args.Error(1)
}

func (m *MockReportUseCase) ListReports(ctx context.Context, req *dto.ReportListRequest) (*dto.ReportListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReportListResponse), args.Error(1)
}

func newRouter(uc usecase.IReportUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := httpHandler.NewReportHandler(uc)
	r := gin.New()
	r.POST("/api/reports", h.Generate)
	r.GET("/api/reports", h.ListReports)
	r.GET("/api/reports/:id", h.GetReport)
	r.GET("/api/reports/:id/download", h.Download)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate_Created(t *testing.T) {
	uc := new(MockReportUseCase)
	uc.On("Generate", mock.Anything, &dto.ReportRequest{ChannelURL: "https://www.youtube.com/@Telsuko", MaxVideos: 10, ConfineOutput: true}).
		Return(&dto.ReportResult{RunID: "run-1", VideoCount: 10}, nil).Once()

	w := do(newRouter(uc), http.MethodPost, "/api/reports", `{"channel_url":"https://www.youtube.com/@Telsuko","max_videos":10}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success bool             `json:"success"`
		Data    dto.ReportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "run-1", body.Data.RunID)
	uc.AssertExpectations(t)
}

func TestGenerate_MissingURL(t *testing.T) {
	uc := new(MockReportUseCase)
	w := do(newRouter(uc), http.MethodPost, "/api/reports", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid url", model.ErrInvalidURL, http.StatusBadRequest},
		{"not found", model.ErrNotFound, http.StatusNotFound},
		{"remote", model.NewRemoteAPIError("search.list", "@x", errors.New("boom")), http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockReportUseCase)
			uc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := do(newRouter(uc), http.MethodPost, "/api/reports", `{"channel_url":"https://www.youtube.com/@x"}`)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), "Failed to generate report")
		})
	}
}

func TestGetReport(t *testing.T) {
	uc := new(MockReportUseCase)
	uc.On("GetReport", mock.Anything, "run-1").Return(&dto.ReportResult{RunID: "run-1"}, nil).Once()
	uc.On("GetReport", mock.Anything, "nope").Return(nil, model.ErrNotFound).Once()
	r := newRouter(uc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/reports/run-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/reports/nope", "").Code)
}

func TestListReports(t *testing.T) {
	uc := new(MockReportUseCase)
	uc.On("ListReports", mock.Anything, &dto.ReportListRequest{Limit: 5, Offset: 10}).
		Return(&dto.ReportListResponse{Items: []dto.ReportResult{{RunID: "a"}}, Total: 11}, nil).Once()

	w := do(newRouter(uc), http.MethodGet, "/api/reports?limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":11`)

	w = do(newRouter(uc), http.MethodGet, "/api/reports?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReports_NoArchive(t *testing.T) {
	uc := new(MockReportUseCase)
	uc.On("ListReports", mock.Anything, mock.Anything).Return(nil, usecase.ErrArchiveNotConfigured).Once()

	w := do(newRouter(uc), http.MethodGet, "/api/reports", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestDownload(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "youtube_data.xlsx")
	require.NoError(t, os.WriteFile(xlsx, []byte("PK"), 0o644))
	csvComments := filepath.Join(dir, "r_comments_data.csv")
	require.NoError(t, os.WriteFile(csvComments, []byte("Video ID\n"), 0o644))

	uc := new(MockReportUseCase)
	uc.On("GetReport", mock.Anything, "x").Return(&dto.ReportResult{Format: "xlsx", Location: xlsx}, nil)
	uc.On("GetReport", mock.Anything, "c").Return(&dto.ReportResult{Format: "csv", Location: filepath.Join(dir, "r_video_data.csv")}, nil)
	uc.On("GetReport", mock.Anything, "g").Return(&dto.ReportResult{Format: "gsheet", Location: "https://docs.google.com/spreadsheets/d/abc"}, nil)
	r := newRouter(uc)

	w := do(r, http.MethodGet, "/api/reports/x/download", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "youtube_data.xlsx")

	w = do(r, http.MethodGet, "/api/reports/c/download?part=comments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Video ID\n", w.Body.String())

	// the video csv was never written
	w = do(r, http.MethodGet, "/api/reports/c/download", "")
	assert.Equal(t, http.StatusGone, w.Code)

	w = do(r, http.MethodGet, "/api/reports/g/download", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc", w.Header().Get("Location"))
}

func TestDownload_RejectsForeignSpreadsheetLocation(t *testing.T) {
	uc := new(MockReportUseCase)
	uc.On("GetReport", mock.Anything, "g").
		Return(&dto.ReportResult{Format: "gsheet", Location: "https://evil.example.com/spreadsheets/d/abc"}, nil).Once()

	w := do(newRouter(uc), http.MethodGet, "/api/reports/g/download", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

// recordingWriter records every target it is asked to write
type recordingWriter struct {
	targets []string
}

func (w *recordingWriter) Write(_ context.Context, _ *model.Report, target string) (string, error) {
	w.targets = append(w.targets, target)
	return target, nil
}

func newValidatingRouter(writer *recordingWriter) *gin.Engine {
	uc := usecase.NewReportUseCase(nil, nil, nil,
		map[string]repository.IReportWriter{usecase.FormatXLSX: writer, usecase.FormatGSheet: writer},
		usecase.ReportDefaults{OutputDir: "/srv/reports", MaxVideosLimit: 100})
	return newRouter(uc)
}

func TestGenerate_RejectsUnsafeRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absolute path", `{"channel_url":"https://www.youtube.com/@x","file_name":"/etc/cron.d/x.xlsx"}`},
		{"parent traversal", `{"channel_url":"https://www.youtube.com/@x","file_name":"../../x.xlsx"}`},
		{"nested path", `{"channel_url":"https://www.youtube.com/@x","file_name":"sub/x.xlsx"}`},
		{"backslash path", `{"channel_url":"https://www.youtube.com/@x","file_name":"..\\x.xlsx"}`},
		{"chosen spreadsheet", `{"channel_url":"https://www.youtube.com/@x","format":"gsheet","file_name":"someone-elses-sheet"}`},
		{"too many videos", `{"channel_url":"https://www.youtube.com/@x","max_videos":100000000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &recordingWriter{}
			w := do(newValidatingRouter(writer), http.MethodPost, "/api/reports", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, writer.targets)
		})
	}
}

func TestGenerate_ConfineOutputCannotBeSetFromBody(t *testing.T) {
	uc := new(MockReportUseCase)
	uc.On("Generate", mock.Anything, mock.MatchedBy(func(req *dto.ReportRequest) bool {
		return req.ConfineOutput
	})).Return(&dto.ReportResult{RunID: "run-1"}, nil).Once()

	w := do(newRouter(uc), http.MethodPost, "/api/reports", `{"channel_url":"https://www.youtube.com/@x","ConfineOutput":false}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	uc.AssertExpectations(t)
}
