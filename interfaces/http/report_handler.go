package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/model"
	"yt-channel-report/infrastructure/export"
	"yt-channel-report/infrastructure/filecsv"
	"yt-channel-report/infrastructure/logger"
	"yt-channel-report/usecase"

	"github.com/gin-gonic/gin"
)

// IReportHandler defines the report HTTP handlers
type IReportHandler interface {
	Generate(ctx *gin.Context)
	GetReport(ctx *gin.Context)
	ListReports(ctx *gin.Context)
	Download(ctx *gin.Context)
}

type ReportHandler struct {
	reportUseCase usecase.IReportUseCase
}

func NewReportHandler(reportUseCase usecase.IReportUseCase) IReportHandler {
	return &ReportHandler{reportUseCase: reportUseCase}
}

// Generate handles POST /api/reports
func (h *ReportHandler) Generate(ctx *gin.Context) {
	var req dto.ReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}
	req.ConfineOutput = true

	result, err := h.reportUseCase.Generate(ctx.Request.Context(), &req)
	if err != nil {
		logger.GetLogger().WithField("url", req.ChannelURL).WithField("error", err).Error("Report generation failed")
		ctx.JSON(statusFor(err), gin.H{
			"error":   "Failed to generate report",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": result})
}

// GetReport handles GET /api/reports/:id
func (h *ReportHandler) GetReport(ctx *gin.Context) {
	result, err := h.reportUseCase.GetReport(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{
			"error":   "Failed to get report",
			"message": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// ListReports handles GET /api/reports?limit=&offset=
func (h *ReportHandler) ListReports(ctx *gin.Context) {
	var req dto.ReportListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query",
			"message": err.Error(),
		})
		return
	}

	response, err := h.reportUseCase.ListReports(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{
			"error":   "Failed to list reports",
			"message": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// Download handles GET /api/reports/:id/download. Spreadsheet runs redirect to the
// sheet; csv runs serve the comment file with ?part=comments.
func (h *ReportHandler) Download(ctx *gin.Context) {
	result, err := h.reportUseCase.GetReport(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{
			"error":   "Failed to get report",
			"message": err.Error(),
		})
		return
	}

	if result.Format == usecase.FormatGSheet {
		id, err := export.SpreadsheetIDFromURL(result.Location)
		if err != nil {
			logger.GetLogger().WithField("runId", result.RunID).WithField("error", err).Error("Archived spreadsheet location rejected")
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Report location is invalid",
				"message": err.Error(),
			})
			return
		}
		ctx.Redirect(http.StatusFound, export.SpreadsheetURL(id))
		return
	}

	path := result.Location
	if result.Format == usecase.FormatCSV && ctx.Query("part") == "comments" {
		path = strings.TrimSuffix(path, filecsv.VideoSuffix) + filecsv.CommentSuffix
	}
	if _, err := os.Stat(path); err != nil {
		ctx.JSON(http.StatusGone, gin.H{
			"error":   "Report file is no longer available",
			"message": filepath.Base(path),
		})
		return
	}
	ctx.FileAttachment(path, filepath.Base(path))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidURL), errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrArchiveNotConfigured):
		return http.StatusNotImplemented
	case model.IsRemoteAPIError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
