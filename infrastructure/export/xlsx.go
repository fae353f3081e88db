package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"

	"github.com/xuri/excelize/v2"
)

const (
	VideoSheet   = "Video Data"
	CommentSheet = "Comments Data"

	defaultSheet = "Sheet1"
)

var _ repository.IReportWriter = (*XLSXWriter)(nil)

// XLSXWriter exports a report as a workbook with one sheet per record set
type XLSXWriter struct{}

func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Write saves the workbook at target, replacing any existing file, and returns target.
func (w *XLSXWriter) Write(ctx context.Context, report *model.Report, target string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("%w: report is nil", model.ErrInvalidArgument)
	}
	if target == "" {
		return "", fmt.Errorf("%w: output file is required", model.ErrInvalidArgument)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while closing workbook")
		}
	}()

	if err := f.SetSheetName(defaultSheet, VideoSheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(CommentSheet); err != nil {
		return "", err
	}

	videoRows := make([][]interface{}, 0, len(report.Videos))
	for _, v := range report.Videos {
		videoRows = append(videoRows, v.Row())
	}
	if err := writeSheet(f, VideoSheet, model.VideoHeaders, videoRows); err != nil {
		return "", err
	}

	commentRows := make([][]interface{}, 0, len(report.Comments))
	for _, c := range report.Comments {
		commentRows = append(commentRows, c.Row())
	}
	if err := writeSheet(f, CommentSheet, model.CommentHeaders, commentRows); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := f.SaveAs(target); err != nil {
		logger.GetLogger().WithField("file", target).WithField("error", err).Error("Error while saving workbook")
		return "", err
	}

	logger.GetLogger().WithField("file", target).Info("Workbook written")
	return target, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
