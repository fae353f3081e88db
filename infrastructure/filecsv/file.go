package filecsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"
)

const (
	VideoSuffix   = "_video_data.csv"
	CommentSuffix = "_comments_data.csv"
)

var _ repository.IReportWriter = (*Writer)(nil)

// Writer exports a report as two CSV files sharing a base name
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// NewFile creates or truncates path, creating parent directories as needed
func NewFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while creating directory")
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while open file")
		return nil, err
	}

	return file, nil
}

// Paths returns the video and comment file names derived from target
func Paths(target string) (string, string) {
	base := strings.TrimSuffix(target, filepath.Ext(target))
	return base + VideoSuffix, base + CommentSuffix
}

// Write returns the video file path; the comment file sits next to it.
func (w *Writer) Write(ctx context.Context, report *model.Report, target string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("%w: report is nil", model.ErrInvalidArgument)
	}
	videoPath, commentPath := Paths(target)

	videoRows := make([][]interface{}, 0, len(report.Videos))
	for _, v := range report.Videos {
		videoRows = append(videoRows, v.Row())
	}
	if err := writeFile(videoPath, model.VideoHeaders, videoRows); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	commentRows := make([][]interface{}, 0, len(report.Comments))
	for _, c := range report.Comments {
		commentRows = append(commentRows, c.Row())
	}
	if err := writeFile(commentPath, model.CommentHeaders, commentRows); err != nil {
		return "", err
	}

	logger.GetLogger().WithField("videos", videoPath).WithField("comments", commentPath).Info("CSV report written")
	return videoPath, nil
}

func writeFile(path string, headers []string, rows [][]interface{}) error {
	file, err := NewFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(headers); err != nil {
		return err
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case uint64:
		return strconv.FormatUint(t, 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
