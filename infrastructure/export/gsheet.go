package export

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var _ repository.IReportWriter = (*GSheetWriter)(nil)

const spreadsheetURLPrefix = "https://docs.google.com/spreadsheets/d/"

var spreadsheetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SpreadsheetURL returns the browser URL of a spreadsheet id
func SpreadsheetURL(id string) string {
	return spreadsheetURLPrefix + id
}

// SpreadsheetIDFromURL extracts the id from a URL built by SpreadsheetURL
func SpreadsheetIDFromURL(location string) (string, error) {
	id, ok := strings.CutPrefix(location, spreadsheetURLPrefix)
	if !ok || !spreadsheetIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: not a spreadsheet url: %q", model.ErrInvalidArgument, location)
	}
	return id, nil
}

// GSheetWriter exports a report into two tabs of a Google Spreadsheet
type GSheetWriter struct {
	service       *sheets.Service
	spreadsheetID string
}

// SheetsConfig selects how the Sheets service authenticates
type SheetsConfig struct {
	CredentialsFile string
	Endpoint        string
	HTTPClient      *http.Client
}

// NewSheetsService builds a Sheets API client from a service account file or an explicit HTTP client
func NewSheetsService(ctx context.Context, cfg *SheetsConfig) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating sheets service")
		return nil, err
	}
	return service, nil
}

func NewGSheetWriter(service *sheets.Service, spreadsheetID string) *GSheetWriter {
	return &GSheetWriter{service: service, spreadsheetID: spreadsheetID}
}

// Write fills the spreadsheet named by target, or the configured one when target is empty,
// and returns its URL. Missing tabs are added and existing values cleared first.
func (w *GSheetWriter) Write(ctx context.Context, report *model.Report, target string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("%w: report is nil", model.ErrInvalidArgument)
	}
	id := target
	if id == "" {
		id = w.spreadsheetID
	}
	if id == "" {
		return "", fmt.Errorf("%w: spreadsheet id is required", model.ErrInvalidArgument)
	}
	if !spreadsheetIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: malformed spreadsheet id %q", model.ErrInvalidArgument, id)
	}

	if err := w.ensureTabs(ctx, id, VideoSheet, CommentSheet); err != nil {
		return "", err
	}

	videoRows := [][]interface{}{toRow(model.VideoHeaders)}
	for _, v := range report.Videos {
		videoRows = append(videoRows, sheetRow(v.Row()))
	}
	if err := w.replaceValues(ctx, id, VideoSheet, videoRows); err != nil {
		return "", err
	}

	commentRows := [][]interface{}{toRow(model.CommentHeaders)}
	for _, c := range report.Comments {
		commentRows = append(commentRows, sheetRow(c.Row()))
	}
	if err := w.replaceValues(ctx, id, CommentSheet, commentRows); err != nil {
		return "", err
	}

	location := SpreadsheetURL(id)
	logger.GetLogger().WithField("spreadsheet", id).Info("Spreadsheet written")
	return location, nil
}

func (w *GSheetWriter) ensureTabs(ctx context.Context, id string, titles ...string) error {
	spreadsheet, err := w.service.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return model.NewRemoteAPIError("spreadsheets.get", id, err)
	}
	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var requests []*sheets.Request
	for _, title := range titles {
		if existing[title] {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		})
	}
	if len(requests) == 0 {
		return nil
	}
	_, err = w.service.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return model.NewRemoteAPIError("spreadsheets.batchUpdate", id, err)
	}
	return nil
}

func (w *GSheetWriter) replaceValues(ctx context.Context, id, sheet string, rows [][]interface{}) error {
	rng := "'" + sheet + "'"
	if _, err := w.service.Spreadsheets.Values.Clear(id, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return model.NewRemoteAPIError("spreadsheets.values.clear", sheet, err)
	}
	_, err := w.service.Spreadsheets.Values.Update(id, rng+"!A1", &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return model.NewRemoteAPIError("spreadsheets.values.update", sheet, err)
	}
	return nil
}

func toRow(headers []string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

// sheetRow replaces nil cells with empty strings
func sheetRow(row []interface{}) []interface{} {
	for i, v := range row {
		if v == nil {
			row[i] = ""
		}
	}
	return row
}
