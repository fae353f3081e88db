package dto

import "time"

// ReportRequest represents request for generating a channel report
type ReportRequest struct {
	ChannelURL string `json:"channel_url" binding:"required"`
	MaxVideos  int64  `json:"max_videos,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	Format     string `json:"format,omitempty"` // xlsx, csv, gsheet
	// ConfineOutput restricts FileName to a bare name inside the output directory.
	// Set for requests arriving over HTTP; never decoded from a body.
	ConfineOutput bool `json:"-"`
}

// Degraded lists the stages that failed remotely but did not abort the run
type Degraded struct {
	Videos   bool `json:"videos"`
	Comments bool `json:"comments"`
}

// ReportResult represents the outcome of a finished report run
type ReportResult struct {
	RunID        string    `json:"run_id"`
	ChannelURL   string    `json:"channel_url"`
	Handle       string    `json:"handle"`
	ChannelID    string    `json:"channel_id"`
	VideoIDs     []string  `json:"video_ids"`
	VideoCount   int       `json:"video_count"`
	CommentCount int       `json:"comment_count"`
	Format       string    `json:"format"`
	Location     string    `json:"location"` // file path or spreadsheet id
	Degraded     Degraded  `json:"degraded"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReportListRequest represents request for listing archived runs
type ReportListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ReportListResponse represents a page of archived runs
type ReportListResponse struct {
	Items []ReportResult `json:"items"`
	Total int64          `json:"total"`
}

// Res is the generic error envelope of the HTTP surface
type Res struct {
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Data            interface{} `json:"data,omitempty"`
}
