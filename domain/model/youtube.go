package model

import "time"

// MaxComments is the upper bound of comment records kept per report
const MaxComments = 100

// VideoRecord represents one row of the "Video Data" sheet
type VideoRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PublishedAt  time.Time `json:"published_at"`
	ViewCount    uint64    `json:"view_count"`
	LikeCount    uint64    `json:"like_count"`
	CommentCount uint64    `json:"comment_count"`
	Duration     string    `json:"duration"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// CommentRecord represents one row of the "Comments Data" sheet.
// ParentID is nil for top-level comments and holds the thread id for replies.
type CommentRecord struct {
	VideoID     string    `json:"video_id"`
	CommentID   string    `json:"comment_id"`
	Text        string    `json:"text"`
	AuthorName  string    `json:"author_name"`
	PublishedAt time.Time `json:"published_at"`
	LikeCount   uint64    `json:"like_count"`
	ParentID    *string   `json:"parent_id,omitempty"`
}

// IsReply reports whether the record answers another comment
func (c CommentRecord) IsReply() bool { return c.ParentID != nil }

// CommentThread is a top-level comment with the replies the API returned for it
type CommentThread struct {
	ID       string          `json:"id"`
	TopLevel CommentRecord   `json:"top_level"`
	Replies  []CommentRecord `json:"replies,omitempty"`
}

// Report holds both record sets written by an exporter
type Report struct {
	Videos   []VideoRecord   `json:"videos"`
	Comments []CommentRecord `json:"comments"`
}

// VideoHeaders is the column order of the "Video Data" sheet
var VideoHeaders = []string{
	"Video ID", "Title", "Description", "Published Date", "View Count",
	"Like Count", "Comment Count", "Duration", "Thumbnail URL",
}

// CommentHeaders is the column order of the "Comments Data" sheet
var CommentHeaders = []string{
	"Video ID", "Comment ID", "Comment Text", "Author Name", "Published Date",
	"Like Count", "Reply To",
}

// Row flattens the record in VideoHeaders order
func (v VideoRecord) Row() []interface{} {
	return []interface{}{
		v.ID, v.Title, v.Description, formatTime(v.PublishedAt), v.ViewCount,
		v.LikeCount, v.CommentCount, v.Duration, v.ThumbnailURL,
	}
}

// Row flattens the record in CommentHeaders order. Top-level comments leave "Reply To" empty.
func (c CommentRecord) Row() []interface{} {
	var replyTo interface{}
	if c.ParentID != nil {
		replyTo = *c.ParentID
	}
	return []interface{}{
		c.VideoID, c.CommentID, c.Text, c.AuthorName, formatTime(c.PublishedAt),
		c.LikeCount, replyTo,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
