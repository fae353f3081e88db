package repository

import (
	"context"

	"yt-channel-report/domain/model"
)

// VideoPage is one page of an uploads playlist
type VideoPage struct {
	VideoIDs      []string
	NextPageToken string
}

// IYouTube defines the remote YouTube Data API operations the report pipeline consumes
type IYouTube interface {
	// SearchChannelIDs runs a channel-type search for query and returns matching channel ids in rank order.
	SearchChannelIDs(ctx context.Context, query string) ([]string, error)
	// GetUploadsPlaylistID returns the uploads playlist of a channel, or "" when the channel is unknown.
	GetUploadsPlaylistID(ctx context.Context, channelID string) (string, error)
	ListPlaylistVideoIDs(ctx context.Context, playlistID string, maxResults int64, pageToken string) (*VideoPage, error)
	// ListVideos performs a single multi-id lookup (at most 50 ids).
	ListVideos(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error)
	// ListCommentThreads returns the first page of threads (with replies) for a video.
	ListCommentThreads(ctx context.Context, videoID string, maxResults int64) ([]model.CommentThread, error)
}
