package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Data API ceilings
const (
	maxPageSize      = 50
	maxCommentsPage  = 100
	maxIDsPerRequest = 50
)

// ReadonlyScopes are the OAuth scopes the report needs; it never writes to the account.
var ReadonlyScopes = []string{youtube.YoutubeReadonlyScope}

var _ repository.IYouTube = (*Client)(nil)

// Client represents YouTube API client
type Client struct {
	service *youtube.Service
}

// Config represents YouTube API configuration
type Config struct {
	APIKey       string `json:"api_key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// Endpoint overrides the API base URL (must end with "/").
	Endpoint string `json:"endpoint"`
	// Timeout bounds every request; zero keeps the transport default.
	Timeout time.Duration `json:"timeout"`
	// HTTPClient supplies the base transport, mostly for tests.
	HTTPClient *http.Client `json:"-"`
}

// NewYouTubeClient creates a new YouTube API client. OAuth tokens take precedence over the API key.
func NewYouTubeClient(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("youtube client config is required")
	}

	base := http.DefaultTransport
	if config.HTTPClient != nil && config.HTTPClient.Transport != nil {
		base = config.HTTPClient.Transport
	}

	var httpClient *http.Client
	switch {
	case config.AccessToken != "" && config.RefreshToken != "":
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       ReadonlyScopes,
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
		}
		tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})
		httpClient = oauth2Config.Client(tokenCtx, token)
	case config.APIKey != "":
		httpClient = &http.Client{Transport: &transport.APIKey{Key: config.APIKey, Transport: base}}
	default:
		return nil, errors.New("youtube client requires an API key or OAuth tokens")
	}
	httpClient.Timeout = config.Timeout

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// SearchChannelIDs runs a channel-type search and returns channel ids in rank order
func (c *Client) SearchChannelIDs(ctx context.Context, query string) ([]string, error) {
	response, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteError("search.list", query, err)
	}

	ids := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		switch {
		case item.Snippet != nil && item.Snippet.ChannelId != "":
			ids = append(ids, item.Snippet.ChannelId)
		case item.Id != nil && item.Id.ChannelId != "":
			ids = append(ids, item.Id.ChannelId)
		}
	}
	return ids, nil
}

// GetUploadsPlaylistID returns the channel's uploads playlist, or "" when the channel has no metadata
func (c *Client) GetUploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	response, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", remoteError("channels.list", channelID, err)
	}
	if len(response.Items) == 0 {
		return "", nil
	}
	details := response.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil {
		return "", nil
	}
	return details.RelatedPlaylists.Uploads, nil
}

// ListPlaylistVideoIDs returns one page of video ids of a playlist in listing order
func (c *Client) ListPlaylistVideoIDs(ctx context.Context, playlistID string, maxResults int64, pageToken string) (*repository.VideoPage, error) {
	if maxResults <= 0 || maxResults > maxPageSize {
		maxResults = maxPageSize
	}
	call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(maxResults).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	if err != nil {
		return nil, remoteError("playlistItems.list", playlistID, err)
	}

	page := &repository.VideoPage{NextPageToken: response.NextPageToken}
	for _, item := range response.Items {
		if id := playlistItemVideoID(item); id != "" {
			page.VideoIDs = append(page.VideoIDs, id)
		}
	}
	return page, nil
}

func playlistItemVideoID(item *youtube.PlaylistItem) string {
	if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
		return item.ContentDetails.VideoId
	}
	if item.Snippet != nil && item.Snippet.ResourceId != nil {
		return item.Snippet.ResourceId.VideoId
	}
	return ""
}

// ListVideos performs a single multi-id lookup and returns records in API order
func (c *Client) ListVideos(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	if len(videoIDs) > maxIDsPerRequest {
		return nil, fmt.Errorf("%w: at most %d ids per videos.list call, got %d", model.ErrInvalidArgument, maxIDsPerRequest, len(videoIDs))
	}

	response, err := c.service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoIDs...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteError("videos.list", fmt.Sprintf("%d ids", len(videoIDs)), err)
	}

	videos := make([]model.VideoRecord, 0, len(response.Items))
	for _, item := range response.Items {
		videos = append(videos, convertToVideoRecord(item))
	}
	return videos, nil
}

// convertToVideoRecord converts YouTube API video to our model
func convertToVideoRecord(video *youtube.Video) model.VideoRecord {
	record := model.VideoRecord{ID: video.Id}

	if video.Snippet != nil {
		record.Title = video.Snippet.Title
		record.Description = video.Snippet.Description
		record.PublishedAt = utils.ParseTime(video.Snippet.PublishedAt)
		if video.Snippet.Thumbnails != nil && video.Snippet.Thumbnails.Default != nil {
			record.ThumbnailURL = video.Snippet.Thumbnails.Default.Url
		}
	}
	// Absent statistics (e.g. likes hidden) stay zero
	if video.Statistics != nil {
		record.ViewCount = video.Statistics.ViewCount
		record.LikeCount = video.Statistics.LikeCount
		record.CommentCount = video.Statistics.CommentCount
	}
	duration := ""
	if video.ContentDetails != nil {
		duration = video.ContentDetails.Duration
	}
	record.Duration = utils.FormatDuration(duration)

	return record
}

// ListCommentThreads returns the first page of comment threads for a video, replies included
func (c *Client) ListCommentThreads(ctx context.Context, videoID string, maxResults int64) ([]model.CommentThread, error) {
	if maxResults <= 0 || maxResults > maxCommentsPage {
		maxResults = maxCommentsPage
	}
	response, err := c.service.CommentThreads.List([]string{"snippet", "replies"}).
		VideoId(videoID).
		TextFormat("plainText").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteError("commentThreads.list", videoID, err)
	}

	threads := make([]model.CommentThread, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil {
			continue
		}
		threadID := item.Id
		thread := model.CommentThread{
			ID:       threadID,
			TopLevel: convertToCommentRecord(videoID, item.Snippet.TopLevelComment, nil),
		}
		// The thread id doubles as the top-level comment id
		thread.TopLevel.CommentID = threadID
		if item.Replies != nil {
			for _, reply := range item.Replies.Comments {
				parent := threadID
				thread.Replies = append(thread.Replies, convertToCommentRecord(videoID, reply, &parent))
			}
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func convertToCommentRecord(videoID string, comment *youtube.Comment, parentID *string) model.CommentRecord {
	record := model.CommentRecord{
		VideoID:   videoID,
		CommentID: comment.Id,
		ParentID:  parentID,
	}
	if comment.Snippet != nil {
		record.Text = comment.Snippet.TextDisplay
		record.AuthorName = comment.Snippet.AuthorDisplayName
		record.PublishedAt = utils.ParseTime(comment.Snippet.PublishedAt)
		if comment.Snippet.LikeCount > 0 {
			record.LikeCount = uint64(comment.Snippet.LikeCount)
		}
	}
	return record
}

func remoteError(op, target string, err error) error {
	remote := &model.RemoteAPIError{Op: op, Target: target, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		remote.StatusCode = apiErr.Code
	}
	return remote
}
