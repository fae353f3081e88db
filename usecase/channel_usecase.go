package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"
)

// DefaultWebHost is the host channel URLs must use unless configured otherwise
const DefaultWebHost = "www.youtube.com"

const (
	playlistPageSize = 50
	// hard stop on pagination in case the API keeps echoing tokens
	maxPlaylistPages = 1000
	channelCacheTTL  = 24 * time.Hour
)

var handlePattern = regexp.MustCompile(`^/@([^/]+)`)

// ExtractChannelHandle returns the "@handle" of a channel URL such as
// https://www.youtube.com/@name/videos. Trailing path segments are ignored.
func ExtractChannelHandle(rawURL, host string) (string, error) {
	if host == "" {
		host = DefaultWebHost
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidURL, err)
	}
	if !strings.EqualFold(parsed.Hostname(), host) {
		return "", fmt.Errorf("%w: expected host %s, got %q", model.ErrInvalidURL, host, parsed.Hostname())
	}
	match := handlePattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", fmt.Errorf("%w: path %q does not start with /@<handle>", model.ErrInvalidURL, parsed.Path)
	}
	return "@" + match[1], nil
}

// IChannelUseCase resolves channels and lists their uploads
type IChannelUseCase interface {
	ResolveChannelID(ctx context.Context, handle string) (string, error)
	ListVideoIDs(ctx context.Context, channelID string, maxResults int64) ([]string, error)
}

// ChannelUseCase implements IChannelUseCase on top of the YouTube repository
type ChannelUseCase struct {
	youtubeRepo repository.IYouTube
	cache       repository.IChannelCache // optional
}

func NewChannelUseCase(youtubeRepo repository.IYouTube) *ChannelUseCase {
	return &ChannelUseCase{youtubeRepo: youtubeRepo}
}

// WithCache enables the handle cache (fluent)
func (u *ChannelUseCase) WithCache(cache repository.IChannelCache) *ChannelUseCase {
	u.cache = cache
	return u
}

// ResolveChannelID maps a handle to a channel id using the first channel search hit.
// It returns model.ErrNotFound when the search is empty and a *model.RemoteAPIError when the call fails.
func (u *ChannelUseCase) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	if handle == "" {
		return "", fmt.Errorf("%w: handle is required", model.ErrInvalidArgument)
	}

	if u.cache != nil {
		cached, err := u.cache.GetChannelID(ctx, handle)
		if err != nil {
			logger.GetLogger().WithField("handle", handle).WithField("error", err).Warn("Channel cache lookup failed")
		} else if cached != "" {
			logger.GetLogger().WithField("handle", handle).Debug("Channel id served from cache")
			return cached, nil
		}
	}

	ids, err := u.youtubeRepo.SearchChannelIDs(ctx, handle)
	if err != nil {
		err = model.NewRemoteAPIError("search.list", handle, err)
		logRemoteError(err, "Channel search failed")
		return "", err
	}
	if len(ids) == 0 {
		logger.GetLogger().WithField("handle", handle).Info("No channel found for handle")
		return "", fmt.Errorf("%w: no channel for handle %s", model.ErrNotFound, handle)
	}

	channelID := ids[0]
	if u.cache != nil {
		if err := u.cache.SetChannelID(ctx, handle, channelID, channelCacheTTL); err != nil {
			logger.GetLogger().WithField("handle", handle).WithField("error", err).Warn("Channel cache write failed")
		}
	}
	return channelID, nil
}

// ListVideoIDs returns up to maxResults video ids from the channel's uploads playlist, in listing order
func (u *ChannelUseCase) ListVideoIDs(ctx context.Context, channelID string, maxResults int64) ([]string, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: max videos must be positive, got %d", model.ErrInvalidArgument, maxResults)
	}

	uploads, err := u.youtubeRepo.GetUploadsPlaylistID(ctx, channelID)
	if err != nil {
		err = model.NewRemoteAPIError("channels.list", channelID, err)
		logRemoteError(err, "Channel lookup failed")
		return nil, err
	}
	if uploads == "" {
		logger.GetLogger().WithField("channelId", channelID).Info("No channel data found")
		return nil, fmt.Errorf("%w: no uploads playlist for channel %s", model.ErrNotFound, channelID)
	}

	ids := make([]string, 0, min(maxResults, playlistPageSize))
	pageToken := ""
	for page := 0; page < maxPlaylistPages && int64(len(ids)) < maxResults; page++ {
		remaining := maxResults - int64(len(ids))
		resp, err := u.youtubeRepo.ListPlaylistVideoIDs(ctx, uploads, min(remaining, playlistPageSize), pageToken)
		if err != nil {
			err = model.NewRemoteAPIError("playlistItems.list", uploads, err)
			logRemoteError(err, "Uploads listing failed")
			return nil, err
		}
		if resp == nil {
			break
		}
		ids = append(ids, resp.VideoIDs...)
		if resp.NextPageToken == "" || resp.NextPageToken == pageToken {
			break
		}
		pageToken = resp.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

func logRemoteError(err error, msg string) {
	entry := logger.GetLogger().WithField("error", err)
	var remote *model.RemoteAPIError
	if errors.As(err, &remote) {
		entry = entry.WithFields(map[string]interface{}{
			"op":     remote.Op,
			"target": remote.Target,
			"status": remote.StatusCode,
		})
	}
	entry.Error(msg)
}
