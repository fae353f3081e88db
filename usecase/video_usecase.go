package usecase

import (
	"context"

	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"
)

// videos.list accepts at most this many ids per call
const videoBatchSize = 50

// IVideoUseCase fetches per-video details
type IVideoUseCase interface {
	FetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error)
}

type VideoUseCase struct {
	youtubeRepo repository.IYouTube
}

func NewVideoUseCase(youtubeRepo repository.IYouTube) *VideoUseCase {
	return &VideoUseCase{youtubeRepo: youtubeRepo}
}

// FetchVideoDetails looks the ids up in batches of 50 and returns records in the order
// the API returns them. Any failed batch fails the whole call with an empty result.
func (u *VideoUseCase) FetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error) {
	videos := make([]model.VideoRecord, 0, len(videoIDs))
	for start := 0; start < len(videoIDs); start += videoBatchSize {
		batch := videoIDs[start:min(start+videoBatchSize, len(videoIDs))]
		records, err := u.youtubeRepo.ListVideos(ctx, batch)
		if err != nil {
			err = model.NewRemoteAPIError("videos.list", "", err)
			logRemoteError(err, "Video details lookup failed")
			return nil, err
		}
		videos = append(videos, records...)
	}
	logger.GetLogger().WithField("requested", len(videoIDs)).WithField("returned", len(videos)).Debug("Video details fetched")
	return videos, nil
}
