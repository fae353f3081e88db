package usecase

import (
	"context"
	"iter"

	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"
)

// ICommentUseCase fetches a bounded, flat list of comments and replies
type ICommentUseCase interface {
	Stream(ctx context.Context, videoIDs []string) iter.Seq2[model.CommentRecord, error]
	FetchComments(ctx context.Context, videoIDs []string) ([]model.CommentRecord, error)
}

type CommentUseCase struct {
	youtubeRepo repository.IYouTube
	limit       int
	keepPartial bool
}

func NewCommentUseCase(youtubeRepo repository.IYouTube) *CommentUseCase {
	return &CommentUseCase{youtubeRepo: youtubeRepo, limit: model.MaxComments}
}

// WithLimit lowers the comment cap; values outside 1..100 keep the default of 100
func (u *CommentUseCase) WithLimit(limit int) *CommentUseCase {
	if limit > 0 && limit <= model.MaxComments {
		u.limit = limit
	}
	return u
}

// WithKeepPartial keeps the comments collected before a failing call instead of discarding them
func (u *CommentUseCase) WithKeepPartial(keep bool) *CommentUseCase {
	u.keepPartial = keep
	return u
}

// Stream lazily yields comment records: videos in order, threads in API order,
// each top-level comment followed by its replies. A failed call yields one error
// and ends the sequence. Threads of the next video are only requested once the
// consumer has pulled everything from the previous one.
func (u *CommentUseCase) Stream(ctx context.Context, videoIDs []string) iter.Seq2[model.CommentRecord, error] {
	return func(yield func(model.CommentRecord, error) bool) {
		for _, videoID := range videoIDs {
			if err := ctx.Err(); err != nil {
				yield(model.CommentRecord{}, err)
				return
			}
			threads, err := u.youtubeRepo.ListCommentThreads(ctx, videoID, model.MaxComments)
			if err != nil {
				yield(model.CommentRecord{}, model.NewRemoteAPIError("commentThreads.list", videoID, err))
				return
			}
			for _, thread := range threads {
				top := thread.TopLevel
				top.ParentID = nil
				if !yield(top, nil) {
					return
				}
				for _, reply := range thread.Replies {
					parent := top.CommentID
					reply.ParentID = &parent
					if !yield(reply, nil) {
						return
					}
				}
			}
		}
	}
}

// FetchComments pulls from Stream until the limit is reached or the videos run out.
// On failure it returns nil, or the partial list when keepPartial is set, together with the error.
func (u *CommentUseCase) FetchComments(ctx context.Context, videoIDs []string) ([]model.CommentRecord, error) {
	comments := make([]model.CommentRecord, 0, u.limit)
	for record, err := range u.Stream(ctx, videoIDs) {
		if err != nil {
			logRemoteError(err, "Comment fetch failed")
			if u.keepPartial {
				return comments, err
			}
			return nil, err
		}
		comments = append(comments, record)
		if len(comments) >= u.limit {
			break
		}
	}
	logger.GetLogger().WithField("videos", len(videoIDs)).WithField("comments", len(comments)).Debug("Comments fetched")
	return comments, nil
}
