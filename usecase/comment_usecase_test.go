package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"yt-channel-report/domain/model"
	"yt-channel-report/usecase"
)

func TestFetchComments_StopsAtLimit(t *testing.T) {
	yt := new(MockYouTube)
	yt.On("ListCommentThreads", mock.Anything, "v1", int64(100)).Return(threads("v1", 150, 0), nil).Once()

	comments, err := usecase.NewCommentUseCase(yt).FetchComments(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	require.Len(t, comments, 100)
	for i, c := range comments {
		assert.Equal(t, "v1-t"+itoa(i), c.CommentID)
		assert.False(t, c.IsReply())
	}
	// the second video is never requested once the cap is reached
	yt.AssertNotCalled(t, "ListCommentThreads", mock.Anything, "v2", mock.Anything)
}

func TestFetchComments_RepliesFollowTheirParent(t *testing.T) {
	yt := new(MockYouTube)
	yt.On("ListCommentThreads", mock.Anything, "v1", int64(100)).Return(threads("v1", 2, 2), nil).Once()
	yt.On("ListCommentThreads", mock.Anything, "v2", int64(100)).Return(threads("v2", 1, 1), nil).Once()

	comments, err := usecase.NewCommentUseCase(yt).FetchComments(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	require.Len(t, comments, 8)

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.CommentID)
	}
	assert.Equal(t, []string{
		"v1-t0", "v1-t0.r0", "v1-t0.r1",
		"v1-t1", "v1-t1.r0", "v1-t1.r1",
		"v2-t0", "v2-t0.r0",
	}, ids)

	var lastTop *model.CommentRecord
	for i := range comments {
		c := comments[i]
		if !c.IsReply() {
			lastTop = &comments[i]
			continue
		}
		require.NotNil(t, lastTop)
		assert.Equal(t, lastTop.CommentID, *c.ParentID)
		assert.Equal(t, lastTop.VideoID, c.VideoID)
	}
}

func TestFetchComments_CutsInsideThread(t *testing.T) {
	yt := new(MockYouTube)
	// 33 threads of 1 top + 2 replies = 99, then a 34th thread whose top-level comment is the 100th record
	yt.On("ListCommentThreads", mock.Anything, "v1", int64(100)).Return(threads("v1", 40, 2), nil).Once()

	comments, err := usecase.NewCommentUseCase(yt).FetchComments(context.Background(), []string{"v1"})
	require.NoError(t, err)
	require.Len(t, comments, 100)
	assert.Equal(t, "v1-t33", comments[99].CommentID)
	assert.False(t, comments[99].IsReply())
}

func TestFetchComments_FewerThanLimit(t *testing.T) {
	yt := new(MockYouTube)
	yt.On("ListCommentThreads", mock.Anything, "v1", int64(100)).Return(threads("v1", 3, 0), nil).Once()
	yt.On("ListCommentThreads", mock.Anything, "v2", int64(100)).Return(nil, nil).Once()

	comments, err := usecase.NewCommentUseCase(yt).FetchComments(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	assert.Len(t, comments, 3)
	yt.AssertExpectations(t)
}

func TestFetchComments_EmptyInput(t *testing.T) {
	yt := new(MockYouTube)
	comments, err := usecase.NewCommentUseCase(yt).FetchComments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, comments)
	yt.AssertNotCalled(t, "ListCommentThreads", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchComments_Failure(t *testing.T) {
	newRepo := func() *MockYouTube {
		yt := new(MockYouTube)
		yt.On("ListCommentThreads", mock.Anything, "v1", int64(100)).Return(threads("v1", 5, 0), nil).Once()
		yt.On("ListCommentThreads", mock.Anything, "v2", int64(100)).Return(nil, errors.New("comments disabled")).Once()
		return yt
	}

	t.Run("all or nothing by default", func(t *testing.T) {
		comments, err := usecase.NewCommentUseCase(newRepo()).FetchComments(context.Background(), []string{"v1", "v2", "v3"})
		assert.Nil(t, comments)
		assert.True(t, model.IsRemoteAPIError(err))
	})

	t.Run("keep partial", func(t *testing.T) {
		comments, err := usecase.NewCommentUseCase(newRepo()).WithKeepPartial(true).
			FetchComments(context.Background(), []string{"v1", "v2", "v3"})
		assert.Len(t, comments, 5)
		assert.True(t, model.IsRemoteAPIError(err))
	})
}

func TestFetchComments_WithLimit(t *testing.T) {
	yt := new(MockYouTube)
	yt.On("ListCommentThreads", mock.Anything, "v1", int64(100)).Return(threads("v1", 20, 0), nil).Once()

	comments, err := usecase.NewCommentUseCase(yt).WithLimit(7).FetchComments(context.Background(), []string{"v1"})
	require.NoError(t, err)
	assert.Len(t, comments, 7)

	// out of range keeps the default
	yt2 := new(MockYouTube)
	yt2.On("ListCommentThreads", mock.Anything, "v1", int64(100)).Return(threads("v1", 150, 0), nil).Once()
	comments, err = usecase.NewCommentUseCase(yt2).WithLimit(500).FetchComments(context.Background(), []string{"v1"})
	require.NoError(t, err)
	assert.Len(t, comments, model.MaxComments)
}

func TestStream_ContextCanceled(t *testing.T) {
	yt := new(MockYouTube)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for _, err := range usecase.NewCommentUseCase(yt).Stream(ctx, []string{"v1"}) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, context.Canceled)
	yt.AssertNotCalled(t, "ListCommentThreads", mock.Anything, mock.Anything, mock.Anything)
}
