package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"yt-channel-report/domain/model"
	"yt-channel-report/domain/repository"
	"yt-channel-report/usecase"
)

func TestExtractChannelHandle(t *testing.T) {
	valid := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/@Telsuko", "@Telsuko"},
		{"https://www.youtube.com/@Telsuko/videos", "@Telsuko"},
		{"https://www.youtube.com/@Telsuko/playlists/extra?view=1", "@Telsuko"},
		{"http://www.youtube.com/@a.b-c_d", "@a.b-c_d"},
		{"  https://WWW.YOUTUBE.COM/@Mixed  ", "@Mixed"},
	}
	for _, tt := range valid {
		t.Run(tt.url, func(t *testing.T) {
			got, err := usecase.ExtractChannelHandle(tt.url, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []string{
		"https://youtube.com/@Telsuko",
		"https://m.youtube.com/@Telsuko",
		"https://www.example.com/@Telsuko",
		"https://www.youtube.com/channel/UC123",
		"https://www.youtube.com/c/@Telsuko",
		"https://www.youtube.com/@",
		"https://www.youtube.com/",
		"www.youtube.com/@Telsuko",
		"::not a url",
	}
	for _, raw := range invalid {
		t.Run(raw, func(t *testing.T) {
			_, err := usecase.ExtractChannelHandle(raw, "")
			assert.ErrorIs(t, err, model.ErrInvalidURL)
		})
	}
}

func TestExtractChannelHandle_CustomHost(t *testing.T) {
	got, err := usecase.ExtractChannelHandle("https://yt.local/@dev", "yt.local")
	require.NoError(t, err)
	assert.Equal(t, "@dev", got)

	_, err = usecase.ExtractChannelHandle("https://www.youtube.com/@dev", "yt.local")
	assert.ErrorIs(t, err, model.ErrInvalidURL)
}

func TestResolveChannelID(t *testing.T) {
	ctx := context.Background()

	t.Run("first result wins", func(t *testing.T) {
		yt := new(MockYouTube)
		yt.On("SearchChannelIDs", mock.Anything, "@Telsuko").Return([]string{"UC1", "UC2"}, nil).Once()

		id, err := usecase.NewChannelUseCase(yt).ResolveChannelID(ctx, "@Telsuko")
		require.NoError(t, err)
		assert.Equal(t, "UC1", id)
		yt.AssertExpectations(t)
	})

	t.Run("empty search is not found", func(t *testing.T) {
		yt := new(MockYouTube)
		yt.On("SearchChannelIDs", mock.Anything, "@ghost").Return([]string{}, nil).Once()

		_, err := usecase.NewChannelUseCase(yt).ResolveChannelID(ctx, "@ghost")
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.False(t, model.IsRemoteAPIError(err))
	})

	t.Run("transport error is a remote api error", func(t *testing.T) {
		yt := new(MockYouTube)
		yt.On("SearchChannelIDs", mock.Anything, "@x").Return(nil, errors.New("connection reset")).Once()

		_, err := usecase.NewChannelUseCase(yt).ResolveChannelID(ctx, "@x")
		require.Error(t, err)
		assert.True(t, model.IsRemoteAPIError(err))
		assert.NotErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("cache hit skips search", func(t *testing.T) {
		yt := new(MockYouTube)
		cache := new(MockChannelCache)
		cache.On("GetChannelID", mock.Anything, "@Telsuko").Return("UCcached", nil).Once()

		id, err := usecase.NewChannelUseCase(yt).WithCache(cache).ResolveChannelID(ctx, "@Telsuko")
		require.NoError(t, err)
		assert.Equal(t, "UCcached", id)
		yt.AssertNotCalled(t, "SearchChannelIDs", mock.Anything, mock.Anything)
	})

	t.Run("cache miss stores result and cache errors are ignored", func(t *testing.T) {
		yt := new(MockYouTube)
		cache := new(MockChannelCache)
		cache.On("GetChannelID", mock.Anything, "@Telsuko").Return("", errors.New("redis down")).Once()
		cache.On("SetChannelID", mock.Anything, "@Telsuko", "UC1", mock.Anything).Return(errors.New("redis down")).Once()
		yt.On("SearchChannelIDs", mock.Anything, "@Telsuko").Return([]string{"UC1"}, nil).Once()

		id, err := usecase.NewChannelUseCase(yt).WithCache(cache).ResolveChannelID(ctx, "@Telsuko")
		require.NoError(t, err)
		assert.Equal(t, "UC1", id)
		cache.AssertExpectations(t)
	})
}

func TestListVideoIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("fewer uploads than requested", func(t *testing.T) {
		yt := new(MockYouTube)
		yt.On("GetUploadsPlaylistID", mock.Anything, "UC1").Return("UU1", nil).Once()
		yt.On("ListPlaylistVideoIDs", mock.Anything, "UU1", int64(50), "").
			Return(&repository.VideoPage{VideoIDs: []string{"v1", "v2", "v3"}}, nil).Once()

		ids, err := usecase.NewChannelUseCase(yt).ListVideoIDs(ctx, "UC1", 70)
		require.NoError(t, err)
		assert.Equal(t, []string{"v1", "v2", "v3"}, ids)
		yt.AssertExpectations(t)
	})

	t.Run("pages until the maximum and keeps order", func(t *testing.T) {
		first := make([]string, 50)
		for i := range first {
			first[i] = "a" + itoa(i)
		}
		second := make([]string, 20)
		for i := range second {
			second[i] = "b" + itoa(i)
		}
		yt := new(MockYouTube)
		yt.On("GetUploadsPlaylistID", mock.Anything, "UC1").Return("UU1", nil).Once()
		yt.On("ListPlaylistVideoIDs", mock.Anything, "UU1", int64(50), "").
			Return(&repository.VideoPage{VideoIDs: first, NextPageToken: "p2"}, nil).Once()
		yt.On("ListPlaylistVideoIDs", mock.Anything, "UU1", int64(20), "p2").
			Return(&repository.VideoPage{VideoIDs: second, NextPageToken: "p3"}, nil).Once()

		ids, err := usecase.NewChannelUseCase(yt).ListVideoIDs(ctx, "UC1", 70)
		require.NoError(t, err)
		require.Len(t, ids, 70)
		assert.Equal(t, "a0", ids[0])
		assert.Equal(t, "b19", ids[69])
		yt.AssertExpectations(t)
	})

	t.Run("never more than requested", func(t *testing.T) {
		yt := new(MockYouTube)
		yt.On("GetUploadsPlaylistID", mock.Anything, "UC1").Return("UU1", nil).Once()
		yt.On("ListPlaylistVideoIDs", mock.Anything, "UU1", int64(2), "").
			Return(&repository.VideoPage{VideoIDs: []string{"v1", "v2", "v3"}, NextPageToken: "p2"}, nil).Once()

		ids, err := usecase.NewChannelUseCase(yt).ListVideoIDs(ctx, "UC1", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"v1", "v2"}, ids)
	})

	t.Run("missing channel metadata", func(t *testing.T) {
		yt := new(MockYouTube)
		yt.On("GetUploadsPlaylistID", mock.Anything, "UC404").Return("", nil).Once()

		ids, err := usecase.NewChannelUseCase(yt).ListVideoIDs(ctx, "UC404", 10)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Empty(t, ids)
	})

	t.Run("listing failure", func(t *testing.T) {
		yt := new(MockYouTube)
		yt.On("GetUploadsPlaylistID", mock.Anything, "UC1").Return("UU1", nil).Once()
		yt.On("ListPlaylistVideoIDs", mock.Anything, "UU1", int64(10), "").Return(nil, errors.New("500")).Once()

		ids, err := usecase.NewChannelUseCase(yt).ListVideoIDs(ctx, "UC1", 10)
		assert.True(t, model.IsRemoteAPIError(err))
		assert.Empty(t, ids)
	})

	t.Run("non-positive maximum", func(t *testing.T) {
		yt := new(MockYouTube)
		_, err := usecase.NewChannelUseCase(yt).ListVideoIDs(ctx, "UC1", 0)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
		yt.AssertNotCalled(t, "GetUploadsPlaylistID", mock.Anything, mock.Anything)
	})
}
