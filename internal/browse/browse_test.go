package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotifyclone/internal/types"
)

type fakeCatalog struct {
	releases   []types.Album
	featured   []types.Playlist
	genres     []string
	categories []types.Category

	releasesErr error
	featuredErr error
	genresErr   error
	recsErr     error

	seeds []string
}

func (f *fakeCatalog) NewReleases(context.Context) ([]types.Album, error) {
	return f.releases, f.releasesErr
}

func (f *fakeCatalog) FeaturedPlaylists(context.Context) ([]types.Playlist, error) {
	return f.featured, f.featuredErr
}

func (f *fakeCatalog) Recommendations(_ context.Context, genres []string) ([]types.Track, error) {
	f.seeds = genres
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	tracks := make([]types.Track, 0, len(genres))
	for _, g := range genres {
		tracks = append(tracks, types.Track{ID: g, Name: g})
	}
	return tracks, nil
}

func (f *fakeCatalog) AvailableGenreSeeds(context.Context) ([]string, error) {
	return f.genres, f.genresErr
}

func (f *fakeCatalog) Categories(context.Context) ([]types.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) CategoryPlaylists(_ context.Context, categoryID string) ([]types.Playlist, error) {
	if categoryID == "missing" {
		return nil, errors.New("not found")
	}
	return []types.Playlist{{ID: categoryID + "-1"}}, nil
}

func (f *fakeCatalog) AlbumDetails(_ context.Context, albumID string) (*types.AlbumDetails, error) {
	return &types.AlbumDetails{Album: types.Album{ID: albumID}}, nil
}

func (f *fakeCatalog) PlaylistDetails(_ context.Context, playlistID string) (*types.PlaylistDetails, error) {
	return &types.PlaylistDetails{Playlist: types.Playlist{ID: playlistID}}, nil
}

func newService(catalog *fakeCatalog) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	s := NewService(catalog, logger)
	// Keep genre order so seeds are predictable.
	s.shuffle = func(int, func(i, j int)) {}
	return s
}

func TestHome(t *testing.T) {
	catalog := &fakeCatalog{
		releases: []types.Album{{ID: "a1"}},
		featured: []types.Playlist{{ID: "p1"}, {ID: "p2"}},
		genres:   []string{"jazz", "rock", "pop", "soul", "funk", "blues", "metal"},
	}
	s := newService(catalog)

	feed, err := s.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, feed.NewReleases, 1)
	assert.Len(t, feed.FeaturedPlaylists, 2)
	assert.Equal(t, []string{"jazz", "rock", "pop", "soul", "funk"}, catalog.seeds)
	assert.Len(t, feed.Recommendations, SeedCount)
}

func TestHomePartialFailure(t *testing.T) {
	tests := []struct {
		name    string
		catalog *fakeCatalog
		check   func(t *testing.T, feed *types.HomeFeed)
	}{
		{
			name: "featured fails",
			catalog: &fakeCatalog{
				releases:    []types.Album{{ID: "a1"}},
				featuredErr: errors.New("featured down"),
				genres:      []string{"jazz"},
			},
			check: func(t *testing.T, feed *types.HomeFeed) {
				assert.Len(t, feed.NewReleases, 1)
				assert.Empty(t, feed.FeaturedPlaylists)
				assert.Len(t, feed.Recommendations, 1)
			},
		},
		{
			name: "genre seeds fail",
			catalog: &fakeCatalog{
				featured:  []types.Playlist{{ID: "p1"}},
				genresErr: errors.New("seeds down"),
			},
			check: func(t *testing.T, feed *types.HomeFeed) {
				assert.Len(t, feed.FeaturedPlaylists, 1)
				assert.Empty(t, feed.Recommendations)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := newService(tt.catalog).Home(context.Background())
			require.Error(t, err)
			require.NotNil(t, feed)
			tt.check(t, feed)
		})
	}
}

func TestHomeJoinsErrors(t *testing.T) {
	releasesErr := errors.New("releases down")
	recsErr := errors.New("recs down")
	catalog := &fakeCatalog{
		releasesErr: releasesErr,
		genres:      []string{"jazz"},
		recsErr:     recsErr,
	}

	_, err := newService(catalog).Home(context.Background())
	assert.ErrorIs(t, err, releasesErr)
	assert.ErrorIs(t, err, recsErr)
}

func TestHomeWithoutGenres(t *testing.T) {
	catalog := &fakeCatalog{}
	feed, err := newService(catalog).Home(context.Background())
	require.NoError(t, err)
	assert.Empty(t, feed.Recommendations)
	assert.Nil(t, catalog.seeds)
}

func TestPickSeedsShuffles(t *testing.T) {
	s := newService(&fakeCatalog{})
	s.shuffle = func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}

	genres := []string{"a", "b", "c", "d", "e", "f"}
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, s.pickSeeds(genres))
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, genres, "input must not be reordered")
	assert.Equal(t, []string{"b", "a"}, s.pickSeeds([]string{"a", "b"}))
}

func TestPassthroughs(t *testing.T) {
	s := newService(&fakeCatalog{categories: []types.Category{{ID: "jazz"}}})
	ctx := context.Background()

	categories, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jazz", categories[0].ID)

	playlists, err := s.CategoryPlaylists(ctx, "jazz")
	require.NoError(t, err)
	assert.Equal(t, "jazz-1", playlists[0].ID)

	_, err = s.CategoryPlaylists(ctx, "missing")
	assert.ErrorContains(t, err, "missing")

	album, err := s.Album(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", album.Album.ID)

	playlist, err := s.Playlist(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", playlist.Playlist.ID)
}
