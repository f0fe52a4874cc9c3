package search

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
	results []types.SearchResult
	err     error
	queries []string
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]types.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func newSearcher(catalog types.SearchService) *Searcher {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewSearcher(catalog, logger)
}

func album(name string) types.SearchResult {
	return types.SearchResult{Kind: types.KindAlbum, Album: &types.Album{ID: name, Name: name}}
}

func artist(name string) types.SearchResult {
	return types.SearchResult{Kind: types.KindArtist, Artist: &types.Artist{ID: name, Name: name}}
}

func playlist(name string) types.SearchResult {
	return types.SearchResult{Kind: types.KindPlaylist, Playlist: &types.Playlist{ID: name, Name: name}}
}

func song(name string) types.SearchResult {
	return types.SearchResult{Kind: types.KindTrack, Track: &types.Track{ID: name, Name: name}}
}

func titles(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Result.Title())
	}
	return out
}

func TestMatchConfidence(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		item     string
		min, max float64
	}{
		{name: "exact", query: "So What", item: "so what", min: 1, max: 1},
		{name: "query inside name", query: "blue", item: "Kind of Blue", min: 0.8, max: 0.9},
		{name: "name inside query", query: "kind of blue legacy edition", item: "Kind of Blue", min: 0.7, max: 0.8},
		{name: "fuzzy", query: "kob", item: "Kind of Blue", min: 0.1, max: 0.7},
		{name: "no match", query: "xyz", item: "Kind of Blue", min: 0.1, max: 0.1},
		{name: "empty", query: "", item: "Kind of Blue", min: 0.1, max: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchConfidence(tt.query, tt.item)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestSearchRanksWithinKind(t *testing.T) {
	catalog := &fakeCatalog{results: []types.SearchResult{
		album("Blue Train"),
		album("Blue"),
		artist("Blue Mitchell"),
		playlist("Monday Blues"),
		song("Blue in Green"),
		song("Blue"),
	}}
	s := newSearcher(catalog)

	matches, err := s.Search(context.Background(), "  blue ", types.FilterAll)
	require.NoError(t, err)

	assert.Equal(t, []string{"blue"}, catalog.queries)
	assert.Equal(t, []string{
		"Blue", "Blue Train",
		"Blue Mitchell",
		"Monday Blues",
		"Blue", "Blue in Green",
	}, titles(matches))
	assert.True(t, matches[0].IsHighConfidence())
}

func TestSearchFilter(t *testing.T) {
	catalog := &fakeCatalog{results: []types.SearchResult{
		album("Blue"), artist("Blue"), playlist("Blue"), song("Blue"),
	}}
	s := newSearcher(catalog)

	tests := []struct {
		filter types.SearchFilter
		want   []types.SearchResultKind
	}{
		{types.FilterAll, []types.SearchResultKind{types.KindAlbum, types.KindArtist, types.KindPlaylist, types.KindTrack}},
		{types.FilterAlbums, []types.SearchResultKind{types.KindAlbum}},
		{types.FilterArtists, []types.SearchResultKind{types.KindArtist}},
		{types.FilterPlaylists, []types.SearchResultKind{types.KindPlaylist}},
		{types.FilterSongs, []types.SearchResultKind{types.KindTrack}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			matches, err := s.Search(context.Background(), "blue", tt.filter)
			require.NoError(t, err)

			var kinds []types.SearchResultKind
			for _, m := range matches {
				kinds = append(kinds, m.Result.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestSearchErrors(t *testing.T) {
	s := newSearcher(&fakeCatalog{})
	_, err := s.Search(context.Background(), "   ", types.FilterAll)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	boom := errors.New("service unavailable")
	s = newSearcher(&fakeCatalog{err: boom})
	_, err = s.Search(context.Background(), "blue", types.FilterAll)
	assert.ErrorIs(t, err, boom)
}

func TestTracks(t *testing.T) {
	matches := []Match{
		{Result: album("A")},
		{Result: song("One")},
		{Result: types.SearchResult{Kind: types.KindTrack}},
		{Result: song("Two")},
	}

	tracks := Tracks(matches)
	require.Len(t, tracks, 2)
	assert.Equal(t, "One", tracks[0].Name)
	assert.Equal(t, "Two", tracks[1].Name)
}
