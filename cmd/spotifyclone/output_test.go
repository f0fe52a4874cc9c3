package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotifyclone/internal/search"
	"github.com/toozej/spotifyclone/internal/types"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{0, "0:00"},
		{30000, "0:30"},
		{545000, "9:05"},
		{3725000, "62:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.ms))
	}
}

func TestPrintTracks(t *testing.T) {
	var buf bytes.Buffer
	printTracks(&buf, []types.Track{
		{ID: "t1", Name: "So What", Duration: 545000, PreviewURL: "https://p.scdn.co/a", Artists: []types.Artist{{Name: "Miles Davis"}}},
		{ID: "t2", Name: "Blue in Green", Duration: 337000},
	})

	out := buf.String()
	assert.Contains(t, out, "  1. ▶ Miles Davis - So What (9:05)")
	assert.Contains(t, out, "  2.   Blue in Green (5:37)")
	assert.Contains(t, out, "id: t2")
}

func TestPrintSearchResults(t *testing.T) {
	var buf bytes.Buffer
	printSearchResults(&buf, "blue", []search.Match{
		{Result: types.SearchResult{Kind: types.KindAlbum, Album: &types.Album{ID: "a1", Name: "Blue"}}, Confidence: 1},
		{Result: types.SearchResult{Kind: types.KindTrack, Track: &types.Track{ID: "t1", Name: "Blue in Green"}}, Confidence: 0.85},
		{Result: types.SearchResult{Kind: types.KindTrack, Track: &types.Track{ID: "t2", Name: "Bluesette"}}, Confidence: 0.5},
	})

	out := buf.String()
	assert.Contains(t, out, "Found 3 result(s)")
	assert.Contains(t, out, "💿 Albums\n  ★ Blue  [a1]")
	assert.Contains(t, out, "🎵 Songs\n  ★ Blue in Green  [t1]\n    Bluesette  [t2]")
}

func TestTokenStatus(t *testing.T) {
	assert.Equal(t, "Signed in; token expiry unknown", tokenStatus(time.Time{}, false))
	assert.Contains(t, tokenStatus(time.Now().Add(time.Hour), true), "Token valid until")
	assert.Contains(t, tokenStatus(time.Now().Add(-time.Minute), true), "Token expired at")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Miles", displayName("Miles", "u1"))
	assert.Equal(t, "u1", displayName("", "u1"))
}

type fakeSearch struct {
	results []types.SearchResult
}

func (f fakeSearch) Search(context.Context, string) ([]types.SearchResult, error) {
	return f.results, nil
}

func TestResolveTrack(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	searcher := search.NewSearcher(fakeSearch{results: []types.SearchResult{
		{Kind: types.KindAlbum, Album: &types.Album{ID: "a1", Name: "So What"}},
		{Kind: types.KindTrack, Track: &types.Track{ID: "t2", Name: "So What (Live)"}},
		{Kind: types.KindTrack, Track: &types.Track{ID: "t1", Name: "So What"}},
	}}, logger)

	track, err := resolveTrack(context.Background(), searcher, []string{"spotify:track:abc123"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", track.ID)

	track, err = resolveTrack(context.Background(), searcher, []string{"so", "what"})
	require.NoError(t, err)
	assert.Equal(t, "t1", track.ID, "best song match wins")

	empty := search.NewSearcher(fakeSearch{}, logger)
	_, err = resolveTrack(context.Background(), empty, []string{"nothing"})
	assert.ErrorIs(t, err, errNoSongMatch)
}
