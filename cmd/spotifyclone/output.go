package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/toozej/spotifyclone/internal/search"
	"github.com/toozej/spotifyclone/internal/types"
)

// formatDuration renders milliseconds as m:ss.
func formatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func previewMark(t types.Track) string {
	if t.HasPreview() {
		return "▶"
	}
	return " "
}

func printTracks(w io.Writer, tracks []types.Track) {
	for i, t := range tracks {
		fmt.Fprintf(w, "%3d. %s %s (%s)\n", i+1, previewMark(t), t.String(), formatDuration(t.Duration))
		fmt.Fprintf(w, "        id: %s\n", t.ID)
	}
}

func printAlbums(w io.Writer, albums []types.Album) {
	for i, a := range albums {
		line := fmt.Sprintf("%3d. 💿 %s", i+1, a.Name)
		if artists := artistNames(a.Artists); artists != "" {
			line += " - " + artists
		}
		if a.ReleaseDate != "" {
			line += " (" + a.ReleaseDate + ")"
		}
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "        id: %s\n", a.ID)
	}
}

func printPlaylists(w io.Writer, playlists []types.Playlist) {
	for i, p := range playlists {
		line := fmt.Sprintf("%3d. 📃 %s", i+1, p.Name)
		if p.OwnerName != "" {
			line += " by " + p.OwnerName
		}
		if p.TrackCount > 0 {
			line += fmt.Sprintf(" [%d tracks]", p.TrackCount)
		}
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "        id: %s\n", p.ID)
	}
}

func printCategories(w io.Writer, categories []types.Category) {
	for i, c := range categories {
		fmt.Fprintf(w, "%3d. %s (%s)\n", i+1, c.Name, c.ID)
	}
}

func printSearchResults(w io.Writer, query string, matches []search.Match) {
	fmt.Fprintf(w, "\n🔍 Search Results for '%s':\n", query)
	fmt.Fprintf(w, "Found %d result(s):\n\n", len(matches))

	var kind types.SearchResultKind
	for _, m := range matches {
		if m.Result.Kind != kind {
			kind = m.Result.Kind
			fmt.Fprintf(w, "%s\n", kindHeading(kind))
		}
		star := " "
		if m.IsHighConfidence() {
			star = "★"
		}
		line := fmt.Sprintf("  %s %s", star, m.Result.Title())
		if sub := m.Result.Subtitle(); sub != "" {
			line += " - " + sub
		}
		fmt.Fprintf(w, "%s  [%s]\n", line, resultID(m.Result))
	}
}

func kindHeading(k types.SearchResultKind) string {
	switch k {
	case types.KindAlbum:
		return "💿 Albums"
	case types.KindArtist:
		return "🎤 Artists"
	case types.KindPlaylist:
		return "📃 Playlists"
	case types.KindTrack:
		return "🎵 Songs"
	}
	return string(k)
}

func resultID(r types.SearchResult) string {
	switch {
	case r.Album != nil:
		return r.Album.ID
	case r.Artist != nil:
		return r.Artist.ID
	case r.Playlist != nil:
		return r.Playlist.ID
	case r.Track != nil:
		return r.Track.ID
	}
	return ""
}

func artistNames(artists []types.Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
