package types

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BrowseService covers the catalog browsing endpoints
type BrowseService interface {
	NewReleases(ctx context.Context) ([]Album, error)
	FeaturedPlaylists(ctx context.Context) ([]Playlist, error)
	Recommendations(ctx context.Context, genres []string) ([]Track, error)
	AvailableGenreSeeds(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]Category, error)
	CategoryPlaylists(ctx context.Context, categoryID string) ([]Playlist, error)
	AlbumDetails(ctx context.Context, albumID string) (*AlbumDetails, error)
	PlaylistDetails(ctx context.Context, playlistID string) (*PlaylistDetails, error)
}

// SearchService performs catalog-wide searches
type SearchService interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// LibraryService covers the signed-in user's profile and library
type LibraryService interface {
	CurrentUserProfile(ctx context.Context) (*UserProfile, error)
	CurrentUserPlaylists(ctx context.Context) ([]Playlist, error)
	CurrentUserAlbums(ctx context.Context) ([]SavedAlbum, error)
	CreatePlaylist(ctx context.Context, name string) (*Playlist, error)
	AddTrackToPlaylist(ctx context.Context, trackID, playlistID string) error
	RemoveTrackFromPlaylist(ctx context.Context, trackID, playlistID string) error
	SaveAlbum(ctx context.Context, albumID string) error
}

// CatalogService is everything the Web API client offers
type CatalogService interface {
	BrowseService
	SearchService
	LibraryService
}

// Core data models

// Image is artwork at one resolution
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Artist represents a Spotify artist
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	URI    string   `json:"uri"`
	Genres []string `json:"genres,omitempty"`
	Images []Image  `json:"images,omitempty"`
}

// Album represents a Spotify album
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URI         string   `json:"uri"`
	Type        string   `json:"album_type"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Artists     []Artist `json:"artists"`
	Images      []Image  `json:"images"`
}

// Track represents a Spotify track. Album is nil when the track was loaded
// as part of an album listing.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	Artists    []Artist `json:"artists"`
	Duration   int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	PreviewURL string   `json:"preview_url,omitempty"`
	Album      *Album   `json:"album,omitempty"`
}

// HasPreview reports whether the track has a playable preview
func (t Track) HasPreview() bool {
	return strings.TrimSpace(t.PreviewURL) != ""
}

// ArtistNames joins the artist names for display
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// ArtworkURL returns the largest album image, or "" if there is none
func (t Track) ArtworkURL() string {
	if t.Album == nil {
		return ""
	}
	return largestImage(t.Album.Images)
}

// String returns a string representation of the track
func (t Track) String() string {
	if artists := t.ArtistNames(); artists != "" {
		return fmt.Sprintf("%s - %s", artists, t.Name)
	}
	return t.Name
}

// Playlist represents a Spotify playlist
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	URI         string  `json:"uri"`
	Description string  `json:"description"`
	OwnerID     string  `json:"owner_id"`
	OwnerName   string  `json:"owner_name"`
	TrackCount  int     `json:"track_count"`
	Images      []Image `json:"images"`
}

// Category is a browse category such as "Jazz" or "Focus"
type Category struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Icons []Image `json:"icons"`
}

// UserProfile is the signed-in user
type UserProfile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Country     string  `json:"country"`
	Product     string  `json:"product"`
	Images      []Image `json:"images"`
}

// AlbumDetails is an album with its track listing. Every track's Album
// points back at the album so artwork resolves during playback.
type AlbumDetails struct {
	Album  Album   `json:"album"`
	Tracks []Track `json:"tracks"`
}

// PlaylistDetails is a playlist with its tracks
type PlaylistDetails struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// SavedAlbum is an album in the user's library
type SavedAlbum struct {
	Album   Album     `json:"album"`
	AddedAt time.Time `json:"added_at"`
}

// HomeFeed is the browse landing view
type HomeFeed struct {
	NewReleases       []Album    `json:"new_releases"`
	FeaturedPlaylists []Playlist `json:"featured_playlists"`
	Recommendations   []Track    `json:"recommendations"`
}

// AddResult represents the result of adding a track to a playlist
type AddResult struct {
	Success      bool     `json:"success"`
	Track        Track    `json:"track"`
	Playlist     Playlist `json:"playlist"`
	WasDuplicate bool     `json:"was_duplicate"`
	Message      string   `json:"message"`
}

// Search models

// SearchResultKind tags a SearchResult
type SearchResultKind string

const (
	KindAlbum    SearchResultKind = "album"
	KindArtist   SearchResultKind = "artist"
	KindPlaylist SearchResultKind = "playlist"
	KindTrack    SearchResultKind = "track"
)

// SearchResult holds exactly one of Album, Artist, Playlist or Track,
// selected by Kind.
type SearchResult struct {
	Kind     SearchResultKind `json:"kind"`
	Album    *Album           `json:"album,omitempty"`
	Artist   *Artist          `json:"artist,omitempty"`
	Playlist *Playlist        `json:"playlist,omitempty"`
	Track    *Track           `json:"track,omitempty"`
}

// Title is the display name of whichever item the result holds
func (r SearchResult) Title() string {
	switch r.Kind {
	case KindAlbum:
		if r.Album != nil {
			return r.Album.Name
		}
	case KindArtist:
		if r.Artist != nil {
			return r.Artist.Name
		}
	case KindPlaylist:
		if r.Playlist != nil {
			return r.Playlist.Name
		}
	case KindTrack:
		if r.Track != nil {
			return r.Track.Name
		}
	}
	return ""
}

// Subtitle is the secondary line shown under Title
func (r SearchResult) Subtitle() string {
	switch r.Kind {
	case KindAlbum:
		if r.Album != nil {
			return artistNames(r.Album.Artists)
		}
	case KindPlaylist:
		if r.Playlist != nil {
			return r.Playlist.OwnerName
		}
	case KindTrack:
		if r.Track != nil {
			return r.Track.ArtistNames()
		}
	}
	return ""
}

// SearchFilter narrows search results to one kind
type SearchFilter string

const (
	FilterAll       SearchFilter = "all"
	FilterAlbums    SearchFilter = "albums"
	FilterArtists   SearchFilter = "artists"
	FilterPlaylists SearchFilter = "playlists"
	FilterSongs     SearchFilter = "songs"
)

// SearchFilters lists every filter in display order
var SearchFilters = []SearchFilter{FilterAll, FilterAlbums, FilterArtists, FilterPlaylists, FilterSongs}

// ParseSearchFilter accepts a filter name case-insensitively
func ParseSearchFilter(s string) (SearchFilter, error) {
	f := SearchFilter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FilterAll, nil
	}
	for _, known := range SearchFilters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown search filter %q", s)
}

// Matches reports whether a result of kind k passes the filter
func (f SearchFilter) Matches(k SearchResultKind) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterAlbums:
		return k == KindAlbum
	case FilterArtists:
		return k == KindArtist
	case FilterPlaylists:
		return k == KindPlaylist
	case FilterSongs:
		return k == KindTrack
	}
	return false
}

func artistNames(artists []Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func largestImage(images []Image) string {
	best := -1
	for i, img := range images {
		if best < 0 || img.Width*img.Height > images[best].Width*images[best].Height {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return images[best].URL
}
