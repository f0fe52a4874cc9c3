// Package library manages the signed-in user's playlists and saved albums.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	log "github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/internal/types"
)

// ErrEmptyName is returned when creating a playlist without a name.
var ErrEmptyName = errors.New("playlist name cannot be empty")

// Catalog is the part of the API client the library needs.
type Catalog interface {
	types.LibraryService
	PlaylistDetails(ctx context.Context, playlistID string) (*types.PlaylistDetails, error)
}

// Service wraps library operations with duplicate checks and logging.
type Service struct {
	catalog Catalog
	logger  *log.Logger
}

// NewService creates a new library service
func NewService(catalog Catalog, logger *log.Logger) *Service {
	return &Service{
		catalog: catalog,
		logger:  logger,
	}
}

func (s *Service) log(operation string) *log.Entry {
	return s.logger.WithFields(log.Fields{
		"component": "library_service",
		"operation": operation,
	})
}

// DuplicateResult reports which of a set of tracks a playlist already holds.
type DuplicateResult struct {
	HasDuplicates   bool          `json:"has_duplicates"`
	DuplicateTracks []types.Track `json:"duplicate_tracks"`
	Message         string        `json:"message"`
}

// CheckDuplicates loads the playlist and reports which of tracks are already in it.
func (s *Service) CheckDuplicates(ctx context.Context, playlistID string, tracks []types.Track) (*DuplicateResult, *types.PlaylistDetails, error) {
	details, err := s.catalog.PlaylistDetails(ctx, playlistID)
	if err != nil {
		s.log("check_duplicates").WithError(err).WithField("playlist_id", playlistID).Error("Failed to load playlist")
		return nil, nil, fmt.Errorf("failed to load playlist %s: %w", playlistID, err)
	}

	existing := make(map[string]bool, len(details.Tracks))
	for _, t := range details.Tracks {
		existing[t.ID] = true
	}

	result := &DuplicateResult{}
	for _, t := range tracks {
		if existing[t.ID] {
			result.DuplicateTracks = append(result.DuplicateTracks, t)
		}
	}

	if len(result.DuplicateTracks) > 0 {
		result.HasDuplicates = true
		names := make([]string, 0, len(result.DuplicateTracks))
		for _, t := range result.DuplicateTracks {
			names = append(names, t.Name)
		}
		result.Message = fmt.Sprintf("Found %d duplicate track(s): %s",
			len(result.DuplicateTracks), strings.Join(names, ", "))
	} else {
		result.Message = "No duplicate tracks found"
	}

	s.log("check_duplicates").WithFields(log.Fields{
		"playlist_id":      playlistID,
		"checked":          len(tracks),
		"duplicates_found": len(result.DuplicateTracks),
	}).Debug("Duplicate check completed")
	return result, details, nil
}

// AddTrackToPlaylist adds track to the playlist unless it is already there.
// force skips the duplicate check. Failures are reported in the result
// rather than as an error so callers can show the message as-is.
func (s *Service) AddTrackToPlaylist(ctx context.Context, track types.Track, playlistID string, force bool) *types.AddResult {
	logger := s.log("add_track").WithFields(log.Fields{
		"track_id":    track.ID,
		"track_name":  track.Name,
		"playlist_id": playlistID,
		"force":       force,
	})

	result := &types.AddResult{
		Track:    track,
		Playlist: types.Playlist{ID: playlistID},
	}

	if !force {
		dup, details, err := s.CheckDuplicates(ctx, playlistID, []types.Track{track})
		if err != nil {
			result.Message = "Failed to check for duplicates: " + err.Error()
			return result
		}
		result.Playlist = details.Playlist
		if dup.HasDuplicates {
			logger.Info("Track already in playlist, skipping")
			result.WasDuplicate = true
			result.Message = fmt.Sprintf("%q is already in %s. Use --force to add it anyway.",
				track.Name, playlistName(result.Playlist))
			return result
		}
	}

	if err := s.catalog.AddTrackToPlaylist(ctx, track.ID, playlistID); err != nil {
		result.Message = "Failed to add track to playlist: " + err.Error()
		if isRateLimited(err) {
			result.Message = "Rate limited by Spotify API. Please try again later."
			logger.WithField("event", "rate_limit_hit").Warn("Spotify API rate limit encountered")
		}
		logger.WithError(err).Error("Failed to add track to playlist")
		return result
	}

	logger.Info("Added track to playlist")
	result.Success = true
	result.Message = fmt.Sprintf("Added %q to %s", track.Name, playlistName(result.Playlist))
	return result
}

// RemoveTrackFromPlaylist removes every occurrence of the track.
func (s *Service) RemoveTrackFromPlaylist(ctx context.Context, trackID, playlistID string) error {
	if err := s.catalog.RemoveTrackFromPlaylist(ctx, trackID, playlistID); err != nil {
		s.log("remove_track").WithError(err).WithFields(log.Fields{
			"track_id":    trackID,
			"playlist_id": playlistID,
		}).Error("Failed to remove track from playlist")
		return fmt.Errorf("failed to remove track %s: %w", trackID, err)
	}
	return nil
}

// CreatePlaylist creates a private playlist owned by the current user.
func (s *Service) CreatePlaylist(ctx context.Context, name string) (*types.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	playlist, err := s.catalog.CreatePlaylist(ctx, name)
	if err != nil {
		s.log("create_playlist").WithError(err).WithField("name", name).Error("Failed to create playlist")
		return nil, fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	s.log("create_playlist").WithFields(log.Fields{
		"playlist_id": playlist.ID,
		"name":        playlist.Name,
	}).Info("Created playlist")
	return playlist, nil
}

// SaveAlbum adds the album to the user's library.
func (s *Service) SaveAlbum(ctx context.Context, albumID string) error {
	if err := s.catalog.SaveAlbum(ctx, albumID); err != nil {
		s.log("save_album").WithError(err).WithField("album_id", albumID).Error("Failed to save album")
		return fmt.Errorf("failed to save album %s: %w", albumID, err)
	}
	return nil
}

// Playlists returns the user's playlists, narrowed to those fuzzily matching
// filter when it is non-empty.
func (s *Service) Playlists(ctx context.Context, filter string) ([]types.Playlist, error) {
	playlists, err := s.catalog.CurrentUserPlaylists(ctx)
	if err != nil {
		s.log("playlists").WithError(err).Error("Failed to get user playlists")
		return nil, fmt.Errorf("failed to get playlists: %w", err)
	}
	return FilterPlaylists(playlists, filter), nil
}

// SavedAlbums returns the albums in the user's library.
func (s *Service) SavedAlbums(ctx context.Context) ([]types.SavedAlbum, error) {
	albums, err := s.catalog.CurrentUserAlbums(ctx)
	if err != nil {
		s.log("saved_albums").WithError(err).Error("Failed to get saved albums")
		return nil, fmt.Errorf("failed to get saved albums: %w", err)
	}
	return albums, nil
}

// Profile returns the signed-in user.
func (s *Service) Profile(ctx context.Context) (*types.UserProfile, error) {
	profile, err := s.catalog.CurrentUserProfile(ctx)
	if err != nil {
		s.log("profile").WithError(err).Error("Failed to get user profile")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

type playlistSource []types.Playlist

func (p playlistSource) String(i int) string { return p[i].Name }
func (p playlistSource) Len() int            { return len(p) }

// FilterPlaylists returns the playlists whose names fuzzily match search,
// best match first. An empty search returns playlists unchanged.
func FilterPlaylists(playlists []types.Playlist, search string) []types.Playlist {
	search = strings.TrimSpace(search)
	if search == "" {
		return playlists
	}

	matches := fuzzy.FindFrom(search, playlistSource(playlists))
	filtered := make([]types.Playlist, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, playlists[m.Index])
	}
	return filtered
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}

func playlistName(p types.Playlist) string {
	if p.Name != "" {
		return p.Name
	}
	return "playlist " + p.ID
}
