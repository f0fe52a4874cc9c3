package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"

	"github.com/toozej/spotifyclone/internal/types"
)

// Request limits for list endpoints.
const (
	newReleasesLimit      = 50
	featuredLimit         = 20
	recommendationsLimit  = 20
	categoriesLimit       = 50
	categoryPlaylistLimit = 50
	searchLimit           = 10
	userPlaylistsLimit    = 50
	savedAlbumsLimit      = 50
)

var _ types.CatalogService = (*Client)(nil)

func (c *Client) log(operation string) *logrus.Entry {
	return c.logger.WithFields(logrus.Fields{
		"component": "spotify_client",
		"operation": operation,
	})
}

// NewReleases returns recently released albums.
func (c *Client) NewReleases(ctx context.Context) ([]types.Album, error) {
	page, err := c.api.NewReleases(ctx, c.countryOpts(spotify.Limit(newReleasesLimit))...)
	if err != nil {
		c.log("new_releases").WithError(err).Error("Failed to get new releases")
		return nil, wrapError(err, "failed to get new releases")
	}

	albums := convertSimpleAlbums(page.Albums)
	c.log("new_releases").WithField("count", len(albums)).Debug("Retrieved new releases")
	return albums, nil
}

// FeaturedPlaylists returns the editorially featured playlists.
func (c *Client) FeaturedPlaylists(ctx context.Context) ([]types.Playlist, error) {
	_, page, err := c.api.FeaturedPlaylists(ctx, c.countryOpts(spotify.Limit(featuredLimit))...)
	if err != nil {
		c.log("featured_playlists").WithError(err).Error("Failed to get featured playlists")
		return nil, wrapError(err, "failed to get featured playlists")
	}

	playlists := convertSimplePlaylists(page.Playlists)
	c.log("featured_playlists").WithField("count", len(playlists)).Debug("Retrieved featured playlists")
	return playlists, nil
}

// AvailableGenreSeeds lists the genres accepted as recommendation seeds.
func (c *Client) AvailableGenreSeeds(ctx context.Context) ([]string, error) {
	genres, err := c.api.GetAvailableGenreSeeds(ctx)
	if err != nil {
		c.log("genre_seeds").WithError(err).Error("Failed to get genre seeds")
		return nil, wrapError(err, "failed to get genre seeds")
	}
	return genres, nil
}

// Recommendations returns tracks recommended for the given genre seeds.
func (c *Client) Recommendations(ctx context.Context, genres []string) ([]types.Track, error) {
	if len(genres) == 0 {
		return nil, errors.New("at least one genre seed is required")
	}

	recs, err := c.api.GetRecommendations(ctx, spotify.Seeds{Genres: genres}, nil,
		c.marketOpts(spotify.Limit(recommendationsLimit))...)
	if err != nil {
		c.log("recommendations").WithError(err).WithField("genres", genres).Error("Failed to get recommendations")
		return nil, wrapError(err, "failed to get recommendations")
	}

	tracks := make([]types.Track, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		tracks = append(tracks, convertRecommendedTrack(t))
	}

	c.log("recommendations").WithFields(logrus.Fields{
		"genres": genres,
		"count":  len(tracks),
	}).Debug("Retrieved recommendations")
	return tracks, nil
}

// Categories returns the browse categories.
func (c *Client) Categories(ctx context.Context) ([]types.Category, error) {
	page, err := c.api.GetCategories(ctx, c.countryOpts(spotify.Limit(categoriesLimit))...)
	if err != nil {
		c.log("categories").WithError(err).Error("Failed to get categories")
		return nil, wrapError(err, "failed to get categories")
	}

	categories := make([]types.Category, 0, len(page.Categories))
	for _, cat := range page.Categories {
		categories = append(categories, types.Category{
			ID:    cat.ID,
			Name:  cat.Name,
			Icons: convertImages(cat.Icons),
		})
	}
	return categories, nil
}

// CategoryPlaylists returns the playlists filed under a category.
func (c *Client) CategoryPlaylists(ctx context.Context, categoryID string) ([]types.Playlist, error) {
	page, err := c.api.GetCategoryPlaylists(ctx, categoryID, c.countryOpts(spotify.Limit(categoryPlaylistLimit))...)
	if err != nil {
		c.log("category_playlists").WithError(err).WithField("category_id", categoryID).Error("Failed to get category playlists")
		return nil, wrapError(err, "failed to get playlists for category %s", categoryID)
	}
	return convertSimplePlaylists(page.Playlists), nil
}

// AlbumDetails returns an album with its tracks. Each track points back at
// the album so its artwork can be shown while it plays.
func (c *Client) AlbumDetails(ctx context.Context, albumID string) (*types.AlbumDetails, error) {
	full, err := c.api.GetAlbum(ctx, spotify.ID(albumID), c.marketOpts()...)
	if err != nil {
		c.log("album_details").WithError(err).WithField("album_id", albumID).Error("Failed to get album")
		return nil, wrapError(err, "failed to get album %s", albumID)
	}

	album := convertFullAlbum(full)
	details := &types.AlbumDetails{
		Album:  album,
		Tracks: make([]types.Track, 0, len(full.Tracks.Tracks)),
	}
	for _, t := range full.Tracks.Tracks {
		a := album
		details.Tracks = append(details.Tracks, convertSimpleTrack(t, &a))
	}

	c.log("album_details").WithFields(logrus.Fields{
		"album_id": albumID,
		"tracks":   len(details.Tracks),
	}).Debug("Retrieved album")
	return details, nil
}

// PlaylistDetails returns a playlist with its tracks. Episodes and local
// files are skipped.
func (c *Client) PlaylistDetails(ctx context.Context, playlistID string) (*types.PlaylistDetails, error) {
	full, err := c.api.GetPlaylist(ctx, spotify.ID(playlistID), c.marketOpts()...)
	if err != nil {
		c.log("playlist_details").WithError(err).WithField("playlist_id", playlistID).Error("Failed to get playlist")
		return nil, wrapError(err, "failed to get playlist %s", playlistID)
	}

	items, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), c.marketOpts()...)
	if err != nil {
		c.log("playlist_details").WithError(err).WithField("playlist_id", playlistID).Error("Failed to get playlist items")
		return nil, wrapError(err, "failed to get items of playlist %s", playlistID)
	}

	details := &types.PlaylistDetails{Playlist: convertFullPlaylist(full)}
	for _, item := range items.Items {
		if item.Track.Track == nil || item.Track.Track.ID == "" {
			continue
		}
		details.Tracks = append(details.Tracks, convertFullTrack(item.Track.Track))
	}

	c.log("playlist_details").WithFields(logrus.Fields{
		"playlist_id": playlistID,
		"tracks":      len(details.Tracks),
	}).Debug("Retrieved playlist")
	return details, nil
}

// Search queries albums, artists, playlists and tracks at once. Results are
// grouped in that order.
func (c *Client) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	searchType := spotify.SearchTypeAlbum | spotify.SearchTypeArtist | spotify.SearchTypePlaylist | spotify.SearchTypeTrack

	res, err := c.api.Search(ctx, query, searchType, c.marketOpts(spotify.Limit(searchLimit))...)
	if err != nil {
		c.log("search").WithError(err).WithField("query", query).Error("Search failed")
		return nil, wrapError(err, "failed to search for %q", query)
	}

	var results []types.SearchResult
	if res.Albums != nil {
		for _, a := range convertSimpleAlbums(res.Albums.Albums) {
			album := a
			results = append(results, types.SearchResult{Kind: types.KindAlbum, Album: &album})
		}
	}
	if res.Artists != nil {
		for _, a := range res.Artists.Artists {
			if a.ID == "" {
				continue
			}
			artist := convertFullArtist(a)
			results = append(results, types.SearchResult{Kind: types.KindArtist, Artist: &artist})
		}
	}
	if res.Playlists != nil {
		for _, p := range convertSimplePlaylists(res.Playlists.Playlists) {
			playlist := p
			results = append(results, types.SearchResult{Kind: types.KindPlaylist, Playlist: &playlist})
		}
	}
	if res.Tracks != nil {
		for i := range res.Tracks.Tracks {
			if res.Tracks.Tracks[i].ID == "" {
				continue
			}
			track := convertFullTrack(&res.Tracks.Tracks[i])
			results = append(results, types.SearchResult{Kind: types.KindTrack, Track: &track})
		}
	}

	c.log("search").WithFields(logrus.Fields{
		"query":   query,
		"results": len(results),
	}).Debug("Search completed")
	return results, nil
}

// CurrentUserProfile returns the signed-in user.
func (c *Client) CurrentUserProfile(ctx context.Context) (*types.UserProfile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		c.log("profile").WithError(err).Error("Failed to get current user")
		return nil, wrapError(err, "failed to get current user")
	}
	return convertPrivateUser(user), nil
}

// CurrentUserPlaylists returns the playlists the user owns or follows.
func (c *Client) CurrentUserPlaylists(ctx context.Context) ([]types.Playlist, error) {
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(userPlaylistsLimit))
	if err != nil {
		c.log("user_playlists").WithError(err).Error("Failed to get user playlists")
		return nil, wrapError(err, "failed to get user playlists")
	}
	return convertSimplePlaylists(page.Playlists), nil
}

// CurrentUserAlbums returns the albums saved in the user's library.
func (c *Client) CurrentUserAlbums(ctx context.Context) ([]types.SavedAlbum, error) {
	page, err := c.api.CurrentUsersAlbums(ctx, c.marketOpts(spotify.Limit(savedAlbumsLimit))...)
	if err != nil {
		c.log("saved_albums").WithError(err).Error("Failed to get saved albums")
		return nil, wrapError(err, "failed to get saved albums")
	}

	albums := make([]types.SavedAlbum, 0, len(page.Albums))
	for _, a := range page.Albums {
		albums = append(albums, convertSavedAlbum(a))
	}
	return albums, nil
}

// CreatePlaylist creates a private playlist owned by the signed-in user.
func (c *Client) CreatePlaylist(ctx context.Context, name string) (*types.Playlist, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		c.log("create_playlist").WithError(err).Error("Failed to get current user for playlist creation")
		return nil, wrapError(err, "failed to get current user")
	}

	created, err := c.api.CreatePlaylistForUser(ctx, user.ID, name, "", false, false)
	if err != nil {
		c.log("create_playlist").WithError(err).WithFields(logrus.Fields{
			"playlist_name": name,
			"user_id":       user.ID,
		}).Error("Failed to create playlist")
		return nil, wrapError(err, "failed to create playlist %s", name)
	}

	playlist := convertFullPlaylist(created)
	c.log("create_playlist").WithFields(logrus.Fields{
		"playlist_id":   playlist.ID,
		"playlist_name": playlist.Name,
	}).Info("Created playlist")
	return &playlist, nil
}

// AddTrackToPlaylist appends one track to a playlist.
func (c *Client) AddTrackToPlaylist(ctx context.Context, trackID, playlistID string) error {
	if trackID == "" || playlistID == "" {
		return fmt.Errorf("track ID and playlist ID are required")
	}

	if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), spotify.ID(trackID)); err != nil {
		c.log("add_track").WithError(err).WithFields(logrus.Fields{
			"playlist_id": playlistID,
			"track_id":    trackID,
		}).Error("Failed to add track to playlist")
		return wrapError(err, "failed to add track %s to playlist %s", trackID, playlistID)
	}

	c.log("add_track").WithFields(logrus.Fields{
		"playlist_id": playlistID,
		"track_id":    trackID,
	}).Debug("Added track to playlist")
	return nil
}

// RemoveTrackFromPlaylist removes every occurrence of a track from a playlist.
func (c *Client) RemoveTrackFromPlaylist(ctx context.Context, trackID, playlistID string) error {
	if trackID == "" || playlistID == "" {
		return fmt.Errorf("track ID and playlist ID are required")
	}

	if _, err := c.api.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), spotify.ID(trackID)); err != nil {
		c.log("remove_track").WithError(err).WithFields(logrus.Fields{
			"playlist_id": playlistID,
			"track_id":    trackID,
		}).Error("Failed to remove track from playlist")
		return wrapError(err, "failed to remove track %s from playlist %s", trackID, playlistID)
	}
	return nil
}

// SaveAlbum adds an album to the user's library.
func (c *Client) SaveAlbum(ctx context.Context, albumID string) error {
	if err := c.api.AddAlbumsToLibrary(ctx, spotify.ID(albumID)); err != nil {
		c.log("save_album").WithError(err).WithField("album_id", albumID).Error("Failed to save album")
		return wrapError(err, "failed to save album %s", albumID)
	}
	return nil
}
