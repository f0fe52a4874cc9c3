package spotify

import (
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/toozej/spotifyclone/internal/types"
)

func convertImages(images []spotify.Image) []types.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]types.Image, 0, len(images))
	for _, img := range images {
		out = append(out, types.Image{
			URL:    img.URL,
			Width:  int(img.Width),
			Height: int(img.Height),
		})
	}
	return out
}

func convertSimpleArtists(artists []spotify.SimpleArtist) []types.Artist {
	out := make([]types.Artist, 0, len(artists))
	for _, a := range artists {
		out = append(out, types.Artist{
			ID:   string(a.ID),
			Name: a.Name,
			URI:  string(a.URI),
		})
	}
	return out
}

func convertFullArtist(a spotify.FullArtist) types.Artist {
	return types.Artist{
		ID:     string(a.ID),
		Name:   a.Name,
		URI:    string(a.URI),
		Genres: a.Genres,
		Images: convertImages(a.Images),
	}
}

func convertSimpleAlbum(a spotify.SimpleAlbum) types.Album {
	return types.Album{
		ID:          string(a.ID),
		Name:        a.Name,
		URI:         string(a.URI),
		Type:        a.AlbumType,
		ReleaseDate: a.ReleaseDate,
		Artists:     convertSimpleArtists(a.Artists),
		Images:      convertImages(a.Images),
	}
}

func convertFullAlbum(a *spotify.FullAlbum) types.Album {
	album := convertSimpleAlbum(a.SimpleAlbum)
	album.TotalTracks = int(a.Tracks.Total)
	return album
}

// convertSimpleTrack converts a track that carries no album of its own.
// album may be nil.
func convertSimpleTrack(t spotify.SimpleTrack, album *types.Album) types.Track {
	return types.Track{
		ID:         string(t.ID),
		Name:       t.Name,
		URI:        string(t.URI),
		Artists:    convertSimpleArtists(t.Artists),
		Duration:   int(t.Duration),
		Explicit:   t.Explicit,
		PreviewURL: t.PreviewURL,
		Album:      album,
	}
}

// convertRecommendedTrack keeps the album recommendations embed in each
// simple track, so artwork resolves during playback.
func convertRecommendedTrack(t spotify.SimpleTrack) types.Track {
	if t.Album.ID == "" && t.Album.Name == "" {
		return convertSimpleTrack(t, nil)
	}
	album := convertSimpleAlbum(t.Album)
	return convertSimpleTrack(t, &album)
}

func convertFullTrack(t *spotify.FullTrack) types.Track {
	album := convertSimpleAlbum(t.Album)
	return convertSimpleTrack(t.SimpleTrack, &album)
}

func convertSimplePlaylist(p spotify.SimplePlaylist) types.Playlist {
	return types.Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		URI:         string(p.URI),
		Description: p.Description,
		OwnerID:     p.Owner.ID,
		OwnerName:   p.Owner.DisplayName,
		TrackCount:  int(p.Tracks.Total),
		Images:      convertImages(p.Images),
	}
}

func convertFullPlaylist(p *spotify.FullPlaylist) types.Playlist {
	playlist := convertSimplePlaylist(p.SimplePlaylist)
	playlist.TrackCount = int(p.Tracks.Total)
	return playlist
}

func convertSimplePlaylists(playlists []spotify.SimplePlaylist) []types.Playlist {
	out := make([]types.Playlist, 0, len(playlists))
	for _, p := range playlists {
		// The search endpoint pads its playlist page with null entries.
		if p.ID == "" {
			continue
		}
		out = append(out, convertSimplePlaylist(p))
	}
	return out
}

func convertSimpleAlbums(albums []spotify.SimpleAlbum) []types.Album {
	out := make([]types.Album, 0, len(albums))
	for _, a := range albums {
		if a.ID == "" {
			continue
		}
		out = append(out, convertSimpleAlbum(a))
	}
	return out
}

func convertPrivateUser(u *spotify.PrivateUser) *types.UserProfile {
	return &types.UserProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Country:     u.Country,
		Product:     u.Product,
		Images:      convertImages(u.Images),
	}
}

func convertSavedAlbum(a spotify.SavedAlbum) types.SavedAlbum {
	saved := types.SavedAlbum{Album: convertFullAlbum(&a.FullAlbum)}
	if t, err := time.Parse(time.RFC3339, a.AddedAt); err == nil {
		saved.AddedAt = t
	}
	return saved
}
