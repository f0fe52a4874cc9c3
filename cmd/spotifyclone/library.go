package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotifyclone/internal/search"
	"github.com/toozej/spotifyclone/internal/types"
)

const trackURIPrefix = "spotify:track:"

var errNoSongMatch = errors.New("no song matches the query")

// newLibraryCmd groups the commands that read or change the user's library.
func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage your playlists and saved albums",
	}

	add := &cobra.Command{
		Use:   "add [playlist-id] [song query | spotify:track:id]",
		Short: "Add a song to a playlist",
		Long: `Add a song to one of your playlists. The song is either given as a
spotify:track URI or found by searching for the query and taking the best
match. Songs already in the playlist are skipped unless --force is set.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runLibraryAdd,
	}
	add.Flags().BoolP("force", "f", false, "Add the song even if the playlist already has it")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "playlists [filter]",
			Short: "List your playlists, optionally filtered by name",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runLibraryPlaylists,
		},
		&cobra.Command{
			Use:   "albums",
			Short: "List your saved albums",
			Args:  cobra.NoArgs,
			RunE:  runLibraryAlbums,
		},
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a playlist",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runLibraryCreate,
		},
		add,
		&cobra.Command{
			Use:   "remove [playlist-id] [track-id]",
			Short: "Remove a track from a playlist",
			Args:  cobra.ExactArgs(2),
			RunE:  runLibraryRemove,
		},
		&cobra.Command{
			Use:   "save [album-id]",
			Short: "Save an album to your library",
			Args:  cobra.ExactArgs(1),
			RunE:  runLibrarySave,
		},
	)
	return cmd
}

func runLibraryPlaylists(cmd *cobra.Command, args []string) error {
	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}

	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	playlists, err := a.library.Playlists(cmd.Context(), filter)
	if err != nil {
		return err
	}
	printPlaylists(cmd.OutOrStdout(), playlists)
	return nil
}

func runLibraryAlbums(cmd *cobra.Command, _ []string) error {
	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.library.SavedAlbums(cmd.Context())
	if err != nil {
		return err
	}
	albums := make([]types.Album, 0, len(saved))
	for _, s := range saved {
		albums = append(albums, s.Album)
	}
	printAlbums(cmd.OutOrStdout(), albums)
	return nil
}

func runLibraryCreate(cmd *cobra.Command, args []string) error {
	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	playlist, err := a.library.CreatePlaylist(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Created playlist %q (id: %s)\n", playlist.Name, playlist.ID)
	return nil
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	playlistID := args[0]

	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	track, err := resolveTrack(cmd.Context(), a.search, args[1:])
	if err != nil {
		return err
	}

	result := a.library.AddTrackToPlaylist(cmd.Context(), track, playlistID, force)
	out := cmd.OutOrStdout()
	switch {
	case result.Success:
		fmt.Fprintf(out, "✅ %s\n", result.Message)
	case result.WasDuplicate:
		fmt.Fprintf(out, "⚠️  %s\n", result.Message)
	default:
		return errors.New(result.Message)
	}
	return nil
}

// resolveTrack turns a spotify:track URI or a search query into a track.
func resolveTrack(ctx context.Context, searcher *search.Searcher, args []string) (types.Track, error) {
	if len(args) == 1 {
		if id, ok := strings.CutPrefix(args[0], trackURIPrefix); ok && id != "" {
			return types.Track{ID: id, Name: args[0], URI: args[0]}, nil
		}
	}

	query := strings.Join(args, " ")
	matches, err := searcher.Search(ctx, query, types.FilterSongs)
	if err != nil {
		return types.Track{}, err
	}
	tracks := search.Tracks(matches)
	if len(tracks) == 0 {
		return types.Track{}, fmt.Errorf("%w: %q", errNoSongMatch, query)
	}

	log.WithFields(log.Fields{
		"query":      query,
		"track":      tracks[0].String(),
		"confidence": matches[0].Confidence,
	}).Debug("Resolved song query")
	return tracks[0], nil
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	trackID := strings.TrimPrefix(args[1], trackURIPrefix)
	if err := a.library.RemoveTrackFromPlaylist(cmd.Context(), trackID, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Removed %s from playlist %s\n", trackID, args[0])
	return nil
}

func runLibrarySave(cmd *cobra.Command, args []string) error {
	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.library.SaveAlbum(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved album %s\n", args[0])
	return nil
}
