package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show new releases, featured playlists and recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := signedInApp(conf)
			if err != nil {
				return err
			}
			defer a.Close()

			feed, err := a.browse.Home(cmd.Context())
			if err != nil {
				if feed == nil {
					return err
				}
				// Show whatever loaded.
				log.WithError(err).Warn("Some home sections failed to load")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n🆕 New Releases\n")
			printAlbums(out, feed.NewReleases)
			fmt.Fprintf(out, "\n⭐ Featured Playlists\n")
			printPlaylists(out, feed.FeaturedPlaylists)
			fmt.Fprintf(out, "\n🎧 Recommended for You\n")
			printTracks(out, feed.Recommendations)
			return nil
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List browse categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := signedInApp(conf)
			if err != nil {
				return err
			}
			defer a.Close()

			categories, err := a.browse.Categories(cmd.Context())
			if err != nil {
				return err
			}
			printCategories(cmd.OutOrStdout(), categories)
			return nil
		},
	}
}

func newCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "category [category-id]",
		Short: "List the playlists in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(conf)
			if err != nil {
				return err
			}
			defer a.Close()

			playlists, err := a.browse.CategoryPlaylists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printPlaylists(cmd.OutOrStdout(), playlists)
			return nil
		},
	}
}

func newAlbumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "album [album-id]",
		Short: "Show an album's tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(conf)
			if err != nil {
				return err
			}
			defer a.Close()

			details, err := a.browse.Album(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n💿 %s - %s\n", details.Album.Name, artistNames(details.Album.Artists))
			if details.Album.ReleaseDate != "" {
				fmt.Fprintf(out, "   📅 Released: %s\n", details.Album.ReleaseDate)
			}
			fmt.Fprintln(out)
			printTracks(out, details.Tracks)
			return nil
		},
	}
}

func newPlaylistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "playlist [playlist-id]",
		Short: "Show a playlist's tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(conf)
			if err != nil {
				return err
			}
			defer a.Close()

			details, err := a.browse.Playlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n📃 %s\n", details.Playlist.Name)
			if details.Playlist.Description != "" {
				fmt.Fprintf(out, "   %s\n", details.Playlist.Description)
			}
			fmt.Fprintln(out)
			printTracks(out, details.Tracks)
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := signedInApp(conf)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.library.Profile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "👤 %s\n", displayName(p.DisplayName, p.ID))
			if p.Email != "" {
				fmt.Fprintf(out, "   ✉️  %s\n", p.Email)
			}
			if p.Country != "" {
				fmt.Fprintf(out, "   🌍 %s\n", p.Country)
			}
			if p.Product != "" {
				fmt.Fprintf(out, "   💳 %s\n", p.Product)
			}
			return nil
		},
	}
}
