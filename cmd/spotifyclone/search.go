package cmd

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotifyclone/internal/types"
)

// newSearchCmd creates the search command for searching the Spotify catalog.
func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search albums, artists, playlists and songs",
		Long: `Search the Spotify catalog. Results are grouped by kind and ranked
by how closely their names match the query; strong matches are starred.
Use --type to show only one kind of result.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}
	cmd.Flags().StringP("type", "t", string(types.FilterAll), "Result kind: all, albums, artists, playlists or songs")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("type")
	filter, err := types.ParseSearchFilter(kind)
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")

	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.search.Search(cmd.Context(), query, filter)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		log.WithField("query", query).Warn("No matching results found")
		return nil
	}
	printSearchResults(cmd.OutOrStdout(), query, matches)
	return nil
}
