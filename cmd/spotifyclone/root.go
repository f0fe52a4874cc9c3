// Package cmd provides the command-line interface for the spotifyclone application.
//
// This package implements the root command and its subcommands using the cobra
// library. It loads configuration, sets up logging and wires the internal
// services together for each command.
//
// The package integrates with several components:
//   - Configuration management through pkg/config
//   - Sign-in and token refresh through internal/auth
//   - Catalog, search and library access through internal/spotify
//   - Preview playback through internal/playback, internal/audio and internal/ui
//   - Manual pages through pkg/man
//   - Version information through pkg/version
//
// Example usage:
//
//	import "github.com/toozej/spotifyclone/cmd/spotifyclone"
//
//	func main() {
//		cmd.Execute()
//	}
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotifyclone/pkg/config"
	"github.com/toozej/spotifyclone/pkg/man"
	"github.com/toozej/spotifyclone/pkg/version"
)

var (
	// conf holds the application configuration loaded from environment variables.
	conf config.Config
	// debug enables debug-level logging through logrus.
	debug bool
)

// rootCmd defines the base command for the spotifyclone CLI application.
// It takes no positional arguments; every feature lives in a subcommand.
var rootCmd = &cobra.Command{
	Use:              "spotifyclone",
	Short:            "Browse Spotify and play track previews from the terminal",
	Long:             `spotifyclone is a terminal Spotify client. It browses new releases, featured playlists and categories, searches the catalog, manages your playlists and saved albums, and plays 30-second track previews with a keyboard-driven player.`,
	Args:             cobra.ExactArgs(0),
	PersistentPreRun: rootCmdPreRun,
	Run:              rootCmdRun,
}

// rootCmdRun points the user at the main subcommands.
func rootCmdRun(cmd *cobra.Command, args []string) {
	log.Info("Use 'spotifyclone login' to sign in to Spotify")
	log.Info("Use 'spotifyclone home' to browse new releases and featured playlists")
	log.Info("Use 'spotifyclone play search <query>' to play track previews")
}

// rootCmdPreRun loads configuration and sets the log level before any
// command runs.
func rootCmdPreRun(cmd *cobra.Command, args []string) {
	conf = config.GetEnvVars()
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute runs the root command. Interrupts cancel the command's context so
// long-running commands such as login and play can shut down cleanly.
//
// If command execution fails, it prints the error message to stdout and
// exits the program with status code 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug-level logging")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newTokenCmd(),
		newHomeCmd(),
		newCategoriesCmd(),
		newCategoryCmd(),
		newAlbumCmd(),
		newPlaylistCmd(),
		newSearchCmd(),
		newLibraryCmd(),
		newProfileCmd(),
		newPlayCmd(),
		man.NewManCmd(),
		version.Command(),
	)
}
