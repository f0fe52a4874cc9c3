package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotifyclone/internal/audio"
	"github.com/toozej/spotifyclone/internal/mainloop"
	"github.com/toozej/spotifyclone/internal/playback"
	"github.com/toozej/spotifyclone/internal/search"
	"github.com/toozej/spotifyclone/internal/types"
	"github.com/toozej/spotifyclone/internal/ui"
)

const debugLogFile = "spotifyclone-debug.log"

// newPlayCmd creates the play command and its sources.
func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play 30-second track previews",
		Long: `Play track previews in a keyboard-driven player.
Space pauses and resumes, the arrow keys skip, + and - change the volume
and q quits. Tracks without a preview are skipped in queues.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "album [album-id]",
			Short: "Play an album's previews in order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return playFrom(cmd, func(ctx context.Context, a *app) (string, []types.Track, error) {
					d, err := a.browse.Album(ctx, args[0])
					if err != nil {
						return "", nil, err
					}
					return "💿 " + d.Album.Name, d.Tracks, nil
				}, false)
			},
		},
		&cobra.Command{
			Use:   "playlist [playlist-id]",
			Short: "Play a playlist's previews in order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return playFrom(cmd, func(ctx context.Context, a *app) (string, []types.Track, error) {
					d, err := a.browse.Playlist(ctx, args[0])
					if err != nil {
						return "", nil, err
					}
					return "📃 " + d.Playlist.Name, d.Tracks, nil
				}, false)
			},
		},
		&cobra.Command{
			Use:   "track [song query]",
			Short: "Play the preview of the best matching song",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return playFrom(cmd, func(ctx context.Context, a *app) (string, []types.Track, error) {
					track, err := resolveTrack(ctx, a.search, args)
					if err != nil {
						return "", nil, err
					}
					return "🎵 Now Playing", []types.Track{track}, nil
				}, true)
			},
		},
		&cobra.Command{
			Use:   "search [query]",
			Short: "Queue the previews of every matching song",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				query := strings.Join(args, " ")
				return playFrom(cmd, func(ctx context.Context, a *app) (string, []types.Track, error) {
					matches, err := a.search.Search(ctx, query, types.FilterSongs)
					if err != nil {
						return "", nil, err
					}
					return fmt.Sprintf("🔍 %s", query), search.Tracks(matches), nil
				}, false)
			},
		},
		&cobra.Command{
			Use:   "home",
			Short: "Queue the previews of your recommendations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return playFrom(cmd, func(ctx context.Context, a *app) (string, []types.Track, error) {
					feed, err := a.browse.Home(ctx)
					if feed == nil {
						return "", nil, err
					}
					if len(feed.Recommendations) == 0 && err != nil {
						return "", nil, err
					}
					return "🎧 Recommended for You", feed.Recommendations, nil
				}, false)
			},
		},
	)
	return cmd
}

type trackLoader func(ctx context.Context, a *app) (heading string, tracks []types.Track, err error)

// playFrom loads tracks and runs the player until the user quits. single
// plays the first track on its own instead of queueing them.
func playFrom(cmd *cobra.Command, load trackLoader, single bool) error {
	ctx := cmd.Context()

	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	heading, tracks, err := load(ctx, a)
	a.Close()
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errors.New("nothing to play")
	}

	return runPlayer(ctx, heading, func(c *playback.Controller) {
		if single {
			c.StartTrack(tracks[0])
			return
		}
		c.StartTracks(tracks)
	})
}

// runPlayer wires the controller to the audio engine and the terminal
// transport, posts start onto the main loop and blocks until the UI exits.
func runPlayer(ctx context.Context, heading string, start func(*playback.Controller)) error {
	logger := log.StandardLogger()
	// The transport owns the terminal; logs go to a file or nowhere.
	if debug {
		f, err := tea.LogToFile(debugLogFile, "")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}
	defer logger.SetOutput(os.Stderr)

	loop := mainloop.New()
	transport := ui.NewTransport(ctx, loop, heading)
	engine := audio.NewEngine(conf.Player, &http.Client{Timeout: conf.Spotify.Timeout()}, logger)
	controller := playback.NewController(engine, transport, loop, logger, conf.Player.InitialVolume)
	defer controller.Close()

	loop.Post(func() { start(controller) })

	_, err := tea.NewProgram(transport, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("player exited: %w", err)
	}
	return nil
}
