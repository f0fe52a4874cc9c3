package cmd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotifyclone/internal/callback"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to Spotify",
		Long: `Sign in to Spotify with the authorization code flow.
A temporary local server receives the redirect from Spotify and stores the
resulting token in the settings store.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := callback.NewServer(conf, a.tokens, log.StandardLogger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	authURL := srv.AuthURL()
	log.WithField("auth_url", authURL).Info("Please visit this URL to authenticate with Spotify")
	fmt.Fprintf(out, "\n🔐 Spotify Authentication Required\n")
	fmt.Fprintf(out, "Please visit this URL to authenticate:\n%s\n\n", authURL)
	fmt.Fprintf(out, "Waiting for authentication... (Press Ctrl+C to cancel)\n")

	if err := srv.Run(cmd.Context()); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	profile, err := a.library.Profile(cmd.Context())
	if err != nil {
		log.WithError(err).Warn("Signed in, but failed to load profile")
		fmt.Fprintln(out, "✅ Signed in")
		return nil
	}
	fmt.Fprintf(out, "✅ Signed in as %s\n", displayName(profile.DisplayName, profile.ID))
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Spotify token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(conf)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tokens.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "👋 Signed out")
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show the stored token's status",
		Long: `Show when the stored access token expires.
With --refresh the token is refreshed first if it is close to expiry, and
with --print the access token itself is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: runToken,
	}
	cmd.Flags().BoolP("refresh", "r", false, "Refresh the token if it is close to expiry")
	cmd.Flags().Bool("print", false, "Print the access token")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	refresh, _ := cmd.Flags().GetBool("refresh")
	printToken, _ := cmd.Flags().GetBool("print")

	a, err := signedInApp(conf)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if refresh {
		if err := a.tokens.RefreshIfNeeded(cmd.Context()); err != nil {
			return fmt.Errorf("failed to refresh token: %w", err)
		}
	}

	if printToken {
		token, err := a.tokens.WithValidToken(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)
		return nil
	}

	fmt.Fprintln(out, tokenStatus(a.tokens.Expiry()))
	return nil
}

// tokenStatus describes an expiry relative to now.
func tokenStatus(expiresAt time.Time, ok bool) string {
	if !ok {
		return "Signed in; token expiry unknown"
	}
	remaining := time.Until(expiresAt).Round(time.Second)
	if remaining <= 0 {
		return fmt.Sprintf("Token expired at %s; it will be refreshed on the next request",
			expiresAt.Local().Format(time.DateTime))
	}
	return fmt.Sprintf("Token valid until %s (%s left)", expiresAt.Local().Format(time.DateTime), remaining)
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
