// Package config provides error definitions for configuration-related errors.
package config

import "errors"

// Configuration validation errors
var (
	// ErrMissingSpotifyClientID is returned when Spotify Client ID is not provided
	ErrMissingSpotifyClientID = errors.New("spotify client ID is required")

	// ErrMissingSpotifyClientSecret is returned when Spotify Client Secret is not provided
	ErrMissingSpotifyClientSecret = errors.New("spotify client secret is required")

	// ErrMissingRedirectURL is returned when no OAuth redirect URL is configured
	ErrMissingRedirectURL = errors.New("spotify redirect URL is required")
)

// RequireCredentials reports the first missing credential needed for OAuth.
func (s SpotifyConfig) RequireCredentials() error {
	switch {
	case s.ClientID == "":
		return ErrMissingSpotifyClientID
	case s.ClientSecret == "":
		return ErrMissingSpotifyClientSecret
	case s.RedirectURL == "":
		return ErrMissingRedirectURL
	}
	return nil
}
