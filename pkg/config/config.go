// Package config provides secure configuration management for the spotifyclone application.
//
// This package handles loading configuration from environment variables and .env files
// with built-in security measures to prevent path traversal attacks. It uses the
// github.com/caarlos0/env library for environment variable parsing and
// github.com/joho/godotenv for .env file loading.
//
// The configuration loading follows a priority order:
//  1. Environment variables (highest priority)
//  2. .env file in current working directory
//  3. Default values (if any)
//
// Example usage:
//
//	import "github.com/toozej/spotifyclone/pkg/config"
//
//	func main() {
//		conf := config.GetEnvVars()
//		fmt.Printf("Client ID: %s\n", conf.Spotify.ClientID)
//	}
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the main application configuration with nested service configurations.
type Config struct {
	Spotify  SpotifyConfig  `envPrefix:"SPOTIFY_"`
	Settings SettingsConfig `envPrefix:"SETTINGS_"`
	Player   PlayerConfig   `envPrefix:"PLAYER_"`
	Server   ServerConfig   `envPrefix:"SERVER_"`
}

// SpotifyConfig represents the configuration for Spotify API integration.
//
// This struct contains all the necessary configuration parameters for
// authenticating and interacting with the Spotify Web API.
type SpotifyConfig struct {
	// ClientID is the Spotify application client ID.
	ClientID string `env:"CLIENT_ID"`

	// ClientSecret is the Spotify application client secret.
	ClientSecret string `env:"CLIENT_SECRET"` // #nosec G117 -- OAuth client secret, expected in config

	// RedirectURL is the callback URL registered with the Spotify application.
	RedirectURL string `env:"REDIRECT_URI" envDefault:"http://127.0.0.1:8080/callback"`

	// ShowDialog forces the consent dialog even when the user already approved the app.
	ShowDialog bool `env:"SHOW_DIALOG" envDefault:"true"`

	// AuthURL and TokenURL override the accounts service endpoints.
	AuthURL  string `env:"AUTH_URL" envDefault:"https://accounts.spotify.com/authorize"`
	TokenURL string `env:"TOKEN_URL" envDefault:"https://accounts.spotify.com/api/token"`

	// APIBaseURL is the Web API root. It must end with a slash.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://api.spotify.com/v1/"`

	// Market is an optional ISO 3166-1 country code applied to catalog requests.
	Market string `env:"MARKET"`

	// HTTPTimeout is the timeout for HTTP requests in seconds.
	HTTPTimeout int `env:"HTTP_TIMEOUT" envDefault:"30"`

	// RateLimit caps outgoing Web API requests per second.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"10"`
}

// SettingsConfig selects where the token record is persisted.
type SettingsConfig struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend string `env:"BACKEND" envDefault:"file"`

	// Path is the settings file or database location.
	// If not specified, defaults to ~/.config/spotifyclone/settings.json
	Path string `env:"PATH" envDefault:"~/.config/spotifyclone/settings.json"`
}

// PlayerConfig configures the preview audio engine.
type PlayerConfig struct {
	InitialVolume float64 `env:"INITIAL_VOLUME" envDefault:"0.5"`
	SampleRate    int     `env:"SAMPLE_RATE" envDefault:"44100"`
}

// ServerConfig represents the OAuth callback listener configuration.
type ServerConfig struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8080"`
}

// GetEnvVars loads and returns the application configuration from environment
// variables and .env files with comprehensive security validation.
//
// This function performs the following operations:
//  1. Securely determines the current working directory
//  2. Constructs and validates the .env file path to prevent traversal attacks
//  3. Loads .env file if it exists in the current directory
//  4. Parses environment variables into the Config struct
//  5. Validates the configuration
//
// The function will terminate the program with os.Exit(1) if any critical
// errors occur during configuration loading.
func GetEnvVars() Config {
	conf, err := Load()
	if err != nil {
		fmt.Printf("Configuration error: %s\n", err)
		fmt.Println("Please check your configuration and try again.")
		os.Exit(1)
	}
	return conf
}

// Load is GetEnvVars without the process exit, so callers and tests can handle errors.
func Load() (Config, error) {
	// Get current working directory for secure file operations
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("error getting current working directory: %w", err)
	}

	// Construct secure path for .env file within current directory
	envPath := filepath.Join(cwd, ".env")

	// Ensure the path is within our expected directory (prevent traversal)
	cleanEnvPath, err := filepath.Abs(envPath)
	if err != nil {
		return Config{}, fmt.Errorf("error resolving .env file path: %w", err)
	}
	cleanCwd, err := filepath.Abs(cwd)
	if err != nil {
		return Config{}, fmt.Errorf("error resolving current directory: %w", err)
	}
	relPath, err := filepath.Rel(cleanCwd, cleanEnvPath)
	if err != nil || strings.Contains(relPath, "..") {
		return Config{}, fmt.Errorf(".env file path traversal detected")
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	var conf Config
	if err := env.Parse(&conf); err != nil {
		return Config{}, fmt.Errorf("error parsing configuration from environment: %w", err)
	}

	if err := validateConfig(&conf); err != nil {
		return Config{}, err
	}

	return conf, nil
}

// Address returns the callback listener address
func (s ServerConfig) Address() string {
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns HTTPTimeout as a duration, falling back to 30 seconds.
func (s SpotifyConfig) Timeout() time.Duration {
	if s.HTTPTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.HTTPTimeout) * time.Second
}

// ResolvePath returns the resolved settings path, handling tilde expansion
// and ensuring the directory exists.
func (s SettingsConfig) ResolvePath() (string, error) {
	settingsPath := s.Path

	// Handle tilde expansion
	if strings.HasPrefix(settingsPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		settingsPath = filepath.Join(homeDir, settingsPath[2:])
	}

	absPath, err := filepath.Abs(settingsPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Ensure the directory exists
	settingsDir := filepath.Dir(absPath)
	if err := os.MkdirAll(settingsDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create settings directory %s: %w", settingsDir, err)
	}

	return absPath, nil
}

// validateConfig validates the configuration
func validateConfig(conf *Config) error {
	var errors []string

	// Validate server configuration
	if conf.Server.Port < 1 || conf.Server.Port > 65535 {
		errors = append(errors, "server port must be between 1 and 65535")
	}

	// Validate Spotify configuration (warn but don't fail)
	if conf.Spotify.ClientID == "" {
		fmt.Println("Warning: SPOTIFY_CLIENT_ID is not set. The application will not be able to connect to Spotify.")
		fmt.Println("Please set your Spotify credentials to use the application.")
	}
	if conf.Spotify.ClientSecret == "" {
		fmt.Println("Warning: SPOTIFY_CLIENT_SECRET is not set. The application will not be able to connect to Spotify.")
	}
	if conf.Spotify.HTTPTimeout <= 0 {
		errors = append(errors, "spotify HTTP timeout must be greater than 0")
	}
	if conf.Spotify.RateLimit <= 0 {
		errors = append(errors, "spotify rate limit must be greater than 0")
	}
	if !strings.HasSuffix(conf.Spotify.APIBaseURL, "/") {
		errors = append(errors, "spotify API base URL must end with a slash")
	}

	switch conf.Settings.Backend {
	case "file", "sqlite", "memory":
	default:
		errors = append(errors, fmt.Sprintf("unknown settings backend %q (want file, sqlite or memory)", conf.Settings.Backend))
	}
	if conf.Settings.Backend != "memory" && conf.Settings.Path == "" {
		errors = append(errors, "settings path is required")
	}

	if conf.Player.InitialVolume < 0 || conf.Player.InitialVolume > 1 {
		errors = append(errors, "player initial volume must be between 0 and 1")
	}
	if conf.Player.SampleRate <= 0 {
		errors = append(errors, "player sample rate must be greater than 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
