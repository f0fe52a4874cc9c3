package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"github.com/toozej/spotifyclone/pkg/config"
	"github.com/toozej/spotifyclone/pkg/useragent"
)

// ErrNotFound is returned when the Web API answers 404 for a resource.
var ErrNotFound = errors.New("spotify resource not found")

// TokenProvider hands out a bearer token for each request.
type TokenProvider interface {
	WithValidToken(ctx context.Context) (string, error)
}

// Client wraps the Spotify Web API client. Every request is rate limited
// and authorised through a TokenProvider, so a stale token is refreshed
// before the request leaves.
type Client struct {
	api    *spotify.Client
	logger *logrus.Logger
	market string
}

// NewClient creates a Client talking to cfg.APIBaseURL.
func NewClient(cfg config.SpotifyConfig, tokens TokenProvider, logger *logrus.Logger) *Client {
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 10
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &bearerTransport{
			base:      http.DefaultTransport,
			tokens:    tokens,
			limiter:   rate.NewLimiter(rate.Limit(limit), burst),
			userAgent: useragent.String(),
		},
	}

	var opts []spotify.ClientOption
	if cfg.APIBaseURL != "" {
		base := cfg.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, spotify.WithBaseURL(base))
	}

	logger.WithFields(logrus.Fields{
		"component":  "spotify_client",
		"base_url":   cfg.APIBaseURL,
		"rate_limit": limit,
		"market":     cfg.Market,
	}).Debug("Creating Spotify Web API client")

	return &Client{
		api:    spotify.New(httpClient, opts...),
		logger: logger,
		market: cfg.Market,
	}
}

// bearerTransport authorises and rate limits outgoing requests.
type bearerTransport struct {
	base      http.RoundTripper
	tokens    TokenProvider
	limiter   *rate.Limiter
	userAgent string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if err := t.limiter.Wait(ctx); err != nil {
		closeBody(req)
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	token, err := t.tokens.WithValidToken(ctx)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	r := req.Clone(ctx)
	r.Header.Set("Authorization", "Bearer "+token)
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(r)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

// wrapError maps Web API failures onto package errors.
func wrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if isNotFound(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isNotFound(err error) bool {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status == http.StatusNotFound
	}
	return false
}

func (c *Client) marketOpts(opts ...spotify.RequestOption) []spotify.RequestOption {
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}
	return opts
}

func (c *Client) countryOpts(opts ...spotify.RequestOption) []spotify.RequestOption {
	if c.market != "" {
		opts = append(opts, spotify.Country(c.market))
	}
	return opts
}
