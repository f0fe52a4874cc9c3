// Package auth owns the Spotify OAuth token record.
//
// The Manager performs the authorization-code exchange, persists the token
// record in a store.Settings, and hands out access tokens through
// WithValidToken. When the token is close to expiry a single refresh-token
// grant is issued and every caller that arrives while it is in flight is
// resolved with that refresh's result.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/toozej/spotifyclone/internal/store"
	"github.com/toozej/spotifyclone/pkg/config"
)

// Settings keys of the persisted token record.
const (
	KeyAccessToken    = "access_token"
	KeyRefreshToken   = "refresh_token"
	KeyExpirationDate = "expiration_date"
)

// RefreshWindow is how long before expiry a token is considered stale.
const RefreshWindow = 5 * time.Minute

var (
	// ErrNotSignedIn is returned when no access token is stored.
	ErrNotSignedIn = errors.New("not signed in to spotify")
	// ErrNoRefreshToken is returned when the stored token is stale and cannot be renewed.
	ErrNoRefreshToken = errors.New("access token expired and no refresh token is stored")
	// ErrRefreshFailed wraps the cause of a failed refresh-token grant.
	ErrRefreshFailed = errors.New("failed to refresh access token")
	// ErrSignedOut is delivered to waiters whose refresh finished after sign-out.
	ErrSignedOut = errors.New("signed out while token refresh was in flight")
)

// Scopes requested at sign-in.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserFollowRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserReadEmail,
}

// Manager is safe for concurrent use.
type Manager struct {
	oauth      *oauth2.Config
	settings   store.Settings
	httpClient *http.Client
	logger     *logrus.Logger
	showDialog bool
	now        func() time.Time

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
	// epoch changes on sign-in and sign-out so that a refresh started
	// against an older record never overwrites the current one.
	epoch uint64
}

type refreshResult struct {
	token string
	err   error
}

type record struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewManager creates a Manager persisting its record in settings.
func NewManager(cfg config.SpotifyConfig, settings store.Settings, logger *logrus.Logger) *Manager {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	return &Manager{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		settings:   settings,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
		showDialog: cfg.ShowDialog,
		now:        time.Now,
	}
}

// SignInURL returns the authorization endpoint URL the user must visit.
func (m *Manager) SignInURL(state string) string {
	var opts []oauth2.AuthCodeOption
	if m.showDialog {
		opts = append(opts, oauth2.SetAuthURLParam("show_dialog", "true"))
	}
	return m.oauth.AuthCodeURL(state, opts...)
}

// ExchangeCodeForToken trades an authorization code for a token record and
// stores it, replacing any previous record.
func (m *Manager) ExchangeCodeForToken(ctx context.Context, code string) error {
	logger := m.logger.WithFields(logrus.Fields{
		"component": "auth",
		"operation": "exchange_code",
	})

	tok, err := m.oauth.Exchange(m.withHTTPClient(ctx), code)
	if err != nil {
		logger.WithError(err).Error("Authorization code exchange failed")
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	if err := m.storeLocked(tok, false); err != nil {
		return err
	}

	logger.WithField("expires_at", tok.Expiry).Info("Signed in to Spotify")
	return nil
}

// WithValidToken returns an access token that is not about to expire,
// refreshing it first if needed. Callers that arrive while a refresh is in
// flight wait for it rather than issuing another one.
func (m *Manager) WithValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()

	if m.refreshing {
		ch := m.enqueueLocked()
		m.mu.Unlock()
		return m.await(ctx, ch)
	}

	rec, err := m.loadLocked()
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	if rec.accessToken == "" {
		m.mu.Unlock()
		return "", ErrNotSignedIn
	}
	if !m.shouldRefresh(rec) {
		m.mu.Unlock()
		return rec.accessToken, nil
	}
	if rec.refreshToken == "" {
		m.mu.Unlock()
		return "", ErrNoRefreshToken
	}

	ch := m.enqueueLocked()
	m.startRefreshLocked(rec.refreshToken)
	m.mu.Unlock()

	return m.await(ctx, ch)
}

// RefreshIfNeeded refreshes the token when it is near expiry and waits for
// the result. It does nothing if a refresh is already in flight or the
// token is still fresh.
func (m *Manager) RefreshIfNeeded(ctx context.Context) error {
	m.mu.Lock()

	if m.refreshing {
		m.mu.Unlock()
		return nil
	}

	rec, err := m.loadLocked()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if rec.accessToken == "" {
		m.mu.Unlock()
		return ErrNotSignedIn
	}
	if !m.shouldRefresh(rec) {
		m.mu.Unlock()
		return nil
	}
	if rec.refreshToken == "" {
		m.mu.Unlock()
		return ErrNoRefreshToken
	}

	ch := m.enqueueLocked()
	m.startRefreshLocked(rec.refreshToken)
	m.mu.Unlock()

	_, err = m.await(ctx, ch)
	return err
}

// SignOut forgets the token record. No request is made to Spotify.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	if err := m.settings.Delete(KeyAccessToken, KeyRefreshToken, KeyExpirationDate); err != nil {
		return fmt.Errorf("failed to clear token record: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"component": "auth",
		"operation": "sign_out",
	}).Info("Signed out of Spotify")
	return nil
}

// IsSignedIn reports whether an access token is stored.
func (m *Manager) IsSignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.loadLocked()
	return err == nil && rec.accessToken != ""
}

// Expiry returns the stored expiration time, if any.
func (m *Manager) Expiry() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.loadLocked()
	if err != nil || rec.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return rec.expiresAt, true
}

func (m *Manager) shouldRefresh(rec record) bool {
	if rec.expiresAt.IsZero() {
		return false
	}
	return !m.now().Add(RefreshWindow).Before(rec.expiresAt)
}

func (m *Manager) enqueueLocked() chan refreshResult {
	ch := make(chan refreshResult, 1)
	m.waiters = append(m.waiters, ch)
	return ch
}

func (m *Manager) startRefreshLocked(refreshToken string) {
	m.refreshing = true
	epoch := m.epoch
	go m.refresh(epoch, refreshToken)
}

// refresh runs detached from any caller so that one caller giving up does
// not fail the others.
func (m *Manager) refresh(epoch uint64, refreshToken string) {
	m.logger.WithFields(logrus.Fields{
		"component": "auth",
		"operation": "refresh",
	}).Debug("Refreshing Spotify access token")

	ctx := m.withHTTPClient(context.Background())
	tok, err := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	m.finishRefresh(epoch, tok, err)
}

func (m *Manager) finishRefresh(epoch uint64, tok *oauth2.Token, err error) {
	logger := m.logger.WithFields(logrus.Fields{
		"component": "auth",
		"operation": "refresh",
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	waiters := m.waiters
	m.waiters = nil
	m.refreshing = false

	var res refreshResult
	switch {
	case epoch != m.epoch:
		logger.Debug("Discarding refresh result for a replaced token record")
		res = m.staleResultLocked()
	case err != nil:
		logger.WithError(err).Error("Token refresh failed")
		res.err = fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	default:
		if storeErr := m.storeLocked(tok, true); storeErr != nil {
			res.err = storeErr
		} else {
			res.token = tok.AccessToken
			logger.WithFields(logrus.Fields{
				"waiters":    len(waiters),
				"expires_at": tok.Expiry,
			}).Info("Spotify access token refreshed")
		}
	}

	for _, w := range waiters {
		w <- res
	}
}

// staleResultLocked answers waiters of a discarded refresh with whatever
// record is current now.
func (m *Manager) staleResultLocked() refreshResult {
	rec, err := m.loadLocked()
	if err != nil {
		return refreshResult{err: err}
	}
	if rec.accessToken == "" {
		return refreshResult{err: ErrSignedOut}
	}
	return refreshResult{token: rec.accessToken}
}

func (m *Manager) await(ctx context.Context, ch <-chan refreshResult) (string, error) {
	select {
	case res := <-ch:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Manager) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func (m *Manager) loadLocked() (record, error) {
	var rec record

	access, _, err := m.settings.Get(KeyAccessToken)
	if err != nil {
		return rec, fmt.Errorf("failed to load access token: %w", err)
	}
	refresh, _, err := m.settings.Get(KeyRefreshToken)
	if err != nil {
		return rec, fmt.Errorf("failed to load refresh token: %w", err)
	}
	expiry, ok, err := m.settings.Get(KeyExpirationDate)
	if err != nil {
		return rec, fmt.Errorf("failed to load token expiry: %w", err)
	}

	rec.accessToken = access
	rec.refreshToken = refresh
	if ok && expiry != "" {
		t, err := time.Parse(time.RFC3339Nano, expiry)
		if err != nil {
			m.logger.WithError(err).Warn("Stored token expiry is unreadable, forcing refresh")
			t = time.Unix(0, 0)
		}
		rec.expiresAt = t
	}
	return rec, nil
}

// storeLocked persists tok. On refresh an empty refresh token keeps the
// stored one; on a fresh exchange it clears it.
func (m *Manager) storeLocked(tok *oauth2.Token, keepRefresh bool) error {
	if err := m.settings.Set(KeyAccessToken, tok.AccessToken); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}

	switch {
	case tok.RefreshToken != "":
		if err := m.settings.Set(KeyRefreshToken, tok.RefreshToken); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}
	case !keepRefresh:
		if err := m.settings.Delete(KeyRefreshToken); err != nil {
			return fmt.Errorf("failed to clear refresh token: %w", err)
		}
	}

	if tok.Expiry.IsZero() {
		if err := m.settings.Delete(KeyExpirationDate); err != nil {
			return fmt.Errorf("failed to clear token expiry: %w", err)
		}
		return nil
	}
	if err := m.settings.Set(KeyExpirationDate, tok.Expiry.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to save token expiry: %w", err)
	}
	return nil
}

// pendingWaiters is used by tests to observe coalescing.
func (m *Manager) pendingWaiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}
