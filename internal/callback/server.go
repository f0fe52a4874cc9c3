// Package callback runs the short-lived HTTP listener that receives the
// OAuth authorization code after the user signs in.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/pkg/config"
)

// DefaultTimeout bounds how long Run waits for the browser to come back.
const DefaultTimeout = 5 * time.Minute

const defaultPath = "/callback"

var (
	ErrAuthDenied         = errors.New("authorization denied")
	ErrNoCode             = errors.New("no authorization code received")
	ErrExchange           = errors.New("failed to exchange authorization code")
	ErrTimeout            = errors.New("authentication timed out")
	ErrInvalidRedirectURL = errors.New("invalid redirect URL")
)

// Exchanger is the part of the token manager the callback drives.
type Exchanger interface {
	SignInURL(state string) string
	ExchangeCodeForToken(ctx context.Context, code string) error
}

// Server waits for a single authorization callback.
type Server struct {
	exchanger Exchanger
	logger    *logrus.Logger
	addr      string
	path      string
	state     string
	timeout   time.Duration

	result chan error
	once   sync.Once
}

// NewServer prepares a callback listener on cfg.Server's address. The
// callback path is taken from the configured redirect URL.
func NewServer(cfg config.Config, exchanger Exchanger, logger *logrus.Logger) (*Server, error) {
	path := defaultPath
	if cfg.Spotify.RedirectURL != "" {
		u, err := url.Parse(cfg.Spotify.RedirectURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRedirectURL, err)
		}
		if u.Path != "" {
			path = u.Path
		}
	}

	return &Server{
		exchanger: exchanger,
		logger:    logger,
		addr:      cfg.Server.Address(),
		path:      path,
		state:     uuid.NewString(),
		timeout:   DefaultTimeout,
		result:    make(chan error, 1),
	}, nil
}

// AuthURL is the sign-in URL carrying this server's state.
func (s *Server) AuthURL() string {
	return s.exchanger.SignInURL(s.state)
}

// Handler routes the callback path, and "/" to the sign-in page.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.AuthURL(), http.StatusFound)
	})
	r.Get(s.path, s.handleCallback)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"component":  "callback",
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
		}).Debug("Handled request")
	})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	log := s.logger.WithField("component", "callback")

	if q.Get("state") != s.state {
		// Not our sign-in attempt; keep waiting for the real one.
		log.Warn("Ignoring callback with unexpected state")
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	if reason := q.Get("error"); reason != "" {
		log.WithField("error", reason).Error("Spotify authorization error")
		s.finish(fmt.Errorf("%w: %s", ErrAuthDenied, reason))
		http.Error(w, "Authentication failed: "+reason, http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		log.Error("No authorization code received")
		s.finish(ErrNoCode)
		http.Error(w, "No authorization code received", http.StatusBadRequest)
		return
	}

	if err := s.exchanger.ExchangeCodeForToken(r.Context(), code); err != nil {
		log.WithError(err).Error("Failed to exchange authorization code")
		s.finish(fmt.Errorf("%w: %w", ErrExchange, err))
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	log.Info("Signed in via callback")
	// Completion is signalled first; Shutdown still lets this response finish.
	s.finish(nil)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(successHTML)); err != nil {
		log.WithError(err).Warn("Failed to write success response")
	}
}

func (s *Server) finish(err error) {
	s.once.Do(func() { s.result <- err })
}

// Run listens on the configured address and blocks until a callback
// completes, ctx is cancelled, or the timeout passes.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.WithField("address", ln.Addr().String()).Info("Starting temporary server for OAuth callback")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-s.result:
	case err = <-serveErr:
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
		err = fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		s.logger.WithError(shutdownErr).Warn("Error shutting down authentication server")
	}
	return err
}

const successHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Signed in</title>
	<style>
		body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
		.success { color: #1DB954; font-size: 24px; margin-bottom: 20px; }
		.message { color: #6c757d; font-size: 16px; }
	</style>
</head>
<body>
	<div class="success">Signed in to spotifyclone</div>
	<div class="message">You can close this window and return to the terminal.</div>
</body>
</html>
`
