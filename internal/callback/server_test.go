package callback

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotifyclone/pkg/config"
)

type fakeExchanger struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (f *fakeExchanger) SignInURL(state string) string {
	return "https://accounts.spotify.com/authorize?state=" + state
}

func (f *fakeExchanger) ExchangeCodeForToken(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, code)
	return f.err
}

func (f *fakeExchanger) exchanged() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.codes...)
}

func testConfig() config.Config {
	return config.Config{
		Spotify: config.SpotifyConfig{RedirectURL: "http://127.0.0.1:8080/spotify/callback"},
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 8080},
	}
}

func newTestServer(t *testing.T, ex *fakeExchanger) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s, err := NewServer(testConfig(), ex, logger)
	require.NoError(t, err)
	return s
}

func callbackURL(base string, s *Server, params url.Values) string {
	return base + s.path + "?" + params.Encode()
}

func TestNewServerUsesRedirectPath(t *testing.T) {
	s := newTestServer(t, &fakeExchanger{})
	assert.Equal(t, "/spotify/callback", s.path)
	assert.Len(t, s.state, 36)
	assert.Contains(t, s.AuthURL(), "state="+s.state)

	cfg := testConfig()
	cfg.Spotify.RedirectURL = "http://127.0.0.1:8080"
	s, err := NewServer(cfg, &fakeExchanger{}, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, defaultPath, s.path)

	cfg.Spotify.RedirectURL = "://bad"
	_, err = NewServer(cfg, &fakeExchanger{}, logrus.New())
	assert.ErrorIs(t, err, ErrInvalidRedirectURL)
}

func TestHandleCallback(t *testing.T) {
	tests := []struct {
		name        string
		params      func(s *Server) url.Values
		exchangeErr error
		wantStatus  int
		wantCodes   []string
		wantErr     error
		wantDone    bool
	}{
		{
			name: "success",
			params: func(s *Server) url.Values {
				return url.Values{"code": {"abc"}, "state": {s.state}}
			},
			wantStatus: http.StatusOK,
			wantCodes:  []string{"abc"},
			wantDone:   true,
		},
		{
			name: "denied",
			params: func(s *Server) url.Values {
				return url.Values{"error": {"access_denied"}, "state": {s.state}}
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    ErrAuthDenied,
			wantDone:   true,
		},
		{
			name: "missing code",
			params: func(s *Server) url.Values {
				return url.Values{"state": {s.state}}
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    ErrNoCode,
			wantDone:   true,
		},
		{
			name: "exchange fails",
			params: func(s *Server) url.Values {
				return url.Values{"code": {"abc"}, "state": {s.state}}
			},
			exchangeErr: errors.New("invalid_grant"),
			wantStatus:  http.StatusInternalServerError,
			wantCodes:   []string{"abc"},
			wantErr:     ErrExchange,
			wantDone:    true,
		},
		{
			name: "wrong state is ignored",
			params: func(s *Server) url.Values {
				return url.Values{"code": {"abc"}, "state": {"forged"}}
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExchanger{err: tt.exchangeErr}
			s := newTestServer(t, ex)
			ts := httptest.NewServer(s.Handler())
			defer ts.Close()

			resp, err := http.Get(callbackURL(ts.URL, s, tt.params(s)))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCodes, ex.exchanged())

			select {
			case err := <-s.result:
				require.True(t, tt.wantDone, "unexpected completion: %v", err)
				if tt.wantErr == nil {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			default:
				assert.False(t, tt.wantDone, "expected the flow to complete")
			}
		})
	}
}

func TestRootRedirectsToSignIn(t *testing.T) {
	s := newTestServer(t, &fakeExchanger{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, s.AuthURL(), resp.Header.Get("Location"))
}

func TestServeCompletesOnCallback(t *testing.T) {
	ex := &fakeExchanger{}
	s := newTestServer(t, ex)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.Serve(context.Background(), ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(callbackURL(base, s, url.Values{"code": {"xyz"}, "state": {s.state}}))
	require.NoError(t, err)
	resp.Body.Close()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Equal(t, []string{"xyz"}, ex.exchanged())
}

func TestServeTimesOut(t *testing.T) {
	s := newTestServer(t, &fakeExchanger{})
	s.timeout = 20 * time.Millisecond
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = s.Serve(context.Background(), ln)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestServeHonoursContext(t *testing.T) {
	s := newTestServer(t, &fakeExchanger{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Serve(ctx, ln)
	assert.ErrorIs(t, err, context.Canceled)
}
