package audio

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotifyclone/internal/playback"
	"github.com/toozej/spotifyclone/pkg/config"
)

const testRate = beep.SampleRate(1000)

// toneStream is a constant signal one sample per body byte long.
type toneStream struct {
	pos, length int
	closed      bool
}

func (s *toneStream) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= s.length {
		return 0, false
	}
	n := min(s.length-s.pos, len(samples))
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{0.5, 0.5}
	}
	s.pos += n
	return n, true
}

func (s *toneStream) Err() error       { return nil }
func (s *toneStream) Len() int         { return s.length }
func (s *toneStream) Position() int    { return s.pos }
func (s *toneStream) Seek(p int) error { s.pos = p; return nil }
func (s *toneStream) Close() error     { s.closed = true; return nil }

func decodeTone(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if string(data) == "garbage" {
		return nil, beep.Format{}, errors.New("not an mp3")
	}
	return &toneStream{length: len(data)}, beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}, nil
}

// fakeOutput stands in for the speaker; tests pull samples explicitly.
type fakeOutput struct {
	sync.Mutex
	streamers []beep.Streamer
}

func (o *fakeOutput) Play(s beep.Streamer) error {
	o.streamers = append(o.streamers, s)
	return nil
}

func (o *fakeOutput) pull(n int) [][2]float64 {
	o.Lock()
	defer o.Unlock()
	buf := make([][2]float64, n)
	for _, s := range o.streamers {
		s.Stream(buf)
	}
	return buf
}

type fixture struct {
	engine  *Engine
	out     *fakeOutput
	server  *httptest.Server
	release chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{release: make(chan struct{})}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /short", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "spotifyclone/"))
		_, _ = io.WriteString(w, strings.Repeat("x", 5))
	})
	mux.HandleFunc("GET /long", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 20))
	})
	mux.HandleFunc("GET /garbage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "garbage")
	})
	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-f.release:
		case <-r.Context().Done():
			return
		}
		_, _ = io.WriteString(w, strings.Repeat("x", 5))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	t.Cleanup(func() {
		select {
		case <-f.release:
		default:
			close(f.release)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f.engine = NewEngine(config.PlayerConfig{SampleRate: int(testRate)}, f.server.Client(), logger)
	f.out = &fakeOutput{}
	f.engine.out = f.out
	f.engine.decode = decodeTone
	return f
}

func (f *fixture) url(path string) string {
	return f.server.URL + path
}

func waitLoaded(t *testing.T, p *Player) {
	t.Helper()
	for _, it := range p.items {
		select {
		case <-it.ready:
		case <-time.After(2 * time.Second):
			t.Fatalf("item %s did not load", it.url)
		}
	}
}

type finishCounter struct {
	mu sync.Mutex
	n  int
}

func (c *finishCounter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *finishCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestQueuePlaysItemsInOrder(t *testing.T) {
	f := newFixture(t)
	qp, err := f.engine.NewQueuePlayer([]string{f.url("/short"), f.url("/short")})
	require.NoError(t, err)
	p := qp.(*Player)
	waitLoaded(t, p)

	items := p.Items()
	require.Len(t, items, 2)
	var first, second finishCounter
	items[0].OnFinished(first.inc)
	items[1].OnFinished(second.inc)

	p.Play()
	assert.Equal(t, playback.Playing, p.Status())
	assert.Equal(t, 5*time.Millisecond, p.Duration())

	buf := f.out.pull(4)
	assert.Equal(t, [2]float64{0.5, 0.5}, buf[0])
	assert.Equal(t, 0, first.count())
	assert.Equal(t, 4*time.Millisecond, p.Position())

	f.out.pull(4)
	assert.Equal(t, 1, first.count())
	assert.Len(t, p.Items(), 1, "auto-advanced to the second item")
	assert.Equal(t, 3*time.Millisecond, p.Position())

	buf = f.out.pull(10)
	assert.Equal(t, 1, second.count())
	assert.Equal(t, [2]float64{0, 0}, buf[9], "silence after the queue drains")
	assert.Equal(t, playback.Paused, p.Status())
	assert.Len(t, p.Items(), 1, "the last item stays current")
	assert.Equal(t, p.Duration(), p.Position())

	p.Play()
	assert.Equal(t, playback.Paused, p.Status(), "play at the end needs a seek first")

	p.Seek(0)
	p.Play()
	assert.Equal(t, playback.Playing, p.Status())
	assert.Equal(t, [2]float64{0.5, 0.5}, f.out.pull(1)[0])
}

func TestFailedItemCountsAsFinished(t *testing.T) {
	for _, path := range []string{"/missing", "/garbage"} {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t)
			qp, err := f.engine.NewQueuePlayer([]string{f.url(path), f.url("/short")})
			require.NoError(t, err)
			p := qp.(*Player)
			waitLoaded(t, p)

			var broken finishCounter
			p.Items()[0].OnFinished(broken.inc)

			p.Play()
			buf := f.out.pull(2)

			assert.Equal(t, 1, broken.count())
			assert.Len(t, p.Items(), 1)
			assert.Equal(t, [2]float64{0.5, 0.5}, buf[0])
		})
	}
}

func TestLoadingItemWaitsToPlay(t *testing.T) {
	f := newFixture(t)
	sp, err := f.engine.NewPlayer(f.url("/slow"))
	require.NoError(t, err)
	p := sp.(singlePlayer).Player

	p.Play()
	assert.Equal(t, playback.WaitingToPlay, p.Status())
	assert.Equal(t, time.Duration(0), p.Duration())
	assert.Equal(t, [2]float64{0, 0}, f.out.pull(3)[0])
	assert.Len(t, p.Items(), 1)

	close(f.release)
	waitLoaded(t, p)

	assert.Equal(t, playback.Playing, p.Status())
	assert.Equal(t, [2]float64{0.5, 0.5}, f.out.pull(1)[0])
}

func TestPauseHoldsPosition(t *testing.T) {
	f := newFixture(t)
	sp, err := f.engine.NewPlayer(f.url("/long"))
	require.NoError(t, err)
	p := sp.(singlePlayer).Player
	waitLoaded(t, p)

	p.Play()
	f.out.pull(5)
	p.Pause()
	buf := f.out.pull(5)

	assert.Equal(t, playback.Paused, p.Status())
	assert.Equal(t, 5*time.Millisecond, p.Position())
	assert.Equal(t, [2]float64{0, 0}, buf[0])
}

func TestSeekToEndFinishes(t *testing.T) {
	f := newFixture(t)
	sp, err := f.engine.NewPlayer(f.url("/long"))
	require.NoError(t, err)
	p := sp.(singlePlayer).Player
	waitLoaded(t, p)

	var done finishCounter
	sp.Item().OnFinished(done.inc)

	p.Play()
	p.Seek(time.Hour)
	assert.Equal(t, 20*time.Millisecond, p.Position(), "seek is clamped to the item")

	f.out.pull(1)
	assert.Equal(t, 1, done.count())
	assert.Equal(t, playback.Paused, p.Status())
}

func TestAdvanceDoesNotReportFinish(t *testing.T) {
	f := newFixture(t)
	qp, err := f.engine.NewQueuePlayer([]string{f.url("/long"), f.url("/short")})
	require.NoError(t, err)
	p := qp.(*Player)
	waitLoaded(t, p)

	var skipped finishCounter
	p.Items()[0].OnFinished(skipped.inc)

	p.Play()
	p.AdvanceToNextItem()

	assert.Zero(t, skipped.count())
	assert.Len(t, p.Items(), 1)
	assert.Equal(t, 5*time.Millisecond, p.Duration())
}

func TestCancelledObserverIsNotCalled(t *testing.T) {
	f := newFixture(t)
	sp, err := f.engine.NewPlayer(f.url("/short"))
	require.NoError(t, err)
	p := sp.(singlePlayer).Player
	waitLoaded(t, p)

	var done finishCounter
	cancel := sp.Item().OnFinished(done.inc)
	cancel()
	cancel()

	p.Play()
	f.out.pull(10)
	assert.Zero(t, done.count())
}

func TestSetVolume(t *testing.T) {
	f := newFixture(t)
	sp, err := f.engine.NewPlayer(f.url("/long"))
	require.NoError(t, err)
	p := sp.(singlePlayer).Player
	waitLoaded(t, p)
	p.Play()

	p.SetVolume(0)
	assert.True(t, p.volume.Silent)
	assert.Equal(t, [2]float64{0, 0}, f.out.pull(1)[0])

	p.SetVolume(0.5)
	assert.False(t, p.volume.Silent)
	assert.InDelta(t, -1.0, p.volume.Volume, 1e-9)
	assert.InDelta(t, 0.25, f.out.pull(1)[0][0], 1e-9)

	p.SetVolume(3)
	assert.InDelta(t, 0.0, p.volume.Volume, 1e-9)
}

func TestCloseDetachesPlayer(t *testing.T) {
	f := newFixture(t)
	sp, err := f.engine.NewPlayer(f.url("/short"))
	require.NoError(t, err)
	p := sp.(singlePlayer).Player
	waitLoaded(t, p)
	p.Play()

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.Nil(t, p.ctrl.Streamer)
	assert.True(t, p.items[0].source.(*toneStream).closed)
	assert.Equal(t, playback.Paused, p.Status())

	p.Play()
	assert.Equal(t, playback.Paused, p.Status())
}

func TestEmptyURLIsRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.NewPlayer("")
	assert.ErrorIs(t, err, ErrNoURL)

	_, err = f.engine.NewQueuePlayer([]string{f.url("/short"), ""})
	assert.ErrorIs(t, err, ErrNoURL)

	qp, err := f.engine.NewQueuePlayer(nil)
	require.NoError(t, err)
	assert.Empty(t, qp.Items())
	assert.Equal(t, playback.Paused, qp.Status())
}
