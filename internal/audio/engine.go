// Package audio plays track previews through the system speaker.
//
// Previews are fetched over HTTP, decoded as MP3 and mixed by
// github.com/gopxl/beep. A Player holds one or more items and plays them in
// order; the single-track player is a queue of one.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/internal/playback"
	"github.com/toozej/spotifyclone/pkg/config"
	"github.com/toozej/spotifyclone/pkg/useragent"
)

// maxPreviewBytes bounds a downloaded preview. Spotify previews are 30
// second MP3s of a few hundred kilobytes.
const maxPreviewBytes = 16 << 20

// resampleQuality is passed to beep.Resample.
const resampleQuality = 4

var (
	// ErrNoURL is returned when a player is requested without a preview URL.
	ErrNoURL = errors.New("preview URL is empty")
	// ErrFetchFailed wraps a non-200 response from the preview CDN.
	ErrFetchFailed = errors.New("preview download failed")
)

type decodeFunc func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// output is the sink players are mixed into. Streamers passed to Play are
// pulled while the output lock is held.
type output interface {
	Lock()
	Unlock()
	Play(s beep.Streamer) error
}

// speakerOutput initialises the speaker on first use.
type speakerOutput struct {
	rate beep.SampleRate
	once sync.Once
	err  error
}

func (o *speakerOutput) Lock()   { speaker.Lock() }
func (o *speakerOutput) Unlock() { speaker.Unlock() }

func (o *speakerOutput) Play(s beep.Streamer) error {
	o.once.Do(func() {
		o.err = speaker.Init(o.rate, o.rate.N(time.Second/10))
	})
	if o.err != nil {
		return fmt.Errorf("failed to initialise speaker: %w", o.err)
	}
	speaker.Play(s)
	return nil
}

// Engine builds players for preview URLs.
type Engine struct {
	client     *http.Client
	logger     *logrus.Logger
	sampleRate beep.SampleRate
	decode     decodeFunc
	out        output
}

// NewEngine returns an Engine that mixes at cfg.SampleRate. client is used
// to download previews.
func NewEngine(cfg config.PlayerConfig, client *http.Client, logger *logrus.Logger) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	rate := beep.SampleRate(cfg.SampleRate)
	return &Engine{
		client:     client,
		logger:     logger,
		sampleRate: rate,
		decode:     mp3.Decode,
		out:        &speakerOutput{rate: rate},
	}
}

// NewPlayer starts loading url and returns a player for it.
func (e *Engine) NewPlayer(url string) (playback.SinglePlayer, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	return singlePlayer{e.newPlayer([]string{url})}, nil
}

// NewQueuePlayer starts loading every URL and returns a player that plays
// them in order. An empty list yields a player with no items.
func (e *Engine) NewQueuePlayer(urls []string) (playback.QueuePlayer, error) {
	for _, u := range urls {
		if u == "" {
			return nil, ErrNoURL
		}
	}
	return e.newPlayer(urls), nil
}

var _ playback.Engine = (*Engine)(nil)

func (e *Engine) newPlayer(urls []string) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		engine: e,
		cancel: cancel,
	}
	for _, u := range urls {
		p.items = append(p.items, newItem(u))
	}
	p.volume = &effects.Volume{Streamer: p, Base: 2}
	p.ctrl = &beep.Ctrl{Streamer: p.volume, Paused: true}

	for _, it := range p.items {
		go p.load(ctx, it)
	}
	return p
}

// open downloads and decodes one preview.
func (e *Engine) open(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to build preview request: %w", err)
	}
	req.Header.Set("User-Agent", useragent.String())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to read preview: %w", err)
	}

	stream, format, err := e.decode(readSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode preview: %w", err)
	}
	return stream, format, nil
}

func (e *Engine) resample(src beep.Streamer, format beep.Format) beep.Streamer {
	if format.SampleRate == e.sampleRate || format.SampleRate == 0 {
		return src
	}
	return beep.Resample(resampleQuality, format.SampleRate, e.sampleRate, src)
}

// readSeekCloser lets the decoder seek inside a downloaded preview.
type readSeekCloser struct {
	*bytes.Reader
}

func (readSeekCloser) Close() error { return nil }
