package audio

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/internal/playback"
)

// item is one preview in a Player. Its stream fields are guarded by the
// output lock; observers have their own mutex so they can be registered
// from any goroutine.
type item struct {
	url   string
	ready chan struct{}

	source   beep.StreamSeekCloser
	format   beep.Format
	streamer beep.Streamer
	err      error

	mu        sync.Mutex
	nextID    int
	observers map[int]func()
}

func newItem(url string) *item {
	return &item{
		url:       url,
		ready:     make(chan struct{}),
		observers: make(map[int]func()),
	}
}

// OnFinished implements playback.Item.
func (it *item) OnFinished(fn func()) func() {
	it.mu.Lock()
	defer it.mu.Unlock()
	id := it.nextID
	it.nextID++
	it.observers[id] = fn
	return func() {
		it.mu.Lock()
		defer it.mu.Unlock()
		delete(it.observers, id)
	}
}

func (it *item) fireFinished() {
	it.mu.Lock()
	fns := make([]func(), 0, len(it.observers))
	for _, fn := range it.observers {
		fns = append(fns, fn)
	}
	it.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (it *item) loading() bool {
	return it.streamer == nil && it.err == nil
}

// Player plays its items in order, advancing when one drains. After the
// last item drains it stays current, parked at its end.
type Player struct {
	engine *Engine
	items  []*item
	ctrl   *beep.Ctrl
	volume *effects.Volume
	cancel context.CancelFunc

	// Guarded by the output lock.
	current int
	playing bool
	ended   bool
	started bool
	closed  bool
}

func (p *Player) log(operation string) *logrus.Entry {
	return p.engine.logger.WithFields(logrus.Fields{
		"component": "audio",
		"operation": operation,
	})
}

func (p *Player) load(ctx context.Context, it *item) {
	defer close(it.ready)

	src, format, err := p.engine.open(ctx, it.url)

	p.engine.out.Lock()
	if p.closed {
		p.engine.out.Unlock()
		if src != nil {
			_ = src.Close()
		}
		return
	}
	if err != nil {
		it.err = err
	} else {
		it.source = src
		it.format = format
		it.streamer = p.engine.resample(src, format)
	}
	p.engine.out.Unlock()

	if err != nil {
		p.log("load").WithError(err).WithField("url", it.url).Warn("Failed to load preview")
		return
	}
	p.log("load").WithFields(logrus.Fields{
		"url":      it.url,
		"duration": format.SampleRate.D(src.Len()).Round(time.Millisecond),
	}).Debug("Loaded preview")
}

// Stream implements beep.Streamer. It is called with the output lock held.
// An item that is still loading produces silence; one that failed to load
// counts as finished.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) && !p.ended && p.current < len(p.items) {
		it := p.items[p.current]
		if it.loading() {
			break
		}
		if it.err != nil {
			p.finishCurrent()
			continue
		}
		n, ok := it.streamer.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			p.finishCurrent()
		}
	}
	clear(samples[filled:])
	return len(samples), true
}

// Err implements beep.Streamer.
func (p *Player) Err() error {
	return nil
}

func (p *Player) finishCurrent() {
	p.items[p.current].fireFinished()
	if p.current < len(p.items)-1 {
		p.current++
		return
	}
	p.ended = true
	p.playing = false
	p.ctrl.Paused = true
}

func (p *Player) currentItem() *item {
	if p.current >= len(p.items) {
		return nil
	}
	return p.items[p.current]
}

// Play starts or resumes playback. A player parked at the end of its last
// item stays paused until it is seeked back.
func (p *Player) Play() {
	out := p.engine.out
	out.Lock()
	if p.closed || p.ended {
		out.Unlock()
		return
	}
	p.playing = true
	p.ctrl.Paused = false
	start := !p.started
	p.started = true
	out.Unlock()

	if !start {
		return
	}
	if err := out.Play(p.ctrl); err != nil {
		p.log("play").WithError(err).Error("Failed to start audio output")
		out.Lock()
		p.playing = false
		p.started = false
		p.ctrl.Paused = true
		out.Unlock()
	}
}

// Pause stops playback, keeping the position.
func (p *Player) Pause() {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()
	p.playing = false
	p.ctrl.Paused = true
}

// Seek moves within the current item. Seeking to its duration makes it
// finish on the next pull.
func (p *Player) Seek(d time.Duration) {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()

	it := p.currentItem()
	if it == nil || it.source == nil {
		return
	}
	n := it.format.SampleRate.N(d)
	n = max(0, min(n, it.source.Len()))
	if err := it.source.Seek(n); err != nil {
		p.log("seek").WithError(err).WithField("position", d).Warn("Failed to seek")
		return
	}
	if n < it.source.Len() {
		p.ended = false
	}
}

// SetVolume sets a linear volume in [0, 1].
func (p *Player) SetVolume(v float64) {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()

	if v <= 0 {
		p.volume.Silent = true
		return
	}
	p.volume.Silent = false
	p.volume.Volume = math.Log2(min(v, 1))
}

// Status implements playback.Player.
func (p *Player) Status() playback.TimeControlStatus {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()

	if p.closed || !p.playing {
		return playback.Paused
	}
	if it := p.currentItem(); it != nil && it.loading() {
		return playback.WaitingToPlay
	}
	return playback.Playing
}

// Position is the elapsed time of the current item.
func (p *Player) Position() time.Duration {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()

	it := p.currentItem()
	if it == nil || it.source == nil {
		return 0
	}
	return it.format.SampleRate.D(it.source.Position())
}

// Duration is the length of the current item, zero until it has loaded.
func (p *Player) Duration() time.Duration {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()

	it := p.currentItem()
	if it == nil || it.source == nil {
		return 0
	}
	return it.format.SampleRate.D(it.source.Len())
}

// Items returns the current item and those after it.
func (p *Player) Items() []playback.Item {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()

	if p.current >= len(p.items) {
		return nil
	}
	out := make([]playback.Item, 0, len(p.items)-p.current)
	for _, it := range p.items[p.current:] {
		out = append(out, it)
	}
	return out
}

// AdvanceToNextItem drops the current item without reporting it finished.
func (p *Player) AdvanceToNextItem() {
	p.engine.out.Lock()
	defer p.engine.out.Unlock()

	if p.current < len(p.items) {
		p.current++
	}
	p.ended = false
}

// Close detaches the player from the output and releases its items.
func (p *Player) Close() error {
	out := p.engine.out
	out.Lock()
	if p.closed {
		out.Unlock()
		return nil
	}
	p.closed = true
	p.playing = false
	// A Ctrl without a streamer reports drained and is dropped by the mixer.
	p.ctrl.Streamer = nil
	var sources []beep.StreamSeekCloser
	for _, it := range p.items {
		if it.source != nil {
			sources = append(sources, it.source)
		}
	}
	out.Unlock()

	p.cancel()

	var firstErr error
	for _, src := range sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ playback.QueuePlayer = (*Player)(nil)

type singlePlayer struct {
	*Player
}

func (s singlePlayer) Item() playback.Item {
	return s.items[0]
}
