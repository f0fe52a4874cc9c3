// Package playback owns the preview playback session.
//
// The Controller keeps either nothing, a single track, or a queue of tracks,
// and maps transport gestures onto the matching engine player. It is not
// safe for concurrent use: every method must run on the main loop, and the
// engine's end-of-item callbacks are posted there before they touch state.
package playback

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/internal/types"
)

// Messages shown when a session has nothing to play.
const (
	ReasonNoPreview     = "No audio preview available for this track"
	ReasonNothingToPlay = "Nothing to play: none of these tracks has a preview"
)

// Mode names the active session kind.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSingle
	ModeQueue
)

// Controller is the playback session controller.
type Controller struct {
	engine    Engine
	presenter Presenter
	poster    Poster
	logger    *logrus.Logger

	volume  float64
	session session
	lastID  uint64
}

// NewController creates an idle Controller. initialVolume is applied to
// every new player and clamped to [0, 1].
func NewController(engine Engine, presenter Presenter, poster Poster, logger *logrus.Logger, initialVolume float64) *Controller {
	return &Controller{
		engine:    engine,
		presenter: presenter,
		poster:    poster,
		logger:    logger,
		volume:    clamp(initialVolume),
		session:   idleSession{},
	}
}

func (c *Controller) log(operation string) *logrus.Entry {
	return c.logger.WithFields(logrus.Fields{
		"component": "playback",
		"operation": operation,
	})
}

func (c *Controller) nextID() uint64 {
	c.lastID++
	return c.lastID
}

// Mode reports which kind of session is active.
func (c *Controller) Mode() Mode {
	switch c.session.(type) {
	case *singleSession:
		return ModeSingle
	case *queueSession:
		return ModeQueue
	}
	return ModeIdle
}

// StartTrack replaces the session with one playing track.
func (c *Controller) StartTrack(track types.Track) {
	c.teardown()

	s := &singleSession{id: c.nextID(), track: track}
	if track.HasPreview() {
		player, err := c.engine.NewPlayer(track.PreviewURL)
		if err != nil {
			c.log("start_track").WithError(err).WithField("track", track.Name).Warn("Failed to create player")
		} else {
			player.SetVolume(c.volume)
			s.player = player
			id := s.id
			s.cancel = player.Item().OnFinished(func() {
				c.poster.Post(func() { c.singleFinished(id) })
			})
		}
	} else {
		c.log("start_track").WithField("track", track.Name).Debug("Track has no preview URL")
	}

	c.session = s
	c.present(s, ReasonNoPreview)
}

// StartTracks replaces the session with a queue of tracks. Tracks without
// a preview are skipped, keeping the order of the rest.
func (c *Controller) StartTracks(tracks []types.Track) {
	c.teardown()

	s := c.buildQueue(tracks, 0)
	c.session = s
	c.present(s, ReasonNothingToPlay)
}

// buildQueue creates a queue session over tracks[start:].
func (c *Controller) buildQueue(tracks []types.Track, start int) *queueSession {
	s := &queueSession{id: c.nextID(), tracks: tracks}

	var urls []string
	for i := start; i < len(tracks); i++ {
		if !tracks[i].HasPreview() {
			c.log("build_queue").WithField("track", tracks[i].Name).Debug("Skipping track without preview URL")
			continue
		}
		s.retained = append(s.retained, i)
		urls = append(urls, tracks[i].PreviewURL)
	}

	player, err := c.engine.NewQueuePlayer(urls)
	if err != nil {
		c.log("build_queue").WithError(err).Warn("Failed to create queue player")
		s.retained = nil
		return s
	}
	player.SetVolume(c.volume)
	s.player = player
	s.items = player.Items()
	s.cancels = make([]func(), len(s.items))

	id := s.id
	for i, item := range s.items {
		s.cancels[i] = item.OnFinished(func() {
			c.poster.Post(func() { c.queueItemFinished(id, i) })
		})
	}

	c.log("build_queue").WithFields(logrus.Fields{
		"requested": len(tracks) - start,
		"queued":    len(s.items),
	}).Debug("Built queue")
	return s
}

func (c *Controller) present(s session, unavailable string) {
	c.presenter.Present(c, c, func() {
		if c.session != s {
			return
		}
		player := s.activePlayer()
		if player == nil {
			c.presenter.ShowUnavailable(unavailable)
			return
		}
		player.Play()
		c.presenter.SetPlaying(true)
	})
}

func (c *Controller) teardown() {
	c.session.teardown()
	c.session = idleSession{}
}

// Close stops playback and releases the engine player.
func (c *Controller) Close() {
	c.teardown()
}

// CurrentTrack returns the track being played, or nil.
func (c *Controller) CurrentTrack() *types.Track {
	return c.session.currentTrack()
}

// DidTapPlayPause pauses a playing session and resumes a paused one. A
// session paused at the end of its content starts over.
func (c *Controller) DidTapPlayPause() {
	player := c.session.activePlayer()
	if player == nil {
		return
	}

	if player.Status() != Paused {
		player.Pause()
		c.presenter.SetPlaying(false)
		return
	}

	if d := player.Duration(); d > 0 && player.Position() >= d {
		player.Seek(0)
	}
	player.Play()
	c.presenter.SetPlaying(true)
}

// DidTapForward skips to the next queued track. With nothing after the
// current track it seeks to the end, which ends playback.
func (c *Controller) DidTapForward() {
	switch s := c.session.(type) {
	case *singleSession:
		if s.player != nil {
			seekToEnd(s.player)
		}
	case *queueSession:
		if s.player == nil {
			return
		}
		remaining := len(s.player.Items())
		switch {
		case remaining > 1:
			// Drop the observer first so the skipped item does not also
			// report a finish.
			s.cancelObserver(s.position())
			s.player.AdvanceToNextItem()
			s.player.Play()
			c.presenter.SetPlaying(true)
			c.presenter.Refresh()
		case remaining == 1:
			seekToEnd(s.player)
		}
	}
}

// DidTapBackward restarts the current track, or steps back to the previous
// queued track by rebuilding the queue from it.
func (c *Controller) DidTapBackward() {
	switch s := c.session.(type) {
	case *singleSession:
		if s.player != nil {
			s.player.Seek(0)
		}
	case *queueSession:
		pos := s.position()
		switch {
		case pos < 0:
			return
		case pos == 0:
			s.player.Seek(0)
		default:
			start := s.retained[pos-1]
			tracks := s.tracks
			c.teardown()

			next := c.buildQueue(tracks, start)
			c.session = next
			if player := next.activePlayer(); player != nil {
				player.Play()
				c.presenter.SetPlaying(true)
			}
			c.presenter.Refresh()
		}
	}
}

// DidSlideSlider sets the volume of the active player.
func (c *Controller) DidSlideSlider(value float64) {
	c.volume = clamp(value)
	if player := c.session.activePlayer(); player != nil {
		player.SetVolume(c.volume)
	}
}

func (c *Controller) singleFinished(id uint64) {
	s, ok := c.session.(*singleSession)
	if !ok || s.id != id {
		return
	}
	c.presenter.SetPlaying(false)
}

func (c *Controller) queueItemFinished(id uint64, index int) {
	s, ok := c.session.(*queueSession)
	if !ok || s.id != id {
		return
	}

	if index < len(s.items)-1 {
		s.cancelObserver(index)
		c.presenter.Refresh()
		return
	}
	// The last item stays current and can be replayed, so its observer
	// must outlive this finish.
	c.presenter.SetPlaying(false)
}

// SongName is the current track's title.
func (c *Controller) SongName() string {
	if t := c.CurrentTrack(); t != nil {
		return t.Name
	}
	return ""
}

// Subtitle lists the current track's artists.
func (c *Controller) Subtitle() string {
	if t := c.CurrentTrack(); t != nil {
		return t.ArtistNames()
	}
	return ""
}

// ImageURL is the current track's album artwork.
func (c *Controller) ImageURL() string {
	if t := c.CurrentTrack(); t != nil {
		return t.ArtworkURL()
	}
	return ""
}

// Progress reports the position within the current item.
func (c *Controller) Progress() (time.Duration, time.Duration) {
	player := c.session.activePlayer()
	if player == nil {
		return 0, 0
	}
	return player.Position(), player.Duration()
}

// Volume is the level applied to new and current players.
func (c *Controller) Volume() float64 {
	return c.volume
}

// Status reports the active player's state, Paused when there is none.
func (c *Controller) Status() TimeControlStatus {
	if player := c.session.activePlayer(); player != nil {
		return player.Status()
	}
	return Paused
}

func seekToEnd(p Player) {
	p.Seek(p.Duration())
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
