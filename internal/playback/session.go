package playback

import "github.com/toozej/spotifyclone/internal/types"

// session is the active playback mode: idleSession, *singleSession or
// *queueSession. Every start replaces it.
type session interface {
	currentTrack() *types.Track
	// activePlayer returns nil when there is nothing to drive.
	activePlayer() Player
	teardown()
}

type idleSession struct{}

func (idleSession) currentTrack() *types.Track { return nil }
func (idleSession) activePlayer() Player       { return nil }
func (idleSession) teardown()                  {}

// singleSession plays one track. player is nil when the track has no
// playable preview.
type singleSession struct {
	id     uint64
	track  types.Track
	player SinglePlayer
	cancel func()
}

func (s *singleSession) currentTrack() *types.Track { return &s.track }

func (s *singleSession) activePlayer() Player {
	if s.player == nil {
		return nil
	}
	return s.player
}

func (s *singleSession) teardown() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.player != nil {
		_ = s.player.Close()
	}
}

// queueSession plays a list of tracks. tracks is the full list the caller
// asked for; retained holds the indices into tracks that have a preview,
// one per engine item, in order.
type queueSession struct {
	id       uint64
	tracks   []types.Track
	retained []int
	player   QueuePlayer
	items    []Item
	cancels  []func()
}

// position is the index into retained of the engine's current item, or -1
// when no items remain.
func (s *queueSession) position() int {
	if s.player == nil {
		return -1
	}
	remaining := len(s.player.Items())
	if remaining == 0 || remaining > len(s.retained) {
		return -1
	}
	return len(s.retained) - remaining
}

// originalIndex maps the current engine item back to its index in tracks.
func (s *queueSession) originalIndex() (int, bool) {
	pos := s.position()
	if pos < 0 {
		return 0, false
	}
	return s.retained[pos], true
}

func (s *queueSession) currentTrack() *types.Track {
	idx, ok := s.originalIndex()
	if !ok {
		return nil
	}
	return &s.tracks[idx]
}

func (s *queueSession) activePlayer() Player {
	if s.player == nil || len(s.items) == 0 {
		return nil
	}
	return s.player
}

func (s *queueSession) cancelObserver(i int) {
	if i < 0 || i >= len(s.cancels) || s.cancels[i] == nil {
		return
	}
	s.cancels[i]()
	s.cancels[i] = nil
}

func (s *queueSession) teardown() {
	for i := range s.cancels {
		s.cancelObserver(i)
	}
	if s.player != nil {
		_ = s.player.Close()
	}
}
