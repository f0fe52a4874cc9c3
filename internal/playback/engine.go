package playback

import "time"

// TimeControlStatus describes what a player is doing right now.
type TimeControlStatus int

const (
	Paused TimeControlStatus = iota
	// WaitingToPlay means play was requested but audio is not ready yet.
	WaitingToPlay
	Playing
)

func (s TimeControlStatus) String() string {
	switch s {
	case Paused:
		return "paused"
	case WaitingToPlay:
		return "waiting"
	case Playing:
		return "playing"
	}
	return "unknown"
}

// Item is one loaded preview.
type Item interface {
	// OnFinished registers fn to be called once the item has played to its
	// end. fn may be called from any goroutine. The returned cancel removes
	// the registration and is safe to call more than once.
	OnFinished(fn func()) (cancel func())
}

// Player is the transport surface shared by both engine kinds.
type Player interface {
	Play()
	Pause()
	Seek(d time.Duration)
	SetVolume(v float64)
	Status() TimeControlStatus
	Position() time.Duration
	// Duration is zero until the current item has loaded.
	Duration() time.Duration
	Close() error
}

// SinglePlayer plays exactly one item.
type SinglePlayer interface {
	Player
	Item() Item
}

// QueuePlayer plays items in order and advances on its own when one ends.
// It cannot step backwards.
type QueuePlayer interface {
	Player
	// Items returns the items not yet finished, current item first.
	Items() []Item
	AdvanceToNextItem()
}

// Engine builds players for preview URLs.
type Engine interface {
	NewPlayer(url string) (SinglePlayer, error)
	NewQueuePlayer(urls []string) (QueuePlayer, error)
}
