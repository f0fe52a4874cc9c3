package playback

import "time"

// DataSource is what the transport UI displays.
type DataSource interface {
	SongName() string
	Subtitle() string
	ImageURL() string
	Progress() (position, duration time.Duration)
	Volume() float64
}

// Delegate receives the user's transport gestures.
type Delegate interface {
	DidTapPlayPause()
	DidTapForward()
	DidTapBackward()
	DidSlideSlider(value float64)
}

// Presenter shows the transport UI. All calls happen on the main loop.
type Presenter interface {
	// Present shows the transport for ds and routes gestures to d. done is
	// invoked on the main loop once the UI is on screen.
	Present(ds DataSource, d Delegate, done func())
	// Refresh re-reads the data source after the current track changed.
	Refresh()
	SetPlaying(playing bool)
	ShowUnavailable(reason string)
}

// Poster runs a function on the main loop.
type Poster interface {
	Post(fn func())
}
