// Package ui renders the playback transport in the terminal.
//
// Transport is a bubbletea model and a playback.Presenter at once. Its
// Update method is the main loop: posted work is drained there, and key
// presses call the playback delegate directly.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/toozej/spotifyclone/internal/mainloop"
	"github.com/toozej/spotifyclone/internal/playback"
)

const tickInterval = 250 * time.Millisecond

type wakeMsg struct{}

type tickMsg time.Time

// Transport shows now-playing information and forwards transport keys.
type Transport struct {
	ctx     context.Context
	loop    *mainloop.Loop
	heading string

	source   playback.DataSource
	delegate playback.Delegate
	playing  bool
	notice   string

	progress progress.Model
	help     help.Model
	keys     keyMap
}

// NewTransport returns a Transport that drains loop. heading is shown above
// the track, for example the album or playlist name.
func NewTransport(ctx context.Context, loop *mainloop.Loop, heading string) *Transport {
	return &Transport{
		ctx:      ctx,
		loop:     loop,
		heading:  heading,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Present implements playback.Presenter. done runs on the next loop turn,
// which is after the first frame when the program is already running.
func (t *Transport) Present(ds playback.DataSource, d playback.Delegate, done func()) {
	t.source = ds
	t.delegate = d
	t.notice = ""
	t.loop.Post(done)
}

// Refresh implements playback.Presenter. Track details are read from the
// data source on every frame, so only a stale notice needs clearing.
func (t *Transport) Refresh() {
	t.notice = ""
}

// SetPlaying implements playback.Presenter.
func (t *Transport) SetPlaying(playing bool) {
	t.playing = playing
}

// ShowUnavailable implements playback.Presenter.
func (t *Transport) ShowUnavailable(reason string) {
	t.playing = false
	t.notice = reason
}

var _ playback.Presenter = (*Transport)(nil)

// Init starts the loop and progress ticks.
func (t *Transport) Init() tea.Cmd {
	return tea.Batch(t.waitForWake(), tick())
}

// Update handles incoming messages and updates the model state.
func (t *Transport) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.help.Width = msg.Width
		t.progress.Width = max(10, min(60, msg.Width-20))
		return t, nil

	case wakeMsg:
		t.loop.RunPending()
		return t, t.waitForWake()

	case tickMsg:
		return t, tick()

	case tea.KeyMsg:
		return t.handleKey(msg)
	}
	return t, nil
}

func (t *Transport) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, t.keys.quit) {
		return t, tea.Quit
	}
	if key.Matches(msg, t.keys.help) {
		t.help.ShowAll = !t.help.ShowAll
		return t, nil
	}
	if t.delegate == nil {
		return t, nil
	}

	switch {
	case key.Matches(msg, t.keys.playPause):
		t.delegate.DidTapPlayPause()
	case key.Matches(msg, t.keys.forward):
		t.delegate.DidTapForward()
	case key.Matches(msg, t.keys.backward):
		t.delegate.DidTapBackward()
	case key.Matches(msg, t.keys.volumeUp):
		t.delegate.DidSlideSlider(t.source.Volume() + volumeStep)
	case key.Matches(msg, t.keys.volumeDown):
		t.delegate.DidSlideSlider(t.source.Volume() - volumeStep)
	}
	// Gestures can post work; drain it before the next frame.
	t.loop.RunPending()
	return t, nil
}

func (t *Transport) waitForWake() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-t.loop.Wake():
			return wakeMsg{}
		case <-t.ctx.Done():
			return nil
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(now time.Time) tea.Msg {
		return tickMsg(now)
	})
}

// View renders the transport.
func (t *Transport) View() string {
	var b strings.Builder

	if t.heading != "" {
		b.WriteString(styles.brand.Render(t.heading))
		b.WriteString("\n\n")
	}

	if t.source == nil {
		b.WriteString(styles.dim.Render("Nothing playing"))
	} else {
		b.WriteString(t.renderTrack())
	}

	if t.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.warn.Render(t.notice))
	}

	return styles.frame.Render(b.String()) + "\n" + t.help.View(t.keys) + "\n"
}

func (t *Transport) renderTrack() string {
	var b strings.Builder

	name := t.source.SongName()
	if name == "" {
		name = "Unknown track"
	}
	b.WriteString(styles.title.Render(name))
	if sub := t.source.Subtitle(); sub != "" {
		b.WriteString("\n")
		b.WriteString(styles.subtitle.Render(sub))
	}
	if art := t.source.ImageURL(); art != "" {
		b.WriteString("\n")
		b.WriteString(styles.dim.Render(art))
	}

	position, duration := t.source.Progress()
	var percent float64
	if duration > 0 {
		percent = min(1, float64(position)/float64(duration))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s %s / %s", t.stateIcon(), t.progress.ViewAs(percent), formatClock(position), formatClock(duration))
	fmt.Fprintf(&b, "\n%s", styles.dim.Render(fmt.Sprintf("volume %d%%", int(t.source.Volume()*100+0.5))))
	return b.String()
}

func (t *Transport) stateIcon() string {
	if t.playing {
		return "▶"
	}
	return "⏸"
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
