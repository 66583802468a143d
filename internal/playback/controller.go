// Package playback drives the page's audio player: one handle, a fixed
// playlist, and a selection / play-intent / volume state machine.
package playback

import (
	"context"
	"errors"
	"sync"
)

// ErrTrackOutOfRange is returned when a selection does not index the playlist.
var ErrTrackOutOfRange = errors.New("playback: track index out of range")

// NoTrack is the Selected value when nothing is selected.
const NoTrack = -1

// DefaultVolume is the starting volume of a new player.
const DefaultVolume = 0.7

// Handle is the single underlying media element.
type Handle interface {
	Load(src string)
	SetVolume(v float64)
	Play(ctx context.Context) error
	Pause()
}

// Position is where the controller sits in its state machine.
type Position string

const (
	NoSelection     Position = "none"
	SelectedPaused  Position = "paused"
	SelectedPlaying Position = "playing"
)

// State is the serializable player state.
type State struct {
	Selected int     `json:"selected"`
	Playing  bool    `json:"playing"`
	Volume   float64 `json:"volume"`
	// Blocked is set when the handle refused to start; Playing is
	// cleared at the same time so the two never disagree.
	Blocked bool `json:"blocked"`
}

// InitialState is the state of a fresh page.
func InitialState() State {
	return State{Selected: NoTrack, Volume: DefaultVolume}
}

// Position derives the state machine position.
func (s State) Position() Position {
	switch {
	case s.Selected == NoTrack:
		return NoSelection
	case s.Playing:
		return SelectedPlaying
	default:
		return SelectedPaused
	}
}

// Controller exclusively owns one Handle and keeps it in step with State.
type Controller struct {
	mu        sync.Mutex
	handle    Handle
	tracks    []string
	state     State
	loaded    string
	listeners []func(State)
}

// NewController returns a controller with nothing selected.
func NewController(h Handle, tracks []string) *Controller {
	return Restore(context.Background(), h, tracks, InitialState())
}

// Restore returns a controller at st and brings the handle in line with it.
// An invalid selection is dropped.
func Restore(ctx context.Context, h Handle, tracks []string, st State) *Controller {
	c := &Controller{
		handle: h,
		tracks: append([]string(nil), tracks...),
		state:  st,
	}
	c.state.Volume = clamp(c.state.Volume)
	if c.state.Selected < NoTrack || c.state.Selected >= len(c.tracks) {
		c.state.Selected = NoTrack
	}
	if c.state.Selected == NoTrack {
		c.state.Playing = false
	}
	c.syncLocked(ctx)
	return c
}

// OnChange registers fn to receive the state after every change.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Select handles a click on track i. A different track, or the selected
// track while paused, starts playing; the playing track pauses.
func (c *Controller) Select(ctx context.Context, i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.tracks) {
		c.mu.Unlock()
		return ErrTrackOutOfRange
	}

	if c.state.Selected == i && c.state.Playing {
		c.state.Playing = false
	} else {
		c.state.Selected = i
		c.state.Playing = true
	}
	c.syncLocked(ctx)
	c.emitLocked()
	return nil
}

// Ended records that the current track reached its natural end.
func (c *Controller) Ended() {
	c.mu.Lock()
	c.state.Playing = false
	c.syncLocked(context.Background())
	c.emitLocked()
}

// SetVolume clamps v to [0,1] and applies it without changing the
// play state.
func (c *Controller) SetVolume(ctx context.Context, v float64) {
	c.mu.Lock()
	c.state.Volume = clamp(v)
	c.syncLocked(ctx)
	c.emitLocked()
}

// Reject records that playback failed to start outside the handle's
// Play call, such as a browser autoplay policy.
func (c *Controller) Reject() {
	c.mu.Lock()
	if c.state.Playing {
		c.state.Playing = false
		c.state.Blocked = true
	}
	c.syncLocked(context.Background())
	c.emitLocked()
}

// syncLocked pushes source, volume and play/pause to the handle. A new
// source is only loaded after the handle is paused so two tracks never
// sound together.
func (c *Controller) syncLocked(ctx context.Context) {
	if c.state.Selected == NoTrack {
		c.handle.Pause()
		return
	}

	src := c.tracks[c.state.Selected]
	if src != c.loaded {
		c.handle.Pause()
		c.handle.Load(src)
		c.loaded = src
	}
	c.handle.SetVolume(c.state.Volume)

	if !c.state.Playing {
		c.handle.Pause()
		return
	}
	if err := c.handle.Play(ctx); err != nil {
		c.state.Playing = false
		c.state.Blocked = true
		return
	}
	c.state.Blocked = false
}

// emitLocked releases the lock and notifies listeners.
func (c *Controller) emitLocked() {
	st := c.state
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
