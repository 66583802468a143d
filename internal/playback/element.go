package playback

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSource is returned by ElementHandle.Play before any Load.
var ErrNoSource = errors.New("playback: no source loaded")

// ElementState is what the page's single <audio> element should show.
type ElementState struct {
	Src    string  `json:"src"`
	Volume float64 `json:"volume"`
	Paused bool    `json:"paused"`
}

// ElementHandle records the desired state of the browser's audio
// element. The page renders it; the browser performs the playback.
type ElementHandle struct {
	mu    sync.Mutex
	state ElementState
}

// NewElementHandle returns a paused handle with no source.
func NewElementHandle() *ElementHandle {
	return &ElementHandle{state: ElementState{Paused: true, Volume: DefaultVolume}}
}

func (h *ElementHandle) Load(src string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Src = src
	h.state.Paused = true
}

func (h *ElementHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Volume = v
}

func (h *ElementHandle) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Src == "" {
		return ErrNoSource
	}
	h.state.Paused = false
	return nil
}

func (h *ElementHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Paused = true
}

// State returns the element state to render.
func (h *ElementHandle) State() ElementState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
