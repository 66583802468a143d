// Package theme holds the page's single dark/light flag.
package theme

import "sync"

// Palette is every themed surface of the page, derived from one flag.
// Templates read only from a Palette, so a toggle can never leave the
// page half light and half dark.
type Palette struct {
	Dark       bool   `json:"dark"`
	Background string `json:"background"`
	Heading    string `json:"heading"`
	Text       string `json:"text"`
	Muted      string `json:"muted"`
	Border     string `json:"border"`
	Card       string `json:"card"`
	Tag        string `json:"tag"`
	Input      string `json:"input"`
	Button     string `json:"button"`
	Toggle     string `json:"toggle"`
	Link       string `json:"link"`
}

var (
	light = Palette{
		Background: "bg-white",
		Heading:    "text-gray-900",
		Text:       "text-gray-700",
		Muted:      "text-gray-500",
		Border:     "border-gray-200",
		Card:       "bg-gray-50 hover:bg-gray-100",
		Tag:        "bg-gray-100 text-gray-700",
		Input:      "bg-white border-gray-300 text-gray-900 focus:border-gray-500",
		Button:     "bg-black text-white hover:bg-gray-800",
		Toggle:     "bg-gray-100 text-gray-700 hover:bg-gray-200",
		Link:       "text-gray-600 hover:text-black",
	}
	dark = Palette{
		Dark:       true,
		Background: "bg-gray-900",
		Heading:    "text-white",
		Text:       "text-gray-300",
		Muted:      "text-gray-400",
		Border:     "border-gray-700",
		Card:       "bg-gray-800 hover:bg-gray-700",
		Tag:        "bg-gray-800 text-gray-300",
		Input:      "bg-gray-800 border-gray-700 text-white focus:border-gray-500",
		Button:     "bg-white text-gray-900 hover:bg-gray-100",
		Toggle:     "bg-gray-800 text-yellow-400 hover:bg-gray-700",
		Link:       "text-gray-400 hover:text-white",
	}
)

// PaletteFor returns the palette for a flag value.
func PaletteFor(isDark bool) Palette {
	if isDark {
		return dark
	}
	return light
}

// Store owns the theme flag.
type Store struct {
	mu        sync.RWMutex
	dark      bool
	listeners []func(dark bool)
}

// NewStore returns a store starting at the given flag.
func NewStore(isDark bool) *Store {
	return &Store{dark: isDark}
}

// Dark reports whether the dark theme is active.
func (s *Store) Dark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

// Toggle flips the flag and returns the new value.
func (s *Store) Toggle() bool {
	s.mu.Lock()
	s.dark = !s.dark
	now := s.dark
	listeners := append([]func(bool){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
	return now
}

// Palette returns the palette for the current flag.
func (s *Store) Palette() Palette {
	return PaletteFor(s.Dark())
}

// OnChange registers fn to run after every toggle.
func (s *Store) OnChange(fn func(dark bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
