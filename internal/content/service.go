package content

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"dipanshu.dev/internal/models"
)

var (
	// ErrProjectNotFound is returned when no project has the requested ID
	ErrProjectNotFound = errors.New("project not found")

	// ErrPlaylistChanged is returned by Replace when the new content
	// has different track sources. Live sessions index the playlist,
	// so it stays fixed for the life of the process.
	ErrPlaylistChanged = errors.New("playlist cannot change while serving")
)

// Service handles read access to the static site content
type Service struct {
	site atomic.Pointer[models.Site]
}

// NewService creates a new Service
func NewService(site *models.Site) *Service {
	s := &Service{}
	s.site.Store(site)
	return s
}

// Replace swaps in reloaded content
func (s *Service) Replace(site *models.Site) error {
	if !slices.Equal(trackSources(s.site.Load()), trackSources(site)) {
		return ErrPlaylistChanged
	}
	s.site.Store(site)
	return nil
}

// Site returns the full site content
func (s *Service) Site() *models.Site {
	return s.site.Load()
}

// Profile returns the header and about copy
func (s *Service) Profile() models.Profile {
	return s.site.Load().Profile
}

// Projects returns all projects
func (s *Service) Projects() []models.Project {
	return s.site.Load().Projects
}

// Project returns a specific project by ID
func (s *Service) Project(id string) (*models.Project, error) {
	site := s.site.Load()
	for i := range site.Projects {
		if site.Projects[i].ID == id {
			return &site.Projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// TechStack returns the tech badges
func (s *Service) TechStack() []models.TechEntry {
	return s.site.Load().TechStack
}

// Tracks returns the fixed playlist
func (s *Service) Tracks() []models.Track {
	return s.site.Load().Tracks
}

// TrackSources returns the src of every track, in playlist order
func (s *Service) TrackSources() []string {
	return trackSources(s.site.Load())
}

func trackSources(site *models.Site) []string {
	srcs := make([]string, len(site.Tracks))
	for i, t := range site.Tracks {
		srcs[i] = t.Src
	}
	return srcs
}
