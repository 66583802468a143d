package session

import (
	"context"
	"errors"
	"time"

	"dipanshu.dev/internal/contact"
	"dipanshu.dev/internal/playback"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Snapshot is the full view state of one page load.
type Snapshot struct {
	ID        string           `json:"id"`
	Dark      bool             `json:"dark"`
	Form      contact.Snapshot `json:"form"`
	Player    playback.State   `json:"player"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewSnapshot returns the state of a freshly loaded page.
func NewSnapshot(id string, now time.Time) *Snapshot {
	return &Snapshot{
		ID:        id,
		Form:      contact.Snapshot{Status: contact.StatusIdle, ChangedAt: now},
		Player:    playback.InitialState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store keeps snapshots for an idle TTL. Save refreshes the TTL.
//
// Lock serializes load-modify-save cycles on one session across every
// process sharing the store. It blocks until the lock is held or ctx is
// done; the returned func releases it and may be called more than once.
type Store interface {
	Load(ctx context.Context, id string) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (func(), error)
}
