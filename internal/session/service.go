// Package session gives every page load its own view state: a theme
// store, a contact form and a playback controller, rebuilt from a
// stored snapshot for each request.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dipanshu.dev/internal/contact"
	"dipanshu.dev/internal/logger"
	"dipanshu.dev/internal/playback"
	"dipanshu.dev/internal/theme"
)

// View is what the page renders for one session.
type View struct {
	SessionID   string                `json:"session_id"`
	Theme       theme.Palette         `json:"theme"`
	Form        contact.Snapshot      `json:"form"`
	FormMessage string                `json:"form_message,omitempty"`
	Player      playback.State        `json:"player"`
	Element     playback.ElementState `json:"element"`
}

// FieldUpdate carries the inputs that changed; nil means unchanged.
type FieldUpdate struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Message *string `json:"message,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for form timing.
func WithClock(c contact.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service runs view operations against stored sessions.
type Service struct {
	store  Store
	relay  contact.Relay
	tracks []string
	clock  contact.Clock
	log    *logger.Logger
}

// NewService creates a Service. tracks are the playlist sources.
func NewService(store Store, relay contact.Relay, tracks []string, opts ...Option) *Service {
	s := &Service{
		store:  store,
		relay:  relay,
		tracks: tracks,
		clock:  contact.SystemClock,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// live is one request's working copy of a session. Each state owner
// reports changes back into snap through its OnChange callback.
type live struct {
	snap    *Snapshot
	theme   *theme.Store
	form    *contact.Form
	element *playback.ElementHandle
	player  *playback.Controller
}

func (s *Service) restore(ctx context.Context, snap *Snapshot) *live {
	l := &live{snap: snap, element: playback.NewElementHandle()}

	l.theme = theme.NewStore(snap.Dark)
	l.theme.OnChange(func(dark bool) { l.snap.Dark = dark })

	l.form = contact.Restore(s.relay, snap.Form, contact.WithClock(s.clock))
	snap.Form = l.form.Snapshot()
	l.form.OnChange(func(fs contact.Snapshot) { l.snap.Form = fs })

	l.player = playback.Restore(ctx, l.element, s.tracks, snap.Player)
	snap.Player = l.player.State()
	l.player.OnChange(func(ps playback.State) { l.snap.Player = ps })

	return l
}

func (l *live) close() {
	l.form.Close()
}

func (l *live) view() *View {
	return &View{
		SessionID:   l.snap.ID,
		Theme:       theme.PaletteFor(l.snap.Dark),
		Form:        l.snap.Form,
		FormMessage: l.snap.Form.Message(),
		Player:      l.snap.Player,
		Element:     l.element.State(),
	}
}

// Start creates the session for a new page load.
func (s *Service) Start(ctx context.Context) (*View, error) {
	snap := NewSnapshot(uuid.NewString(), s.clock.Now())
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, err
	}
	l := s.restore(ctx, snap)
	defer l.close()
	return l.view(), nil
}

// View returns the current view of a session.
func (s *Service) View(ctx context.Context, id string) (*View, error) {
	return s.apply(ctx, id, func(*live) error { return nil })
}

// ToggleTheme flips the session's theme flag.
func (s *Service) ToggleTheme(ctx context.Context, id string) (*View, error) {
	return s.apply(ctx, id, func(l *live) error {
		l.theme.Toggle()
		return nil
	})
}

// SetFields updates the contact inputs present in u.
func (s *Service) SetFields(ctx context.Context, id string, u FieldUpdate) (*View, error) {
	return s.apply(ctx, id, func(l *live) error {
		for name, v := range map[string]*string{"name": u.Name, "email": u.Email, "message": u.Message} {
			if v == nil {
				continue
			}
			if err := l.form.SetField(name, *v); err != nil {
				return err
			}
		}
		return nil
	})
}

// SelectTrack handles a click on a playlist entry.
func (s *Service) SelectTrack(ctx context.Context, id string, index int) (*View, error) {
	return s.apply(ctx, id, func(l *live) error {
		return l.player.Select(ctx, index)
	})
}

// TrackEnded records the natural end of the current track.
func (s *Service) TrackEnded(ctx context.Context, id string) (*View, error) {
	return s.apply(ctx, id, func(l *live) error {
		l.player.Ended()
		return nil
	})
}

// SetVolume changes the player volume.
func (s *Service) SetVolume(ctx context.Context, id string, v float64) (*View, error) {
	return s.apply(ctx, id, func(l *live) error {
		l.player.SetVolume(ctx, v)
		return nil
	})
}

// PlaybackRejected records that the browser refused to start playback.
func (s *Service) PlaybackRejected(ctx context.Context, id string) (*View, error) {
	return s.apply(ctx, id, func(l *live) error {
		l.player.Reject()
		s.log.WithFields(map[string]any{"session": id}).Debug("playback start rejected by client")
		return nil
	})
}

// Submit sends the contact form. The session lock is held only until
// the "sending" state is saved, so the session stays usable while the
// relay call is in flight. The relay call is not tied to the request
// context: a visitor leaving the page does not abort a submission.
// If the "sending" state cannot be saved the relay is never called.
func (s *Service) Submit(ctx context.Context, id string) (*View, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	locked := true
	release := func() {
		if locked {
			unlock()
			locked = false
		}
	}
	defer release()

	snap, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	bg := context.WithoutCancel(ctx)
	var saveErr error
	relay := contact.RelayFunc(func(ctx context.Context, sub contact.Submission) error {
		if saveErr != nil {
			return fmt.Errorf("submission aborted: %w", saveErr)
		}
		return s.relay.Send(ctx, sub)
	})

	form := contact.Restore(relay, snap.Form, contact.WithClock(s.clock))
	defer form.Close()

	if form.Status() == contact.StatusSending {
		l := s.restore(ctx, snap)
		defer l.close()
		return l.view(), contact.ErrSubmissionInFlight
	}

	form.OnChange(func(fs contact.Snapshot) {
		// idle comes from the reset timer; restore derives it anyway
		if fs.Status == contact.StatusIdle {
			return
		}
		if !locked {
			relock, err := s.store.Lock(bg, id)
			if err != nil {
				if saveErr == nil {
					saveErr = err
				}
				return
			}
			defer relock()
		}
		if err := s.saveForm(bg, id, fs); err != nil && saveErr == nil {
			saveErr = err
		}
		if fs.Status == contact.StatusSending {
			release()
		}
	})

	submitErr := form.Submit(bg)
	release()
	s.logSubmit(id, submitErr)

	if saveErr != nil {
		return nil, saveErr
	}
	view, err := s.View(bg, id)
	if err != nil {
		return nil, err
	}
	return view, submitErr
}

func (s *Service) saveForm(ctx context.Context, id string, fs contact.Snapshot) error {
	latest, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	latest.Form = fs
	latest.UpdatedAt = s.clock.Now()
	return s.store.Save(ctx, latest)
}

func (s *Service) logSubmit(id string, err error) {
	log := s.log.WithFields(map[string]any{"session": id})
	if err == nil {
		log.Info("contact message relayed")
		return
	}

	fields := map[string]any{"category": contact.Category(err)}
	var re *contact.RelayError
	if errors.As(err, &re) {
		fields["relay_status"] = re.StatusCode
	}
	log.WithFields(fields).Warn("contact submission failed")
}

// apply runs fn on a restored session under the session lock and saves
// the result. The view is returned even when fn fails, since fn may
// already have changed state (a failed submit sets error status).
func (s *Service) apply(ctx context.Context, id string, fn func(*live) error) (*View, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	l := s.restore(ctx, snap)
	defer l.close()

	opErr := fn(l)

	l.snap.UpdatedAt = s.clock.Now()
	if err := s.store.Save(ctx, l.snap); err != nil {
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}
	return l.view(), opErr
}
